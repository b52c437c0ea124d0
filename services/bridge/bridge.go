// Package bridge forwards a node's link topics to a ground station over a
// byte stream, a spare UART on hardware. Every frame is a type byte, a
// 16-bit big-endian length and a JSON body.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	"launchlink-go/bus"
	"launchlink-go/x/fmtx"
)

var (
	TopicState   = bus.T("bridge", "state")
	topicForward = bus.T("link", "#")
)

// Dialer opens the stream to the ground station.
type Dialer func(ctx context.Context) (io.ReadWriteCloser, error)

type Service struct {
	conn *bus.Connection
	dial Dialer
	ping time.Duration
}

func New(conn *bus.Connection, dial Dialer) *Service {
	return &Service{conn: conn, dial: dial, ping: 5 * time.Second}
}

func (s *Service) Start(ctx context.Context) { go s.Run(ctx) }

// Run keeps one uplink open until ctx is cancelled, redialling with backoff.
// Each link gets its own context, so a stream that blocks reads on it is
// released when the link ends. The reader has exited before the next dial.
func (s *Service) Run(ctx context.Context) {
	s.publishState("idle", "dialling", nil)
	const minDelay, maxDelay = 250 * time.Millisecond, 5 * time.Second
	backoff := backoffSeq(minDelay, maxDelay)
	for {
		lctx, cancel := context.WithCancel(ctx)
		rwc, err := s.dial(lctx)
		if err != nil {
			cancel()
			delay := backoff()
			s.publishState("degraded", "dial_failed_retrying", fmtx.Errorf("%v (retry in %s)", err, delay.String()))
			if !sleep(ctx, delay) {
				return
			}
			continue
		}

		// A link that came up starts the retry schedule over.
		backoff = backoffSeq(minDelay, maxDelay)
		err = s.handleLink(ctx, rwc, cancel)
		if err == nil {
			s.publishState("idle", "stopped", nil)
			return
		}
		delay := backoff()
		s.publishState("degraded", "link_lost_retrying", fmtx.Errorf("%v (retry in %s)", err, delay.String()))
		if !sleep(ctx, delay) {
			return
		}
	}
}

// handleLink returns nil only when ctx ends. On return the link context is
// cancelled, the stream closed and the reader goroutine gone.
func (s *Service) handleLink(ctx context.Context, rwc io.ReadWriteCloser, stop context.CancelFunc) error {
	sub := s.conn.Subscribe(topicForward)
	defer s.conn.Unsubscribe(sub)
	s.publishState("up", "link_established", nil)

	rd := newFramedReader(rwc)
	wr := newFramedWriter(rwc)

	pongs := make(chan struct{}, 1)
	errCh := make(chan error, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			f, err := rd.ReadFrame()
			if err != nil {
				errCh <- err
				return
			}
			switch f.Type {
			case framePing:
				select {
				case pongs <- struct{}{}:
				default:
				}
			case frameClose:
				errCh <- io.EOF
				return
			}
		}
	}()
	defer func() {
		stop()
		_ = rwc.Close()
		<-done
	}()

	tick := time.NewTicker(s.ping)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = wr.WriteFrame(Frame{Type: frameClose})
			return nil
		case err := <-errCh:
			return err
		case <-pongs:
			if err := wr.WriteFrame(Frame{Type: framePong}); err != nil {
				return err
			}
		case <-tick.C:
			if err := wr.WriteFrame(Frame{Type: framePing}); err != nil {
				return err
			}
		case msg, ok := <-sub.Channel():
			if !ok {
				return errors.New("bridge: subscription closed")
			}
			body, err := encodePub(msg)
			if err != nil {
				fmtx.Printf("[bridge] drop %s: %v\r\n", topicString(msg.Topic), err)
				continue
			}
			if err := wr.WriteFrame(Frame{Type: framePub, Payload: body}); err != nil {
				return err
			}
		}
	}
}

// Pub is the JSON body of a framePub.
type Pub struct {
	Topic    string          `json:"topic"`
	Retained bool            `json:"retained,omitempty"`
	Payload  json.RawMessage `json:"payload"`
}

func encodePub(m *bus.Message) ([]byte, error) {
	p, err := json.Marshal(m.Payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Pub{Topic: topicString(m.Topic), Retained: m.Retained, Payload: p})
}

func topicString(t bus.Topic) string {
	var out []byte
	for i := 0; i < t.Len(); i++ {
		if i > 0 {
			out = append(out, '/')
		}
		switch v := t.At(i).(type) {
		case string:
			out = append(out, v...)
		default:
			out = append(out, fmtx.Sprint(v)...)
		}
	}
	return string(out)
}

const (
	framePing  byte = 0x01
	framePong  byte = 0x02
	framePub   byte = 0x10
	frameClose byte = 0x7f
)

type Frame struct {
	Type    byte
	Payload []byte
}

type framedReader struct{ r io.Reader }
type framedWriter struct{ w io.Writer }

func newFramedReader(r io.Reader) *framedReader { return &framedReader{r: r} }
func newFramedWriter(w io.Writer) *framedWriter { return &framedWriter{w: w} }

var errFrameTooLarge = errors.New("bridge: frame too large")

func (fr *framedReader) ReadFrame() (Frame, error) {
	var hdr [3]byte
	if _, err := io.ReadFull(fr.r, hdr[:]); err != nil {
		return Frame{}, err
	}
	f := Frame{Type: hdr[0]}
	if n := int(hdr[1])<<8 | int(hdr[2]); n > 0 {
		f.Payload = make([]byte, n)
		if _, err := io.ReadFull(fr.r, f.Payload); err != nil {
			return Frame{}, err
		}
	}
	return f, nil
}

// WriteFrame emits header and body in one Write.
func (fw *framedWriter) WriteFrame(f Frame) error {
	if len(f.Payload) > 0xFFFF {
		return errFrameTooLarge
	}
	buf := make([]byte, 0, 3+len(f.Payload))
	buf = append(buf, f.Type, byte(len(f.Payload)>>8), byte(len(f.Payload)))
	buf = append(buf, f.Payload...)
	_, err := fw.w.Write(buf)
	return err
}

func (s *Service) publishState(level, status string, err error) {
	payload := map[string]any{
		"level":  level,  // "up", "degraded", "idle"
		"status": status, // short machine string
		"ts_ms":  time.Now().UnixMilli(),
	}
	if err != nil {
		payload["error"] = err.Error()
	}
	s.conn.Publish(s.conn.NewMessage(TopicState, payload, true))
}

func backoffSeq(min, max time.Duration) func() time.Duration {
	if min <= 0 {
		min = 100 * time.Millisecond
	}
	if max < min {
		max = min
	}
	cur := min
	return func() time.Duration {
		d := cur
		cur *= 2
		if cur > max {
			cur = max
		}
		return d
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
