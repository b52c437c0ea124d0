// Package link runs a node's main loop. One goroutine owns the radio: it
// services the 1 ms tick, drains received packets after the DIO0 interrupt
// and answers status requests, so no SPI access ever overlaps.
package link

import (
	"context"
	"time"

	"launchlink-go/bus"
	"launchlink-go/drivers/sx127x"
	"launchlink-go/errcode"
	"launchlink-go/protocol"
	"launchlink-go/types"
	"launchlink-go/x/fmtx"
)

var (
	TopicStatus    = bus.T("link", "status")
	TopicStatusGet = bus.T("link", "status", "get")
	TopicRSSI      = bus.T("link", "rssi")
)

// Radio is the part of *sx127x.Device the loop uses.
type Radio interface {
	Transmitter
	SetReceiveHandler(h sx127x.ReceiveHandler)
	PollReceive() error
	Ready() <-chan struct{}
	LastPacketRSSI(freqHz uint32) (int16, error)
	LastPacketSNR() (int8, error)
	Config() sx127x.Config
}

type Transmitter interface {
	Transmit(payload []byte) error
}

// Node is the per-role state machine driven by the loop.
type Node interface {
	Tick()
	Handle(m protocol.Message)
	Snapshot() any
}

// Wrap adapts a machine with a typed, comparable snapshot to Node.
func Wrap[S comparable](m interface {
	Tick()
	Handle(protocol.Message)
	Snapshot() S
}) Node {
	return wrapped[S]{m}
}

type wrapped[S comparable] struct {
	m interface {
		Tick()
		Handle(protocol.Message)
		Snapshot() S
	}
}

func (w wrapped[S]) Tick()                     { w.m.Tick() }
func (w wrapped[S]) Handle(m protocol.Message) { w.m.Handle(m) }
func (w wrapped[S]) Snapshot() any             { return w.m.Snapshot() }

// RadioSender frames commands onto a transmitter.
type RadioSender struct {
	tx  Transmitter
	buf [len(protocol.Prefix) + 8]byte
}

func NewRadioSender(tx Transmitter) *RadioSender { return &RadioSender{tx: tx} }

func (s *RadioSender) Send(m protocol.Message) error {
	frame, err := protocol.AppendFrame(s.buf[:0], m)
	if err != nil {
		return err
	}
	return s.tx.Transmit(frame)
}

type Service struct {
	radio  Radio
	accept protocol.Dir
	node   Node
	conn   *bus.Connection
	getSub *bus.Subscription
	period time.Duration

	inbox     []protocol.Message
	last      any
	crcErrors uint32
}

// New registers the receive handler; the radio must not be shared with any
// other caller afterwards. Only messages addressed to role reach the node.
func New(r Radio, role types.Role, n Node, conn *bus.Connection) *Service {
	accept := protocol.ToController
	if role == types.RoleReceiver {
		accept = protocol.ToReceiver
	}
	s := &Service{
		radio:  r,
		accept: accept,
		node:   n,
		conn:   conn,
		period: time.Millisecond,
		inbox:  make([]protocol.Message, 0, 4),
	}
	r.SetReceiveHandler(s.onPacket)
	s.getSub = conn.Subscribe(TopicStatusGet)
	return s
}

// Run blocks until ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	t := time.NewTicker(s.period)
	defer t.Stop()
	return s.loop(ctx, t.C)
}

// Start runs the loop on its own goroutine.
func (s *Service) Start(ctx context.Context) {
	go func() { _ = s.Run(ctx) }()
}

func (s *Service) loop(ctx context.Context, tick <-chan time.Time) error {
	defer s.conn.Unsubscribe(s.getSub)
	s.publishStatus()
	for {
		select {
		case <-ctx.Done():
			fmtx.Printf("[link] stopping\r\n")
			return ctx.Err()
		case <-tick:
			s.step()
		case <-s.radio.Ready():
			s.receive()
		case req := <-s.getSub.Channel():
			s.conn.Reply(req, s.node.Snapshot(), false)
		}
	}
}

func (s *Service) step() {
	s.node.Tick()
	s.publishStatus()
}

// onPacket runs inside PollReceive. The payload is only valid for the call,
// so it is decoded here and dispatched afterwards.
func (s *Service) onPacket(payload []byte, st sx127x.Status) {
	if st == sx127x.StatusCRCError {
		s.crcErrors++
		fmtx.Printf("[link] %s, packet dropped (%d)\r\n", string(errcode.CRCError), s.crcErrors)
		return
	}
	m := protocol.Decode(payload)
	switch {
	case m == protocol.Unknown:
		fmtx.Printf("[link] %s, ignoring %d byte packet\r\n", string(errcode.UnknownMessage), len(payload))
		return
	case protocol.Direction(m) != s.accept:
		// Our own traffic, e.g. a second controller's cork.
		return
	}
	s.inbox = append(s.inbox, m)
}

func (s *Service) receive() {
	if err := s.radio.PollReceive(); err != nil {
		fmtx.Printf("[link] receive: %v\r\n", err)
	}
	for _, m := range s.inbox {
		s.publishQuality(m)
		s.node.Handle(m)
	}
	s.inbox = s.inbox[:0]
	s.publishStatus()
}

func (s *Service) publishQuality(m protocol.Message) {
	rssi, err := s.radio.LastPacketRSSI(s.radio.Config().Frequency)
	if err != nil {
		return
	}
	snr, _ := s.radio.LastPacketSNR()
	s.conn.Publish(s.conn.NewMessage(TopicRSSI, types.PacketQuality{
		RSSI: rssi,
		SNR:  snr,
		Msg:  m.String(),
	}, false))
}

// publishStatus publishes the node snapshot, retained, when it changed.
func (s *Service) publishStatus() {
	snap := s.node.Snapshot()
	if snap == s.last {
		return
	}
	s.last = snap
	s.conn.Publish(s.conn.NewMessage(TopicStatus, snap, true))
}

// CRCErrors counts packets dropped for a bad payload CRC.
func (s *Service) CRCErrors() uint32 { return s.crcErrors }
