package link

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"launchlink-go/bus"
	"launchlink-go/drivers/sx127x"
	"launchlink-go/protocol"
	"launchlink-go/types"
)

type packet struct {
	payload []byte
	status  sx127x.Status
}

// fakeRadio queues packets and hands one to the handler per PollReceive.
type fakeRadio struct {
	handler sx127x.ReceiveHandler
	ready   chan struct{}
	queue   []packet
	sent    [][]byte
	txErr   error
	rssiReg int16
}

func newFakeRadio() *fakeRadio { return &fakeRadio{ready: make(chan struct{}, 1), rssiReg: -97} }

func (f *fakeRadio) Transmit(p []byte) error {
	f.sent = append(f.sent, append([]byte(nil), p...))
	return f.txErr
}

func (f *fakeRadio) SetReceiveHandler(h sx127x.ReceiveHandler) { f.handler = h }
func (f *fakeRadio) Ready() <-chan struct{}                    { return f.ready }
func (f *fakeRadio) LastPacketRSSI(uint32) (int16, error)      { return f.rssiReg, nil }
func (f *fakeRadio) LastPacketSNR() (int8, error)              { return 28, nil }
func (f *fakeRadio) Config() sx127x.Config                     { return sx127x.DefaultConfig() }

func (f *fakeRadio) PollReceive() error {
	if len(f.queue) == 0 {
		return nil
	}
	p := f.queue[0]
	f.queue = f.queue[1:]
	f.handler(p.payload, p.status)
	return nil
}

func (f *fakeRadio) deliver(content string, st sx127x.Status) {
	f.queue = append(f.queue, packet{[]byte(content), st})
}

type fakeNode struct {
	ticks int
	got   []protocol.Message
}

func (n *fakeNode) Tick()                     { n.ticks++ }
func (n *fakeNode) Handle(m protocol.Message) { n.got = append(n.got, m) }
func (n *fakeNode) Snapshot() int             { return n.ticks / 10 }

func newService(t *testing.T) (*Service, *fakeRadio, *fakeNode, *bus.Connection) {
	t.Helper()
	b := bus.NewBus(16)
	r := newFakeRadio()
	n := &fakeNode{}
	s := New(r, types.RoleController, Wrap[int](n), b.NewConnection("link"))
	return s, r, n, b.NewConnection("test")
}

func TestRadioSenderFrames(t *testing.T) {
	r := newFakeRadio()
	s := NewRadioSender(r)
	if err := s.Send(protocol.Ignite); err != nil {
		t.Fatal(err)
	}
	want := append(protocol.Prefix[:], "IGNITE\x00"...)
	if len(r.sent) != 1 || !bytes.Equal(r.sent[0], want) {
		t.Fatalf("sent % x, want % x", r.sent, want)
	}
	if err := s.Send(protocol.Unknown); !errors.Is(err, protocol.ErrUnknownMessage) {
		t.Fatalf("Unknown: %v", err)
	}
	if len(r.sent) != 1 {
		t.Fatal("Unknown reached the radio")
	}
}

func TestReceiveDispatchesAndReportsRSSI(t *testing.T) {
	s, r, n, obs := newService(t)
	rssi := obs.Subscribe(TopicRSSI)

	r.deliver("stop\x00", sx127x.StatusOK)
	s.receive()

	if len(n.got) != 1 || n.got[0] != protocol.ContinuityOK {
		t.Fatalf("node got %v", n.got)
	}
	select {
	case m := <-rssi.Channel():
		q, ok := m.Payload.(types.PacketQuality)
		if !ok || q.RSSI != -97 || q.Msg != "stop" {
			t.Fatalf("rssi payload %#v", m.Payload)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("no rssi report")
	}
}

func TestCRCErrorDropped(t *testing.T) {
	s, r, n, _ := newService(t)
	r.deliver("", sx127x.StatusCRCError)
	s.receive()
	if len(n.got) != 0 {
		t.Fatalf("corrupt packet reached the node: %v", n.got)
	}
	if s.CRCErrors() != 1 {
		t.Fatalf("crc errors %d", s.CRCErrors())
	}
}

func TestUnknownContentDropped(t *testing.T) {
	s, r, n, _ := newService(t)
	r.deliver("hello\x00", sx127x.StatusOK)
	s.receive()
	if len(n.got) != 0 {
		t.Fatalf("unknown packet reached the node: %v", n.got)
	}
}

func TestOwnDirectionDropped(t *testing.T) {
	s, r, n, _ := newService(t)
	r.deliver("cork\x00", sx127x.StatusOK)
	r.deliver("IGNITE\x00", sx127x.StatusOK)
	r.deliver("stal\x00", sx127x.StatusOK)
	for i := 0; i < 3; i++ {
		s.receive()
	}
	if len(n.got) != 1 || n.got[0] != protocol.ContinuityFail {
		t.Fatalf("controller handled %v, want only stal", n.got)
	}
}

func TestReceiverRoleAcceptsCommands(t *testing.T) {
	b := bus.NewBus(4)
	r := newFakeRadio()
	n := &fakeNode{}
	s := New(r, types.RoleReceiver, Wrap[int](n), b.NewConnection("link"))
	r.deliver("stop\x00", sx127x.StatusOK)
	r.deliver("cork\x00", sx127x.StatusOK)
	s.receive()
	s.receive()
	if len(n.got) != 1 || n.got[0] != protocol.Heartbeat {
		t.Fatalf("receiver handled %v, want only cork", n.got)
	}
}

func TestStatusPublishedOnChange(t *testing.T) {
	s, _, n, obs := newService(t)
	sub := obs.Subscribe(TopicStatus)

	for i := 0; i < 25; i++ {
		s.step()
	}
	var got []int
	for done := false; !done; {
		select {
		case m := <-sub.Channel():
			got = append(got, m.Payload.(int))
		case <-time.After(50 * time.Millisecond):
			done = true
		}
	}
	// snapshot moves 0 -> 1 -> 2 over 25 ticks
	if len(got) != 3 || got[0] != 0 || got[1] != 1 || got[2] != 2 {
		t.Fatalf("published %v", got)
	}
	if n.ticks != 25 {
		t.Fatalf("node ticked %d times", n.ticks)
	}
}

func TestRunAnswersStatusRequests(t *testing.T) {
	s, _, _, obs := newService(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	rctx, rcancel := context.WithTimeout(context.Background(), time.Second)
	defer rcancel()
	reply, err := obs.RequestWait(rctx, obs.NewMessage(TopicStatusGet, nil, false))
	if err != nil {
		t.Fatalf("status request: %v", err)
	}
	if _, ok := reply.Payload.(int); !ok {
		t.Fatalf("reply payload %#v", reply.Payload)
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not stop")
	}
}

func TestRunDrainsOnReady(t *testing.T) {
	s, r, _, obs := newService(t)
	rssi := obs.Subscribe(TopicRSSI)
	r.deliver("done\x00", sx127x.StatusOK)
	r.ready <- struct{}{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	never := make(chan time.Time)
	go func() { _ = s.loop(ctx, never) }()

	select {
	case m := <-rssi.Channel():
		if m.Payload.(types.PacketQuality).Msg != "done" {
			t.Fatalf("payload %#v", m.Payload)
		}
	case <-time.After(time.Second):
		t.Fatal("ready signal not serviced")
	}
}
