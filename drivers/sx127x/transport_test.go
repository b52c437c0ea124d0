package sx127x

import (
	"errors"
	"testing"

	"launchlink-go/errcode"
)

// fakeSPI implements tinygo.org/x/drivers.SPI.
type fakeSPI struct {
	reply byte
	err   error
	seen  []byte
}

func (s *fakeSPI) Tx(w, r []byte) error {
	for i, b := range w {
		v, err := s.Transfer(b)
		if err != nil {
			return err
		}
		if i < len(r) {
			r[i] = v
		}
	}
	return nil
}

func (s *fakeSPI) Transfer(b byte) (byte, error) {
	s.seen = append(s.seen, b)
	return s.reply, s.err
}

func TestSPITransportSelectLine(t *testing.T) {
	var levels []bool
	bus := &fakeSPI{reply: 0x12}
	tr := NewSPITransport(bus, func(l bool) { levels = append(levels, l) })

	d := New(tr, nil)
	v, err := d.ReadRegister(regVersion)
	if err != nil || v != 0x12 {
		t.Fatalf("ReadRegister = %#x, %v", v, err)
	}
	// idle high, asserted low for the transaction, released high.
	want := []bool{true, false, true}
	if len(levels) != len(want) {
		t.Fatalf("cs levels = %v, want %v", levels, want)
	}
	for i := range want {
		if levels[i] != want[i] {
			t.Fatalf("cs levels = %v, want %v", levels, want)
		}
	}
	if len(bus.seen) != 2 || bus.seen[0] != regVersion || bus.seen[1] != 0 {
		t.Fatalf("bus saw %#x", bus.seen)
	}
}

func TestSPITransportFailure(t *testing.T) {
	stalled := errors.New("spi: no completion after 1000 polls")
	tr := NewSPITransport(&fakeSPI{err: stalled}, func(bool) {})
	_, err := tr.Exchange(0x42)
	if errcode.Of(err) != errcode.TransportTimeout || !errors.Is(err, stalled) {
		t.Fatalf("err = %v, want transport_timeout wrapping the bus error", err)
	}
}
