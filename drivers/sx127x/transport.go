package sx127x

import (
	"tinygo.org/x/drivers"

	"launchlink-go/errcode"
)

// PinOutput drives a digital line. It keeps the driver independent of the
// platform's pin type.
type PinOutput func(level bool)

// Transport is a byte-wise full-duplex link to the chip. Enable and Disable
// frame one transaction (select line asserted in between).
type Transport interface {
	Enable()
	Disable()
	Exchange(out byte) (in byte, err error)
}

// SPITransport runs the register protocol over a TinyGo SPI bus and an
// active-low chip select.
type SPITransport struct {
	bus drivers.SPI
	cs  PinOutput
}

// NewSPITransport wraps a configured SPI bus. The bus is expected to bound
// each transfer itself; a failed transfer is reported as TransportTimeout.
func NewSPITransport(bus drivers.SPI, cs PinOutput) *SPITransport {
	cs(true)
	return &SPITransport{bus: bus, cs: cs}
}

func (t *SPITransport) Enable()  { t.cs(false) }
func (t *SPITransport) Disable() { t.cs(true) }

func (t *SPITransport) Exchange(out byte) (byte, error) {
	in, err := t.bus.Transfer(out)
	if err != nil {
		return 0, &errcode.E{C: errcode.TransportTimeout, Op: "spi.Transfer", Err: err}
	}
	return in, nil
}
