//go:build rp2040 || rp2350

package board

import (
	"context"
	"io"
	"machine"

	"github.com/jangala-dev/tinygo-uartx/uartx"

	"launchlink-go/drivers/sx127x"
	"launchlink-go/errcode"
	"launchlink-go/services/bridge"
	"launchlink-go/types"
	"launchlink-go/x/fmtx"
)

// Open configures the console, SPI0, the radio control lines and the DIO0
// interrupt. The radio is returned unconfigured.
func Open(p Plan, controller bool) (*Board, error) {
	if err := p.Validate(controller); err != nil {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "board.Open", Err: err}
	}

	u := uartx.UART0
	_ = u.Configure(uartx.UARTConfig{
		BaudRate: p.UART.Baud,
		TX:       machine.Pin(p.UART.TX),
		RX:       machine.Pin(p.UART.RX),
	})
	fmtx.DefaultOutput = u

	spi := machine.SPI0
	if err := spi.Configure(machine.SPIConfig{
		Frequency: p.Radio.SPI.Hz,
		SCK:       machine.Pin(p.Radio.SPI.SCK),
		SDO:       machine.Pin(p.Radio.SPI.SDO),
		SDI:       machine.Pin(p.Radio.SPI.SDI),
		Mode:      0,
	}); err != nil {
		return nil, &errcode.E{C: errcode.Error, Op: "board.Open", Msg: "spi0", Err: err}
	}

	cs := output(p.Radio.SPI.CS, true)
	reset := output(p.Radio.Reset, true)
	radio := sx127x.New(sx127x.NewSPITransport(spi, sx127x.PinOutput(cs)), sx127x.PinOutput(reset))

	dio0 := machine.Pin(p.Radio.DIO0)
	dio0.Configure(machine.PinConfig{Mode: machine.PinInputPulldown})
	if err := dio0.SetInterrupt(machine.PinRising, func(machine.Pin) { radio.HandleInterrupt() }); err != nil {
		return nil, &errcode.E{C: errcode.Error, Op: "board.Open", Msg: "dio0 irq", Err: err}
	}

	fmtx.Printf("[board] %s up, radio on spi0\r\n", p.Name)
	return &Board{Plan: p, Radio: radio, input: input, output: output}, nil
}

func input(n int) types.PinInput {
	pin := machine.Pin(n)
	pin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	return pin.Get
}

func output(n int, initial bool) types.PinOutput {
	pin := machine.Pin(n)
	pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	pin.Set(initial)
	return pin.Set
}

// UplinkDialer opens UART1 for the ground-station bridge.
func (b *Board) UplinkDialer() bridge.Dialer {
	return func(ctx context.Context) (io.ReadWriteCloser, error) {
		u := uartx.UART1
		if err := u.Configure(uartx.UARTConfig{
			BaudRate: b.Plan.Uplink.Baud,
			TX:       machine.Pin(b.Plan.Uplink.TX),
			RX:       machine.Pin(b.Plan.Uplink.RX),
		}); err != nil {
			return nil, err
		}
		sctx, cancel := context.WithCancel(ctx)
		return &uartStream{ctx: sctx, cancel: cancel, u: u}, nil
	}
}

// uartStream blocks reads on the dial context. Close releases a blocked
// Read; the UART itself stays configured for the next dial.
type uartStream struct {
	ctx    context.Context
	cancel context.CancelFunc
	u      *uartx.UART
}

func (s *uartStream) Read(p []byte) (int, error)  { return s.u.RecvSomeContext(s.ctx, p) }
func (s *uartStream) Write(p []byte) (int, error) { return s.u.Write(p) }
func (s *uartStream) Close() error                { s.cancel(); return nil }
