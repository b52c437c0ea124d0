// Package board maps the link firmware onto an RP2040/RP2350 board: the
// SX127x on SPI0 with DIO0 as its receive interrupt, the operator switches
// and indicators, UART0 for diagnostics and UART1 for the ground uplink.
package board

import (
	"errors"

	"launchlink-go/x/conv"
)

// Plans hold plain GPIO numbers; mapping to machine.Pin happens in Open.

type SPIPlan struct {
	SCK, SDO, SDI, CS int
	Hz                uint32
}

type UARTPlan struct {
	TX, RX int
	Baud   uint32
}

type RadioPlan struct {
	SPI   SPIPlan
	Reset int
	DIO0  int
}

type ControllerPlan struct {
	Arm, Ignite                    int // switches to ground, internal pull-up
	ContinuityGreen, ContinuityRed int
	IgnitionGreen, IgnitionRed     int
	Buzzer                         int
	Connection                     int
}

type ReceiverPlan struct {
	Continuity int // pulled low through the igniter when it is intact
	Fire       int
	Activity   int
}

type Plan struct {
	Name       string
	Radio      RadioPlan
	UART       UARTPlan
	Uplink     UARTPlan
	StatusLED  int
	Controller ControllerPlan
	Receiver   ReceiverPlan
}

// PicoLink is the reference wiring: an RFM9x module on the Pico's SPI0
// header pins and the operator panel on GP2..GP15.
// The uplink uses UART1 on GP4/GP5.
var PicoLink = Plan{
	Name: "pico-link",
	Radio: RadioPlan{
		SPI:   SPIPlan{SCK: 18, SDO: 19, SDI: 16, CS: 17, Hz: 1_000_000},
		Reset: 20,
		DIO0:  21,
	},
	UART:      UARTPlan{TX: 0, RX: 1, Baud: 115200},
	Uplink:    UARTPlan{TX: 4, RX: 5, Baud: 115200},
	StatusLED: 25,
	Controller: ControllerPlan{
		Arm: 2, Ignite: 3,
		ContinuityGreen: 6, ContinuityRed: 7,
		IgnitionGreen: 8, IgnitionRed: 9,
		Buzzer:     10,
		Connection: 11,
	},
	Receiver: ReceiverPlan{Continuity: 12, Fire: 14, Activity: 15},
}

var (
	errPinRange = errors.New("board: pin outside GP0..GP28")
	errPinTwice = errors.New("board: pin assigned twice")
)

const gpioMax = 28

// Validate checks that every pin the role needs exists and is used once.
// The on-board LED (GP25) is accepted for StatusLED.
func (p Plan) Validate(controller bool) error {
	pins := []int{
		p.Radio.SPI.SCK, p.Radio.SPI.SDO, p.Radio.SPI.SDI, p.Radio.SPI.CS,
		p.Radio.Reset, p.Radio.DIO0, p.UART.TX, p.UART.RX,
		p.Uplink.TX, p.Uplink.RX, p.StatusLED,
	}
	if controller {
		c := p.Controller
		pins = append(pins, c.Arm, c.Ignite, c.ContinuityGreen, c.ContinuityRed,
			c.IgnitionGreen, c.IgnitionRed, c.Buzzer, c.Connection)
	} else {
		r := p.Receiver
		pins = append(pins, r.Continuity, r.Fire, r.Activity)
	}
	var seen uint32
	for _, n := range pins {
		if n < 0 || n > gpioMax {
			return pinError(errPinRange, n)
		}
		if seen&(1<<n) != 0 {
			return pinError(errPinTwice, n)
		}
		seen |= 1 << n
	}
	return nil
}

type badPin struct {
	err error
	pin int
}

func (e *badPin) Error() string {
	var buf [20]byte
	return e.err.Error() + ": GP" + string(conv.Itoa(buf[:], int64(e.pin)))
}

func (e *badPin) Unwrap() error { return e.err }

func pinError(err error, n int) error { return &badPin{err: err, pin: n} }
