package board

import (
	"time"

	"launchlink-go/drivers/sx127x"
	"launchlink-go/services/igniter"
	"launchlink-go/services/interlock"
	"launchlink-go/types"
)

// Board is an opened plan. Pin accessors configure the GPIO on first use.
type Board struct {
	Plan  Plan
	Radio *sx127x.Device

	input  func(n int) types.PinInput
	output func(n int, initial bool) types.PinOutput
}

func (b *Board) ControllerPins() interlock.Pins {
	c := b.Plan.Controller
	return interlock.Pins{
		Arm:             b.input(c.Arm),
		Ignite:          b.input(c.Ignite),
		ContinuityGreen: b.output(c.ContinuityGreen, true),
		ContinuityRed:   b.output(c.ContinuityRed, true),
		IgnitionGreen:   b.output(c.IgnitionGreen, false),
		IgnitionRed:     b.output(c.IgnitionRed, false),
		Buzzer:          b.output(c.Buzzer, false),
		Connection:      b.output(c.Connection, false),
	}
}

func (b *Board) ReceiverPins() igniter.Pins {
	r := b.Plan.Receiver
	return igniter.Pins{
		Continuity: b.input(r.Continuity),
		Fire:       b.output(r.Fire, false),
		Activity:   b.output(r.Activity, false),
	}
}

func (b *Board) StatusLED() types.PinOutput { return b.output(b.Plan.StatusLED, false) }

// Halt never returns. It reports err on the console and blinks led, which
// may be nil when the board itself failed to open.
func Halt(led types.PinOutput, what string, err error) {
	for {
		println("[halt]", what+":", err.Error())
		for i := 0; i < 20; i++ {
			if led != nil {
				led(i%2 == 0)
			}
			time.Sleep(100 * time.Millisecond)
		}
	}
}
