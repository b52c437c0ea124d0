// Package igniter is the receiver node. It answers heartbeats with the state
// of the igniter circuit and fires on IGNITE when the circuit is whole.
package igniter

import (
	"launchlink-go/protocol"
	"launchlink-go/types"
	"launchlink-go/x/fmtx"
)

type Config struct {
	FireTicks     int // how long the fire output stays on
	ActivityTicks int // activity LED on-time after each heartbeat
}

func (c Config) withDefaults() Config {
	if c.FireTicks <= 0 {
		c.FireTicks = 1000
	}
	if c.ActivityTicks <= 0 {
		c.ActivityTicks = 500
	}
	return c
}

func ConfigFrom(c types.ReceiverConfig) Config {
	return Config{FireTicks: c.FireTicks, ActivityTicks: c.ActivityTicks}
}

type Sender interface {
	Send(m protocol.Message) error
}

// Pins of the receiver. Continuity reads low when current flows through the
// igniter.
type Pins struct {
	Continuity types.PinInput
	Fire       types.PinOutput
	Activity   types.PinOutput
}

type Responder struct {
	cfg    Config
	pins   Pins
	sender Sender

	fireLeft     int
	activityLeft int

	heartbeats, fired, refused uint32
}

func New(cfg Config, pins Pins, s Sender) *Responder {
	r := &Responder{cfg: cfg.withDefaults(), pins: pins, sender: s}
	set(r.pins.Fire, false)
	set(r.pins.Activity, false)
	return r
}

func (r *Responder) closed() bool {
	return r.pins.Continuity != nil && !r.pins.Continuity()
}

// Tick times out the fire and activity outputs.
func (r *Responder) Tick() {
	if r.fireLeft > 0 {
		r.fireLeft--
		if r.fireLeft == 0 {
			set(r.pins.Fire, false)
		}
	}
	if r.activityLeft > 0 {
		r.activityLeft--
		if r.activityLeft == 0 {
			set(r.pins.Activity, false)
		}
	}
}

// Handle answers one command from the controller.
func (r *Responder) Handle(m protocol.Message) {
	var reply protocol.Message
	switch m {
	case protocol.Heartbeat:
		r.heartbeats++
		r.activityLeft = r.cfg.ActivityTicks
		set(r.pins.Activity, true)
		reply = protocol.ContinuityFail
		if r.closed() {
			reply = protocol.ContinuityOK
		}
	case protocol.Ignite:
		if !r.closed() || r.fireLeft > 0 {
			r.refused++
			reply = protocol.IgniteNack
			break
		}
		r.fired++
		r.fireLeft = r.cfg.FireTicks
		set(r.pins.Fire, true)
		fmtx.Printf("[igniter] firing for %d ticks\r\n", r.cfg.FireTicks)
		reply = protocol.IgniteAck
	default:
		return
	}
	if err := r.sender.Send(reply); err != nil {
		fmtx.Printf("[igniter] reply %s failed: %v\r\n", reply.String(), err)
	}
}

func (r *Responder) Snapshot() types.ReceiverStatus {
	return types.ReceiverStatus{
		Continuity: r.closed(),
		Firing:     r.fireLeft > 0,
		Heartbeats: r.heartbeats,
		Fired:      r.fired,
		Refused:    r.refused,
	}
}

func set(out types.PinOutput, v bool) {
	if out != nil {
		out(v)
	}
}
