// Package interlock is the controller's launch interlock. It turns the arm
// and ignite switches into at most one IGNITE per deliberate operator
// action, runs the heartbeat toward the receiver and mirrors link state on
// the indicator LEDs and buzzer.
package interlock

import (
	"launchlink-go/protocol"
	"launchlink-go/services/heartbeat"
	"launchlink-go/types"
	"launchlink-go/x/fmtx"
)

type Config struct {
	ArmHold        int // ticks the arm switch must be held before arming
	Debounce       int // debounce hold window in ticks
	HeartbeatEvery int // ticks between heartbeats
}

func (c Config) withDefaults() Config {
	if c.ArmHold <= 0 {
		c.ArmHold = 1000
	}
	if c.Debounce <= 0 {
		c.Debounce = 10
	}
	if c.HeartbeatEvery <= 0 {
		c.HeartbeatEvery = 1000
	}
	return c
}

// ConfigFrom adapts the published link configuration.
func ConfigFrom(c types.InterlockConfig) Config {
	return Config{ArmHold: c.ArmHold, Debounce: c.Debounce, HeartbeatEvery: c.HeartbeatEvery}
}

// Sender transmits one command. It returns once the radio is done with it.
type Sender interface {
	Send(m protocol.Message) error
}

// Pins is the controller's physical surface. Switch inputs are active-low.
// Nil outputs are skipped.
type Pins struct {
	Arm    types.PinInput
	Ignite types.PinInput

	ContinuityGreen, ContinuityRed types.PinOutput
	IgnitionGreen, IgnitionRed     types.PinOutput
	Buzzer                         types.PinOutput
	Connection                     types.PinOutput
}

type Continuity uint8

const (
	ContinuityUnknown Continuity = iota
	ContinuityGood
	ContinuityFault
)

func (c Continuity) String() string {
	switch c {
	case ContinuityGood:
		return "good"
	case ContinuityFault:
		return "fault"
	}
	return "unknown"
}

type Ignition uint8

const (
	IgnitionIdle Ignition = iota
	IgnitionPending
	IgnitionConfirmed
	IgnitionFailed
)

func (i Ignition) String() string {
	switch i {
	case IgnitionPending:
		return "pending"
	case IgnitionConfirmed:
		return "confirmed"
	case IgnitionFailed:
		return "failed"
	}
	return "idle"
}

// Machine holds all interlock state. Tick and Handle must be called from
// one goroutine.
type Machine struct {
	cfg    Config
	pins   Pins
	sender Sender

	arm, ignite Debounced
	igniteWas   bool
	armTicks    int
	armed       bool

	// Latched by an IGNITE; only physical release of both switches clears it.
	mustRelease bool
	armReleased bool
	awaiting    bool

	ticks      uint32
	hb         heartbeat.Monitor
	continuity Continuity
	ignition   Ignition
	sent       uint32
}

func New(cfg Config, pins Pins, s Sender) *Machine {
	cfg = cfg.withDefaults()
	m := &Machine{
		cfg:    cfg,
		pins:   pins,
		sender: s,
		arm:    NewDebounced(cfg.Debounce),
		ignite: NewDebounced(cfg.Debounce),
	}
	m.drive()
	return m
}

// Tick advances the machine by one 1 ms tick.
func (m *Machine) Tick() {
	m.ticks++

	armDown := m.arm.Update(low(m.pins.Arm))
	igniteDown := m.ignite.Update(low(m.pins.Ignite))

	// Only a released-to-pressed edge counts. A switch already held when
	// the machine arms or reconnects never fires.
	pressed := igniteDown && !m.igniteWas
	m.igniteWas = igniteDown

	m.updateArm(armDown)

	if m.mustRelease && !igniteDown && m.armReleased {
		m.mustRelease = false
	}
	if pressed && m.armed && m.hb.Connected() && !m.mustRelease {
		m.fire()
	}

	if m.ticks%uint32(m.cfg.HeartbeatEvery) == 0 {
		m.heartbeat()
	}
	m.drive()
}

func (m *Machine) updateArm(down bool) {
	if !down {
		m.armTicks = 0
		m.armReleased = true
		if m.armed {
			m.armed = false
			if m.ignition == IgnitionPending {
				m.ignition = IgnitionIdle
			}
		}
		return
	}
	if m.armed {
		return
	}
	m.armTicks++
	if m.armTicks >= m.cfg.ArmHold {
		m.armed = true
		m.ignition = IgnitionPending
		fmtx.Printf("[interlock] armed\r\n")
	}
}

func (m *Machine) fire() {
	m.mustRelease = true
	m.armReleased = false
	m.awaiting = true
	m.sent++
	fmtx.Printf("[interlock] IGNITE #%d\r\n", m.sent)
	if err := m.sender.Send(protocol.Ignite); err != nil {
		// Nothing went on air, so no reply is coming. The latch stays.
		m.awaiting = false
		m.ignition = IgnitionFailed
		fmtx.Printf("[interlock] IGNITE send failed: %v\r\n", err)
	}
}

func (m *Machine) heartbeat() {
	if err := m.sender.Send(protocol.Heartbeat); err != nil {
		fmtx.Printf("[interlock] heartbeat send failed: %v\r\n", err)
	}
	prev := m.hb.State()
	if m.hb.Beat() == heartbeat.Lost {
		m.continuity = ContinuityUnknown
		m.awaiting = false
		if prev != heartbeat.Lost {
			fmtx.Printf("[interlock] connection lost\r\n")
		}
	}
}

// Handle applies one decoded message from the receiver.
func (m *Machine) Handle(msg protocol.Message) {
	switch msg {
	case protocol.ContinuityOK:
		m.continuity = ContinuityGood
		m.hb.Reply()
	case protocol.ContinuityFail:
		m.continuity = ContinuityFault
		m.hb.Reply()
	case protocol.IgniteAck:
		m.ignition = IgnitionConfirmed
		m.awaiting = false
	case protocol.IgniteNack:
		m.ignition = IgnitionFailed
		m.awaiting = false
	default:
		return
	}
	m.drive()
}

func (m *Machine) buzzer() bool { return m.armed && m.hb.Connected() && !m.awaiting }

// drive mirrors state onto the outputs. Two-wire LEDs show yellow with both
// wires high.
func (m *Machine) drive() {
	switch m.continuity {
	case ContinuityGood:
		pair(m.pins.ContinuityGreen, m.pins.ContinuityRed, true, false)
	case ContinuityFault:
		pair(m.pins.ContinuityGreen, m.pins.ContinuityRed, false, true)
	default:
		pair(m.pins.ContinuityGreen, m.pins.ContinuityRed, true, true)
	}
	switch m.ignition {
	case IgnitionPending:
		pair(m.pins.IgnitionGreen, m.pins.IgnitionRed, true, true)
	case IgnitionConfirmed:
		pair(m.pins.IgnitionGreen, m.pins.IgnitionRed, true, false)
	case IgnitionFailed:
		pair(m.pins.IgnitionGreen, m.pins.IgnitionRed, false, true)
	default:
		pair(m.pins.IgnitionGreen, m.pins.IgnitionRed, false, false)
	}
	set(m.pins.Buzzer, m.buzzer())
	set(m.pins.Connection, m.hb.Connected())
}

func (m *Machine) Snapshot() types.InterlockStatus {
	return types.InterlockStatus{
		Connection:  m.hb.State().String(),
		Continuity:  m.continuity.String(),
		Ignition:    m.ignition.String(),
		Armed:       m.armed,
		MustRelease: m.mustRelease,
		Awaiting:    m.awaiting,
		Buzzer:      m.buzzer(),
		IgniteSent:  m.sent,
	}
}

func low(in types.PinInput) bool { return in != nil && !in() }

func set(out types.PinOutput, v bool) {
	if out != nil {
		out(v)
	}
}

func pair(green, red types.PinOutput, g, r bool) {
	set(green, g)
	set(red, r)
}
