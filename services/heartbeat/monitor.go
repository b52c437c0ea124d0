// Package heartbeat tracks whether the far node is answering heartbeats.
package heartbeat

type State uint8

const (
	Unknown State = iota
	Connected
	Lost
)

func (s State) String() string {
	switch s {
	case Connected:
		return "connected"
	case Lost:
		return "lost"
	}
	return "unknown"
}

// Monitor is driven by two events: Reply for every continuity reply and Beat
// once per heartbeat, after the heartbeat has been sent. A beat that finds
// no reply since the previous beat declares the link lost.
//
// Monitor is not safe for concurrent use.
type Monitor struct {
	state   State
	beaten  bool
	replied bool
}

func (m *Monitor) Reply() {
	m.replied = true
	m.state = Connected
}

// Beat closes one heartbeat period and returns the resulting state. The
// first beat only opens a period.
func (m *Monitor) Beat() State {
	if m.beaten && !m.replied {
		m.state = Lost
	}
	m.beaten = true
	m.replied = false
	return m.state
}

func (m *Monitor) State() State { return m.state }
func (m *Monitor) Connected() bool { return m.state == Connected }
