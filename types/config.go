package types

// Link configuration supplied on topic "config/link".

type Role string

const (
	RoleController Role = "controller"
	RoleReceiver   Role = "receiver"
)

type LinkConfig struct {
	Role      Role            `json:"role"`
	Radio     RadioConfig     `json:"radio"`
	Interlock InterlockConfig `json:"interlock,omitempty"`
	Receiver  ReceiverConfig  `json:"receiver,omitempty"`
}

type RadioConfig struct {
	FrequencyHz  uint32 `json:"frequency_hz"`
	BandwidthHz  uint32 `json:"bandwidth_hz"` // 7800 .. 500000
	Spreading    uint8  `json:"spreading_factor"`
	CodingRate   uint8  `json:"coding_rate"` // denominator, 5..8 for 4/5..4/8
	TxPowerDBm   uint8  `json:"tx_power_dbm"`
	MaxCurrentMA uint8  `json:"max_current_ma"`
	TxTimeoutMS  uint32 `json:"tx_timeout_ms,omitempty"` // 0 waits forever
}

// Timings are in 1 ms ticks.
type InterlockConfig struct {
	ArmHold        int `json:"arm_hold_ticks"`
	Debounce       int `json:"debounce_ticks"`
	HeartbeatEvery int `json:"heartbeat_ticks"`
}

type ReceiverConfig struct {
	FireTicks     int `json:"fire_ticks"`
	ActivityTicks int `json:"activity_ticks"`
}

// WithDefaults fills every zero field with the stock value.
func (c LinkConfig) WithDefaults() LinkConfig {
	if c.Role == "" {
		c.Role = RoleController
	}
	r := &c.Radio
	if r.FrequencyHz == 0 {
		r.FrequencyHz = 433_000_000
	}
	if r.BandwidthHz == 0 {
		r.BandwidthHz = 125_000
	}
	if r.Spreading == 0 {
		r.Spreading = 7
	}
	if r.CodingRate == 0 {
		r.CodingRate = 5
	}
	if r.TxPowerDBm == 0 {
		r.TxPowerDBm = 20
	}
	if r.MaxCurrentMA == 0 {
		r.MaxCurrentMA = 150
	}
	il := &c.Interlock
	if il.ArmHold <= 0 {
		il.ArmHold = 1000
	}
	if il.Debounce <= 0 {
		il.Debounce = 10
	}
	if il.HeartbeatEvery <= 0 {
		il.HeartbeatEvery = 1000
	}
	rc := &c.Receiver
	if rc.FireTicks <= 0 {
		rc.FireTicks = 1000
	}
	if rc.ActivityTicks <= 0 {
		rc.ActivityTicks = 500
	}
	return c
}
