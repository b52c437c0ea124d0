package config

// Embedded per-device configuration, keyed by device ID. Fields left out
// take the defaults in types.LinkConfig.WithDefaults.

const cfgController = `{
  "role": "controller",
  "radio": {
    "frequency_hz": 433000000,
    "bandwidth_hz": 125000,
    "spreading_factor": 7,
    "coding_rate": 5,
    "tx_power_dbm": 20,
    "max_current_ma": 150
  },
  "interlock": {
    "arm_hold_ticks": 1000,
    "debounce_ticks": 10,
    "heartbeat_ticks": 1000
  }
}`

const cfgReceiver = `{
  "role": "receiver",
  "radio": {
    "frequency_hz": 433000000,
    "bandwidth_hz": 125000,
    "spreading_factor": 7,
    "coding_rate": 5,
    "tx_power_dbm": 20,
    "max_current_ma": 150
  },
  "receiver": {
    "fire_ticks": 1000,
    "activity_ticks": 500
  }
}`

var embeddedConfigs = map[string][]byte{
	"controller": []byte(cfgController),
	"receiver":   []byte(cfgReceiver),
}
