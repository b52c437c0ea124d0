package config

import (
	"errors"

	"github.com/andreyvit/tinyjson"

	"launchlink-go/types"
)

var (
	errNotObject = errors.New("config: not a JSON object")
	errSyntax    = errors.New("config: malformed JSON")
	errBadNumber = errors.New("config: field is not a non-negative integer")
	errBadString = errors.New("config: field is not a string")
)

// parse turns raw JSON into a generic object. The tinyjson reader panics on
// malformed input, so the panic is turned back into an error here.
func parse(raw []byte) (obj map[string]any, err error) {
	defer func() {
		if r := recover(); r != nil {
			obj, err = nil, errSyntax
		}
	}()
	r := tinyjson.Raw(raw)
	val := r.Value()
	r.EnsureEOF()

	m, ok := val.(map[string]any)
	if !ok {
		return nil, errNotObject
	}
	return m, nil
}

// decode maps the generic object onto LinkConfig. Unknown keys are ignored
// and missing ones stay zero for WithDefaults.
func decode(m map[string]any) (types.LinkConfig, string, error) {
	var c types.LinkConfig
	var d decoder

	c.Role = types.Role(d.str(m, "role"))
	if r := d.obj(m, "radio"); r != nil {
		c.Radio.FrequencyHz = uint32(d.num(r, "frequency_hz", 1<<32-1))
		c.Radio.BandwidthHz = uint32(d.num(r, "bandwidth_hz", 1<<32-1))
		c.Radio.Spreading = uint8(d.num(r, "spreading_factor", 255))
		c.Radio.CodingRate = uint8(d.num(r, "coding_rate", 255))
		c.Radio.TxPowerDBm = uint8(d.num(r, "tx_power_dbm", 255))
		c.Radio.MaxCurrentMA = uint8(d.num(r, "max_current_ma", 255))
		c.Radio.TxTimeoutMS = uint32(d.num(r, "tx_timeout_ms", 1<<32-1))
	}
	if il := d.obj(m, "interlock"); il != nil {
		c.Interlock.ArmHold = int(d.num(il, "arm_hold_ticks", 1<<31-1))
		c.Interlock.Debounce = int(d.num(il, "debounce_ticks", 1<<31-1))
		c.Interlock.HeartbeatEvery = int(d.num(il, "heartbeat_ticks", 1<<31-1))
	}
	if rc := d.obj(m, "receiver"); rc != nil {
		c.Receiver.FireTicks = int(d.num(rc, "fire_ticks", 1<<31-1))
		c.Receiver.ActivityTicks = int(d.num(rc, "activity_ticks", 1<<31-1))
	}
	return c, d.key, d.err
}

// decoder keeps the first field error and names the offending key.
type decoder struct {
	err error
	key string
}

func (d *decoder) fail(key string, err error) {
	if d.err == nil {
		d.err, d.key = err, key
	}
}

func (d *decoder) obj(m map[string]any, key string) map[string]any {
	v, ok := m[key]
	if !ok || v == nil {
		return nil
	}
	o, ok := v.(map[string]any)
	if !ok {
		d.fail(key, errNotObject)
		return nil
	}
	return o
}

func (d *decoder) str(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		d.fail(key, errBadString)
	}
	return s
}

func (d *decoder) num(m map[string]any, key string, max uint64) uint64 {
	v, ok := m[key]
	if !ok || v == nil {
		return 0
	}
	var n uint64
	switch x := v.(type) {
	case float64:
		if x < 0 || x != float64(uint64(x)) {
			d.fail(key, errBadNumber)
			return 0
		}
		n = uint64(x)
	case int:
		if x < 0 {
			d.fail(key, errBadNumber)
			return 0
		}
		n = uint64(x)
	case int64:
		if x < 0 {
			d.fail(key, errBadNumber)
			return 0
		}
		n = uint64(x)
	case uint64:
		n = x
	default:
		d.fail(key, errBadNumber)
		return 0
	}
	if n > max {
		d.fail(key, errBadNumber)
		return 0
	}
	return n
}
