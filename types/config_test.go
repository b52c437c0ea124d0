package types

import "testing"

func TestWithDefaults(t *testing.T) {
	c := LinkConfig{Radio: RadioConfig{FrequencyHz: 868_100_000}}.WithDefaults()
	if c.Role != RoleController {
		t.Fatalf("role %q", c.Role)
	}
	if c.Radio.FrequencyHz != 868_100_000 {
		t.Fatal("explicit frequency overwritten")
	}
	if c.Radio.BandwidthHz != 125_000 || c.Radio.Spreading != 7 || c.Radio.CodingRate != 5 {
		t.Fatalf("modem defaults %+v", c.Radio)
	}
	if c.Interlock != (InterlockConfig{ArmHold: 1000, Debounce: 10, HeartbeatEvery: 1000}) {
		t.Fatalf("interlock defaults %+v", c.Interlock)
	}
	if c.Receiver.FireTicks != 1000 || c.Receiver.ActivityTicks != 500 {
		t.Fatalf("receiver defaults %+v", c.Receiver)
	}
	if c.Radio.TxTimeoutMS != 0 {
		t.Fatal("tx timeout must stay unbounded by default")
	}
}
