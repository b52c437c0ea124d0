package link

import (
	"testing"
	"time"

	"launchlink-go/drivers/sx127x"
	"launchlink-go/errcode"
	"launchlink-go/types"
)

func TestRadioSettings(t *testing.T) {
	cfg, err := RadioSettings(types.RadioConfig{
		FrequencyHz: 868_100_000,
		BandwidthHz: 250_000,
		Spreading:   9,
		CodingRate:  8,
		TxTimeoutMS: 200,
	})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Frequency != 868_100_000 || cfg.Bandwidth != sx127x.Bandwidth250kHz ||
		cfg.SpreadingFactor != sx127x.SF9 || cfg.CodingRate != sx127x.CodingRate4_8 {
		t.Fatalf("modem settings %+v", cfg)
	}
	if cfg.TxPower != 20 || cfg.MaxCurrent != 150 || cfg.TxTimeout != 200*time.Millisecond {
		t.Fatalf("power settings %+v", cfg)
	}
}

func TestRadioSettingsRejects(t *testing.T) {
	for _, rc := range []types.RadioConfig{
		{BandwidthHz: 100_000},
		{Spreading: 13},
		{CodingRate: 9},
	} {
		if _, err := RadioSettings(rc); errcode.Of(err) != errcode.InvalidParams {
			t.Errorf("%+v: err %v", rc, err)
		}
	}
}
