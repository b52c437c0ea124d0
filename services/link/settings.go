package link

import (
	"errors"
	"time"

	"launchlink-go/drivers/sx127x"
	"launchlink-go/errcode"
	"launchlink-go/types"
)

var (
	errBandwidth  = errors.New("link: bandwidth_hz is not a modem bandwidth")
	errSpreading  = errors.New("link: spreading_factor must be 6..12")
	errCodingRate = errors.New("link: coding_rate must be 5..8")
)

// RadioSettings converts the published radio section into driver settings.
// Zero fields take their defaults first.
func RadioSettings(rc types.RadioConfig) (sx127x.Config, error) {
	rc = types.LinkConfig{Radio: rc}.WithDefaults().Radio

	cfg := sx127x.DefaultConfig()
	bw, ok := sx127x.BandwidthFromHz(rc.BandwidthHz)
	if !ok {
		return cfg, &errcode.E{C: errcode.InvalidParams, Op: "link.RadioSettings", Err: errBandwidth}
	}
	sf := sx127x.SpreadingFactor(rc.Spreading)
	if sf < sx127x.SF6 || sf > sx127x.SF12 {
		return cfg, &errcode.E{C: errcode.InvalidParams, Op: "link.RadioSettings", Err: errSpreading}
	}
	cr, ok := sx127x.CodingRateFromDenominator(rc.CodingRate)
	if !ok {
		return cfg, &errcode.E{C: errcode.InvalidParams, Op: "link.RadioSettings", Err: errCodingRate}
	}

	cfg.Frequency = rc.FrequencyHz
	cfg.Bandwidth = bw
	cfg.SpreadingFactor = sf
	cfg.CodingRate = cr
	cfg.TxPower = rc.TxPowerDBm
	cfg.MaxCurrent = rc.MaxCurrentMA
	cfg.TxTimeout = time.Duration(rc.TxTimeoutMS) * time.Millisecond
	return cfg, nil
}
