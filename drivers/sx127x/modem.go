package sx127x

import "launchlink-go/errcode"

func invalid(op string, err error) error {
	return &errcode.E{C: errcode.InvalidParams, Op: op, Err: err}
}

// SetFrequency programs the carrier. The 24-bit code is written MSB, MID,
// LSB. Do not call while a transmit is in progress.
func (d *Device) SetFrequency(hz uint32) error {
	code := frfCode(hz)
	var acc accum
	acc.add(d.WriteRegister(regFrfMsb, byte(code>>16)))
	acc.add(d.WriteRegister(regFrfMid, byte(code>>8)))
	acc.add(d.WriteRegister(regFrfLsb, byte(code)))
	if acc.err == nil {
		d.cfg.Frequency = hz
	}
	return acc.result("sx127x.SetFrequency")
}

// Frequency reads the programmed carrier back from the chip.
func (d *Device) Frequency() (uint32, error) {
	var acc accum
	msb, err := d.ReadRegister(regFrfMsb)
	acc.add(err)
	mid, err := d.ReadRegister(regFrfMid)
	acc.add(err)
	lsb, err := d.ReadRegister(regFrfLsb)
	acc.add(err)
	if err := acc.result("sx127x.Frequency"); err != nil {
		return 0, err
	}
	return frfHz(uint32(msb)<<16 | uint32(mid)<<8 | uint32(lsb)), nil
}

// SetPower sets the PA_BOOST output power in dBm, clamped to 2..20. Above
// 17 dBm the high-power DAC setting is used. The over-current limit is
// reprogrammed from the configured MaxCurrent.
func (d *Device) SetPower(db uint8) error {
	maxI := d.cfg.MaxCurrent
	if maxI == 0 {
		maxI = 150
	}
	if err := d.SetOCP(maxI); err != nil {
		return err
	}
	pa, dac := paSettings(db)
	var acc accum
	acc.add(d.WriteRegister(regPaDac, dac))
	acc.add(d.WriteRegister(regPaConfig, pa))
	return acc.result("sx127x.SetPower")
}

// SetOCP enables over-current protection at maxMilliA (<= 240 mA).
func (d *Device) SetOCP(maxMilliA uint8) error {
	trim, ok := ocpTrim(maxMilliA)
	if !ok {
		return invalid("sx127x.SetOCP", ErrOCPRange)
	}
	return errcode.Wrap(errcode.TransportTimeout, "sx127x.SetOCP",
		d.WriteRegister(regOcp, ocpOn|(trim&ocpTrimMask)))
}

// SetBandwidth updates RegModemConfig1[7:4].
func (d *Device) SetBandwidth(bw Bandwidth) error {
	if bw > Bandwidth500kHz {
		return invalid("sx127x.SetBandwidth", ErrBadBandwidth)
	}
	return errcode.Wrap(errcode.TransportTimeout, "sx127x.SetBandwidth",
		d.updateRegister(regModemConfig1, mc1BandwidthMask, byte(bw)<<4))
}

// SetSpreadingFactor updates RegModemConfig2[7:4].
func (d *Device) SetSpreadingFactor(sf SpreadingFactor) error {
	if sf < SF6 || sf > SF12 {
		return invalid("sx127x.SetSpreadingFactor", ErrBadSpreadingFactor)
	}
	return errcode.Wrap(errcode.TransportTimeout, "sx127x.SetSpreadingFactor",
		d.updateRegister(regModemConfig2, mc2SFMask, byte(sf)<<4))
}

// SetCodingRate updates RegModemConfig1[3:1].
func (d *Device) SetCodingRate(cr CodingRate) error {
	if cr < CodingRate4_5 || cr > CodingRate4_8 {
		return invalid("sx127x.SetCodingRate", ErrBadCodingRate)
	}
	return errcode.Wrap(errcode.TransportTimeout, "sx127x.SetCodingRate",
		d.updateRegister(regModemConfig1, mc1CodingMask, byte(cr)<<1))
}

// ExplicitHeader selects explicit header framing: preamble, header with its
// own CRC, payload and payload CRC all go on air.
func (d *Device) ExplicitHeader() error {
	return errcode.Wrap(errcode.TransportTimeout, "sx127x.ExplicitHeader",
		d.updateRegister(regModemConfig1, mc1ImplicitHdr, 0))
}

// LastPacketRSSI returns the RSSI of the last packet in dBm. freqHz selects
// the HF or LF port correction.
func (d *Device) LastPacketRSSI(freqHz uint32) (int16, error) {
	v, err := d.ReadRegister(regPktRssiValue)
	if err != nil {
		return 0, errcode.Wrap(errcode.TransportTimeout, "sx127x.LastPacketRSSI", err)
	}
	return int16(v) - rssiOffset(freqHz), nil
}

// LastPacketSNR returns the SNR of the last packet in quarter-dB steps.
func (d *Device) LastPacketSNR() (int8, error) {
	v, err := d.ReadRegister(regPktSnrValue)
	if err != nil {
		return 0, errcode.Wrap(errcode.TransportTimeout, "sx127x.LastPacketSNR", err)
	}
	return int8(v), nil
}

// Config returns the active configuration.
func (d *Device) Config() Config { return d.cfg }
