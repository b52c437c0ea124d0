package sx127x

import "launchlink-go/x/mathx"

// Frequency synthesiser mapping (datasheet §4.1.4):
//
//	Frf = FXOSC * code / 2^19
//
// inverse, rounded to the nearest step:
//
//	code = round(Frf * 2^19 / FXOSC)
func frfCode(hz uint32) uint32 {
	return uint32(mathx.RoundDiv(uint64(hz)<<frfShift, uint64(fxosc)))
}

func frfHz(code uint32) uint32 {
	return uint32((uint64(code&0xFFFFFF)*fxosc + 1<<(frfShift-1)) >> frfShift)
}

// FrequencyStep is the synthesiser resolution in Hz (about 61 Hz).
const FrequencyStep = float64(fxosc) / (1 << frfShift)

// Over-current protection trim (datasheet RegOcp):
//
//	Imax = 45 + 5*trim        trim <= 15  (Imax <= 120 mA)
//	Imax = -30 + 10*trim      trim <= 27  (Imax <= 240 mA)
func ocpTrim(maxMilliA uint8) (uint8, bool) {
	switch {
	case maxMilliA > 240:
		return 0, false
	case maxMilliA <= 45:
		return 0, true
	case maxMilliA <= 120:
		return (maxMilliA - 45) / 5, true
	default:
		return uint8((uint16(maxMilliA) + 30) / 10), true
	}
}

// Output power (RegPaConfig, PA_BOOST pin):
//
//	Pout = 2 + OutputPower            standard path, 2..17 dBm
//	Pout = 5 + OutputPower            high-power path (PaDac 0x87), 18..20 dBm
func paSettings(db uint8) (paConfig, paDac uint8) {
	db = mathx.Clamp(db, MinTxPower, MaxTxPower)
	if db > 17 {
		return paBoost | (db - 2 - 3), paDacHighPwr
	}
	return paBoost | (db - 2), paDacDefault
}

func rssiOffset(freqHz uint32) int16 {
	if freqHz < midBandThreshold {
		return rssiOffsetLF
	}
	return rssiOffsetHF
}

var bandwidthHz = [...]uint32{7800, 10400, 15600, 20800, 31250, 41700, 62500, 125000, 250000, 500000}

// BandwidthFromHz maps a nominal bandwidth to its code. Only the listed
// datasheet values are accepted.
func BandwidthFromHz(hz uint32) (Bandwidth, bool) {
	for i, v := range bandwidthHz {
		if v == hz {
			return Bandwidth(i), true
		}
	}
	return 0, false
}

func (b Bandwidth) Hz() uint32 {
	if int(b) >= len(bandwidthHz) {
		return 0
	}
	return bandwidthHz[b]
}

// CodingRateFromDenominator maps 5..8 (for 4/5..4/8) to its code.
func CodingRateFromDenominator(d uint8) (CodingRate, bool) {
	if d < 5 || d > 8 {
		return 0, false
	}
	return CodingRate(d - 4), true
}
