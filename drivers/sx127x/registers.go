package sx127x

// Register addresses (LoRa page).
const (
	regFifo             = 0x00
	regOpMode           = 0x01
	regFrfMsb           = 0x06
	regFrfMid           = 0x07
	regFrfLsb           = 0x08
	regPaConfig         = 0x09
	regOcp              = 0x0B
	regLna              = 0x0C
	regFifoAddrPtr      = 0x0D
	regFifoTxBaseAddr   = 0x0E
	regFifoRxBaseAddr   = 0x0F
	regFifoRxCurrentAdr = 0x10
	regIrqFlags         = 0x12
	regRxNbBytes        = 0x13
	regPktSnrValue      = 0x19
	regPktRssiValue     = 0x1A
	regModemConfig1     = 0x1D
	regModemConfig2     = 0x1E
	regPayloadLength    = 0x22
	regModemConfig3     = 0x26
	regDioMapping1      = 0x40
	regVersion          = 0x42
	regPaDac            = 0x4D
)

// Access direction is carried in bit 7 of the address byte.
const (
	addrReadMask = 0x7F
	addrWriteBit = 0x80
)

// RegOpMode: 7 LongRangeMode, 2-0 Mode.
const (
	modeLongRange    = 0x80
	modeSleep        = 0x00
	modeStandby      = 0x01
	modeTx           = 0x03
	modeRxContinuous = 0x05
)

// RegIrqFlags bits (write 1 to clear).
const (
	irqTxDone          = 0x08
	irqPayloadCRCError = 0x20
	irqRxDone          = 0x40
)

// RegPaConfig: 7 PaSelect, 6-4 MaxPower, 3-0 OutputPower.
const paBoost = 0x80

// RegPaDac: 7-3 reserved (0x10 must be retained), 2-0 PaDac.
const (
	paDacDefault = 0x10<<3 | 0x04
	paDacHighPwr = 0x10<<3 | 0x07
)

// RegOcp: 5 OcpOn, 4-0 OcpTrim.
const (
	ocpOn       = 0x20
	ocpTrimMask = 0x1F
)

// RegLna: 1-0 LnaBoostHf.
const lnaBoostHf = 0x03

// RegModemConfig1: 7-4 Bw, 3-1 CodingRate, 0 ImplicitHeaderModeOn.
// RegModemConfig2: 7-4 SpreadingFactor, 3-0 other.
// RegModemConfig3: 3 LowDataRateOptimize, 2 AgcAutoOn.
const (
	mc1BandwidthMask = 0xF0
	mc1CodingMask    = 0x0E
	mc1ImplicitHdr   = 0x01
	mc2SFMask        = 0xF0
	mc3AgcAutoOn     = 0x04
)

// DIO0 mapped to RxDone.
const dioMapRxDone = 0x00

// Expected silicon revision in RegVersion.
const chipVersion = 0x12

// Reference oscillator and synthesiser resolution (Fstep = FXOSC / 2^19).
const (
	fxosc    = 32_000_000
	frfShift = 19
)

// RSSI correction: HF port above the mid-band threshold, LF port below.
const (
	midBandThreshold = 525_000_000
	rssiOffsetHF     = 157
	rssiOffsetLF     = 164
)

// MaxPacketLength is the FIFO capacity available to a single packet.
const MaxPacketLength = 255

// MaxTransmitLength is the largest payload Transmit accepts.
const MaxTransmitLength = 251

// FramingLength is the number of leading bytes skipped on receive.
const FramingLength = 4
