// Package sx127x is a small TinyGo driver for the Semtech SX1276/77/78/79
// LoRa transceiver, reduced to what a point-to-point command link needs:
// bring-up, modem configuration, blocking transmit and interrupt-flagged
// receive.
//
// Register access uses the chip's SPI convention: bit 7 of the address byte
// is 0 for a read and 1 for a write, followed by one data byte.
//
// Failures of individual register accesses inside one call are folded into a
// single error for that call; callers learn that some access failed, not
// which one.
package sx127x

import (
	"errors"
	"time"

	"launchlink-go/errcode"
)

// Bandwidth codes for RegModemConfig1[7:4].
type Bandwidth uint8

const (
	Bandwidth7_8kHz Bandwidth = iota
	Bandwidth10_4kHz
	Bandwidth15_6kHz
	Bandwidth20_8kHz
	Bandwidth31_25kHz
	Bandwidth41_7kHz
	Bandwidth62_5kHz
	Bandwidth125kHz
	Bandwidth250kHz
	Bandwidth500kHz
)

// SpreadingFactor is the chips-per-symbol exponent, 6..12.
type SpreadingFactor uint8

const (
	SF6  SpreadingFactor = 6
	SF7  SpreadingFactor = 7
	SF8  SpreadingFactor = 8
	SF9  SpreadingFactor = 9
	SF10 SpreadingFactor = 10
	SF11 SpreadingFactor = 11
	SF12 SpreadingFactor = 12
)

// CodingRate codes for RegModemConfig1[3:1].
type CodingRate uint8

const (
	CodingRate4_5 CodingRate = 1
	CodingRate4_6 CodingRate = 2
	CodingRate4_7 CodingRate = 3
	CodingRate4_8 CodingRate = 4
)

// Transmit power limits on the PA_BOOST pin, in dBm.
const (
	MinTxPower = 2
	MaxTxPower = 20
)

// State is the operating mode last requested by the driver.
type State uint8

const (
	StateSleep State = iota
	StateStandby
	StateTransmitting
	StateReceiving
)

func (s State) String() string {
	switch s {
	case StateSleep:
		return "sleep"
	case StateStandby:
		return "standby"
	case StateTransmitting:
		return "transmitting"
	case StateReceiving:
		return "receiving"
	default:
		return "unknown"
	}
}

// Config is applied once by Configure. Zero fields take defaults, except
// Bandwidth where zero is the 7.8 kHz code; start from DefaultConfig.
type Config struct {
	Frequency       uint32 // Hz, default 433 MHz
	Bandwidth       Bandwidth
	SpreadingFactor SpreadingFactor // default SF7
	CodingRate      CodingRate      // default 4/5
	TxPower         uint8           // dBm, clamped to 2..20, default 20
	MaxCurrent      uint8           // OCP trip in mA (<= 240), default 150

	// TxTimeout bounds the wait for TxDone. Zero waits for as long as the
	// chip takes, which is the reference behaviour.
	TxTimeout time.Duration

	// ResetHold and ResetSettle time the reset pulse; Settle is the pause
	// in standby before continuous receive starts.
	ResetHold   time.Duration // default 1 ms
	ResetSettle time.Duration // default 10 ms
	Settle      time.Duration // default 50 ms
}

// DefaultConfig is 433 MHz, 125 kHz, SF7, 4/5 at 20 dBm with a 150 mA limit.
func DefaultConfig() Config {
	return Config{Bandwidth: Bandwidth125kHz}.withDefaults()
}

func (c Config) withDefaults() Config {
	if c.Frequency == 0 {
		c.Frequency = 433_000_000
	}
	if c.SpreadingFactor == 0 {
		c.SpreadingFactor = SF7
	}
	if c.CodingRate == 0 {
		c.CodingRate = CodingRate4_5
	}
	if c.TxPower == 0 {
		c.TxPower = MaxTxPower
	}
	if c.MaxCurrent == 0 {
		c.MaxCurrent = 150
	}
	if c.ResetHold <= 0 {
		c.ResetHold = time.Millisecond
	}
	if c.ResetSettle <= 0 {
		c.ResetSettle = 10 * time.Millisecond
	}
	if c.Settle <= 0 {
		c.Settle = 50 * time.Millisecond
	}
	return c
}

// Status accompanies each received payload. The values mirror the IRQ bits.
type Status uint8

const (
	StatusOK       Status = irqRxDone
	StatusCRCError Status = irqPayloadCRCError
)

// ReceiveHandler gets each received payload. The slice aliases the driver's
// receive buffer and is only valid until the handler returns.
type ReceiveHandler func(payload []byte, st Status)

// Errors returned by the driver.
var (
	ErrBadBandwidth       = errors.New("sx127x: bandwidth out of range")
	ErrBadSpreadingFactor = errors.New("sx127x: spreading factor out of range")
	ErrBadCodingRate      = errors.New("sx127x: coding rate out of range")
	ErrOCPRange           = errors.New("sx127x: over-current limit above 240 mA")
	ErrPacketTooLong      = errors.New("sx127x: packet exceeds FIFO")
)

// Device is one transceiver behind a Transport.
type Device struct {
	tr    Transport
	reset PinOutput
	sleep func(time.Duration)
	now   func() time.Time

	cfg   Config
	state State

	// Receive handshake. Set by HandleInterrupt after the chip has latched a
	// packet, cleared by PollReceive after the buffer has been handed out.
	rxDone  uint32
	ready   chan struct{}
	handler ReceiveHandler
	rxBuf   [MaxPacketLength]byte
}

// New creates a driver. It does not touch the chip; call Configure.
// reset may be nil when the reset line is not wired.
func New(tr Transport, reset PinOutput) *Device {
	return &Device{
		tr:    tr,
		reset: reset,
		sleep: time.Sleep,
		now:   time.Now,
		ready: make(chan struct{}, 1),
	}
}

// Configure resets and verifies the chip, applies cfg, and leaves it in
// continuous receive. A WrongDevice error means the identity check failed;
// any other error means some register access failed. Either way the radio
// must not be trusted.
func (d *Device) Configure(cfg Config) error {
	cfg = cfg.withDefaults()
	d.cfg = cfg

	if d.reset != nil {
		d.reset(false)
		d.sleep(cfg.ResetHold)
		d.reset(true)
		d.sleep(cfg.ResetSettle)
	}

	ver, err := d.ReadRegister(regVersion)
	if err != nil {
		return errcode.Wrap(errcode.TransportTimeout, "sx127x.Configure", err)
	}
	if ver != chipVersion {
		return &errcode.E{C: errcode.WrongDevice, Op: "sx127x.Configure"}
	}

	var acc accum
	acc.add(d.WriteRegister(regOpMode, modeSleep))
	acc.add(d.setMode(modeSleep, StateSleep))
	acc.add(d.WriteRegister(regFifoTxBaseAddr, 0))
	acc.add(d.WriteRegister(regFifoRxBaseAddr, 0))
	acc.add(d.updateRegister(regLna, 0, lnaBoostHf))
	acc.add(d.WriteRegister(regModemConfig3, mc3AgcAutoOn))
	acc.add(d.WriteRegister(regDioMapping1, dioMapRxDone))
	if err := acc.result("sx127x.Configure"); err != nil {
		return err
	}

	if err := d.SetFrequency(cfg.Frequency); err != nil {
		return err
	}
	if err := d.SetBandwidth(cfg.Bandwidth); err != nil {
		return err
	}
	if err := d.SetSpreadingFactor(cfg.SpreadingFactor); err != nil {
		return err
	}
	if err := d.SetCodingRate(cfg.CodingRate); err != nil {
		return err
	}
	if err := d.SetPower(cfg.TxPower); err != nil {
		return err
	}
	if err := d.ExplicitHeader(); err != nil {
		return err
	}
	if err := d.Standby(); err != nil {
		return err
	}
	d.sleep(cfg.Settle)
	return d.ReceiveContinuous()
}

// State returns the mode last requested by the driver.
func (d *Device) State() State { return d.state }

// ---------------- Register access ----------------

// ReadRegister reads one register.
func (d *Device) ReadRegister(reg byte) (byte, error) {
	var acc accum
	d.tr.Enable()
	_, err := d.tr.Exchange(reg & addrReadMask)
	acc.add(err)
	v, err := d.tr.Exchange(0x00)
	acc.add(err)
	d.tr.Disable()
	return v, acc.err
}

// WriteRegister writes one register.
func (d *Device) WriteRegister(reg, val byte) error {
	var acc accum
	d.tr.Enable()
	_, err := d.tr.Exchange(reg | addrWriteBit)
	acc.add(err)
	_, err = d.tr.Exchange(val)
	acc.add(err)
	d.tr.Disable()
	return acc.err
}

// updateRegister is the read-modify-write helper: bits in clear are
// replaced by set, everything else is preserved.
func (d *Device) updateRegister(reg, clear, set byte) error {
	var acc accum
	cur, err := d.ReadRegister(reg)
	acc.add(err)
	acc.add(d.WriteRegister(reg, (cur&^clear)|set))
	return acc.err
}

// accum folds register access failures into one result, keeping only the
// first cause.
type accum struct{ err error }

func (a *accum) add(err error) {
	if a.err == nil && err != nil {
		a.err = err
	}
}

func (a *accum) result(op string) error {
	return errcode.Wrap(errcode.TransportTimeout, op, a.err)
}

// ---------------- Modes ----------------

func (d *Device) setMode(mode byte, st State) error {
	err := d.WriteRegister(regOpMode, modeLongRange|mode)
	d.state = st
	return err
}

// Standby puts the chip in LoRa standby.
func (d *Device) Standby() error {
	return errcode.Wrap(errcode.TransportTimeout, "sx127x.Standby", d.setMode(modeStandby, StateStandby))
}

// ReceiveContinuous starts continuous receive.
func (d *Device) ReceiveContinuous() error {
	return errcode.Wrap(errcode.TransportTimeout, "sx127x.ReceiveContinuous", d.setMode(modeRxContinuous, StateReceiving))
}
