package sx127x

import (
	"sync/atomic"

	"launchlink-go/errcode"
)

// Transmit sends one packet and blocks until the chip reports TxDone, then
// returns to continuous receive. The FIFO can only be filled in standby, so
// the driver moves there first. An empty payload is a no-op.
//
// With a zero TxTimeout the completion poll has no bound: a chip that never
// raises TxDone stalls the caller.
func (d *Device) Transmit(payload []byte) error {
	if len(payload) == 0 {
		return nil
	}
	if len(payload) > MaxTransmitLength {
		return invalid("sx127x.Transmit", ErrPacketTooLong)
	}

	var acc accum
	acc.add(d.setMode(modeStandby, StateStandby))
	acc.add(d.WriteRegister(regFifoAddrPtr, 0))
	for _, b := range payload {
		acc.add(d.WriteRegister(regFifo, b))
	}
	acc.add(d.WriteRegister(regPayloadLength, byte(len(payload))))
	acc.add(d.setMode(modeTx, StateTransmitting))

	deadline := d.now().Add(d.cfg.TxTimeout)
	flags, err := d.ReadRegister(regIrqFlags)
	acc.add(err)
	for flags&irqTxDone == 0 {
		if d.cfg.TxTimeout > 0 && d.now().After(deadline) {
			_ = d.ReceiveContinuous()
			return &errcode.E{C: errcode.Timeout, Op: "sx127x.Transmit", Msg: "no TxDone"}
		}
		flags, err = d.ReadRegister(regIrqFlags)
		acc.add(err)
	}
	acc.add(d.WriteRegister(regIrqFlags, flags))
	acc.add(d.setMode(modeRxContinuous, StateReceiving))
	return acc.result("sx127x.Transmit")
}

// HandleInterrupt is the DIO0 (RxDone) interrupt body. It only records the
// event; PollReceive does the SPI work from the main loop.
func (d *Device) HandleInterrupt() {
	atomic.StoreUint32(&d.rxDone, 1)
	select {
	case d.ready <- struct{}{}:
	default:
	}
}

// Ready is signalled after HandleInterrupt so a loop can wait instead of
// spinning on PollReceive.
func (d *Device) Ready() <-chan struct{} { return d.ready }

// SetReceiveHandler registers the packet callback. Call once at start-up.
func (d *Device) SetReceiveHandler(h ReceiveHandler) { d.handler = h }

// PollReceive services a pending receive interrupt. It never blocks; with
// nothing pending it returns nil at once.
//
// On a payload CRC error the handler is called with an empty payload and
// StatusCRCError and nothing is read from the FIFO. Otherwise the first
// FramingLength bytes of the packet are skipped and the rest is handed to
// the handler. The pending flag is cleared on every path.
func (d *Device) PollReceive() error {
	if atomic.LoadUint32(&d.rxDone) == 0 {
		return nil
	}
	defer atomic.StoreUint32(&d.rxDone, 0)

	var acc accum
	flags, err := d.ReadRegister(regIrqFlags)
	acc.add(err)
	acc.add(d.WriteRegister(regIrqFlags, flags))
	if err := acc.result("sx127x.PollReceive"); err != nil {
		return err
	}

	switch {
	case flags&irqPayloadCRCError != 0:
		if d.handler != nil {
			d.handler(nil, StatusCRCError)
		}
		return nil
	case flags&irqRxDone == 0:
		return nil
	}

	n, err := d.ReadRegister(regRxNbBytes)
	acc.add(err)
	cur, err := d.ReadRegister(regFifoRxCurrentAdr)
	acc.add(err)
	acc.add(d.WriteRegister(regFifoAddrPtr, cur))

	skip := FramingLength
	if int(n) < skip {
		skip = int(n)
	}
	for i := 0; i < skip; i++ {
		_, err := d.ReadRegister(regFifo)
		acc.add(err)
	}
	body := d.rxBuf[:int(n)-skip]
	for i := range body {
		body[i], err = d.ReadRegister(regFifo)
		acc.add(err)
	}
	if err := acc.result("sx127x.PollReceive"); err != nil {
		return err
	}
	if d.handler != nil {
		d.handler(body, StatusOK)
	}
	return nil
}
