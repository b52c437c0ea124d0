package sx127x

import (
	"errors"
	"sync/atomic"
	"time"
)

var errFakeBus = errors.New("fake: exchange stalled")

type access struct {
	reg, val byte
	write    bool
}

// fakeChip emulates the SX127x register file behind the Transport contract:
// one address byte (bit 7 = write) then one data byte per transaction.
type fakeChip struct {
	regs [0x80]byte
	fifo [256]byte

	selected bool
	phase    int
	addr     byte
	write    bool
	failing  bool

	log  []access
	sent [][]byte

	txBusy    bool
	txPolls   int
	txLatency int  // IrqFlags reads before TxDone rises
	txNever   bool // chip never completes

	failReg map[byte]bool
	failAll bool
}

func newFakeChip() *fakeChip {
	f := &fakeChip{failReg: map[byte]bool{}}
	f.regs[regVersion] = chipVersion
	f.regs[regModemConfig1] = 0x72
	f.regs[regModemConfig2] = 0x70
	f.regs[regLna] = 0x20
	return f
}

func (f *fakeChip) Enable()  { f.selected = true; f.phase = 0 }
func (f *fakeChip) Disable() { f.selected = false }

func (f *fakeChip) Exchange(out byte) (byte, error) {
	if f.phase == 0 {
		f.addr = out & addrReadMask
		f.write = out&addrWriteBit != 0
		f.phase = 1
		f.failing = f.failAll || f.failReg[f.addr]
		if f.failing {
			return 0, errFakeBus
		}
		return 0, nil
	}
	f.phase = 0
	if f.failing {
		return 0, errFakeBus
	}
	if f.write {
		f.writeReg(f.addr, out)
		return 0, nil
	}
	return f.readReg(f.addr), nil
}

func (f *fakeChip) writeReg(reg, v byte) {
	f.log = append(f.log, access{reg: reg, val: v, write: true})
	switch reg {
	case regFifo:
		f.fifo[f.regs[regFifoAddrPtr]] = v
		f.regs[regFifoAddrPtr]++
	case regIrqFlags:
		f.regs[regIrqFlags] &^= v
	case regOpMode:
		f.regs[regOpMode] = v
		if v&0x07 == modeTx {
			n := int(f.regs[regPayloadLength])
			base := int(f.regs[regFifoTxBaseAddr])
			pkt := make([]byte, n)
			for i := range pkt {
				pkt[i] = f.fifo[byte(base+i)]
			}
			f.sent = append(f.sent, pkt)
			f.txBusy = true
			f.txPolls = 0
		}
	default:
		f.regs[reg] = v
	}
}

func (f *fakeChip) readReg(reg byte) byte {
	f.log = append(f.log, access{reg: reg})
	switch reg {
	case regFifo:
		v := f.fifo[f.regs[regFifoAddrPtr]]
		f.regs[regFifoAddrPtr]++
		return v
	case regIrqFlags:
		if f.txBusy && !f.txNever {
			f.txPolls++
			if f.txPolls > f.txLatency {
				f.regs[regIrqFlags] |= irqTxDone
				f.txBusy = false
			}
		}
	}
	return f.regs[reg]
}

// deliver places a packet in the FIFO as the modem would on RxDone.
func (f *fakeChip) deliver(pkt []byte, crcErr bool) {
	const at = 0x80
	for i, b := range pkt {
		f.fifo[byte(at+i)] = b
	}
	f.regs[regFifoRxCurrentAdr] = at
	f.regs[regRxNbBytes] = byte(len(pkt))
	f.regs[regIrqFlags] |= irqRxDone
	if crcErr {
		f.regs[regIrqFlags] |= irqPayloadCRCError
	}
}

func (f *fakeChip) writesTo(reg byte) []byte {
	var out []byte
	for _, a := range f.log {
		if a.write && a.reg == reg {
			out = append(out, a.val)
		}
	}
	return out
}

func (f *fakeChip) resetLog() { f.log = f.log[:0] }

// newTestDevice returns a configured device with sleeps elided.
func newTestDevice(f *fakeChip) *Device {
	d := New(f, nil)
	d.sleep = func(time.Duration) {}
	if err := d.Configure(DefaultConfig()); err != nil {
		panic(err)
	}
	f.resetLog()
	return d
}

// pending reports whether an interrupt is still waiting for PollReceive.
func pending(d *Device) bool { return atomic.LoadUint32(&d.rxDone) != 0 }
