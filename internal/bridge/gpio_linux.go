//go:build linux

package bridge

import (
	"github.com/warthog618/go-gpiocdev"
)

// GPIOCDevBus drives the bridge's Bus interface over real GPIO lines via
// the Linux gpio character device, using warthog618/go-gpiocdev. It groups
// the twelve address lines into the two pin fields the hardware layout describes
// (hardware-layout driven, not contiguous), and requests the eight data
// lines as a single bulk line set so they can be flipped between input
// and output as a unit across a read cycle.
//
// This is the deployment target for a Raspberry-Pi-class front end
// bit-banging the expansion bus connector; it is not the microcontroller's
// own on-chip GPIO block a RAM-pinned assembly loop would assume (see
// the package note above).
type GPIOCDevBus struct {
	chip string

	data     *gpiocdev.Lines // 8 bidirectional data lines
	dataOut  bool            // whether data lines are currently requested as outputs
	addrLow  *gpiocdev.Lines // A[4:2], 3 lines
	addrHigh *gpiocdev.Lines // A[13:5], 9 lines
	sel, rd, wr *gpiocdev.Line
}

// GPIOConfig names the GPIO chip and line offsets the bridge should bind
// to. Offsets are hardware-layout specific and supplied by the caller.
type GPIOConfig struct {
	Chip string

	DataOffsets     [8]int
	AddrLowOffsets  [3]int // A[4:2]
	AddrHighOffsets [9]int // A[13:5]
	SelOffset       int
	RDOffset        int
	WROffset        int
}

// NewGPIOCDevBus requests all the lines cfg names as inputs (data lines
// start as inputs; they are switched to outputs only for the duration of a
// read cycle's DriveData/ReleaseData pair).
func NewGPIOCDevBus(cfg GPIOConfig) (*GPIOCDevBus, error) {
	b := &GPIOCDevBus{chip: cfg.Chip}

	data, err := gpiocdev.RequestLines(cfg.Chip, cfg.DataOffsets[:], gpiocdev.AsInput)
	if err != nil {
		return nil, err
	}
	b.data = data

	addrLow, err := gpiocdev.RequestLines(cfg.Chip, cfg.AddrLowOffsets[:], gpiocdev.AsInput)
	if err != nil {
		b.Close()
		return nil, err
	}
	b.addrLow = addrLow

	addrHigh, err := gpiocdev.RequestLines(cfg.Chip, cfg.AddrHighOffsets[:], gpiocdev.AsInput)
	if err != nil {
		b.Close()
		return nil, err
	}
	b.addrHigh = addrHigh

	sel, err := gpiocdev.RequestLine(cfg.Chip, cfg.SelOffset, gpiocdev.AsInput)
	if err != nil {
		b.Close()
		return nil, err
	}
	b.sel = sel

	rd, err := gpiocdev.RequestLine(cfg.Chip, cfg.RDOffset, gpiocdev.AsInput)
	if err != nil {
		b.Close()
		return nil, err
	}
	b.rd = rd

	wr, err := gpiocdev.RequestLine(cfg.Chip, cfg.WROffset, gpiocdev.AsInput)
	if err != nil {
		b.Close()
		return nil, err
	}
	b.wr = wr

	return b, nil
}

// Close releases every line this bus holds, ignoring individual errors
// since this only runs during teardown or error unwind.
func (b *GPIOCDevBus) Close() {
	for _, l := range []interface{ Close() error }{b.data, b.addrLow, b.addrHigh, b.sel, b.rd, b.wr} {
		if l == nil {
			continue
		}
		_ = l.Close()
	}
}

func readLine(l *gpiocdev.Line) bool {
	v, err := l.Value()
	if err != nil {
		return false
	}
	return v == 0 // active low
}

func (b *GPIOCDevBus) SampleSelect() bool { return readLine(b.sel) }
func (b *GPIOCDevBus) SampleRead() bool   { return readLine(b.rd) }
func (b *GPIOCDevBus) SampleWrite() bool  { return readLine(b.wr) }

func (b *GPIOCDevBus) SampleAddress() uint16 {
	low := make([]int, len(b.addrLow.Offsets()))
	_ = b.addrLow.Values(low)
	high := make([]int, len(b.addrHigh.Offsets()))
	_ = b.addrHigh.Values(high)

	var a4_2, a13_5 uint16
	for i, v := range low {
		a4_2 |= uint16(v&1) << uint(i)
	}
	for i, v := range high {
		a13_5 |= uint16(v&1) << uint(i)
	}
	// A[2] is the low bit of the canonical 12-bit window address: the bus
	// presents byte-wide registers on word boundaries, so A[13:2] maps to
	// window address bits 11..0.
	return (a13_5 << 3) | a4_2
}

func (b *GPIOCDevBus) SampleData() byte {
	vals := make([]int, len(b.data.Offsets()))
	_ = b.data.Values(vals)
	var v byte
	for i, bit := range vals {
		v |= byte(bit&1) << uint(i)
	}
	return v
}

func (b *GPIOCDevBus) DriveData(data byte) {
	vals := make([]int, 8)
	for i := range vals {
		vals[i] = int((data >> uint(i)) & 1)
	}
	_ = b.data.Reconfigure(gpiocdev.AsOutput(vals...))
	b.dataOut = true
}

func (b *GPIOCDevBus) ReleaseData() {
	if !b.dataOut {
		return
	}
	_ = b.data.Reconfigure(gpiocdev.AsInput)
	b.dataOut = false
}

func (b *GPIOCDevBus) WaitSelectDeasserted() {
	for b.SampleSelect() {
	}
}

func (b *GPIOCDevBus) WaitWriteDeasserted() {
	for b.SampleWrite() {
	}
}
