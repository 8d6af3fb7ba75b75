// Package bridge implements the bus-cycle bridge: the state machine that
// services the Archimedes' asynchronous 8-bit read/write cycles against
// the shared 4 KiB window. The real hardware requires this to run on a
// dedicated core with interrupts disabled and code pinned in on-chip RAM
// to meet a ~200ns read-strobe-to-data-valid deadline; that platform
// pinning is outside what portable Go can express. This package
// specifies and tests the decode/dispatch logic the real loop must
// execute, against an abstract Bus so the same logic runs over real GPIO
// lines (GPIOCDevBus) or a simulated bus (SimBus) used by tests and the
// arcpipe-fwsim tool.
package bridge

// Bus abstracts the eight data lines, /SEL, /RD, /WR strobes, and twelve
// address lines of the expansion bus, decoupling the cycle-decode state machine
// from the specific GPIO backend driving them.
type Bus interface {
	// SampleSelect, SampleRead, SampleWrite report the current (active-low
	// semantics already resolved to booleans: true means asserted) state
	// of /SEL, /RD, /WR.
	SampleSelect() bool
	SampleRead() bool
	SampleWrite() bool

	// SampleAddress returns the reconstructed 12-bit address, masking and
	// shifting the two address pin groups (A[4:2] and A[13:5]) into a
	// canonical value.
	SampleAddress() uint16

	// SampleData returns the low 8 bits currently on the data lines,
	// valid during a write cycle.
	SampleData() byte

	// DriveData puts the bridge's data lines into output mode and drives
	// b onto them, for a read cycle.
	DriveData(b byte)

	// ReleaseData tri-states the data lines and drives zero, at the end
	// of a read cycle.
	ReleaseData()

	// WaitSelectDeasserted blocks until /SEL returns high, ending the
	// current cycle.
	WaitSelectDeasserted()

	// WaitWriteDeasserted blocks until /WR returns high, ending the
	// current write cycle.
	WaitWriteDeasserted()
}

// Window is the minimal view of the shared memory window the bridge needs:
// a plain byte load for reads, and a conditional store for writes (below
// 2048 the window's writable-range policy silently discards the write).
type Window interface {
	Byte(addr uint16) byte
	SetByteIfWritable(addr uint16, data byte) bool
}
