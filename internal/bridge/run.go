package bridge

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultMaxReadLatency is the hardware's read-strobe-to-data-valid
// timing contract. It cannot be enforced by a portable Go
// program on a general-purpose OS scheduler; Run uses it only to flag
// (via Warn-level logging) samples that would have violated it, as a
// simulation/test aid documenting the contract a real RAM-pinned
// assembly loop must meet.
const DefaultMaxReadLatency = 200 * time.Nanosecond

// writableFloor is the first address the external side may write to;
// below it is the read-only loader/ROM-window region.
const writableFloor = 2048

// Run executes the bridge's cycle-decode state machine until ctx is
// cancelled. Cancellation is only observed at IDLE, between cycles: a
// cycle in progress (a strobe that never deasserts) blocks exactly as the
// real hardware contract requires (no timeout on a stuck strobe).
func Run(ctx context.Context, bus Bus, win Window, counters *Counters, logger *log.Logger, maxReadLatency time.Duration) {
	if logger == nil {
		logger = log.Default()
	}
	if maxReadLatency <= 0 {
		maxReadLatency = DefaultMaxReadLatency
	}
	for {
		if ctx.Err() != nil {
			return
		}
		step(bus, win, counters, logger, maxReadLatency)
	}
}

// step runs exactly one IDLE->{READ,WRITE}->IDLE traversal, resolving an
// ambiguous sample (both /RD and /WR asserted, which a correctly wired bus
// never presents) with priority READ cycle -> WRITE cycle -> idle.
func step(bus Bus, win Window, counters *Counters, logger *log.Logger, maxReadLatency time.Duration) {
	selAsserted := bus.SampleSelect()
	switch {
	case selAsserted && bus.SampleRead():
		doRead(bus, win, counters, logger, maxReadLatency)
	case selAsserted && bus.SampleWrite():
		doWrite(bus, win, counters)
	}
}

func doRead(bus Bus, win Window, counters *Counters, logger *log.Logger, maxReadLatency time.Duration) {
	start := time.Now()

	addr := bus.SampleAddress()
	data := win.Byte(addr)
	bus.DriveData(data)

	elapsed := time.Since(start)
	if elapsed > maxReadLatency && logger != nil {
		logger.Warn("read cycle exceeded timing contract", "addr", addr, "elapsed", elapsed, "max", maxReadLatency)
	}

	counters.recordRead(addr, data)

	bus.WaitSelectDeasserted()
	bus.ReleaseData()
}

func doWrite(bus Bus, win Window, counters *Counters) {
	addr := bus.SampleAddress()
	data := bus.SampleData()

	if int(addr) >= writableFloor {
		win.SetByteIfWritable(addr, data)
	}
	counters.recordWrite(addr, data)

	bus.WaitWriteDeasserted()
}
