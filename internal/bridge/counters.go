package bridge

import "sync/atomic"

// Counters holds the six monotonic diagnostic counters: last address and
// data seen on each of the read and write paths, plus cycle counts. They
// are non-functional; passing a nil *Counters to Run compiles them out.
// They are atomics rather than plain ints because a diagnostic reader (a
// debug command, a test assertion) may observe them from a different
// goroutine than Run's.
type Counters struct {
	lastReadAddr  atomic.Uint32
	lastReadData  atomic.Uint32
	readCount     atomic.Uint32
	lastWriteAddr atomic.Uint32
	lastWriteData atomic.Uint32
	writeCount    atomic.Uint32
}

func (c *Counters) recordRead(addr uint16, data byte) {
	if c == nil {
		return
	}
	c.lastReadAddr.Store(uint32(addr))
	c.lastReadData.Store(uint32(data))
	c.readCount.Add(1)
}

func (c *Counters) recordWrite(addr uint16, data byte) {
	if c == nil {
		return
	}
	c.lastWriteAddr.Store(uint32(addr))
	c.lastWriteData.Store(uint32(data))
	c.writeCount.Add(1)
}

// Snapshot is a point-in-time copy of the six counters, safe to log or compare in tests.
type Snapshot struct {
	LastReadAddr  uint32
	LastReadData  uint32
	ReadCount     uint32
	LastWriteAddr uint32
	LastWriteData uint32
	WriteCount    uint32
}

// Snapshot reads all six counters. A nil *Counters (the "compiled out"
// case) yields a zero Snapshot.
func (c *Counters) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	return Snapshot{
		LastReadAddr:  c.lastReadAddr.Load(),
		LastReadData:  c.lastReadData.Load(),
		ReadCount:     c.readCount.Load(),
		LastWriteAddr: c.lastWriteAddr.Load(),
		LastWriteData: c.lastWriteData.Load(),
		WriteCount:    c.writeCount.Load(),
	}
}
