package bridge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/arcpipe/podule/internal/window"
)

func TestReadCycleDrivesWindowByte(t *testing.T) {
	win := window.New()
	win.SetByte(window.RegionBase+5, 0x42)

	bus := NewSimBus()
	bus.BeginRead(window.RegionBase + 5)

	step(bus, win, nil, nil, time.Second)

	assert.Equal(t, byte(0x42), bus.DrivenData())
	assert.False(t, bus.SampleSelect())
}

func TestWriteCycleLatchesIntoWritableRegion(t *testing.T) {
	win := window.New()
	bus := NewSimBus()
	bus.BeginWrite(window.RegionBase+3, 0x99)

	step(bus, win, nil, nil, time.Second)

	assert.Equal(t, byte(0x99), win.Byte(window.RegionBase+3))
}

func TestWriteCycleDiscardedBelowWritableFloor(t *testing.T) {
	win := window.New()
	bus := NewSimBus()
	bus.BeginWrite(0x10, 0x99)

	step(bus, win, nil, nil, time.Second)

	assert.Equal(t, byte(0), win.Byte(0x10))
}

func TestIdleWhenNeitherStrobeAsserted(t *testing.T) {
	win := window.New()
	bus := NewSimBus()

	step(bus, win, nil, nil, time.Second)

	assert.Equal(t, byte(0), bus.DrivenData())
}

func TestCountersTrackReadsAndWrites(t *testing.T) {
	win := window.New()
	var counters Counters

	bus := NewSimBus()
	bus.BeginRead(window.RegionBase + 1)
	step(bus, win, &counters, nil, time.Second)

	bus.BeginWrite(window.RegionBase+2, 0x7)
	step(bus, win, &counters, nil, time.Second)

	snap := counters.Snapshot()
	assert.Equal(t, uint32(1), snap.ReadCount)
	assert.Equal(t, uint32(1), snap.WriteCount)
	assert.Equal(t, uint32(window.RegionBase+2), snap.LastWriteAddr)
	assert.Equal(t, uint32(7), snap.LastWriteData)
}

func TestReadPriorityOverWriteOnAmbiguousSample(t *testing.T) {
	win := window.New()
	win.SetByte(9, 0xAB)

	bus := NewSimBus()
	bus.BeginRead(9)
	bus.wr = true // simulate an ambiguous sample where both strobes read asserted

	step(bus, win, nil, nil, time.Second)

	assert.Equal(t, byte(0xAB), bus.DrivenData())
}
