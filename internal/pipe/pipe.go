// Package pipe implements the packet-pipe engine: the mailbox-ring driven
// bridge between the Archimedes' byte-wide descriptor writes/reads and the
// microcontroller's USB CDC endpoint. It runs on the firmware's main core,
// cooperatively, invoked once per poll from a top-level loop that also
// services the USB device stack.
package pipe

import (
	"github.com/charmbracelet/log"

	"github.com/arcpipe/podule/internal/cdc"
	"github.com/arcpipe/podule/internal/romimage"
	"github.com/arcpipe/podule/internal/window"
)

const pktHeaderSize = 3

// Engine owns the pipe's private state: the TX/RX assembly
// buffers and their bookkeeping, and the last-observed RESET generation.
// All of it is owned by the main core; nothing here is touched concurrently
// from the bridge core.
type Engine struct {
	win *window.Window
	rom *romimage.Image
	ep  cdc.Endpoint
	log *log.Logger

	resetGeneration byte

	txOngoing bool
	txBuf     [window.PayloadSize + pktHeaderSize]byte
	txPos     int
	txTotal   int

	rxBuf           [window.PayloadSize + pktHeaderSize]byte
	rxPos           int
	rxTotal         int
	rxDiscard       int
	rxPacketPending bool
	rxLastDescr     int
}

// New builds a pipe engine over the given shared window, ROM image, and USB
// CDC endpoint, and performs the power-up reset of the rings.
func New(win *window.Window, rom *romimage.Image, ep cdc.Endpoint, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	e := &Engine{win: win, rom: rom, ep: ep, log: logger}
	e.reset()
	return e
}

// reset zeroes all 8 TX and RX descriptors, resets TX_TAIL/RX_HEAD to 0,
// and clears private state. Run on power-up and on every observed
// increment of the RESET mailbox.
func (e *Engine) reset() {
	for slot := 0; slot < window.DescriptorSlots; slot++ {
		e.win.SetTXDescriptor(slot, window.Descriptor{})
		e.win.SetRXDescriptor(slot, window.Descriptor{})
	}
	e.win.SetTXTail(0)
	e.win.SetRXHead(0)

	e.resetGeneration = e.win.ResetGeneration()
	e.txOngoing = false
	e.txPos = 0
	e.txTotal = 0
	e.rxPos = 0
	e.rxTotal = 0
	e.rxDiscard = 0
	e.rxPacketPending = false
	e.rxLastDescr = 0
}

// Poll runs one iteration of the pipe engine's per-poll work: ROM page
// scan, reset scan, RX service, TX service, in that order.
func (e *Engine) Poll() {
	e.scanPageRequest()
	e.scanReset()
	e.serviceRX()
	e.serviceTX()
}

func (e *Engine) scanPageRequest() {
	page, requested := e.win.PageRequest()
	if !requested {
		return
	}
	defer e.win.ClearPageRequest()

	data, ok := e.rom.Page(page)
	if !ok {
		e.log.Error("rom page request out of range", "page", page)
		return
	}
	e.win.SetROMWindow(data[:])
}

func (e *Engine) scanReset() {
	gen := e.win.ResetGeneration()
	if gen == e.resetGeneration {
		return
	}
	e.reset()
}
