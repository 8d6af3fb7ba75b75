package pipe

import "github.com/arcpipe/podule/internal/window"

// serviceTX continues an in-flight transmission, or starts a new one from
// the descriptor at TX_TAIL if it is READY. Exactly one TX is ever in
// flight; txOngoing is the guard.
func (e *Engine) serviceTX() {
	if e.txOngoing {
		e.continueTX()
		return
	}

	tail := e.win.TXTail()
	d := e.win.TXDescriptor(tail)

	if !d.Ready {
		return
	}

	if !e.ep.Connected() {
		// Drain-on-disconnect: consume the ready descriptor without
		// transmitting, so a disconnected host never backs up the ring.
		e.txDone()
		return
	}

	e.startTX(tail, d)
}

func (e *Engine) startTX(tail int, d window.Descriptor) {
	if !d.Valid() {
		e.log.Error("tx descriptor overflow, dropping", "cid", d.CID, "addr", d.Addr, "size", d.Size)
		e.txDone()
		return
	}

	e.txBuf[0] = d.CID
	e.txBuf[1] = byte(d.Size)
	e.txBuf[2] = byte(d.Size >> 8)
	copy(e.txBuf[pktHeaderSize:], e.win.TXPayload(d.Addr, d.Size))

	e.txTotal = pktHeaderSize + int(d.Size)
	e.txPos = 0

	n, err := e.ep.Write(e.txBuf[:e.txTotal])
	if err != nil {
		e.log.Error("tx write error", "err", err)
	}
	_ = e.ep.Flush()

	if n == e.txTotal {
		e.txDone()
		return
	}

	e.txPos = n
	e.txOngoing = true
}

func (e *Engine) continueTX() {
	if !e.ep.Connected() {
		// USB disconnected mid-TX: abandon the in-flight packet. The
		// descriptor remains READY and is retried, or drained on the
		// next poll's drain-on-disconnect check.
		e.txOngoing = false
		return
	}

	n, err := e.ep.Write(e.txBuf[e.txPos:e.txTotal])
	if err != nil {
		e.log.Error("tx write error", "err", err)
	}
	_ = e.ep.Flush()

	e.txPos += n
	if e.txPos >= e.txTotal {
		e.txDone()
	}
}

// txDone clears the READY bit of the TX descriptor at TX_TAIL and advances
// the tail index, and clears the in-flight guard.
func (e *Engine) txDone() {
	tail := e.win.TXTail()
	e.win.ClearTXDescriptorReady(tail)
	e.win.SetTXTail((tail + 1) & 7)
	e.txOngoing = false
}
