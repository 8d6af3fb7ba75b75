package pipe

import "github.com/arcpipe/podule/internal/window"

// serviceRX invokes RX assembly when there is new data to read, a
// previously-assembled packet is still waiting for ring space, or a
// complete packet is already sitting in the assembly buffer behind a
// just-published one.
func (e *Engine) serviceRX() {
	bytesReady := e.ep.Connected() && e.ep.Available() > 0
	if !bytesReady && !e.rxPacketPending && e.rxPos < pktHeaderSize {
		return
	}
	e.assembleRX()
}

// assembleRX implements the receive path: accumulate bytes into the RX
// buffer, decode the 3-byte header once enough bytes have arrived, and
// publish each completed packet to the ring. The framing loop re-enters
// after every published packet, so two frames concatenated in one CDC
// read both get delivered (ring space permitting) without waiting for
// more bytes to arrive.
func (e *Engine) assembleRX() {
	if !e.rxPacketPending {
		n, err := e.ep.Read(e.rxBuf[e.rxPos:])
		if err != nil {
			e.log.Error("rx read error", "err", err)
			return
		}
		e.rxPos += n
	}

	for {
		if e.rxDiscard > 0 {
			n := e.rxPos
			if n > e.rxDiscard {
				n = e.rxDiscard
			}
			copy(e.rxBuf[:], e.rxBuf[n:e.rxPos])
			e.rxPos -= n
			e.rxDiscard -= n
			if e.rxDiscard > 0 {
				return
			}
		}

		if e.rxPos < pktHeaderSize {
			return
		}

		size := int(e.rxBuf[1]) | int(e.rxBuf[2])<<8
		if size > window.PayloadSize {
			// An oversize packet can never fit the assembly buffer, so
			// its bytes are consumed and thrown away as they stream in.
			e.log.Error("oversize inbound packet, dropping", "cid", e.rxBuf[0], "size", size)
			e.rxDiscard = pktHeaderSize + size
			continue
		}

		e.rxTotal = pktHeaderSize + size
		if e.rxPos < e.rxTotal {
			return
		}

		cid := e.rxBuf[0]
		payload := e.rxBuf[pktHeaderSize:e.rxTotal]

		if !e.publishRX(cid, payload) {
			// Ring-full backpressure: stop consuming CDC bytes until the
			// external consumer drains the outstanding RX descriptor.
			e.rxPacketPending = true
			return
		}
		e.rxPacketPending = false

		excess := e.rxPos - e.rxTotal
		if excess > 0 {
			copy(e.rxBuf[:excess], e.rxBuf[e.rxTotal:e.rxPos])
		}
		e.rxPos = excess
	}
}

// publishRX attempts to place cid/payload on the RX ring, reporting false
// when the ring is full and the caller must retry without consuming
// further CDC bytes. A new descriptor may only be published once the most
// recently published one has been consumed: the payload region is shared
// across all eight slots, so a single outstanding buffer is the invariant
// that keeps payloads from colliding.
func (e *Engine) publishRX(cid byte, payload []byte) bool {
	last := e.win.RXDescriptor(e.rxLastDescr)
	if last.Ready {
		return false
	}

	copy(e.win.RXPayloadRegion(), payload)

	head := e.win.RXHead()
	e.win.SetRXDescriptor(head, window.Descriptor{
		Ready: true,
		CID:   cid,
		Size:  uint16(len(payload)),
		Addr:  0,
	})
	e.win.SetRXHead((head + 1) & 7)
	e.rxLastDescr = head
	return true
}
