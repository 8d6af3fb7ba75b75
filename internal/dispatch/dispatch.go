// Package dispatch implements the host-side packet dispatcher: a
// non-blocking byte-stream reframer that decodes packets off the serial
// line and routes them by channel identifier to handlers.
package dispatch

import (
	"github.com/charmbracelet/log"

	"github.com/arcpipe/podule/internal/wire"
)

// rxBufSize is the width of the inbound framing buffer.
const rxBufSize = 4096

// Channel handles packets for one channel identifier. reply, when called,
// enqueues an outbound packet on the same CID for transmission back to the
// podule.
type Channel interface {
	HandlePacket(cid uint8, payload []byte, reply func(payload []byte)) error
}

// ChannelFunc adapts a plain function to the Channel interface.
type ChannelFunc func(cid uint8, payload []byte, reply func(payload []byte)) error

func (f ChannelFunc) HandlePacket(cid uint8, payload []byte, reply func(payload []byte)) error {
	return f(cid, payload, reply)
}

// ignoreChannel implements CID 0 (IGNORE): drop the packet.
var ignoreChannel = ChannelFunc(func(uint8, []byte, func([]byte)) error { return nil })

// Server owns the dispatcher's framing state and channel registry. It is
// not safe for concurrent use; the host side is modeled as
// single-threaded, poll-driven.
type Server struct {
	log *log.Logger

	rxBuf [rxBufSize]byte
	rxPos int

	channels map[uint8]Channel

	// outbound is the bounded outgoing packet queue; enqueuing past
	// capacity drops the newest packet rather than wedging the
	// single-threaded reframe loop.
	outbound chan []byte

	txCur []byte // nil when idle
	txPos int

	trace func(cid uint8, payload []byte)
}

// Option configures a Server at construction time.
type Option func(*Server)

// WithLogger overrides the default logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithQueueCapacity overrides the default outbound queue capacity (8,
// matching the podule's own 8-slot descriptor rings).
func WithQueueCapacity(n int) Option {
	return func(s *Server) { s.outbound = make(chan []byte, n) }
}

// WithPacketTrace installs fn as a tap called with every inbound packet
// before it is dispatched to its handler.
func WithPacketTrace(fn func(cid uint8, payload []byte)) Option {
	return func(s *Server) { s.trace = fn }
}

// New builds a dispatcher with CID 0 pre-registered as IGNORE.
func New(opts ...Option) *Server {
	s := &Server{
		channels: map[uint8]Channel{0: ignoreChannel},
		outbound: make(chan []byte, 8),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = log.Default()
	}
	return s
}

// Register installs handler for cid. Registering over CID 0 is allowed
// (it simply stops ignoring that channel) but not recommended.
func (s *Server) Register(cid uint8, handler Channel) {
	s.channels[cid] = handler
}

// Reset clears all per-connection framing state, for the "re-initialise
// all channel handlers" step of the reconnect lifecycle. It
// does not touch channel registration, only in-flight buffers.
func (s *Server) Reset() {
	s.rxPos = 0
	s.txCur = nil
	s.txPos = 0
	for len(s.outbound) > 0 {
		<-s.outbound
	}
}

// Feed appends payload bytes to the inbound framing buffer and runs the
// re-entrant framing loop: as long as a complete packet is present, it is
// decoded, dispatched, and any excess bytes are shifted to the front of
// the buffer before checking again. A single-pass framing step that only
// extracts one packet per call would silently stall on back-to-back
// packets delivered in a single read.
func (s *Server) Feed(data []byte) {
	if s.rxPos+len(data) > len(s.rxBuf) {
		s.log.Error("rx framing buffer overflow, dropping and resyncing", "pending", s.rxPos, "incoming", len(data))
		s.rxPos = 0
		return
	}
	s.rxPos += copy(s.rxBuf[s.rxPos:], data)

	for {
		if s.rxPos < wire.HeaderSize {
			return
		}
		h := wire.DecodeHeader(s.rxBuf[:wire.HeaderSize])
		total := wire.HeaderSize + int(h.Size)
		if total > len(s.rxBuf) {
			s.log.Error("packet exceeds framing buffer capacity, dropping and resyncing", "cid", h.CID, "size", h.Size)
			s.rxPos = 0
			return
		}
		if s.rxPos < total {
			return
		}

		payload := append([]byte(nil), s.rxBuf[wire.HeaderSize:total]...)
		s.dispatch(h.CID, payload)

		excess := s.rxPos - total
		if excess > 0 {
			copy(s.rxBuf[:excess], s.rxBuf[total:s.rxPos])
		}
		s.rxPos = excess
	}
}

func (s *Server) dispatch(cid uint8, payload []byte) {
	if s.trace != nil {
		s.trace(cid, payload)
	}
	ch, ok := s.channels[cid]
	if !ok {
		s.log.Warn("no handler for channel, dropping", "cid", cid)
		return
	}
	reply := func(resp []byte) {
		s.enqueueOutbound(cid, resp)
	}
	if err := ch.HandlePacket(cid, payload, reply); err != nil {
		s.log.Error("channel handler error", "cid", cid, "err", err)
	}
}

func (s *Server) enqueueOutbound(cid uint8, payload []byte) {
	framed, err := wire.EncodePacket(cid, payload)
	if err != nil {
		s.log.Error("cannot enqueue outbound packet", "cid", cid, "err", err)
		return
	}
	select {
	case s.outbound <- framed:
	default:
		// The dispatcher is single-threaded and poll-driven: there is no
		// second goroutine to ever drain this queue if a blocking send
		// stalled here, so a full queue drops the newest packet instead
		// of wedging the whole reframe loop.
		s.log.Error("outbound queue full, dropping packet", "cid", cid)
	}
}

// TXBusy reports whether a packet is currently being transmitted. Callers
// should pause inbound Feed processing while true, per the TX
// discipline (avoid generating further outbound work while busy).
func (s *Server) TXBusy() bool {
	return s.txCur != nil
}

// PumpTX attempts to push pending outbound bytes through write without
// blocking. It pulls the next queued packet when idle, and reports
// whether any packet is in flight after the call.
func (s *Server) PumpTX(write func([]byte) (int, error)) (busy bool, err error) {
	if s.txCur == nil {
		select {
		case next := <-s.outbound:
			s.txCur = next
			s.txPos = 0
		default:
			return false, nil
		}
	}

	n, werr := write(s.txCur[s.txPos:])
	if werr != nil {
		return true, werr
	}
	s.txPos += n
	if s.txPos >= len(s.txCur) {
		s.txCur = nil
		s.txPos = 0
		return false, nil
	}
	return true, nil
}
