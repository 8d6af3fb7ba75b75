// Package rawfile implements channel 2: host filesystem access for the
// Archimedes side, with Acorn filetype/load/exec metadata resolved from
// the host filename and file mtime.
package rawfile

import (
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/charmbracelet/log"
)

const (
	opInitRead  = 0
	opReadBlock = 1
	opClose     = 4
)

// initReadResponseSize is {success, 3 pad, filesize, load, exec}: 16 bytes.
const initReadResponseSize = 16

// Status sentinels for the INIT_READ response's first byte. A raw errno
// would not survive truncation to one byte, so the wire carries only a
// success/failure flag; the real errno (when known) is surfaced through
// structured logging.
const (
	StatusOK      = 0x00
	StatusFailure = 0xFF
)

// acornEpochOffset is the exact number of seconds between the Acorn epoch
// (1900-01-01 00:00:00 UTC) and the Unix epoch (1970-01-01 00:00:00 UTC).
const acornEpochOffset = 2_208_988_800

// defaultFiletype is "Data" (0xFFD), used for the plain-filename fallback's
// fixed load word. Unlike a matched ",XXX" suffix, the plain-filename case
// does not derive exec from mtime: exec stays 0.
const defaultFiletype = 0xFFD

// AcornTime converts a Unix timestamp (seconds since 1970-01-01 UTC) to the
// Acorn 40-bit centiseconds-since-1900-01-01 representation.
func AcornTime(unixSeconds int64) uint64 {
	return uint64(unixSeconds+acornEpochOffset) * 100
}

// loadExecFromFiletype packs a 12-bit Acorn filetype and an mtime into the
// load/exec word pair Acorn filing systems use to carry type + timestamp.
func loadExecFromFiletype(filetype uint16, mtime int64) (load, exec uint32) {
	at := AcornTime(mtime)
	load = 0xFFF00000 | (uint32(filetype&0xFFF) << 8) | uint32((at>>32)&0xFF)
	exec = uint32(at & 0xFFFFFFFF)
	return load, exec
}

// resolution is the outcome of matching a requested (suffix-free, as sent
// by the Archimedes) filename against the host directory's actual entries.
type resolution struct {
	// path is the file to actually open: either a ",XXX"/",L-E" sibling
	// found in the directory listing, or the plain requested name.
	path string
	// hasExplicitLoadExec is true when a ",LLLLLLL-EEEEEEE" sibling was
	// found: load/exec are used as-is, with no mtime encoding.
	hasExplicitLoadExec bool
	load, exec          uint32
	// filetype is the matched ",XXX" suffix's value, used with the open
	// file's mtime to derive load/exec once the file is open and stat'd.
	// Only meaningful when hasExplicitLoadExec is false and matchedType is
	// true.
	filetype    uint16
	matchedType bool
}

// resolveFilename looks for a sibling of name in its directory that carries
// a ",XXX" filetype suffix or a ",LLLLLLL-EEEEEEE" load/exec suffix — the
// Archimedes sends the bare name, and the host-side file that actually
// carries the metadata lives alongside it with the suffix attached, the
// usual HostFS convention. The lookup is a directory listing plus a
// regexp match per entry; the first match wins.
func resolveFilename(name string) resolution {
	dir := filepath.Dir(name)
	base := filepath.Base(name)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return resolution{path: name}
	}

	typeRe := regexp.MustCompile(`^` + regexp.QuoteMeta(base) + `,([0-9a-fA-F]{3})$`)
	for _, e := range entries {
		if m := typeRe.FindStringSubmatch(e.Name()); m != nil {
			ft, err := strconv.ParseUint(m[1], 16, 16)
			if err == nil {
				return resolution{path: filepath.Join(dir, e.Name()), filetype: uint16(ft), matchedType: true}
			}
		}
	}

	lxRe := regexp.MustCompile(`^` + regexp.QuoteMeta(base) + `,([0-9a-fA-F]{1,7})-([0-9a-fA-F]{1,7})$`)
	for _, e := range entries {
		if m := lxRe.FindStringSubmatch(e.Name()); m != nil {
			l, errL := strconv.ParseUint(m[1], 16, 32)
			ex, errE := strconv.ParseUint(m[2], 16, 32)
			if errL == nil && errE == nil {
				return resolution{path: filepath.Join(dir, e.Name()), hasExplicitLoadExec: true, load: uint32(l), exec: uint32(ex)}
			}
		}
	}

	return resolution{path: name}
}

// Handler implements channel 2. It is not safe for concurrent use; the
// dispatcher that owns it is single-threaded.
type Handler struct {
	log *log.Logger

	file *os.File
}

// NewHandler returns a Handler with no file open.
func NewHandler(logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{log: logger}
}

// HandlePacket implements dispatch.Channel.
func (h *Handler) HandlePacket(_ uint8, payload []byte, reply func([]byte)) error {
	if len(payload) == 0 {
		return nil
	}
	switch payload[0] {
	case opInitRead:
		h.handleInitRead(payload[1:], reply)
	case opReadBlock:
		h.handleReadBlock(payload[1:], reply)
	case opClose:
		h.closeCurrent()
	default:
		h.log.Warn("unknown rawfile opcode, ignoring", "opcode", payload[0])
	}
	return nil
}

func (h *Handler) closeCurrent() {
	if h.file != nil {
		_ = h.file.Close()
		h.file = nil
	}
}

func (h *Handler) handleInitRead(payload []byte, reply func([]byte)) {
	name := cStringFrom(payload)

	h.closeCurrent() // at most one file open at a time: a new open always supersedes any prior

	resp := make([]byte, initReadResponseSize)

	res := resolveFilename(name)

	f, err := os.Open(res.path)
	if err != nil {
		h.log.Error("rawfile open failed", "name", res.path, "err", err)
		resp[0] = StatusFailure
		reply(resp)
		return
	}

	st, err := f.Stat()
	if err != nil {
		h.log.Error("rawfile stat failed", "name", res.path, "err", err)
		_ = f.Close()
		resp[0] = StatusFailure
		reply(resp)
		return
	}

	h.file = f

	var load, exec uint32
	switch {
	case res.hasExplicitLoadExec:
		load, exec = res.load, res.exec
	case res.matchedType:
		load, exec = loadExecFromFiletype(res.filetype, st.ModTime().Unix())
	default:
		load, exec = 0xFFF00000|(defaultFiletype<<8), 0
	}

	resp[0] = StatusOK
	putU32LE(resp[4:8], uint32(st.Size()))
	putU32LE(resp[8:12], load)
	putU32LE(resp[12:16], exec)
	reply(resp)
}

func (h *Handler) handleReadBlock(payload []byte, reply func([]byte)) {
	if h.file == nil {
		h.log.Warn("read_block with no file open, ignoring")
		return
	}
	if len(payload) < 11 {
		h.log.Warn("read_block request too short, ignoring", "len", len(payload))
		return
	}

	offset := int64(getU32LE(payload[3:7]))
	size := getU32LE(payload[7:11])

	buf := make([]byte, size)
	n, err := h.file.ReadAt(buf, offset)
	if err != nil && err != io.EOF {
		h.log.Error("rawfile read failed", "offset", offset, "size", size, "err", err)
	}
	// Short reads (including EOF) are zero-padded rather than shortening
	// the response frame: the wire contract is always exactly `size` bytes.
	for i := n; i < len(buf); i++ {
		buf[i] = 0
	}
	reply(buf)
}

func cStringFrom(b []byte) string {
	if i := indexByte(b, 0); i >= 0 {
		return string(b[:i])
	}
	return string(b)
}

func indexByte(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return -1
}

func putU32LE(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

func getU32LE(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
