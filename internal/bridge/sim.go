package bridge

// SimBus is an in-memory Bus double for tests and the arcpipe-fwsim
// development tool, which have no real expansion-bus hardware to drive.
// It is intended for single-threaded, synchronous use: a test asserts a
// cycle with BeginRead/BeginWrite, calls Step, and inspects the result.
// Its Wait* methods complete the cycle themselves (as if the external host
// dropped the strobe the instant the bridge finished servicing it)
// instead of genuinely blocking, since SimBus has no second actor to
// deassert a strobe concurrently.
type SimBus struct {
	sel, rd, wr bool
	addr        uint16
	data        byte
	driven      byte
}

// NewSimBus returns a SimBus with all strobes deasserted.
func NewSimBus() *SimBus {
	return &SimBus{}
}

func (s *SimBus) SampleSelect() bool    { return s.sel }
func (s *SimBus) SampleRead() bool      { return s.rd }
func (s *SimBus) SampleWrite() bool     { return s.wr }
func (s *SimBus) SampleAddress() uint16 { return s.addr }
func (s *SimBus) SampleData() byte      { return s.data }

func (s *SimBus) DriveData(b byte) { s.driven = b }
func (s *SimBus) ReleaseData()     {}

func (s *SimBus) WaitSelectDeasserted() {
	s.rd, s.sel = false, false
}

func (s *SimBus) WaitWriteDeasserted() {
	s.wr, s.sel = false, false
}

// DrivenData returns the last byte the bridge drove onto the data lines
// during a read cycle.
func (s *SimBus) DrivenData() byte { return s.driven }

// BeginRead asserts /SEL and /RD for addr, simulating the external host
// starting a read cycle.
func (s *SimBus) BeginRead(addr uint16) {
	s.addr, s.sel, s.rd = addr, true, true
}

// BeginWrite asserts /SEL and /WR for addr/data, simulating the external
// host starting a write cycle.
func (s *SimBus) BeginWrite(addr uint16, data byte) {
	s.addr, s.data, s.sel, s.wr = addr, data, true, true
}
