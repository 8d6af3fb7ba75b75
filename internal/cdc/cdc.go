// Package cdc defines the transport interface the pipe engine drives: a
// USB CDC endpoint with partial-write/partial-read semantics, connection
// state, and an explicit flush. The real endpoint (a TinyUSB-style CDC
// device stack) is an external collaborator; this package
// supplies the interface and an in-memory loopback double used by tests
// and the arcpipe-fwsim development tool.
package cdc

// Endpoint is the transport the pipe engine polls each iteration. The
// calls map one-for-one onto a TinyUSB-style CDC device API
// (tud_cdc_n_connected, tud_cdc_n_available, tud_cdc_n_read/write,
// tud_cdc_n_write_flush), so a real device backend is a thin shim.
type Endpoint interface {
	// Connected reports whether a host is attached to the CDC interface.
	Connected() bool

	// Available reports how many bytes can be read without blocking.
	Available() int

	// Read copies up to len(p) available bytes into p without blocking,
	// returning how many were copied. Never blocks; 0 is a valid result.
	Read(p []byte) (int, error)

	// Write queues up to len(p) bytes into the endpoint's TX FIFO without
	// blocking, returning how many were accepted. Never blocks; a partial
	// write is normal backpressure, not an error.
	Write(p []byte) (int, error)

	// Flush pushes any buffered TX bytes out to the host as soon as
	// possible.
	Flush() error
}
