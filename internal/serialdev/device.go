// Package serialdev owns the host server's connection to the podule's USB
// CDC character device: raw-mode opens, a timeout-driven read loop, and
// the "open failure or hangup -> close, 1s backoff, reopen, re-initialise
// all channels" reconnect lifecycle.
package serialdev

import (
	"time"

	"github.com/pkg/term"
)

// Device is an open serial connection in raw mode.
type Device struct {
	t *term.Term
}

// Open opens path in raw mode at the given baud rate. A baud of 0 leaves
// the current line speed alone, which is the normal case for a USB CDC
// ACM device where the line speed is a fiction anyway.
func Open(path string, baud int) (*Device, error) {
	t, err := term.Open(path, term.RawMode)
	if err != nil {
		return nil, err
	}
	if baud != 0 {
		if err := t.SetSpeed(baud); err != nil {
			_ = t.Close()
			return nil, err
		}
	}
	return &Device{t: t}, nil
}

// Read implements io.Reader.
func (d *Device) Read(p []byte) (int, error) { return d.t.Read(p) }

// Write implements io.Writer.
func (d *Device) Write(p []byte) (int, error) { return d.t.Write(p) }

// Close releases the underlying file descriptor.
func (d *Device) Close() error { return d.t.Close() }

// SetReadTimeout bounds how long a Read blocks waiting for the first byte.
// With a timeout set, Read returns (0, nil) once the interval expires with
// nothing arriving, which is what lets the session loop stay responsive to
// cancellation without a second thread.
func (d *Device) SetReadTimeout(timeout time.Duration) error {
	return d.t.SetReadTimeout(timeout)
}
