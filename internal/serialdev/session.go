package serialdev

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sys/unix"
)

// backoff is the reconnect delay mandated on open failure or hangup.
const backoff = 1 * time.Second

// readBufSize is the chunk size read() is asked for on each loop turn.
const readBufSize = 4096

// readTimeout bounds each blocking read, so the loop observes ctx
// cancellation and can distinguish an idle line from a hung-up one.
const readTimeout = 500 * time.Millisecond

// hangupThreshold is how many back-to-back instant zero-byte reads the
// loop tolerates before treating the device as hung up. A VMIN=0/VTIME
// read returns 0 both at timeout expiry and at EOF; only the EOF case
// returns immediately and keeps doing so.
const hangupThreshold = 5

// Config configures a Run loop.
type Config struct {
	Path string
	Baud int
	Log  *log.Logger

	// Hotplug, if non-nil, delivers device-node paths as they appear via
	// udev add events, letting Run reconnect immediately instead of
	// waiting out the backoff window. Nil disables this (e.g. on
	// non-Linux platforms, or when no udev socket is available).
	Hotplug <-chan string
}

// OnConnect is called once per successful open, before the read loop
// starts, to re-initialise all channel handlers.
type OnConnect func(d *Device)

// OnData is called with each chunk of bytes read from the device.
type OnData func(data []byte)

// Run opens Path, invokes onConnect, and services reads until the
// connection drops (hangup or a read error), then waits out backoff (or
// an earlier matching hotplug event) and retries — forever, until ctx is
// cancelled. It never returns except when ctx is done.
func Run(ctx context.Context, cfg Config, onConnect OnConnect, onData OnData) {
	logger := cfg.Log
	if logger == nil {
		logger = log.Default()
	}

	for {
		if ctx.Err() != nil {
			return
		}

		dev, err := Open(cfg.Path, cfg.Baud)
		if err != nil {
			logger.Error("open failed, retrying", "path", cfg.Path, "err", err)
			if !waitRetry(ctx, cfg) {
				return
			}
			continue
		}

		logger.Info("connected", "path", cfg.Path)
		if onConnect != nil {
			onConnect(dev)
		}

		serve(ctx, dev, onData, logger)
		_ = dev.Close()
		logger.Warn("disconnected, will retry", "path", cfg.Path)

		if !waitRetry(ctx, cfg) {
			return
		}
	}
}

// waitRetry blocks for backoff, or until a hotplug event names cfg.Path, or
// until ctx is cancelled. It returns false only when ctx is done.
func waitRetry(ctx context.Context, cfg Config) bool {
	timer := time.NewTimer(backoff)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return false
		case <-timer.C:
			return true
		case path, ok := <-cfg.Hotplug:
			if !ok {
				cfg.Hotplug = nil
				continue
			}
			if path == cfg.Path {
				return true
			}
		}
	}
}

// serve runs the read loop for one connection, returning when the device
// reports hangup or a read fails. pkg/term owns the file descriptor, so
// the loop paces itself with a termios read timeout rather than poll(2):
// an expired timeout is an idle tick, a run of instant zero-byte reads is
// the hangup the kernel would otherwise have reported as POLLHUP, and a
// hard error (EIO once a USB device node disappears) ends the session.
func serve(ctx context.Context, dev *Device, onData OnData, logger *log.Logger) {
	if err := dev.SetReadTimeout(readTimeout); err != nil {
		logger.Error("cannot set read timeout", "err", err)
		return
	}

	buf := make([]byte, readBufSize)
	instantEOFs := 0

	for {
		if ctx.Err() != nil {
			return
		}

		start := time.Now()
		n, err := dev.Read(buf)
		if n > 0 {
			instantEOFs = 0
			if onData != nil {
				onData(buf[:n])
			}
		}
		if err != nil {
			if errors.Is(err, unix.EINTR) || errors.Is(err, unix.EAGAIN) {
				continue
			}
			logger.Error("read failed", "err", err)
			return
		}
		if n == 0 {
			if time.Since(start) < readTimeout/4 {
				instantEOFs++
				if instantEOFs >= hangupThreshold {
					return
				}
			} else {
				instantEOFs = 0
			}
		}
	}
}
