// Package discover advertises which serial device the host server is
// bound to via mDNS/DNS-SD, so an operator with several podules attached
// doesn't have to guess which /dev/ttyACM* is which. It is entirely
// optional: nothing in the dispatch path reads it back.
package discover

import (
	"context"

	"github.com/brutella/dnssd"
	"github.com/charmbracelet/log"
)

// ServiceType is the DNS-SD service type advertised for a running host
// server instance.
const ServiceType = "_arcpipe._tcp"

// Announce registers an mDNS/DNS-SD service for name advertising devicePath
// (carried as a TXT record, since there is no TCP port to publish — this
// differs from the KISS-over-TCP announcement it is adapted from, which
// advertised a port instead) and responds to queries until ctx is
// cancelled. The responder runs in a background goroutine; Announce
// returns once registration succeeds or fails.
func Announce(ctx context.Context, logger *log.Logger, name, devicePath string) error {
	if logger == nil {
		logger = log.Default()
	}

	cfg := dnssd.Config{
		Name: name,
		Type: ServiceType,
		Text: map[string]string{"device": devicePath},
	}

	sv, err := dnssd.NewService(cfg)
	if err != nil {
		return err
	}

	rp, err := dnssd.NewResponder()
	if err != nil {
		return err
	}

	if _, err := rp.Add(sv); err != nil {
		return err
	}

	logger.Info("advertising host server", "service", ServiceType, "name", name, "device", devicePath)

	go func() {
		if err := rp.Respond(ctx); err != nil && ctx.Err() == nil {
			logger.Error("dns-sd responder stopped", "err", err)
		}
	}()

	return nil
}
