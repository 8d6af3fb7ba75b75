//go:build linux

package serialdev

import (
	"context"

	"github.com/charmbracelet/log"
	udev "github.com/jochenvg/go-udev"
)

// WatchHotplug returns a channel of device node paths that appear via udev
// "add" events on the tty subsystem, for use as Config.Hotplug. It returns
// nil when the monitor cannot be started; callers that get nil back fall
// back to the 1-second backoff alone, which Run always applies regardless.
func WatchHotplug(ctx context.Context, logger *log.Logger) <-chan string {
	if logger == nil {
		logger = log.Default()
	}

	u := &udev.Udev{}
	mon := u.NewMonitorFromNetlink("udev")
	if err := mon.FilterAddMatchSubsystem("tty"); err != nil {
		logger.Warn("udev hotplug watch unavailable, relying on backoff retry only", "err", err)
		return nil
	}

	devices, err := mon.DeviceChan(ctx)
	if err != nil {
		logger.Warn("udev hotplug watch unavailable, relying on backoff retry only", "err", err)
		return nil
	}

	out := make(chan string)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-devices:
				if !ok {
					return
				}
				if d.Action() != "add" {
					continue
				}
				node := d.Devnode()
				if node == "" {
					continue
				}
				select {
				case out <- node:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}
