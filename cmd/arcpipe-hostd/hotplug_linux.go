//go:build linux

package main

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/arcpipe/podule/internal/serialdev"
)

func watchHotplug(ctx context.Context, logger *log.Logger) <-chan string {
	return serialdev.WatchHotplug(ctx, logger.With("component", "udev"))
}
