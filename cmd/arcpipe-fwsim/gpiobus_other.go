//go:build !linux

package main

import (
	"github.com/charmbracelet/log"

	"github.com/arcpipe/podule/internal/bridge"
)

func newGPIOBus(chip string, logger *log.Logger) (bridge.Bus, func()) {
	logger.Fatal("--gpio-chip requires Linux (gpiocdev)", "chip", chip)
	return nil, func() {}
}
