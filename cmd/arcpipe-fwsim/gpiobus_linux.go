//go:build linux

package main

import (
	"github.com/charmbracelet/log"

	"github.com/arcpipe/podule/internal/bridge"
)

// defaultGPIOConfig is a placeholder line layout for a Raspberry-Pi-class
// bit-bang front end; a real deployment overrides it via flags once the
// wiring harness's actual offsets are known.
var defaultGPIOConfig = bridge.GPIOConfig{
	Chip:            "",
	DataOffsets:     [8]int{2, 3, 4, 17, 27, 22, 10, 9},
	AddrLowOffsets:  [3]int{5, 6, 13},
	AddrHighOffsets: [9]int{19, 26, 21, 20, 16, 12, 7, 8, 25},
	SelOffset:       23,
	RDOffset:        24,
	WROffset:        18,
}

func newGPIOBus(chip string, logger *log.Logger) (bridge.Bus, func()) {
	cfg := defaultGPIOConfig
	cfg.Chip = chip
	bus, err := bridge.NewGPIOCDevBus(cfg)
	if err != nil {
		logger.Fatal("opening gpio bus", "chip", chip, "err", err)
	}
	return bus, bus.Close
}
