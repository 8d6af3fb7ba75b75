// Command arcpipe-fwsim is a development/test harness for the podule
// firmware side: it wires a simulated (or, on Linux, real GPIO-backed)
// bus bridge and pipe engine together against an in-memory CDC loopback,
// with an embedded loader/ROM image, so the firmware logic can be
// exercised without real expansion-bus hardware.
package main

import (
	"context"
	"embed"
	"os"
	"os/signal"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/arcpipe/podule/internal/bridge"
	"github.com/arcpipe/podule/internal/cdc"
	"github.com/arcpipe/podule/internal/pipe"
	"github.com/arcpipe/podule/internal/romimage"
	"github.com/arcpipe/podule/internal/window"
)

//go:embed assets/rom.bin assets/loader.bin
var embeddedAssets embed.FS

func main() {
	var (
		gpioChip  = pflag.String("gpio-chip", "", "use a real gpiocdev chip instead of the in-memory simulated bus (Linux only)")
		pollEvery = pflag.Duration("poll-interval", time.Millisecond, "pipe engine poll interval")
		logLevel  = pflag.String("log-level", "info", "log level: debug, info, warn, error")
	)
	pflag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	if lvl, err := log.ParseLevel(*logLevel); err == nil {
		logger.SetLevel(lvl)
	}

	romData, err := embeddedAssets.ReadFile("assets/rom.bin")
	if err != nil {
		logger.Fatal("reading embedded rom image", "err", err)
	}
	loaderData, err := embeddedAssets.ReadFile("assets/loader.bin")
	if err != nil {
		logger.Fatal("reading embedded loader blob", "err", err)
	}

	win := window.New()
	win.InstallLoader(loaderData)
	rom := romimage.New(romData)
	ep := cdc.NewLoopback()
	engine := pipe.New(win, rom, ep, logger.With("component", "pipe"))

	bus, closeBus := makeBus(*gpioChip, logger)
	defer closeBus()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// A simulated bus on a general-purpose scheduler can never meet the
	// hardware's 200ns contract; bound it at something a sim can hold so
	// the warning path stays meaningful.
	var counters bridge.Counters
	go bridge.Run(ctx, bus, win, &counters, logger.With("component", "bridge"), time.Millisecond)

	ticker := time.NewTicker(*pollEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			return
		case <-ticker.C:
			engine.Poll()
		}
	}
}

func makeBus(gpioChip string, logger *log.Logger) (bridge.Bus, func()) {
	if gpioChip == "" {
		logger.Info("using simulated bus")
		return bridge.NewSimBus(), func() {}
	}
	return newGPIOBus(gpioChip, logger)
}
