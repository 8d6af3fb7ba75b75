// Command arcpipe-hostd is the host dispatcher: it opens the podule's USB
// CDC serial device, reframes the byte stream into packets, and routes
// them to the HOSTINFO and raw-file channel handlers.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lestrrat-go/strftime"
	"github.com/spf13/pflag"
	"golang.org/x/sys/unix"

	"github.com/arcpipe/podule/internal/channels/hostinfo"
	"github.com/arcpipe/podule/internal/channels/rawfile"
	"github.com/arcpipe/podule/internal/discover"
	"github.com/arcpipe/podule/internal/dispatch"
	"github.com/arcpipe/podule/internal/serialdev"
)

const defaultDevice = "/dev/ttyACM0"

func main() {
	os.Exit(run())
}

func run() int {
	var (
		deviceFlag    = pflag.StringP("device", "d", "", "serial device path (overrides positional argument)")
		baud          = pflag.Int("baud", 0, "line speed; 0 leaves it alone")
		configPath    = pflag.String("config", "", "optional YAML config file")
		logLevel      = pflag.String("log-level", "info", "log level: debug, info, warn, error")
		advertise     = pflag.Bool("advertise", false, "advertise this server via mDNS/DNS-SD")
		advertiseName = pflag.String("advertise-name", "", "service name to advertise (default: hostname)")
		queueCap      = pflag.Int("queue-capacity", 8, "bounded outbound packet queue capacity")
		trace         = pflag.BoolP("trace", "t", false, "print each received packet to stdout")
		stampFormat   = pflag.StringP("timestamp-format", "T", "%Y-%m-%d %H:%M:%S", "precede traced packets with a 'strftime' format time stamp")
	)
	pflag.Parse()

	fcfg, err := loadFileConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "arcpipe-hostd: reading config:", err)
		return 1
	}

	device := firstNonEmpty(*deviceFlag, pflag.Arg(0), fcfg.Device, defaultDevice)
	if *baud == 0 {
		*baud = fcfg.Baud
	}
	if !pflag.CommandLine.Changed("log-level") && fcfg.LogLevel != "" {
		*logLevel = fcfg.LogLevel
	}
	if !pflag.CommandLine.Changed("advertise") {
		*advertise = fcfg.Advertise
	}
	if *advertiseName == "" {
		*advertiseName = fcfg.AdvertiseName
	}
	if !pflag.CommandLine.Changed("queue-capacity") && fcfg.QueueCapacity != 0 {
		*queueCap = fcfg.QueueCapacity
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	if lvl, err := log.ParseLevel(*logLevel); err == nil {
		logger.SetLevel(lvl)
	} else {
		logger.Warn("unrecognised log level, defaulting to info", "given", *logLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, unix.SIGTERM)
	defer stop()

	opts := []dispatch.Option{
		dispatch.WithLogger(logger.With("component", "dispatch")),
		dispatch.WithQueueCapacity(*queueCap),
	}
	if *trace {
		opts = append(opts, dispatch.WithPacketTrace(packetTracer(*stampFormat)))
	}
	server := dispatch.New(opts...)
	server.Register(1, hostinfo.Handler{})
	server.Register(2, rawfile.NewHandler(logger.With("component", "rawfile")))

	if *advertise {
		name := *advertiseName
		if name == "" {
			if h, err := os.Hostname(); err == nil {
				name = h
			} else {
				name = "arcpipe-hostd"
			}
		}
		if err := discover.Announce(ctx, logger.With("component", "discover"), name, device); err != nil {
			logger.Error("mDNS advertisement failed to start", "err", err)
		}
	}

	var hotplug <-chan string
	if hp := watchHotplug(ctx, logger); hp != nil {
		hotplug = hp
	}

	cfg := serialdev.Config{
		Path:    device,
		Baud:    *baud,
		Log:     logger.With("component", "serialdev"),
		Hotplug: hotplug,
	}

	var current *serialdev.Device
	serialdev.Run(ctx, cfg,
		func(d *serialdev.Device) {
			current = d
			server.Reset()
		},
		func(data []byte) {
			server.Feed(data)
			pumpOutbound(current, server, logger)
		},
	)

	return 0
}

// pumpOutbound drains whatever the dispatcher has queued for transmission
// back onto the wire, non-blocking per packet.
func pumpOutbound(dev *serialdev.Device, server *dispatch.Server, logger *log.Logger) {
	for {
		busy, err := server.PumpTX(dev.Write)
		if err != nil {
			logger.Error("write to device failed", "err", err)
			return
		}
		if !busy {
			return
		}
	}
}

// packetTracer prints one line per received packet, preceded by a
// strftime-formatted time stamp.
func packetTracer(format string) func(cid uint8, payload []byte) {
	return func(cid uint8, payload []byte) {
		stamp, err := strftime.Format(format, time.Now())
		if err != nil {
			stamp = time.Now().Format(time.DateTime)
		}
		fmt.Printf("[%s] cid=%d len=%d\n", stamp, cid, len(payload))
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
