package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/noriah/tremor"
	"github.com/noriah/tremor/alert"
	"github.com/noriah/tremor/dsp/window"
	"github.com/noriah/tremor/graphic"
	"github.com/noriah/tremor/input"
	"github.com/noriah/tremor/report"

	_ "github.com/noriah/tremor/alert/all"
	_ "github.com/noriah/tremor/input/all"

	"github.com/integrii/flaggy"
	"github.com/lmittmann/tint"
)

// AppName is the app name
const AppName = "tremor"

// AppDesc is the app description
const AppDesc = "Accelerometer based sustained tremor detector"

// AppSite is the app website
const AppSite = "https://github.com/noriah/tremor"

var version = "unknown"

func main() {
	cfg := newZeroConfig()

	chk(cfg.loadProfile(os.Args[1:]), "failed to load profile")

	if doFlags(&cfg) {
		return
	}

	chk(cfg.validate(), "invalid config")

	tremorCfg := cfg.tremorConfig()

	var logOut io.Writer = os.Stderr

	if cfg.terminal {
		display := graphic.NewDisplay()
		logOut = display

		tremorCfg.Output = display
		tremorCfg.Display = display
		tremorCfg.SetupFunc = display.Init
		tremorCfg.StartFunc = func(ctx context.Context) (context.Context, error) {
			return display.Start(ctx), nil
		}
		tremorCfg.CleanupFunc = func() error {
			display.Stop()
			return display.Close()
		}
	} else {
		tremorCfg.Output = os.Stdout
		tremorCfg.Display = report.TextDisplay{W: os.Stdout}
	}

	level := slog.LevelInfo
	if cfg.verbose {
		level = slog.LevelDebug
	}

	tremorCfg.Logger = slog.New(tint.NewHandler(logOut, &tint.Options{
		Level:   level,
		NoColor: cfg.terminal,
	}))
	slog.SetDefault(tremorCfg.Logger)

	// Root Context
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	chk(tremor.Run(&tremorCfg, ctx), "failed to run tremor")
}

func doFlags(cfg *config) bool {

	parser := flaggy.NewParser(AppName)
	parser.Description = AppDesc
	parser.AdditionalHelpPrepend = AppSite
	parser.Version = version

	listBackendsCmd := flaggy.Subcommand{
		Name:                 "list-backends",
		ShortName:            "lb",
		Description:          "list all supported input backends",
		AdditionalHelpAppend: "\nuse the full name after the '-'",
	}

	parser.AttachSubcommand(&listBackendsCmd, 1)

	listDevicesCmd := flaggy.Subcommand{
		Name:                 "list-devices",
		ShortName:            "ld",
		Description:          "list all devices for an input backend",
		AdditionalHelpAppend: "\nuse the full name after the '-'",
	}

	parser.AttachSubcommand(&listDevicesCmd, 1)

	listAlertsCmd := flaggy.Subcommand{
		Name:        "list-alerts",
		ShortName:   "la",
		Description: "list all alert backends and their devices",
	}

	parser.AttachSubcommand(&listAlertsCmd, 1)

	parser.String(&cfg.profile, "c", "config", "YAML profile, applied before the other flags")
	parser.String(&cfg.backend, "b", "backend", "input backend name")
	parser.String(&cfg.device, "d", "device", "input device name")
	parser.Float64(&cfg.sampleRate, "r", "rate", "sample rate in Hz")
	parser.Int(&cfg.sampleSize, "n", "samples", "samples per block (power of two)")
	parser.Bool(&cfg.freeRun, "x", "free-run", "read as fast as the input allows")
	parser.Float64(&cfg.minFrequency, "lo", "band-low", "tremor band low edge in Hz")
	parser.Float64(&cfg.maxFrequency, "hi", "band-high", "tremor band high edge in Hz")
	parser.String(&cfg.window, "w", "window",
		"window function ("+strings.Join(window.Names(), ", ")+")")
	parser.String(&cfg.binMethod, "m", "bin-method", "band reduction (sum, average, max)")
	parser.Float64(&cfg.rangeLow, "rl", "range-low", "lowest tremor band energy")
	parser.Float64(&cfg.rangeHigh, "rh", "range-high", "highest tremor band energy")
	parser.Int(&cfg.durationThreshold, "dt", "duration",
		"duration threshold, a tenth of it is the consecutive block count")
	parser.Duration(&cfg.minDuration, "md", "min-duration",
		"wall clock length a tremor run must also reach (0 disables)")
	parser.Duration(&cfg.displayInterval, "di", "display-interval", "minimum time between display updates")
	parser.Float64(&cfg.intensityMax, "im", "intensity-max", "energy shown as full red")
	parser.Int(&cfg.pixels, "p", "pixels", "number of display elements")
	parser.Bool(&cfg.noClamp, "nc", "no-clamp", "do not clamp display colors to [0, 255]")
	parser.String(&cfg.alert, "a", "alert", "alert backend name")
	parser.String(&cfg.alertDevice, "ad", "alert-device", "alert device name")
	parser.Float64(&cfg.toneFrequency, "tf", "tone", "alert tone frequency in Hz")
	parser.Duration(&cfg.toneDuration, "td", "tone-duration", "alert tone length")
	parser.Bool(&cfg.terminal, "t", "terminal", "draw the display in the terminal")
	parser.Bool(&cfg.verbose, "v", "verbose", "log debug details")

	chk(parser.Parse(), "failed to parse arguments")

	switch {
	case listBackendsCmd.Used:
		for _, backend := range input.Backends {
			fmt.Printf("- %s\n", backend.Name)
		}

		return true

	case listDevicesCmd.Used:
		if cfg.backend == "" {
			cfg.backend = input.DefaultBackend()
		}

		backend, err := input.InitBackend(cfg.backend)
		chk(err, "failed to init backend")

		devices, err := backend.Devices()
		chk(err, "failed to get devices")

		// We don't really need the default device to be indicated.
		defaultDevice, _ := backend.DefaultDevice()

		fmt.Printf("all devices for %q backend. '*' marks default\n", cfg.backend)

		for idx := range devices {
			star := ' '
			if defaultDevice != nil && devices[idx].String() == defaultDevice.String() {
				star = '*'
			}

			fmt.Printf("- %v %c\n", devices[idx], star)
		}

		return true

	case listAlertsCmd.Used:
		for _, backend := range alert.Backends {
			fmt.Printf("- %s\n", backend.Name)

			devices, err := backend.Devices()
			if err != nil {
				fmt.Printf("    (unavailable: %v)\n", err)
				continue
			}

			for _, device := range devices {
				fmt.Printf("    %s\n", device)
			}
		}

		return true
	}

	return false
}

func chk(err error, wrap string) {
	if err != nil {
		slog.Error(wrap, "error", err)
		os.Exit(1)
	}
}
