package main

// Bridge configuration.
//
// Precedence, lowest first: built-in defaults, POINTER_* environment
// variables, the TOML file named by -config (or POINTER_CONFIG), explicit
// command-line flags.

import (
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"pointerbridge/rotate"
)

type BridgeConfig struct {
	WsURL        string   `toml:"ws"`
	Inputs       []string `toml:"inputs"`
	ScreenWidth  int      `toml:"screen_width"`
	ScreenHeight int      `toml:"screen_height"`
	Rotation     string   `toml:"rotation"`
	TickHz       int      `toml:"tick_hz"`
	NoGrab       bool     `toml:"no_grab"`

	Debug       bool `toml:"debug"`
	DumpEvents  bool `toml:"dump_events"`
	ListDevices bool `toml:"-"`

	ProbeSeconds       float64 `toml:"probe_seconds"`
	PingSeconds        float64 `toml:"ping_seconds"`
	PongTimeoutSeconds float64 `toml:"pong_timeout_seconds"`

	ConfigFile string `toml:"-"`
}

func defaultConfig() BridgeConfig {
	return BridgeConfig{
		WsURL:              getenvDefault("POINTER_WS", "ws://127.0.0.1:8000/ws/pointer"),
		Inputs:             splitList(getenvDefault("POINTER_INPUTS", "")),
		ScreenWidth:        getenvIntDefault("SCREEN_WIDTH", 0),
		ScreenHeight:       getenvIntDefault("SCREEN_HEIGHT", 0),
		Rotation:           getenvDefault("ROTATION", "0"),
		TickHz:             getenvIntDefault("TICK_HZ", 60),
		NoGrab:             getenvBoolDefault("NO_GRAB", true),
		Debug:              getenvBoolDefault("DEBUG", false),
		DumpEvents:         getenvBoolDefault("DUMP_EVENTS", false),
		ProbeSeconds:       getenvFloatDefault("PROBE_SECONDS", 1.5),
		PingSeconds:        getenvFloatDefault("PING_SECONDS", 2),
		PongTimeoutSeconds: getenvFloatDefault("PONG_TIMEOUT_SECONDS", 8),
		ConfigFile:         getenvDefault("POINTER_CONFIG", ""),
	}
}

// listFlag binds a comma-separated flag to a string slice.
type listFlag struct{ p *[]string }

func (f listFlag) String() string {
	if f.p == nil {
		return ""
	}
	return strings.Join(*f.p, ",")
}

func (f listFlag) Set(s string) error {
	*f.p = splitList(s)
	return nil
}

// loadConfig builds the configuration from the environment, an optional
// config file and the given command-line arguments.
func loadConfig(args []string) (BridgeConfig, error) {
	cfg := defaultConfig()

	fs := flag.NewFlagSet("pointerbridge", flag.ContinueOnError)
	fs.StringVar(&cfg.ConfigFile, "config", cfg.ConfigFile, "TOML config file")
	fs.StringVar(&cfg.WsURL, "ws", cfg.WsURL, "WebSocket URL to send pointer events to")
	fs.Var(listFlag{&cfg.Inputs}, "inputs", "Comma-separated input device paths (e.g. /dev/input/event1,/dev/input/event3). If empty, auto-detect.")
	fs.IntVar(&cfg.ScreenWidth, "screen-width", cfg.ScreenWidth, "Screen width in pixels (0 = unknown, no clamping)")
	fs.IntVar(&cfg.ScreenHeight, "screen-height", cfg.ScreenHeight, "Screen height in pixels (0 = unknown, no clamping)")
	fs.StringVar(&cfg.Rotation, "rotation", cfg.Rotation, "Display rotation: 0|90|180|270 or normal|right|inverted|left")
	fs.IntVar(&cfg.TickHz, "tick-hz", cfg.TickHz, "Event drain rate (Hz)")
	fs.BoolVar(&cfg.NoGrab, "no-grab", cfg.NoGrab, "Do not EVIOCGRAB the input devices")
	fs.BoolVar(&cfg.Debug, "debug", cfg.Debug, "Debug logging")
	fs.BoolVar(&cfg.DumpEvents, "dump-events", cfg.DumpEvents, "Log raw input events (type/code/value). Noisy.")
	fs.BoolVar(&cfg.ListDevices, "list-devices", false, "Print /proc/bus/input/devices names/handlers and exit")
	fs.Float64Var(&cfg.ProbeSeconds, "probe-seconds", cfg.ProbeSeconds, "Seconds to probe each /dev/input/event* for activity when auto-detecting")
	fs.Float64Var(&cfg.PingSeconds, "ping-seconds", cfg.PingSeconds, "WebSocket ping interval (seconds)")
	fs.Float64Var(&cfg.PongTimeoutSeconds, "pong-timeout-seconds", cfg.PongTimeoutSeconds, "Reconnect if no pong is received in this window")
	if err := fs.Parse(args); err != nil {
		return BridgeConfig{}, err
	}

	if cfg.ConfigFile != "" {
		explicit := map[string]string{}
		fs.Visit(func(f *flag.Flag) {
			explicit[f.Name] = f.Value.String()
		})
		if _, err := toml.DecodeFile(cfg.ConfigFile, &cfg); err != nil {
			return BridgeConfig{}, fmt.Errorf("read config %s: %w", cfg.ConfigFile, err)
		}
		for name, v := range explicit {
			if err := fs.Set(name, v); err != nil {
				return BridgeConfig{}, err
			}
		}
	}

	return cfg, cfg.Validate()
}

var errInvalidConfig = errors.New("invalid config")

func (c BridgeConfig) Validate() error {
	if c.ScreenWidth < 0 || c.ScreenHeight < 0 {
		return fmt.Errorf("%w: negative screen size %dx%d", errInvalidConfig, c.ScreenWidth, c.ScreenHeight)
	}
	if _, err := rotate.ParseRotation(c.Rotation); err != nil {
		return fmt.Errorf("%w: %w", errInvalidConfig, err)
	}
	if c.WsURL == "" {
		return fmt.Errorf("%w: empty ws url", errInvalidConfig)
	}
	return nil
}
