package main

// Pointer bridge entrypoint.
//
// This directory builds a single binary that:
// - reads one or more /dev/input/event* devices (touch panels, mice)
// - merges them into one logical pointer (package pointer), honouring display rotation (package rotate)
// - streams the merged motion/down/up/wheel events to a server over WebSocket
//
// Code is split across:
// - config.go, util.go: env/flag/TOML configuration
// - log.go: loggers
// - linux_input.go: Linux input constants + ioctl + input_event parsing
// - device_select.go: device listing + probing/selection
// - source.go: per-device translation of evdev frames into merger calls
// - ws_client.go: websocket client (ping/pong, TCP keepalive, reconnect signals)
// - bridge.go: device readers + session drain loop

import (
	"fmt"
	"os"
)

func main() {
	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	setupLogging(cfg)

	if err := RunBridgeForever(cfg); err != nil {
		bridgeLog.Errorf("fatal: %v", err)
		os.Exit(1)
	}
}
