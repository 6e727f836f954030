package main

import "github.com/kataras/golog"

var (
	bridgeLog = golog.Child("[bridge]")
	inputLog  = golog.Child("[input]")
	wsLog     = golog.Child("[ws]")
)

func setupLogging(cfg BridgeConfig) {
	if cfg.Debug || cfg.DumpEvents {
		golog.SetLevel("debug")
	}
}
