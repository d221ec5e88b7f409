package main

import (
	"github.com/Carmen-Shannon/oxy-trace/engine/log"
	"github.com/urfave/cli"
)

var logger = log.New("oxytrace")

func setupLogging(ctx *cli.Context) {
	if ctx.GlobalBool("v") {
		log.SetLevel(log.LevelInfo)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.LevelDebug)
	}
}
