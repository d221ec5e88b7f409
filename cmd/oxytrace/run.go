package main

import (
	"github.com/Carmen-Shannon/oxy-trace/engine"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer"
	"github.com/Carmen-Shannon/oxy-trace/engine/window/desktop"
	"github.com/urfave/cli"
)

// RunInteractive opens a window and runs the frame loop until it is closed.
func RunInteractive(ctx *cli.Context) error {
	setupLogging(ctx)

	p, err := loadParams(ctx)
	if err != nil {
		return err
	}
	m, _, stopMetrics := setupMetrics(ctx)
	defer stopMetrics()

	win := desktop.NewWindow(
		desktop.WithTitle("oxytrace"),
		desktop.WithSize(ctx.Int("width"), ctx.Int("height")),
		desktop.WithMinSize(320, 180),
	)
	defer win.Close()

	presentMode := renderer.PresentModeVSync
	if ctx.Bool("uncapped") {
		presentMode = renderer.PresentModeUncapped
	}
	r, err := renderer.NewRenderer(win, renderer.WithPresentMode(presentMode))
	if err != nil {
		return err
	}
	defer r.Release()

	scn, err := setupScene(ctx, r, m)
	if err != nil {
		return err
	}

	env, err := setupEnvironment(ctx, r, m)
	if err != nil {
		scn.Release()
		return err
	}

	e := engine.NewEngine(
		engine.WithWindow(win),
		engine.WithBackend(r),
		engine.WithScene(scn),
		engine.WithEnvironment(env),
		engine.WithParams(p),
		engine.WithMetrics(m),
		engine.WithProfiling(ctx.Bool("profile")),
	)
	defer e.Release()

	logger.Notice("F2 ray/raster, F3 spp, F5 bvh, F6 motion, R reset, L reload, F4 sky, P pointer, [ ] exposure, Esc quit")
	if err := e.Run(); err != nil {
		return err
	}

	displayRunStats(ctx.App.Writer, e.Stats(), scn.Stats())
	return nil
}
