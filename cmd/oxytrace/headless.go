package main

import (
	"time"

	"github.com/Carmen-Shannon/oxy-trace/engine"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer/resource"
	"github.com/Carmen-Shannon/oxy-trace/engine/window"
	"github.com/urfave/cli"
)

// orbitStep is the horizontal cursor travel per scripted frame.
const orbitStep float32 = 8

// RunHeadless runs the frame loop on the memory backend. The camera orbits for the first half of
// the frames and then holds still so accumulation can build up.
func RunHeadless(ctx *cli.Context) error {
	setupLogging(ctx)

	p, err := loadParams(ctx)
	if err != nil {
		return err
	}
	m, _, stopMetrics := setupMetrics(ctx)
	defer stopMetrics()

	frames := ctx.Int("frames")
	if frames < 1 {
		frames = 1
	}

	backend := resource.NewMemoryBackend()
	win := window.NewScriptedWindow(ctx.Int("width"), ctx.Int("height"))

	scn, err := setupScene(ctx, backend, m)
	if err != nil {
		return err
	}

	env, err := setupEnvironment(ctx, backend, m)
	if err != nil {
		scn.Release()
		return err
	}

	e := engine.NewEngine(
		engine.WithWindow(win),
		engine.WithBackend(backend),
		engine.WithScene(scn),
		engine.WithEnvironment(env),
		engine.WithParams(p),
		engine.WithMetrics(m),
		engine.WithMaxFrames(uint64(frames)),
	)
	defer e.Release()

	orbitFrames := frames / 2
	var cursorX float32
	var frame int
	win.Push(window.Event{Type: window.EventMouseMove})
	e.SetRenderCallback(func(float32) {
		frame++
		if frame < orbitFrames {
			cursorX += orbitStep
			win.Push(window.Event{Type: window.EventMouseMove, X: cursorX})
		}
	})

	start := time.Now()
	if err := e.Run(); err != nil {
		return err
	}
	elapsed := time.Since(start)

	logger.Infof("ran %d frames in %s", frames, elapsed)
	displayRunStats(ctx.App.Writer, e.Stats(), scn.Stats())
	return nil
}
