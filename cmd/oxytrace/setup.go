package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Carmen-Shannon/oxy-trace/engine/environment"
	"github.com/Carmen-Shannon/oxy-trace/engine/loader"
	"github.com/Carmen-Shannon/oxy-trace/engine/metrics"
	"github.com/Carmen-Shannon/oxy-trace/engine/model"
	"github.com/Carmen-Shannon/oxy-trace/engine/params"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer/resource"
	"github.com/Carmen-Shannon/oxy-trace/engine/scene"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli"
)

// primitiveModel returns one of the procedural test scenes by name.
func primitiveModel(name string) (model.Model, error) {
	switch strings.ToLower(name) {
	case "", "cube":
		return model.Cube(1), nil
	case "sphere":
		return model.UVSphere(1, 32, 16), nil
	case "plane":
		return model.Plane(10), nil
	case "scene":
		return model.Merge("scene", model.Plane(10), model.Cube(1), model.UVSphere(0.75, 32, 16)), nil
	default:
		return nil, fmt.Errorf("unknown primitive %q (want cube, sphere, plane or scene)", name)
	}
}

// loadModel loads --model when set and falls back to --primitive.
func loadModel(ctx *cli.Context, l loader.Loader) (model.Model, error) {
	if path := ctx.String("model"); path != "" {
		return l.Load(path)
	}
	return primitiveModel(ctx.String("primitive"))
}

// loadParams reads --params over the defaults.
func loadParams(ctx *cli.Context) (params.RenderParameters, error) {
	path := ctx.String("params")
	if path == "" {
		return params.Defaults(), nil
	}
	p, err := params.Load(path)
	if err != nil {
		return p, err
	}
	logger.Infof("loaded render parameters from %s", path)
	return p, nil
}

// setupScene builds the scene over backend and installs the initial BVH.
func setupScene(ctx *cli.Context, backend resource.Backend, m *metrics.Metrics) (scene.Scene, error) {
	l := loader.NewLoader()
	scn := scene.NewScene(backend,
		scene.WithName("oxytrace"),
		scene.WithLoader(l),
		scene.WithMetrics(m),
		scene.WithLeafMax(ctx.Int("leaf-max")),
	)

	var err error
	if path := ctx.String("model"); path != "" {
		err = scn.ReloadFromPath(context.Background(), path)
	} else {
		var mdl model.Model
		if mdl, err = primitiveModel(ctx.String("primitive")); err == nil {
			err = scn.Rebuild(context.Background(), mdl)
		}
	}
	if err != nil {
		scn.Release()
		return nil, err
	}
	return scn, nil
}

// setupEnvironment creates the environment map and loads --env into it. A map that fails to
// load is logged and replaced by the placeholder so the renderer still starts.
func setupEnvironment(ctx *cli.Context, backend resource.Backend, m *metrics.Metrics) (environment.Environment, error) {
	env := environment.NewEnvironment(backend,
		environment.WithMaxFaceSize(ctx.Int("env-max-face")),
		environment.WithMetrics(m),
	)

	if path := ctx.String("env"); path != "" {
		err := env.LoadFromPath(path)
		if err == nil {
			return env, nil
		}
		logger.Warningf("using placeholder environment: %v", err)
	}
	if err := env.UsePlaceholder(); err != nil {
		env.Release()
		return nil, err
	}
	return env, nil
}

// setupMetrics creates the collectors and, when --metrics-addr is set, serves them.
// The returned stop function shuts the server down and is always safe to call.
func setupMetrics(ctx *cli.Context) (*metrics.Metrics, *prometheus.Registry, func()) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	addr := ctx.String("metrics-addr")
	if addr == "" {
		return m, reg, func() {}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(reg))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("metrics server on %s stopped: %v", addr, err)
		}
	}()
	logger.Noticef("serving metrics on http://%s/metrics", addr)

	return m, reg, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}
}
