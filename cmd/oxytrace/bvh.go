package main

import (
	"time"

	"github.com/Carmen-Shannon/oxy-trace/engine/bvh"
	"github.com/Carmen-Shannon/oxy-trace/engine/geometry"
	"github.com/Carmen-Shannon/oxy-trace/engine/loader"
	"github.com/urfave/cli"
)

// BuildBVH builds and validates the hierarchy for the selected model and prints its statistics.
func BuildBVH(ctx *cli.Context) error {
	setupLogging(ctx)

	m, err := loadModel(ctx, loader.NewLoader())
	if err != nil {
		return err
	}

	tris := geometry.NewExtractor().Extract(m, geometry.DefaultTransform())
	builder := bvh.NewBuilder(bvh.WithLeafMax(ctx.Int("leaf-max")))

	start := time.Now()
	nodes := builder.Build(tris)
	buildTime := time.Since(start)

	if err := bvh.Validate(nodes, tris, builder.LeafMax()); err != nil {
		return err
	}

	displayBVHStats(ctx.App.Writer, m.Name(), bvh.ComputeStats(nodes), bvhSizes{
		nodeBytes:     len(bvh.MarshalNodes(nodes)),
		triangleBytes: len(bvh.MarshalTriangles(tris)),
		buildTime:     buildTime,
		leafMax:       builder.LeafMax(),
	})
	return nil
}
