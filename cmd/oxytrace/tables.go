package main

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/Carmen-Shannon/oxy-trace/engine"
	"github.com/Carmen-Shannon/oxy-trace/engine/bvh"
	"github.com/olekukonko/tablewriter"
)

type bvhSizes struct {
	nodeBytes     int
	triangleBytes int
	buildTime     time.Duration
	leafMax       int
}

func displayBVHStats(w io.Writer, name string, st bvh.Stats, sizes bvhSizes) {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Model", "Triangles", "Nodes", "Leaves", "Depth", "Leaf size (min/avg/max)", "Node bytes", "Triangle bytes", "Build time"})
	table.Append([]string{
		name,
		fmt.Sprintf("%d", st.TriangleCount),
		fmt.Sprintf("%d", st.NodeCount),
		fmt.Sprintf("%d", st.LeafCount),
		fmt.Sprintf("%d", st.MaxDepth),
		fmt.Sprintf("%d / %.2f / %d", st.MinLeafSize, st.AvgLeafSize, st.MaxLeafSize),
		fmt.Sprintf("%d", sizes.nodeBytes),
		fmt.Sprintf("%d", sizes.triangleBytes),
		sizes.buildTime.String(),
	})
	table.SetFooter([]string{"", "", "", "", "", fmt.Sprintf("leaf max %d", sizes.leafMax), "", "", ""})
	table.Render()
}

func displayRunStats(w io.Writer, st engine.Stats, bst bvh.Stats) {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Statistic", "Value"})
	table.Append([]string{"Frames", fmt.Sprintf("%d", st.Frames)})
	table.Append([]string{"Final frame index", fmt.Sprintf("%d", st.FrameIndex)})
	table.Append([]string{"SPP", fmt.Sprintf("%d", st.SPP)})
	table.Append([]string{"Exposure", fmt.Sprintf("%.3f", st.Exposure)})
	table.Append([]string{"Mode", fmt.Sprintf("ray=%t bvh=%t motion=%t", st.Mode.RayMode, st.Mode.UseBVH, st.Mode.ShowMotion)})
	table.Append([]string{"BVH nodes / triangles", fmt.Sprintf("%d / %d", bst.NodeCount, bst.TriangleCount)})

	reasons := make([]string, 0, len(st.ResetsByReason))
	for r := range st.ResetsByReason {
		reasons = append(reasons, r)
	}
	sort.Strings(reasons)
	for _, r := range reasons {
		table.Append([]string{"Resets (" + r + ")", fmt.Sprintf("%d", st.ResetsByReason[r])})
	}
	table.SetFooter([]string{"Resets", fmt.Sprintf("%d", st.Resets)})
	table.Render()
}
