package main

import (
	"os"
	"runtime"

	"github.com/urfave/cli"
)

func init() {
	// GLFW must be driven from the main thread.
	runtime.LockOSThread()
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "oxytrace"
	app.Usage = "progressive BVH ray tracer front end"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}

	sceneFlags := []cli.Flag{
		cli.StringFlag{
			Name:  "model, m",
			Usage: "model file (.obj, .gltf or .glb) to build the BVH from",
		},
		cli.StringFlag{
			Name:  "primitive",
			Value: "cube",
			Usage: "procedural model used when --model is not set: cube, sphere, plane or scene",
		},
		cli.IntFlag{
			Name:  "leaf-max",
			Value: 8,
			Usage: "maximum triangles per BVH leaf",
		},
	}
	frameFlags := []cli.Flag{
		cli.IntFlag{
			Name:  "width",
			Value: 1280,
			Usage: "framebuffer width",
		},
		cli.IntFlag{
			Name:  "height",
			Value: 720,
			Usage: "framebuffer height",
		},
		cli.StringFlag{
			Name:  "params, p",
			Usage: "JSON file overlaying the default render parameters",
		},
		cli.StringFlag{
			Name:  "env",
			Usage: "4x3 cube cross image (.png, .jpg, .bmp or .tiff) used as the environment map",
		},
		cli.IntFlag{
			Name:  "env-max-face",
			Value: 1024,
			Usage: "downsample environment faces larger than this many texels",
		},
		cli.StringFlag{
			Name:  "metrics-addr",
			Usage: "serve prometheus metrics on this address, e.g. :9090",
		},
	}

	app.Commands = []cli.Command{
		{
			Name:  "run",
			Usage: "open a window and run the interactive frame loop",
			Description: `
Open a window with a WebGPU surface, build the BVH for the selected model and
run the progressive frame loop until the window is closed or Escape is pressed.`,
			Flags: append(append([]cli.Flag{
				cli.BoolFlag{
					Name:  "uncapped",
					Usage: "present without vsync",
				},
				cli.BoolFlag{
					Name:  "profile",
					Usage: "log frame rate and memory statistics every second",
				},
			}, sceneFlags...), frameFlags...),
			Action: RunInteractive,
		},
		{
			Name:  "headless",
			Usage: "run the frame loop without a window or GPU",
			Description: `
Run the frame loop against the in-memory resource backend with a scripted camera
orbit followed by a still phase, then print frame and reset statistics.`,
			Flags: append(append([]cli.Flag{
				cli.IntFlag{
					Name:  "frames",
					Value: 120,
					Usage: "number of frames to run",
				},
			}, sceneFlags...), frameFlags...),
			Action: RunHeadless,
		},
		{
			Name:  "bvh",
			Usage: "build and validate a BVH and print its statistics",
			Flags: sceneFlags,
			Action: BuildBVH,
		},
	}
	return app
}
