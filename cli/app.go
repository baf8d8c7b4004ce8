// Package cli contains the odometry command line.
package cli

import (
	"io"
	"time"

	"github.com/urfave/cli/v2"
)

const (
	flagDebug      = "debug"
	flagConfig     = "config"
	flagSteps      = "steps"
	flagTicks      = "ticks"
	flagBody       = "body"
	flagPrintEvery = "print-every"
	flagPlot       = "plot"
	flagSpeeds     = "speeds"
	flagDuration   = "duration"
)

// newApp builds the app. Slice flags keep parsed values, so each app gets its own flags.
func newApp() *cli.App {
	return &cli.App{
		Name:            "odometry",
		Usage:           "integrate wheel encoder ticks into a robot pose",
		HideHelpCommand: true,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    flagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "simulate",
				Usage:     "step the odometry with fixed per-period wheel increments",
				UsageText: "odometry simulate --config FILE [--steps K] [--plot FILE] (--ticks d1,d2,... | --body dx,dy,dtheta)",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     flagConfig,
						Aliases:  []string{"c"},
						Required: true,
						Usage:    "load odometry configuration from `FILE` (.json, .yaml or .yml)",
					},
					&cli.IntFlag{
						Name:  flagSteps,
						Value: 100,
						Usage: "number of loop periods to simulate",
					},
					&cli.Int64SliceFlag{
						Name:  flagTicks,
						Usage: "ticks added to each wheel every period, in wheel order",
					},
					&cli.Float64SliceFlag{
						Name:  flagBody,
						Usage: "holonomic only: body-frame displacement dx,dy,dtheta per period (meters, radians)",
					},
					&cli.IntFlag{
						Name:  flagPrintEvery,
						Value: 10,
						Usage: "record a table row every `P` periods",
					},
					&cli.StringFlag{
						Name:  flagPlot,
						Usage: "save the trajectory of every period to `FILE` (.png, .svg or .pdf)",
					},
				},
				Action: SimulateAction,
			},
			{
				Name:      "run",
				Usage:     "run the odometry loop in real time against fake encoders",
				UsageText: "odometry run --config FILE --speeds s1,s2,... [--duration D]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     flagConfig,
						Aliases:  []string{"c"},
						Required: true,
						Usage:    "load odometry configuration from `FILE` (.json, .yaml or .yml)",
					},
					&cli.Float64SliceFlag{
						Name:     flagSpeeds,
						Required: true,
						Usage:    "speed of each wheel in ticks per second, in wheel order",
					},
					&cli.DurationFlag{
						Name:  flagDuration,
						Value: time.Second,
						Usage: "how long to run",
					},
				},
				Action: RunAction,
			},
		},
	}
}

// NewApp returns a new app with the CLI API, Writer set to out, and ErrWriter
// set to errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	app := newApp()
	app.Writer = out
	app.ErrWriter = errOut
	return app
}
