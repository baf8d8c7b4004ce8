// Package main is the odometry CLI command itself.
package main

import (
	"os"

	"go.sixtron.dev/odometry/cli"
	"go.sixtron.dev/odometry/logging"
)

func main() {
	app := cli.NewApp(os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		logging.Global().Error(err)
		os.Exit(1)
	}
}
