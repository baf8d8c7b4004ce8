package cli

import (
	"fmt"
	"io"
	"math"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.viam.com/utils"

	"go.sixtron.dev/odometry/components/encoder"
	"go.sixtron.dev/odometry/components/encoder/fake"
	"go.sixtron.dev/odometry/config"
	"go.sixtron.dev/odometry/control"
	"go.sixtron.dev/odometry/kinematics"
	"go.sixtron.dev/odometry/logging"
	"go.sixtron.dev/odometry/odometry"
)

// setup reads the config named by the command and builds the logger, integrator and a
// loop over one fake encoder per wheel.
func setup(c *cli.Context) (*config.Config, logging.Logger, *control.Loop, []*fake.Encoder, error) {
	cfg, err := config.Read(c.String(flagConfig))
	if err != nil {
		return nil, nil, nil, nil, err
	}

	var logger logging.Logger
	if c.Bool(flagDebug) {
		logger = logging.NewDebugLogger("odometry")
	} else {
		logger = logging.NewLogger("odometry")
		level, err := cfg.Level()
		if err != nil {
			return nil, nil, nil, nil, err
		}
		logger.SetLevel(level)
	}

	integrator, err := cfg.Build(logger)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	wheels := make([]*fake.Encoder, integrator.WheelCount())
	group := make(encoder.Group, len(wheels))
	for i := range wheels {
		wheels[i] = fake.NewEncoder(nil, 0)
		group[i] = wheels[i]
	}
	loop, err := control.NewLoop(logger.Sublogger("loop"), integrator, group)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return cfg, logger, loop, wheels, nil
}

// SimulateAction is the corresponding Action for 'simulate'.
func SimulateAction(c *cli.Context) error {
	steps := c.Int(flagSteps)
	printEvery := c.Int(flagPrintEvery)
	if steps <= 0 {
		return errors.Errorf("--%s must be positive", flagSteps)
	}
	if printEvery <= 0 {
		return errors.Errorf("--%s must be positive", flagPrintEvery)
	}

	cfg, logger, loop, wheels, err := setup(c)
	if err != nil {
		return err
	}
	increments, err := periodIncrements(c, cfg)
	if err != nil {
		return err
	}
	logger.Debugw("simulating", "steps", steps, "increments", increments)

	var trace, path odometry.Trace
	loop.Record(&trace)
	loop.Record(&path)
	positions := make([]int64, len(wheels))
	for step := 1; step <= steps; step++ {
		for i, w := range wheels {
			positions[i] += increments[i]
			w.SetPosition(positions[i])
		}
		if err := loop.Tick(c.Context); err != nil {
			return errors.Wrapf(err, "step %d", step)
		}
		if step%printEvery == 0 || step == steps {
			loop.Record(&trace)
		}
		loop.Record(&path)
	}
	if plotFile := c.String(flagPlot); plotFile != "" {
		if err := path.SavePlot(plotFile); err != nil {
			return err
		}
		logger.Infow("saved trajectory plot", "file", plotFile, "points", len(path))
	}

	fmt.Fprintln(c.App.Writer, trace.String())
	printFinal(c.App.Writer, loop)
	return nil
}

// periodIncrements returns the ticks each wheel advances by per period, from either
// --ticks or, for a holonomic drive, --body.
func periodIncrements(c *cli.Context, cfg *config.Config) ([]int64, error) {
	wheelCount := cfg.WheelCount()
	switch {
	case c.IsSet(flagTicks) && c.IsSet(flagBody):
		return nil, errors.Errorf("only one of --%s and --%s can be given", flagTicks, flagBody)
	case c.IsSet(flagTicks):
		ticks := c.Int64Slice(flagTicks)
		if len(ticks) != wheelCount {
			return nil, errors.Wrapf(odometry.ErrWheelCountMismatch, "got %d --%s values for %d wheels", len(ticks), flagTicks, wheelCount)
		}
		return ticks, nil
	case c.IsSet(flagBody):
		if cfg.Drive != config.DriveHolonomic {
			return nil, errors.Errorf("--%s needs a %s drive", flagBody, config.DriveHolonomic)
		}
		body := c.Float64Slice(flagBody)
		if len(body) != 3 {
			return nil, errors.Errorf("--%s takes dx,dy,dtheta, got %d values", flagBody, len(body))
		}
		metersPerTick := cfg.Holonomic.MetersPerTick
		if metersPerTick == 0 {
			metersPerTick = 1
		}
		displacements := kinematics.WheelDisplacements(wheelCount, cfg.Holonomic.DistanceToCenter, body[0], body[1], body[2])
		ticks := make([]int64, wheelCount)
		for i, d := range displacements {
			ticks[i] = int64(math.Round(d / metersPerTick))
		}
		return ticks, nil
	default:
		return nil, errors.Errorf("one of --%s or --%s is required", flagTicks, flagBody)
	}
}

// RunAction is the corresponding Action for 'run'.
func RunAction(c *cli.Context) error {
	_, logger, loop, wheels, err := setup(c)
	if err != nil {
		return err
	}
	speeds := c.Float64Slice(flagSpeeds)
	if len(speeds) != len(wheels) {
		return errors.Wrapf(odometry.ErrWheelCountMismatch, "got %d --%s values for %d wheels", len(speeds), flagSpeeds, len(wheels))
	}

	for i, w := range wheels {
		w.SetSpeed(speeds[i])
		w.Start(c.Context)
		defer utils.UncheckedErrorFunc(w.Close)
	}
	if err := loop.Start(c.Context); err != nil {
		return err
	}
	utils.SelectContextOrWait(c.Context, c.Duration(flagDuration))
	loop.Stop()
	if err := loop.Err(); err != nil {
		return err
	}
	logger.Debugw("run finished", "steps", loop.Steps())

	var trace odometry.Trace
	loop.Record(&trace)
	fmt.Fprintln(c.App.Writer, trace.String())
	printFinal(c.App.Writer, loop)
	return nil
}

func printFinal(w io.Writer, loop *control.Loop) {
	fmt.Fprintf(w, "periods: %d\n", loop.Steps())
	fmt.Fprintf(w, "pose: %s\n", loop.Pose())
	fmt.Fprintf(w, "velocity: %s\n", loop.Velocity())
}
