// Package control runs odometry at a fixed rate, reading a group of encoders and
// feeding the readings to an integrator once per period.
package control

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.viam.com/utils"

	"go.sixtron.dev/odometry/components/encoder"
	"go.sixtron.dev/odometry/logging"
	"go.sixtron.dev/odometry/odometry"
	"go.sixtron.dev/odometry/spatialmath"
)

const (
	// MaxFrequency is the highest loop rate accepted, in Hz.
	MaxFrequency = 1000.
	// DefaultMaxReadErrors is how many consecutive failed encoder reads stop a running loop.
	DefaultMaxReadErrors = 100
)

// ErrTooManyReadErrors is recorded by a loop that stopped because its encoders kept failing.
var ErrTooManyReadErrors = errors.New("too many consecutive encoder read errors")

// Option configures a Loop.
type Option func(*Loop)

// WithClock drives the loop ticker from clk instead of the wall clock.
func WithClock(clk clock.Clock) Option {
	return func(l *Loop) {
		l.clk = clk
	}
}

// WithMaxReadErrors sets how many consecutive failed reads stop a running loop.
func WithMaxReadErrors(n int) Option {
	return func(l *Loop) {
		l.maxReadErrors = n
	}
}

// Loop holds the loop state. The integrator is only touched with mu held.
type Loop struct {
	logger        logging.Logger
	clk           clock.Clock
	encoders      encoder.Group
	dt            time.Duration
	maxReadErrors int

	tickMu     sync.Mutex // serializes Tick
	readings   []int64
	readErrors int

	mu         sync.Mutex
	integrator odometry.Integrator
	steps      int
	err        error

	cancel                  context.CancelFunc
	running                 bool
	activeBackgroundWorkers sync.WaitGroup
}

// NewLoop constructs a loop feeding integrator with one reading per encoder, at the
// integrator's rate.
func NewLoop(logger logging.Logger, integrator odometry.Integrator, encoders encoder.Group, opts ...Option) (*Loop, error) {
	if integrator == nil {
		return nil, errors.New("loop needs an integrator")
	}
	if len(encoders) != integrator.WheelCount() {
		return nil, errors.Wrapf(odometry.ErrWheelCountMismatch,
			"%d encoders for %d wheels", len(encoders), integrator.WheelCount())
	}
	frequency := integrator.RateHz()
	if frequency <= 0 || frequency > MaxFrequency {
		return nil, errors.Errorf("loop frequency shouldn't be 0 or above %.0fHz", MaxFrequency)
	}
	l := &Loop{
		logger:        logger,
		clk:           clock.New(),
		encoders:      encoders,
		dt:            time.Duration(float64(time.Second) / frequency),
		maxReadErrors: DefaultMaxReadErrors,
		readings:      make([]int64, len(encoders)),
		integrator:    integrator,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.maxReadErrors <= 0 {
		l.maxReadErrors = DefaultMaxReadErrors
	}
	return l, nil
}

// Period returns the time between two ticks.
func (l *Loop) Period() time.Duration {
	return l.dt
}

// Tick reads every encoder once and, if all reads succeed, steps the integrator.
// A failed read leaves the odometry untouched.
func (l *Loop) Tick(ctx context.Context) error {
	l.tickMu.Lock()
	defer l.tickMu.Unlock()

	if err := l.encoders.Read(ctx, l.readings); err != nil {
		l.readErrors++
		return errors.Wrap(err, "reading encoders")
	}
	l.readErrors = 0

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.integrator.Step(l.readings); err != nil {
		return err
	}
	l.steps++
	return nil
}

// Start starts the loop. Calling Start on a running loop does nothing.
func (l *Loop) Start(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.running {
		return nil
	}
	l.err = nil
	if l.cancel != nil {
		l.cancel()
	}
	cancelCtx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.running = true

	l.logger.Infow("running loop", "frequency", l.integrator.RateHz(), "period", l.dt)
	ticker := l.clk.Ticker(l.dt)
	l.activeBackgroundWorkers.Add(1)
	utils.ManagedGo(func() {
		defer ticker.Stop()
		for {
			select {
			case <-cancelCtx.Done():
				return
			case <-ticker.C:
			}
			if err := l.Tick(cancelCtx); err != nil {
				if cancelCtx.Err() != nil {
					return
				}
				if l.tooManyErrors() {
					l.fail(errors.Wrap(ErrTooManyReadErrors, err.Error()))
					return
				}
				l.logger.Warnw("tick failed", "error", err)
			}
		}
	}, l.activeBackgroundWorkers.Done)
	return nil
}

func (l *Loop) tooManyErrors() bool {
	l.tickMu.Lock()
	defer l.tickMu.Unlock()
	return l.readErrors >= l.maxReadErrors
}

func (l *Loop) fail(err error) {
	l.logger.Errorw("stopping loop", "error", err)
	l.mu.Lock()
	defer l.mu.Unlock()
	l.err = err
	l.running = false
}

// Stop stops the loop and waits for its background thread to exit.
func (l *Loop) Stop() {
	l.mu.Lock()
	cancel := l.cancel
	l.cancel = nil
	l.running = false
	l.mu.Unlock()
	if cancel != nil {
		l.logger.Debug("closing loop")
		cancel()
	}
	l.activeBackgroundWorkers.Wait()
}

// Running reports whether the background thread is ticking.
func (l *Loop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

// Err returns why the loop stopped on its own, if it did.
func (l *Loop) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// Steps returns how many periods have been integrated.
func (l *Loop) Steps() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.steps
}

// Pose returns the calibrated pose.
func (l *Loop) Pose() spatialmath.Pose {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.integrator.Pose()
}

// Velocity returns the velocity computed by the last step.
func (l *Loop) Velocity() spatialmath.Velocity {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.integrator.Velocity()
}

// SetPos recalibrates the integrator between two ticks.
func (l *Loop) SetPos(pose spatialmath.Pose) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.integrator.SetPos(pose)
}

// Readings returns odometry.Readings taken between two ticks.
func (l *Loop) Readings() map[string]interface{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	return odometry.Readings(l.integrator)
}

// Record appends the current state to tr as step number Steps.
func (l *Loop) Record(tr *odometry.Trace) {
	l.mu.Lock()
	defer l.mu.Unlock()
	tr.Record(l.steps, l.integrator)
}
