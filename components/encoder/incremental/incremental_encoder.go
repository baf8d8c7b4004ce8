// Package incremental implements a quadrature incremental encoder.
package incremental

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"go.viam.com/utils"

	"go.sixtron.dev/odometry/components/encoder"
	"go.sixtron.dev/odometry/logging"
)

// Edge is a level change reported by a Pin.
type Edge struct {
	High             bool
	TimestampNanosec uint64
}

// Pin is a digital input that reports its level changes to registered channels.
type Pin interface {
	// Value returns the current level, 0 or 1.
	Value(ctx context.Context) (int64, error)
	AddCallback(ch chan Edge)
	RemoveCallback(ch chan Edge)
}

// Encoder keeps track of a wheel position using a rotary incremental encoder.
type Encoder struct {
	A, B     Pin
	position atomic.Int64
	pRaw     atomic.Int64
	pState   int64

	logger                  logging.Logger
	cancelFunc              func()
	activeBackgroundWorkers sync.WaitGroup
}

var _ encoder.Encoder = (*Encoder)(nil)

// NewIncrementalEncoder creates a new Encoder reading channels a and b, and starts
// decoding. Close must be called to stop the background thread.
func NewIncrementalEncoder(ctx context.Context, a, b Pin, logger logging.Logger) (*Encoder, error) {
	if a == nil || b == nil {
		return nil, errors.New("incremental encoder needs both an a and a b pin")
	}
	e := &Encoder{
		A:      a,
		B:      b,
		logger: logger,
	}
	if err := e.start(ctx); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Encoder) start(ctx context.Context) error {
	/**
	  a rotary encoder looks like
	  picture from https://github.com/joan2937/pigpio/blob/master/EXAMPLES/C/ROTARY_ENCODER/rotary_encoder.c
	    1   2     3    4    1    2    3    4     1

	            +---------+         +---------+      0
	            |         |         |         |
	  A         |         |         |         |
	            |         |         |         |
	  +---------+         +---------+         +----- 1

	      +---------+         +---------+            0
	      |         |         |         |
	  B   |         |         |         |
	      |         |         |         |
	  ----+         +---------+         +---------+  1

	*/

	// State Transition Table
	//     +---------------+----+----+----+----+
	//     | pState/nState | 00 | 01 | 10 | 11 |
	//     +---------------+----+----+----+----+
	//     |       00      | 0  | -1 | +1 | x  |
	//     +---------------+----+----+----+----+
	//     |       01      | +1 | 0  | x  | -1 |
	//     +---------------+----+----+----+----+
	//     |       10      | -1 | x  | 0  | +1 |
	//     +---------------+----+----+----+----+
	//     |       11      | x  | +1 | -1 | 0  |
	//     +---------------+----+----+----+----+
	// 0 -> same state
	// x -> impossible state

	aLevel, errA := e.A.Value(ctx)
	bLevel, errB := e.B.Value(ctx)
	if err := multierr.Combine(
		errors.Wrap(errA, "error reading a level"),
		errors.Wrap(errB, "error reading b level"),
	); err != nil {
		return err
	}
	e.pState = aLevel | (bLevel << 1)

	chanA := make(chan Edge)
	chanB := make(chan Edge)
	e.A.AddCallback(chanA)
	e.B.AddCallback(chanB)

	cancelCtx, cancelFunc := context.WithCancel(ctx)
	e.cancelFunc = cancelFunc
	e.activeBackgroundWorkers.Add(1)
	utils.ManagedGo(func() {
		defer e.A.RemoveCallback(chanA)
		defer e.B.RemoveCallback(chanB)
		for {
			var edge Edge
			select {
			case <-cancelCtx.Done():
				return
			case edge = <-chanA:
				aLevel = 0
				if edge.High {
					aLevel = 1
				}
			case edge = <-chanB:
				bLevel = 0
				if edge.High {
					bLevel = 1
				}
			}
			nState := aLevel | (bLevel << 1)
			if e.pState == nState {
				continue
			}
			switch (e.pState << 2) | nState {
			case 0b0001, 0b0111, 0b1000, 0b1110:
				e.dec()
			case 0b0010, 0b0100, 0b1011, 0b1101:
				e.inc()
			default:
				// both channels changed at once, the direction is unknown
				e.logger.Debugw("skipped impossible quadrature transition", "from", e.pState, "to", nState)
			}
			e.position.Store(e.pRaw.Load() >> 1)
			e.pState = nState
		}
	}, e.activeBackgroundWorkers.Done)
	return nil
}

// TicksCount returns the current position in ticks, one tick per two edges.
func (e *Encoder) TicksCount(ctx context.Context) (int64, error) {
	return e.position.Load(), nil
}

// RawPosition returns the raw position of the encoder, one count per edge.
func (e *Encoder) RawPosition() int64 {
	return e.pRaw.Load()
}

func (e *Encoder) inc() {
	e.pRaw.Inc()
}

func (e *Encoder) dec() {
	e.pRaw.Dec()
}

// Close shuts down the Encoder.
func (e *Encoder) Close() error {
	e.logger.Debug("closing incremental encoder")
	e.cancelFunc()
	e.activeBackgroundWorkers.Wait()
	return nil
}
