// Package encoder defines the cumulative tick sources that feed odometry.
package encoder

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// An Encoder reports the cumulative tick count of one wheel.
type Encoder interface {
	// TicksCount returns the number of ticks since power-on. It is never reset.
	TicksCount(ctx context.Context) (int64, error)
}

// TicksFunc adapts a function to the Encoder interface.
type TicksFunc func(ctx context.Context) (int64, error)

// TicksCount calls f.
func (f TicksFunc) TicksCount(ctx context.Context) (int64, error) {
	return f(ctx)
}

// Group is an ordered set of encoders read together, one per wheel.
type Group []Encoder

// Read fills dst with one reading per encoder, in order. Every encoder is read even if
// an earlier one fails; failures are combined into the returned error and their slots in
// dst are left unchanged.
func (g Group) Read(ctx context.Context, dst []int64) error {
	if len(dst) != len(g) {
		return errors.Errorf("expected a buffer of %d readings, got %d", len(g), len(dst))
	}
	var errs error
	for i, e := range g {
		ticks, err := e.TicksCount(ctx)
		if err != nil {
			errs = multierr.Append(errs, errors.Wrapf(err, "encoder %d", i))
			continue
		}
		dst[i] = ticks
	}
	return errs
}
