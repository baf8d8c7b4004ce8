// Package fake implements a fake encoder.
package fake

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.viam.com/utils"
)

// DefaultUpdateInterval is how often a started Encoder advances its position.
const DefaultUpdateInterval = 10 * time.Millisecond

// Encoder keeps track of a fake wheel position.
type Encoder struct {
	clk                     clock.Clock
	updateInterval          time.Duration
	mu                      sync.Mutex
	position                int64
	speed                   float64 // ticks per second
	remainder               float64 // fractional ticks not yet counted
	cancel                  context.CancelFunc
	activeBackgroundWorkers sync.WaitGroup
}

// NewEncoder returns a stopped encoder at position zero driven by clk. A nil clock
// means the wall clock.
func NewEncoder(clk clock.Clock, updateInterval time.Duration) *Encoder {
	if clk == nil {
		clk = clock.New()
	}
	if updateInterval <= 0 {
		updateInterval = DefaultUpdateInterval
	}
	return &Encoder{clk: clk, updateInterval: updateInterval}
}

// TicksCount returns the current position in terms of ticks.
func (e *Encoder) TicksCount(ctx context.Context) (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.position, nil
}

// SetSpeed sets the speed of the fake wheel in ticks per second.
func (e *Encoder) SetSpeed(speed float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.speed = speed
}

// SetPosition sets the position of the encoder.
func (e *Encoder) SetPosition(position int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.position = position
	e.remainder = 0
}

// Advance moves the position by speed*d. Fractions of a tick carry over to the next call.
func (e *Encoder) Advance(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	travel := e.remainder + e.speed*d.Seconds()
	whole := math.Trunc(travel)
	e.position += int64(whole)
	e.remainder = travel - whole
}

// Start starts a background thread that advances the encoder every update interval.
func (e *Encoder) Start(ctx context.Context) {
	e.mu.Lock()
	if e.cancel != nil {
		e.mu.Unlock()
		return
	}
	cancelCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.mu.Unlock()

	// created here so that clock advances made right after Start are observed
	ticker := e.clk.Ticker(e.updateInterval)
	e.activeBackgroundWorkers.Add(1)
	utils.ManagedGo(func() {
		defer ticker.Stop()
		for {
			select {
			case <-cancelCtx.Done():
				return
			case <-ticker.C:
				e.Advance(e.updateInterval)
			}
		}
	}, e.activeBackgroundWorkers.Done)
}

// Close stops the background thread, if any.
func (e *Encoder) Close() error {
	e.mu.Lock()
	cancel := e.cancel
	e.cancel = nil
	e.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	e.activeBackgroundWorkers.Wait()
	return nil
}
