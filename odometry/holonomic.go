package odometry

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"go.sixtron.dev/odometry/kinematics"
	"go.sixtron.dev/odometry/logging"
	"go.sixtron.dev/odometry/spatialmath"
)

// HolonomicOption configures optional Holonomic parameters.
type HolonomicOption func(*Holonomic)

// WithMetersPerTick scales every encoder reading before it enters the kinematic model.
// The default of 1 treats readings as already expressed in meters of wheel travel.
func WithMetersPerTick(metersPerTick float64) HolonomicOption {
	return func(h *Holonomic) {
		h.metersPerTick = metersPerTick
	}
}

// Holonomic integrates the pose of an N-wheel omnidirectional drive.
//
// Each update maps the cumulative wheel readings through the reverse kinematic matrix to
// a cumulative body-frame [x, y, theta], takes the difference with the previous update,
// and rotates that difference into the global frame by the current body heading plus the
// mounting offset. All matrices are allocated at construction.
type Holonomic struct {
	state

	wheelCount       int
	distanceToCenter float64
	mountingOffset   float64
	metersPerTick    float64

	reverse       *mat.Dense    // 3×N
	rotation      *mat.Dense    // 3×3, only the top-left block changes
	encoders      *mat.VecDense // N
	local         *mat.VecDense // 3
	previousLocal *mat.VecDense // 3
	delta         *mat.VecDense // 3
	globalDelta   *mat.VecDense // 3
}

var (
	_ Integrator        = (*Holonomic)(nil)
	_ TangentialSpeeder = (*Holonomic)(nil)
)

// NewHolonomic returns a holonomic drive integrator updated at rateHz, for wheelCount
// wheels evenly spaced distanceToCenter meters from the center, mounted mountingOffset
// radians from the robot's forward axis. It fails with kinematics.ErrInvalidGeometry when
// the wheel placement cannot be inverted.
func NewHolonomic(
	rateHz float64,
	wheelCount int,
	distanceToCenter, mountingOffset float64,
	logger logging.Logger,
	opts ...HolonomicOption,
) (*Holonomic, error) {
	if err := checkPositive("rate_hz", rateHz); err != nil {
		return nil, err
	}
	if math.IsNaN(mountingOffset) || math.IsInf(mountingOffset, 0) {
		return nil, errors.Wrapf(ErrInvalidParameter, "mounting_offset must be finite, got %v", mountingOffset)
	}

	h := &Holonomic{
		state:            state{rateHz: rateHz},
		wheelCount:       wheelCount,
		distanceToCenter: distanceToCenter,
		mountingOffset:   mountingOffset,
		metersPerTick:    1,
	}
	for _, opt := range opts {
		opt(h)
	}
	if err := checkPositive("meters_per_tick", h.metersPerTick); err != nil {
		return nil, err
	}

	reverse, err := kinematics.NewReverseMatrix(wheelCount, distanceToCenter)
	if err != nil {
		return nil, err
	}
	h.reverse = reverse
	h.rotation = mat.NewDense(3, 3, nil)
	h.rotation.Set(2, 2, 1)
	h.encoders = mat.NewVecDense(wheelCount, nil)
	h.local = mat.NewVecDense(3, nil)
	h.previousLocal = mat.NewVecDense(3, nil)
	h.delta = mat.NewVecDense(3, nil)
	h.globalDelta = mat.NewVecDense(3, nil)
	h.updateRotation(0)

	logger.Debugw("holonomic odometry constants",
		"rate_hz", rateHz,
		"wheel_count", wheelCount,
		"distance_to_center", distanceToCenter,
		"mounting_offset", mountingOffset,
		"meters_per_tick", h.metersPerTick)
	return h, nil
}

// Update advances the pose by one period from one cumulative reading per wheel, in
// mounting order starting at the wheel on the forward axis.
func (h *Holonomic) Update(ticks []int64) error {
	if len(ticks) != h.wheelCount {
		return errors.Wrapf(ErrWheelCountMismatch, "got %d readings for %d wheels", len(ticks), h.wheelCount)
	}
	for i, t := range ticks {
		h.encoders.SetVec(i, float64(t)*h.metersPerTick)
	}

	h.local.MulVec(h.reverse, h.encoders)
	h.delta.SubVec(h.local, h.previousLocal)

	// Rebuilt from the current heading each call, never composed incrementally.
	h.updateRotation(h.local.AtVec(2))
	h.globalDelta.MulVec(h.rotation, h.delta)

	h.raw.X += h.globalDelta.AtVec(0)
	h.raw.Y += h.globalDelta.AtVec(1)
	h.raw.Theta += h.globalDelta.AtVec(2)

	h.velocity = spatialmath.Velocity{
		Linear:     h.delta.AtVec(0) * h.rateHz,
		Tangential: h.delta.AtVec(1) * h.rateHz,
		Angular:    h.delta.AtVec(2) * h.rateHz,
	}

	h.previousLocal.CopyVec(h.local)
	return nil
}

func (h *Holonomic) updateRotation(heading float64) {
	sin, cos := math.Sincos(heading + h.mountingOffset)
	h.rotation.Set(0, 0, cos)
	h.rotation.Set(0, 1, -sin)
	h.rotation.Set(1, 0, sin)
	h.rotation.Set(1, 1, cos)
}

// Step implements Integrator.
func (h *Holonomic) Step(ticks []int64) error {
	return h.Update(ticks)
}

// WheelCount returns the number of wheels.
func (h *Holonomic) WheelCount() int {
	return h.wheelCount
}

// SpeedTan returns the sideways body-frame speed computed by the last update.
func (h *Holonomic) SpeedTan() float64 {
	return h.velocity.Tangential
}

// Properties reports all three velocity components.
func (h *Holonomic) Properties() Properties {
	return Properties{
		LinearVelocitySupported:     true,
		TangentialVelocitySupported: true,
		AngularVelocitySupported:    true,
	}
}

// Local returns the cumulative body-frame displacement computed by the last update.
func (h *Holonomic) Local() spatialmath.Pose {
	return spatialmath.NewPose(h.local.AtVec(0), h.local.AtVec(1), h.local.AtVec(2))
}

// Reverse returns a copy of the reverse kinematic matrix.
func (h *Holonomic) Reverse() *mat.Dense {
	return mat.DenseCopyOf(h.reverse)
}
