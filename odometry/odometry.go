// Package odometry estimates the planar pose and velocity of a wheeled robot from
// cumulative wheel-encoder tick counts.
//
// Two drivetrains are supported: a two-wheel differential drive (Differential) and an
// N-wheel holonomic drive (Holonomic). Both are fed cumulative counts, one call per
// period of a fixed-rate loop, and expose the same read accessors and the same
// recalibration behavior through the Odometry interface.
//
// Integrators are not safe for concurrent use. See the control package for a loop that
// owns an integrator and serializes access to it.
package odometry

import (
	"github.com/pkg/errors"

	"go.sixtron.dev/odometry/spatialmath"
)

var (
	// ErrInvalidParameter is returned by constructors given a non-positive or non-finite constant.
	ErrInvalidParameter = errors.New("invalid odometry parameter")
	// ErrWheelCountMismatch is returned when an update does not carry one reading per wheel.
	ErrWheelCountMismatch = errors.New("encoder reading count does not match wheel count")
	// ErrMethodUnimplementedTangentialVelocity is returned by SpeedTan for drivetrains
	// that cannot move sideways.
	ErrMethodUnimplementedTangentialVelocity = errors.New("tangential velocity unimplemented")
)

// Properties tells you which velocity components an Odometry reports meaningfully.
type Properties struct {
	LinearVelocitySupported     bool
	TangentialVelocitySupported bool
	AngularVelocitySupported    bool
}

// Odometry is the read and recalibration side of a drivetrain integrator.
type Odometry interface {
	// X, Y and Theta return the calibrated pose components (meters, meters, radians).
	X() float64
	Y() float64
	Theta() float64
	Pose() spatialmath.Pose

	// SpeedLin and SpeedAng return the velocity computed by the last update, zero before it.
	SpeedLin() float64
	SpeedAng() float64
	Velocity() spatialmath.Velocity

	// SetPos re-anchors the reported pose so that Pose returns pose. Later motion is
	// turned by the heading correction. Tick-domain integration state is left untouched.
	SetPos(pose spatialmath.Pose)
	// Offset is the live calibration offset, the raw pose at the last SetPos minus the
	// requested pose. With a zero heading offset, reported pose = raw pose - offset.
	Offset() spatialmath.Pose
	// RawPose is the pose integrated since construction, ignoring calibration.
	RawPose() spatialmath.Pose

	Properties() Properties
	// RateHz is the rate update is expected to be called at.
	RateHz() float64
}

// An Integrator is an Odometry that can be advanced one period with cumulative readings,
// one per wheel, in the drivetrain's wheel order.
type Integrator interface {
	Odometry
	Step(ticks []int64) error
	WheelCount() int
}

// TangentialSpeeder is implemented by drivetrains that can translate sideways.
type TangentialSpeeder interface {
	SpeedTan() float64
}

// SpeedTan returns the tangential speed of o, or ErrMethodUnimplementedTangentialVelocity
// when o does not support it.
func SpeedTan(o Odometry) (float64, error) {
	ts, ok := o.(TangentialSpeeder)
	if !ok || !o.Properties().TangentialVelocitySupported {
		return 0, ErrMethodUnimplementedTangentialVelocity
	}
	return ts.SpeedTan(), nil
}

// Readings is a helper for getting all readings from an Odometry.
func Readings(o Odometry) map[string]interface{} {
	pose := o.Pose()
	vel := o.Velocity()
	readings := map[string]interface{}{
		"position":         pose.Point(),
		"theta":            pose.Theta,
		"linear_velocity":  vel.LinearVector(),
		"angular_velocity": vel.AngularVector(),
	}
	if o.Properties().TangentialVelocitySupported {
		readings["tangential_velocity"] = vel.Tangential
	}
	return readings
}

// state holds what every drivetrain shares: the rate, the raw pose, the last velocity
// and the calibration.
type state struct {
	rateHz   float64
	raw      spatialmath.Pose
	velocity spatialmath.Velocity
	calib    calibration
}

func (s *state) X() float64 {
	return s.Pose().X
}

func (s *state) Y() float64 {
	return s.Pose().Y
}

func (s *state) Theta() float64 {
	return s.Pose().Theta
}

func (s *state) Pose() spatialmath.Pose {
	return s.calib.apply(s.raw)
}

func (s *state) SpeedLin() float64 {
	return s.velocity.Linear
}

func (s *state) SpeedAng() float64 {
	return s.velocity.Angular
}

func (s *state) Velocity() spatialmath.Velocity {
	return s.velocity
}

func (s *state) SetPos(pose spatialmath.Pose) {
	s.calib.set(s.raw, pose)
}

func (s *state) Offset() spatialmath.Pose {
	return s.calib.offset()
}

func (s *state) RawPose() spatialmath.Pose {
	return s.raw
}

func (s *state) RateHz() float64 {
	return s.rateHz
}
