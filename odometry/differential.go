package odometry

import (
	"math"

	"github.com/pkg/errors"

	"go.sixtron.dev/odometry/logging"
)

// Differential integrates the pose of a two-wheel differential drive.
//
// Distances and headings are integrated in encoder ticks and converted to meters and
// radians after each update. Each step moves along the chord at the midpoint heading
// of the step, which keeps the arc error second order in the heading change.
type Differential struct {
	state

	encoderResolution float64 // ticks per wheel revolution
	wheelRadius       float64 // meters
	wheelSeparation   float64 // meters, between the two encoder wheels

	wheelCircumference       float64
	ticksPerMeter            float64
	metersPerTick            float64
	metersPerRobotRevolution float64
	ticksPerRobotRevolution  float64
	radiansPerTick           float64
	ticksPerRadian           float64

	tickX, tickY  float64
	tickTheta     float64
	robotDistance float64
}

var _ Integrator = (*Differential)(nil)

// NewDifferential returns a differential drive integrator updated at rateHz, for encoders
// of encoderResolution ticks per revolution on wheels of wheelRadius meters, wheelSeparation
// meters apart. All four values must be positive and finite.
func NewDifferential(
	rateHz, encoderResolution, wheelRadius, wheelSeparation float64,
	logger logging.Logger,
) (*Differential, error) {
	for _, p := range []struct {
		name  string
		value float64
	}{
		{"rate_hz", rateHz},
		{"encoder_resolution", encoderResolution},
		{"wheel_radius", wheelRadius},
		{"wheel_separation", wheelSeparation},
	} {
		if err := checkPositive(p.name, p.value); err != nil {
			return nil, err
		}
	}

	d := &Differential{
		state:             state{rateHz: rateHz},
		encoderResolution: encoderResolution,
		wheelRadius:       wheelRadius,
		wheelSeparation:   wheelSeparation,
	}
	d.wheelCircumference = 2 * math.Pi * wheelRadius
	d.ticksPerMeter = encoderResolution / d.wheelCircumference
	d.metersPerTick = 1 / d.ticksPerMeter
	d.metersPerRobotRevolution = math.Pi * wheelSeparation
	d.ticksPerRobotRevolution = d.MetersToTicks(d.metersPerRobotRevolution)
	d.radiansPerTick = math.Pi / (d.ticksPerRobotRevolution / 2)
	d.ticksPerRadian = 1 / d.radiansPerTick

	logger.Debugw("differential odometry constants",
		"rate_hz", rateHz,
		"wheel_circumference", d.wheelCircumference,
		"ticks_per_meter", d.ticksPerMeter,
		"ticks_per_robot_revolution", d.ticksPerRobotRevolution)
	return d, nil
}

func checkPositive(name string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) || value <= 0 {
		return errors.Wrapf(ErrInvalidParameter, "%s must be positive, got %v", name, value)
	}
	return nil
}

// Update advances the pose by one period from the cumulative left and right encoder
// counts. Counts must start at zero when the integrator is built.
func (d *Differential) Update(left, right int64) {
	newDistance := (float64(left) + float64(right)) / 2
	deltaDistance := newDistance - d.robotDistance

	newAngle := (float64(right) - float64(left)) / 2
	dTheta := newAngle - d.tickTheta

	midAngle := d.TicksToRadians(d.tickTheta + dTheta/2)
	d.tickX += deltaDistance * math.Cos(midAngle)
	d.tickY += deltaDistance * math.Sin(midAngle)
	d.tickTheta += dTheta
	d.robotDistance += deltaDistance

	d.raw.X = d.TicksToMeters(d.tickX)
	d.raw.Y = d.TicksToMeters(d.tickY)
	d.raw.Theta = d.TicksToRadians(d.tickTheta)

	d.velocity.Linear = d.TicksToMeters(deltaDistance) * d.rateHz
	d.velocity.Angular = d.TicksToRadians(dTheta) * d.rateHz
}

// Step implements Integrator with ticks ordered [left, right].
func (d *Differential) Step(ticks []int64) error {
	if len(ticks) != 2 {
		return errors.Wrapf(ErrWheelCountMismatch, "differential drive needs 2 readings, got %d", len(ticks))
	}
	d.Update(ticks[0], ticks[1])
	return nil
}

// WheelCount is always 2.
func (d *Differential) WheelCount() int {
	return 2
}

// Properties reports linear and angular velocity only.
func (d *Differential) Properties() Properties {
	return Properties{LinearVelocitySupported: true, AngularVelocitySupported: true}
}

// TicksToMeters converts a wheel travel in ticks to meters.
func (d *Differential) TicksToMeters(ticks float64) float64 {
	return ticks * d.metersPerTick
}

// MetersToTicks converts a wheel travel in meters to ticks.
func (d *Differential) MetersToTicks(meters float64) float64 {
	return meters * d.ticksPerMeter
}

// TicksToRadians converts a differential tick count, (right - left) / 2, to a robot heading.
func (d *Differential) TicksToRadians(ticks float64) float64 {
	return ticks * d.radiansPerTick
}

// RadiansToTicks converts a robot heading to a differential tick count.
func (d *Differential) RadiansToTicks(radians float64) float64 {
	return radians * d.ticksPerRadian
}

// TicksPerMeter is the number of ticks for one meter of wheel travel.
func (d *Differential) TicksPerMeter() float64 {
	return d.ticksPerMeter
}

// TicksPerRobotRevolution is the wheel travel in ticks of one full in-place turn.
func (d *Differential) TicksPerRobotRevolution() float64 {
	return d.ticksPerRobotRevolution
}
