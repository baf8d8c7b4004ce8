package odometry

import (
	"errors"
	"math"
	"testing"

	"go.viam.com/test"

	"go.sixtron.dev/odometry/logging"
	"go.sixtron.dev/odometry/spatialmath"
)

const (
	testRate       = 100.
	testResolution = 4096.
	testRadius     = 0.03
	testSeparation = 0.2
)

func newTestDifferential(t *testing.T) *Differential {
	t.Helper()
	d, err := NewDifferential(testRate, testResolution, testRadius, testSeparation, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	return d
}

func TestDifferentialConstants(t *testing.T) {
	d := newTestDifferential(t)

	circumference := 2 * math.Pi * testRadius
	test.That(t, d.TicksPerMeter(), test.ShouldAlmostEqual, testResolution/circumference, 1e-9)
	test.That(t, d.TicksPerRobotRevolution(), test.ShouldAlmostEqual, math.Pi*testSeparation*testResolution/circumference, 1e-9)
	test.That(t, d.TicksToMeters(testResolution), test.ShouldAlmostEqual, circumference, 1e-12)
	test.That(t, d.TicksToRadians(d.TicksPerRobotRevolution()), test.ShouldAlmostEqual, 2*math.Pi, 1e-12)
	test.That(t, d.WheelCount(), test.ShouldEqual, 2)
	test.That(t, d.RateHz(), test.ShouldEqual, testRate)
}

func TestDifferentialInvalidParameters(t *testing.T) {
	logger := logging.NewTestLogger(t)
	for _, tc := range []struct {
		name                               string
		rate, resolution, radius, distance float64
	}{
		{"zero rate", 0, testResolution, testRadius, testSeparation},
		{"negative resolution", testRate, -1, testRadius, testSeparation},
		{"zero radius", testRate, testResolution, 0, testSeparation},
		{"nan separation", testRate, testResolution, testRadius, math.NaN()},
		{"infinite rate", math.Inf(1), testResolution, testRadius, testSeparation},
	} {
		t.Run(tc.name, func(t *testing.T) {
			d, err := NewDifferential(tc.rate, tc.resolution, tc.radius, tc.distance, logger)
			test.That(t, d, test.ShouldBeNil)
			test.That(t, errors.Is(err, ErrInvalidParameter), test.ShouldBeTrue)
		})
	}
}

func TestDifferentialZeroMotion(t *testing.T) {
	d := newTestDifferential(t)

	test.That(t, d.Pose(), test.ShouldResemble, spatialmath.Pose{})
	test.That(t, d.Velocity(), test.ShouldResemble, spatialmath.Velocity{})

	d.Update(120, 340)
	first := d.Pose()
	test.That(t, d.SpeedLin(), test.ShouldNotEqual, 0)

	for i := 0; i < 10; i++ {
		d.Update(120, 340)
		test.That(t, d.Pose(), test.ShouldResemble, first)
		test.That(t, d.SpeedLin(), test.ShouldEqual, 0)
		test.That(t, d.SpeedAng(), test.ShouldEqual, 0)
	}
}

func TestDifferentialStraightLine(t *testing.T) {
	d := newTestDifferential(t)

	const step = 100
	const steps = 50
	for k := int64(1); k <= steps; k++ {
		d.Update(k*step, k*step)
	}

	test.That(t, d.Theta(), test.ShouldEqual, 0)
	test.That(t, d.X(), test.ShouldAlmostEqual, steps*d.TicksToMeters(step), 1e-12)
	test.That(t, d.Y(), test.ShouldEqual, 0)
	test.That(t, d.SpeedLin(), test.ShouldAlmostEqual, d.TicksToMeters(step)*testRate, 1e-12)
	test.That(t, d.SpeedAng(), test.ShouldEqual, 0)

	// reversing retraces the line
	for k := int64(steps - 1); k >= 0; k-- {
		d.Update(k*step, k*step)
	}
	test.That(t, d.X(), test.ShouldAlmostEqual, 0, 1e-12)
	test.That(t, d.SpeedLin(), test.ShouldAlmostEqual, -d.TicksToMeters(step)*testRate, 1e-12)
}

func TestDifferentialPureRotation(t *testing.T) {
	d := newTestDifferential(t)

	const step = 25
	const steps = 40
	for k := int64(1); k <= steps; k++ {
		d.Update(-k*step, k*step)
		test.That(t, d.X(), test.ShouldEqual, 0)
		test.That(t, d.Y(), test.ShouldEqual, 0)
		// step is per wheel: the wheel difference of 2*step is halved into the heading
		test.That(t, d.Theta(), test.ShouldAlmostEqual, float64(k)*d.TicksToRadians(step), 1e-12)
	}
	test.That(t, d.SpeedLin(), test.ShouldEqual, 0)
	test.That(t, d.SpeedAng(), test.ShouldAlmostEqual, d.TicksToRadians(step)*testRate, 1e-12)

	// a full in-place turn in each wheel direction
	perWheel := int64(math.Round(d.TicksPerRobotRevolution()))
	d2 := newTestDifferential(t)
	d2.Update(-perWheel, perWheel)
	test.That(t, d2.Theta(), test.ShouldAlmostEqual, 2*math.Pi, 1e-3)
}

func TestDifferentialHeadingIsUnbounded(t *testing.T) {
	d := newTestDifferential(t)
	perWheel := d.TicksPerRobotRevolution()
	// three full turns, in 300 steps
	for k := 1; k <= 300; k++ {
		w := int64(math.Round(3 * perWheel * float64(k) / 300))
		d.Update(-w, w)
	}
	test.That(t, d.Theta(), test.ShouldAlmostEqual, 6*math.Pi, 1e-3)
	test.That(t, spatialmath.NormalizeAngle(d.Theta()), test.ShouldAlmostEqual, 0, 1e-3)
}

func TestDifferentialArc(t *testing.T) {
	d := newTestDifferential(t)

	const left, right = 90, 110
	const steps = 400
	for k := int64(1); k <= steps; k++ {
		d.Update(k*left, k*right)
	}

	dsPerStep := d.TicksToMeters((left + right) / 2)
	dthetaPerStep := d.TicksToRadians((right - left) / 2)
	radius := dsPerStep / dthetaPerStep
	theta := steps * dthetaPerStep

	test.That(t, d.Theta(), test.ShouldAlmostEqual, theta, 1e-9)
	test.That(t, d.X(), test.ShouldAlmostEqual, radius*math.Sin(theta), 1e-5)
	test.That(t, d.Y(), test.ShouldAlmostEqual, radius*(1-math.Cos(theta)), 1e-5)
	test.That(t, d.SpeedLin(), test.ShouldAlmostEqual, dsPerStep*testRate, 1e-9)
	test.That(t, d.SpeedAng(), test.ShouldAlmostEqual, dthetaPerStep*testRate, 1e-9)
}

func TestDifferentialRoundTripConversions(t *testing.T) {
	d := newTestDifferential(t)
	for _, ticks := range []float64{0, 1, -1, 4096, 123456.5, -98765432, 1e12} {
		tolerance := math.Abs(ticks)*1e-12 + 1e-12
		test.That(t, d.MetersToTicks(d.TicksToMeters(ticks)), test.ShouldAlmostEqual, ticks, tolerance)
		test.That(t, d.RadiansToTicks(d.TicksToRadians(ticks)), test.ShouldAlmostEqual, ticks, tolerance)
	}
}

func TestDifferentialStep(t *testing.T) {
	d := newTestDifferential(t)
	test.That(t, d.Step([]int64{100, 100}), test.ShouldBeNil)
	test.That(t, d.X(), test.ShouldAlmostEqual, d.TicksToMeters(100), 1e-12)

	err := d.Step([]int64{1, 2, 3})
	test.That(t, errors.Is(err, ErrWheelCountMismatch), test.ShouldBeTrue)
	test.That(t, d.X(), test.ShouldAlmostEqual, d.TicksToMeters(100), 1e-12)
}

func TestDifferentialHasNoTangentialSpeed(t *testing.T) {
	d := newTestDifferential(t)
	d.Update(10, 30)

	props := d.Properties()
	test.That(t, props.LinearVelocitySupported, test.ShouldBeTrue)
	test.That(t, props.AngularVelocitySupported, test.ShouldBeTrue)
	test.That(t, props.TangentialVelocitySupported, test.ShouldBeFalse)
	test.That(t, d.Velocity().Tangential, test.ShouldEqual, 0)

	_, err := SpeedTan(d)
	test.That(t, err, test.ShouldEqual, ErrMethodUnimplementedTangentialVelocity)
}
