package odometry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestReadings(t *testing.T) {
	d := newTestDifferential(t)
	d.Update(100, 100)

	readings := Readings(d)
	test.That(t, len(readings), test.ShouldEqual, 4)
	test.That(t, readings["position"], test.ShouldResemble, r3.Vector{X: d.X(), Y: d.Y()})
	test.That(t, readings["theta"], test.ShouldEqual, 0.)
	test.That(t, readings["linear_velocity"], test.ShouldResemble, r3.Vector{X: d.SpeedLin()})
	test.That(t, readings["angular_velocity"], test.ShouldResemble, r3.Vector{})
	_, ok := readings["tangential_velocity"]
	test.That(t, ok, test.ShouldBeFalse)

	h := newTestHolonomic(t, 3, 0)
	test.That(t, h.Update([]int64{2000, -1000, -1000}), test.ShouldBeNil)
	readings = Readings(h)
	test.That(t, len(readings), test.ShouldEqual, 5)
	test.That(t, readings["tangential_velocity"], test.ShouldAlmostEqual, h.SpeedTan(), 1e-12)
}

func TestIntegratorsArePolymorphic(t *testing.T) {
	integrators := []Integrator{newTestDifferential(t), newTestHolonomic(t, 3, 0)}
	for _, in := range integrators {
		ticks := make([]int64, in.WheelCount())
		for i := range ticks {
			ticks[i] = int64(1000 * (i + 1))
		}
		test.That(t, in.Step(ticks), test.ShouldBeNil)
		test.That(t, in.RateHz(), test.ShouldEqual, testRate)
		test.That(t, in.Properties().LinearVelocitySupported, test.ShouldBeTrue)
		test.That(t, in.Pose(), test.ShouldResemble, in.RawPose())
	}
}

func TestTrace(t *testing.T) {
	var tr Trace
	_, ok := tr.Last()
	test.That(t, ok, test.ShouldBeFalse)

	d := newTestDifferential(t)
	for k := int64(1); k <= 3; k++ {
		d.Update(k*100, k*120)
		tr.Record(int(k), d)
	}
	test.That(t, len(tr), test.ShouldEqual, 3)

	last, ok := tr.Last()
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, last.Step, test.ShouldEqual, 3)
	test.That(t, last.Pose, test.ShouldResemble, d.Pose())
	test.That(t, last.Velocity, test.ShouldResemble, d.Velocity())

	out := tr.String()
	test.That(t, out, test.ShouldContainSubstring, "STEP")
	test.That(t, strings.Count(out, "\n"), test.ShouldBeGreaterThanOrEqualTo, 5)
}

func TestTraceSavePlot(t *testing.T) {
	var tr Trace
	dir := t.TempDir()
	test.That(t, tr.SavePlot(filepath.Join(dir, "empty.png")), test.ShouldBeError, "cannot plot an empty trace")

	d := newTestDifferential(t)
	for k := int64(1); k <= 10; k++ {
		d.Update(k*100, k*150)
		tr.Record(int(k), d)
	}
	path := tr.Path()
	test.That(t, len(path), test.ShouldEqual, 10)
	test.That(t, path[9].X, test.ShouldEqual, d.X())
	test.That(t, path[9].Y, test.ShouldEqual, d.Y())

	out := filepath.Join(dir, "trajectory.png")
	test.That(t, tr.SavePlot(out), test.ShouldBeNil)
	info, err := os.Stat(out)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, info.Size(), test.ShouldBeGreaterThan, 0)
}
