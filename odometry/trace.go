package odometry

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"

	"go.sixtron.dev/odometry/spatialmath"
)

// TraceEntry is the state of an Odometry after one update.
type TraceEntry struct {
	Step     int
	Pose     spatialmath.Pose
	Velocity spatialmath.Velocity
}

// Trace is an ordered record of odometry states.
type Trace []TraceEntry

// Record appends the current state of o.
func (tr *Trace) Record(step int, o Odometry) {
	*tr = append(*tr, TraceEntry{Step: step, Pose: o.Pose(), Velocity: o.Velocity()})
}

// Last returns the most recent entry, false when the trace is empty.
func (tr Trace) Last() (TraceEntry, bool) {
	if len(tr) == 0 {
		return TraceEntry{}, false
	}
	return tr[len(tr)-1], true
}

// String prints a table of each entry, with columns of step, position, heading and velocity.
func (tr Trace) String() string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Step", "X (m)", "Y (m)", "Theta (deg)", "Lin (m/s)", "Tan (m/s)", "Ang (rad/s)"})
	for _, e := range tr {
		t.AppendRow(table.Row{
			e.Step,
			fmt.Sprintf("%.4f", e.Pose.X),
			fmt.Sprintf("%.4f", e.Pose.Y),
			fmt.Sprintf("%.2f", spatialmath.RadToDeg(e.Pose.Theta)),
			fmt.Sprintf("%.4f", e.Velocity.Linear),
			fmt.Sprintf("%.4f", e.Velocity.Tangential),
			fmt.Sprintf("%.4f", e.Velocity.Angular),
		})
	}
	return t.Render()
}
