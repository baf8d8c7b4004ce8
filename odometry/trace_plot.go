package odometry

import (
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// PlotSize is the width and height of a saved trajectory plot.
const PlotSize = 6 * vg.Inch

// Path returns the X, Y positions of the trace in order.
func (tr Trace) Path() plotter.XYs {
	return lo.Map(tr, func(e TraceEntry, _ int) plotter.XY {
		return plotter.XY{X: e.Pose.X, Y: e.Pose.Y}
	})
}

// SavePlot draws the trajectory of the trace in the odometry frame and writes it to
// path. The image format follows the file extension (.png, .svg, .pdf, ...).
func (tr Trace) SavePlot(path string) error {
	if len(tr) == 0 {
		return errors.New("cannot plot an empty trace")
	}
	p := plot.New()
	p.Title.Text = "odometry trajectory"
	p.X.Label.Text = "x (m)"
	p.Y.Label.Text = "y (m)"

	line, points, err := plotter.NewLinePoints(tr.Path())
	if err != nil {
		return errors.Wrap(err, "cannot build trajectory line")
	}
	points.GlyphStyle.Radius = vg.Points(1.5)
	p.Add(plotter.NewGrid(), line, points)

	if err := p.Save(PlotSize, PlotSize, path); err != nil {
		return errors.Wrapf(err, "cannot save plot to %q", path)
	}
	return nil
}
