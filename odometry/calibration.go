package odometry

import (
	"math"

	"go.sixtron.dev/odometry/spatialmath"
)

// calibration re-anchors the externally visible pose.
//
// anchor is the raw pose at the time of the last SetPos and origin the pose requested
// then. Motion since the anchor is turned by the heading correction origin.Theta -
// anchor.Theta and added to origin, so the reported pose is exactly origin until the
// robot moves again and later motion follows the calibrated heading.
type calibration struct {
	anchor spatialmath.Pose
	origin spatialmath.Pose
}

func (c *calibration) set(raw, requested spatialmath.Pose) {
	*c = calibration{anchor: raw, origin: requested}
}

func (c *calibration) apply(raw spatialmath.Pose) spatialmath.Pose {
	moved := raw.Sub(c.anchor)
	sin, cos := math.Sincos(c.origin.Theta - c.anchor.Theta)
	return spatialmath.Pose{
		X:     c.origin.X + moved.X*cos - moved.Y*sin,
		Y:     c.origin.Y + moved.X*sin + moved.Y*cos,
		Theta: c.origin.Theta + moved.Theta,
	}
}

func (c *calibration) offset() spatialmath.Pose {
	return c.anchor.Sub(c.origin)
}
