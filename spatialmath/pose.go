// Package spatialmath defines planar poses and velocities for wheeled odometry.
package spatialmath

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
)

// Pose is a robot position (meters) and heading (radians) in a fixed global frame.
// Theta is not bounded; see NormalizeAngle.
type Pose struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Theta float64 `json:"theta"`
}

// NewPose returns a pose at (x, y) with heading theta.
func NewPose(x, y, theta float64) Pose {
	return Pose{X: x, Y: y, Theta: theta}
}

// NewZeroPose returns the origin pose.
func NewZeroPose() Pose {
	return Pose{}
}

// Add returns the componentwise sum p + o.
func (p Pose) Add(o Pose) Pose {
	return Pose{X: p.X + o.X, Y: p.Y + o.Y, Theta: p.Theta + o.Theta}
}

// Sub returns the componentwise difference p - o.
func (p Pose) Sub(o Pose) Pose {
	return Pose{X: p.X - o.X, Y: p.Y - o.Y, Theta: p.Theta - o.Theta}
}

// Point returns the position part of the pose as a vector in the ground plane.
func (p Pose) Point() r3.Vector {
	return r3.Vector{X: p.X, Y: p.Y}
}

// Normalized returns the pose with its heading wrapped into [-pi, pi).
func (p Pose) Normalized() Pose {
	p.Theta = NormalizeAngle(p.Theta)
	return p
}

func (p Pose) String() string {
	return fmt.Sprintf("X:%.4f, Y:%.4f, Theta:%.4f", p.X, p.Y, p.Theta)
}

// PoseAlmostEqual returns true if every component of a and b is within epsilon.
func PoseAlmostEqual(a, b Pose, epsilon float64) bool {
	return math.Abs(a.X-b.X) <= epsilon &&
		math.Abs(a.Y-b.Y) <= epsilon &&
		math.Abs(a.Theta-b.Theta) <= epsilon
}
