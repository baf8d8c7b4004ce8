package spatialmath

import (
	"fmt"

	"github.com/golang/geo/r3"
)

// Velocity is the body-frame velocity of the robot. Linear is along the heading,
// Tangential is perpendicular to it (always zero for a differential drive), both in m/s.
// Angular is in rad/s.
type Velocity struct {
	Linear     float64 `json:"linear"`
	Tangential float64 `json:"tangential"`
	Angular    float64 `json:"angular"`
}

// LinearVector returns the translational part as a body-frame vector.
func (v Velocity) LinearVector() r3.Vector {
	return r3.Vector{X: v.Linear, Y: v.Tangential}
}

// AngularVector returns the rotational part as a vector about the vertical axis.
func (v Velocity) AngularVector() r3.Vector {
	return r3.Vector{Z: v.Angular}
}

func (v Velocity) String() string {
	return fmt.Sprintf("Lin:%.4f, Tan:%.4f, Ang:%.4f", v.Linear, v.Tangential, v.Angular)
}
