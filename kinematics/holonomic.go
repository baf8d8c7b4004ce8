// Package kinematics builds the wheel kinematic model of an N-wheel holonomic base.
//
// Wheels are mounted at equal angular spacing 2*pi/N around the center of the robot.
// The direct model maps a body velocity [Vx, Vy, omega] to one velocity per wheel; the
// reverse model is its least-squares pseudo-inverse, mapping wheel displacements back to
// a body displacement [dx, dy, dtheta].
package kinematics

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// MinWheelCount is the smallest wheel count with an invertible model.
const MinWheelCount = 3

// MaxConditionNumber bounds the condition number of DᵀD. Above it the reverse matrix
// is numerically meaningless.
const MaxConditionNumber = 1e12

// ErrInvalidGeometry is returned when the wheel placement cannot be inverted.
var ErrInvalidGeometry = errors.New("invalid holonomic wheel geometry")

// WheelAngle returns the mounting angle of wheel i out of wheelCount, in radians.
func WheelAngle(i, wheelCount int) float64 {
	return float64(i) * 2 * math.Pi / float64(wheelCount)
}

// DirectMatrix returns the wheelCount×3 matrix D whose row i is
// [-sin(a_i), cos(a_i), distanceToCenter].
func DirectMatrix(wheelCount int, distanceToCenter float64) *mat.Dense {
	direct := mat.NewDense(wheelCount, 3, nil)
	for i := 0; i < wheelCount; i++ {
		angle := WheelAngle(i, wheelCount)
		direct.Set(i, 0, -math.Sin(angle))
		direct.Set(i, 1, math.Cos(angle))
		direct.Set(i, 2, distanceToCenter)
	}
	return direct
}

// ValidateGeometry checks the preconditions of NewReverseMatrix without building it.
func ValidateGeometry(wheelCount int, distanceToCenter float64) error {
	if wheelCount < MinWheelCount {
		return errors.Wrapf(ErrInvalidGeometry, "need at least %d wheels, got %d", MinWheelCount, wheelCount)
	}
	if math.IsNaN(distanceToCenter) || math.IsInf(distanceToCenter, 0) || distanceToCenter <= 0 {
		return errors.Wrapf(ErrInvalidGeometry, "distance to center must be positive, got %v", distanceToCenter)
	}
	return nil
}

// NewReverseMatrix returns the 3×wheelCount matrix (DᵀD)⁻¹·Dᵀ.
func NewReverseMatrix(wheelCount int, distanceToCenter float64) (*mat.Dense, error) {
	if err := ValidateGeometry(wheelCount, distanceToCenter); err != nil {
		return nil, err
	}
	direct := DirectMatrix(wheelCount, distanceToCenter)

	var normal mat.Dense
	normal.Mul(direct.T(), direct)
	if cond := mat.Cond(&normal, 2); cond > MaxConditionNumber {
		return nil, errors.Wrapf(ErrInvalidGeometry, "kinematic model is ill-conditioned (condition number %g)", cond)
	}

	var normalInv mat.Dense
	if err := normalInv.Inverse(&normal); err != nil {
		return nil, errors.Wrapf(ErrInvalidGeometry, "cannot invert kinematic model: %v", err)
	}

	reverse := mat.NewDense(3, wheelCount, nil)
	reverse.Mul(&normalInv, direct.T())
	return reverse, nil
}

// WheelDisplacements applies the direct model to a body displacement and returns one
// displacement per wheel.
func WheelDisplacements(wheelCount int, distanceToCenter, dx, dy, dtheta float64) []float64 {
	direct := DirectMatrix(wheelCount, distanceToCenter)
	wheels := mat.NewVecDense(wheelCount, nil)
	wheels.MulVec(direct, mat.NewVecDense(3, []float64{dx, dy, dtheta}))
	return wheels.RawVector().Data
}
