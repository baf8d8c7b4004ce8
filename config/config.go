// Package config describes an odometry setup and builds the matching integrator.
package config

import (
	"math"

	"github.com/pkg/errors"
	"go.viam.com/utils"

	"go.sixtron.dev/odometry/control"
	"go.sixtron.dev/odometry/kinematics"
	"go.sixtron.dev/odometry/logging"
	"go.sixtron.dev/odometry/odometry"
)

// Drive types.
const (
	DriveDifferential = "differential"
	DriveHolonomic    = "holonomic"
)

// Config configures one drivetrain's odometry.
type Config struct {
	// RateHz is the update rate, at most control.MaxFrequency.
	RateHz       float64             `json:"rate_hz"`
	Drive        string              `json:"drive"`
	Differential *DifferentialConfig `json:"differential,omitempty"`
	Holonomic    *HolonomicConfig    `json:"holonomic,omitempty"`
	LogLevel     string              `json:"log_level,omitempty"`
}

// DifferentialConfig holds the constants of a two-wheel differential drive.
type DifferentialConfig struct {
	EncoderResolution float64 `json:"encoder_resolution"`
	WheelRadius       float64 `json:"wheel_radius"`
	WheelSeparation   float64 `json:"wheel_separation"`
}

// HolonomicConfig holds the geometry of an N-wheel holonomic drive.
type HolonomicConfig struct {
	WheelCount       int     `json:"wheel_count"`
	DistanceToCenter float64 `json:"distance_to_center"`
	MountingOffset   float64 `json:"mounting_offset,omitempty"`
	// MetersPerTick defaults to 1 when unset.
	MetersPerTick float64 `json:"meters_per_tick,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (cfg *Config) Validate(path string) error {
	if cfg.RateHz == 0 {
		return utils.NewConfigValidationFieldRequiredError(path, "rate_hz")
	}
	if !positiveFinite(cfg.RateHz) {
		return utils.NewConfigValidationError(path, errors.Errorf("rate_hz must be positive, got %v", cfg.RateHz))
	}
	if cfg.RateHz > control.MaxFrequency {
		return utils.NewConfigValidationError(path, errors.Errorf("rate_hz must be at most %v, got %v", control.MaxFrequency, cfg.RateHz))
	}
	if _, err := logging.LevelFromString(cfg.LogLevel); err != nil {
		return utils.NewConfigValidationError(path, err)
	}

	switch cfg.Drive {
	case "":
		return utils.NewConfigValidationFieldRequiredError(path, "drive")
	case DriveDifferential:
		if cfg.Differential == nil {
			return utils.NewConfigValidationFieldRequiredError(path, "differential")
		}
		return cfg.Differential.Validate(path + "." + DriveDifferential)
	case DriveHolonomic:
		if cfg.Holonomic == nil {
			return utils.NewConfigValidationFieldRequiredError(path, "holonomic")
		}
		return cfg.Holonomic.Validate(path + "." + DriveHolonomic)
	default:
		return utils.NewConfigValidationError(path, errors.Errorf("unsupported drive %q", cfg.Drive))
	}
}

// Validate ensures all parts of the differential config are valid.
func (cfg *DifferentialConfig) Validate(path string) error {
	for _, field := range []struct {
		name  string
		value float64
	}{
		{"encoder_resolution", cfg.EncoderResolution},
		{"wheel_radius", cfg.WheelRadius},
		{"wheel_separation", cfg.WheelSeparation},
	} {
		if field.value == 0 {
			return utils.NewConfigValidationFieldRequiredError(path, field.name)
		}
		if !positiveFinite(field.value) {
			return utils.NewConfigValidationError(path, errors.Errorf("%s must be positive, got %v", field.name, field.value))
		}
	}
	return nil
}

// Validate ensures all parts of the holonomic config are valid.
func (cfg *HolonomicConfig) Validate(path string) error {
	if cfg.WheelCount == 0 {
		return utils.NewConfigValidationFieldRequiredError(path, "wheel_count")
	}
	if cfg.DistanceToCenter == 0 {
		return utils.NewConfigValidationFieldRequiredError(path, "distance_to_center")
	}
	if err := kinematics.ValidateGeometry(cfg.WheelCount, cfg.DistanceToCenter); err != nil {
		return utils.NewConfigValidationError(path, err)
	}
	if math.IsNaN(cfg.MountingOffset) || math.IsInf(cfg.MountingOffset, 0) {
		return utils.NewConfigValidationError(path, errors.New("mounting_offset must be finite"))
	}
	if cfg.MetersPerTick != 0 && !positiveFinite(cfg.MetersPerTick) {
		return utils.NewConfigValidationError(path, errors.Errorf("meters_per_tick must be positive, got %v", cfg.MetersPerTick))
	}
	return nil
}

// Level returns the configured log level, INFO when unset.
func (cfg *Config) Level() (logging.Level, error) {
	return logging.LevelFromString(cfg.LogLevel)
}

// WheelCount returns how many encoders the configured drive reads.
func (cfg *Config) WheelCount() int {
	switch {
	case cfg.Drive == DriveHolonomic && cfg.Holonomic != nil:
		return cfg.Holonomic.WheelCount
	case cfg.Drive == DriveDifferential:
		return 2
	default:
		return 0
	}
}

// Build validates the config and constructs the configured integrator. The log level
// is left for the caller to apply.
func (cfg *Config) Build(logger logging.Logger) (odometry.Integrator, error) {
	if err := cfg.Validate("odometry"); err != nil {
		return nil, err
	}
	logger = logger.Sublogger(cfg.Drive)

	switch cfg.Drive {
	case DriveDifferential:
		d := cfg.Differential
		diff, err := odometry.NewDifferential(cfg.RateHz, d.EncoderResolution, d.WheelRadius, d.WheelSeparation, logger)
		if err != nil {
			return nil, err
		}
		return diff, nil
	case DriveHolonomic:
		h := cfg.Holonomic
		var opts []odometry.HolonomicOption
		if h.MetersPerTick != 0 {
			opts = append(opts, odometry.WithMetersPerTick(h.MetersPerTick))
		}
		holo, err := odometry.NewHolonomic(cfg.RateHz, h.WheelCount, h.DistanceToCenter, h.MountingOffset, logger, opts...)
		if err != nil {
			return nil, err
		}
		return holo, nil
	default:
		return nil, errors.Errorf("unsupported drive %q", cfg.Drive)
	}
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}
