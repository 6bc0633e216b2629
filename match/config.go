package match

import (
	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"go.viam.com/posematch/estimate"
)

// DefaultFrameRate is how many refresh ticks per second the session
// consumes when the host supplies no rate of its own.
const DefaultFrameRate = 30.0

// Config wires a session together.
type Config struct {
	// ReferenceImage identifies the still image the reference pose is
	// extracted from; resolution is up to the ImageLoader.
	ReferenceImage string `json:"reference_image"`
	// ToleranceDeg is the scoring tolerance window in degrees.
	ToleranceDeg float64 `json:"tolerance_deg,omitempty"`
	// FrameRate paces the frame loop, in ticks per second.
	FrameRate float64 `json:"frame_rate,omitempty"`
	// ReferenceMinConfidence gates the one-shot reference pose. The
	// reference path always estimates in single-subject terms, so this
	// defaults to the single-pose threshold regardless of Estimation.Mode.
	ReferenceMinConfidence float64 `json:"reference_min_confidence,omitempty"`

	Estimation estimate.Config `json:"estimation"`
}

// Validate ensures all parts of the config are valid.
func (c *Config) Validate(path string) error {
	if c.ReferenceImage == "" {
		return goutils.NewConfigValidationFieldRequiredError(path, "reference_image")
	}
	if c.ToleranceDeg < 0 {
		return goutils.NewConfigValidationError(path, errors.New("tolerance_deg cannot be negative"))
	}
	if c.FrameRate < 0 {
		return goutils.NewConfigValidationError(path, errors.New("frame_rate cannot be negative"))
	}
	if c.ReferenceMinConfidence < 0 || c.ReferenceMinConfidence > 1 {
		return goutils.NewConfigValidationError(path, errors.New("reference_min_confidence must be in [0,1]"))
	}
	return c.Estimation.Validate(path + ".estimation")
}

// WithDefaults returns a copy of the config with unset values filled in.
func (c Config) WithDefaults() Config {
	if c.ToleranceDeg == 0 {
		c.ToleranceDeg = DefaultToleranceDeg
	}
	if c.FrameRate == 0 {
		c.FrameRate = DefaultFrameRate
	}
	if c.ReferenceMinConfidence == 0 {
		c.ReferenceMinConfidence = estimate.DefaultSingleMinPoseConfidence
	}
	c.Estimation = c.Estimation.WithDefaults()
	return c
}
