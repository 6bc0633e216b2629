// Package estimate defines the contract to the external pose-estimation
// model and the pass-through configuration handed to it.
package estimate

import (
	"context"
	"image"

	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"go.viam.com/posematch/pose"
)

// Mode selects how many subjects the model looks for per frame.
type Mode string

// The supported estimation modes.
const (
	ModeSingle Mode = "single"
	ModeMulti  Mode = "multi"
)

// Default tuning values, matching the stock PoseNet camera settings. They
// are externally supplied constants; nothing here is derived from data.
const (
	DefaultSingleMinPoseConfidence = 0.1
	DefaultSingleMinPartConfidence = 0.5
	DefaultMultiMinPoseConfidence  = 0.15
	DefaultMultiMinPartConfidence  = 0.1
	DefaultMaxDetections           = 5
	DefaultScoreThreshold          = 0.5
	DefaultNMSRadius               = 30.0
)

// Config is the tuning surface of the model plus the confidence gates
// applied to its output. MaxDetections, ScoreThreshold and NMSRadius only
// apply to ModeMulti.
type Config struct {
	Mode              Mode    `json:"mode"`
	FlipHorizontal    bool    `json:"flip_horizontal"`
	MaxDetections     int     `json:"max_detections,omitempty"`
	ScoreThreshold    float64 `json:"score_threshold,omitempty"`
	NMSRadius         float64 `json:"nms_radius,omitempty"`
	MinPoseConfidence float64 `json:"min_pose_confidence,omitempty"`
	MinPartConfidence float64 `json:"min_part_confidence,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (c *Config) Validate(path string) error {
	switch c.Mode {
	case ModeSingle, ModeMulti:
	case "":
		return goutils.NewConfigValidationFieldRequiredError(path, "mode")
	default:
		return goutils.NewConfigValidationError(path, errors.Errorf("unknown mode %q", c.Mode))
	}
	if c.MaxDetections < 0 {
		return goutils.NewConfigValidationError(path, errors.New("max_detections cannot be negative"))
	}
	for field, v := range map[string]float64{
		"score_threshold":     c.ScoreThreshold,
		"min_pose_confidence": c.MinPoseConfidence,
		"min_part_confidence": c.MinPartConfidence,
	} {
		if v < 0 || v > 1 {
			return goutils.NewConfigValidationError(path, errors.Errorf("%s must be in [0,1]", field))
		}
	}
	if c.NMSRadius < 0 {
		return goutils.NewConfigValidationError(path, errors.New("nms_radius cannot be negative"))
	}
	return nil
}

// WithDefaults returns a copy of the config with unset tuning values
// filled in for its mode.
func (c Config) WithDefaults() Config {
	if c.MinPoseConfidence == 0 {
		if c.Mode == ModeMulti {
			c.MinPoseConfidence = DefaultMultiMinPoseConfidence
		} else {
			c.MinPoseConfidence = DefaultSingleMinPoseConfidence
		}
	}
	if c.MinPartConfidence == 0 {
		if c.Mode == ModeMulti {
			c.MinPartConfidence = DefaultMultiMinPartConfidence
		} else {
			c.MinPartConfidence = DefaultSingleMinPartConfidence
		}
	}
	if c.Mode == ModeMulti {
		if c.MaxDetections == 0 {
			c.MaxDetections = DefaultMaxDetections
		}
		if c.ScoreThreshold == 0 {
			c.ScoreThreshold = DefaultScoreThreshold
		}
		if c.NMSRadius == 0 {
			c.NMSRadius = DefaultNMSRadius
		}
	}
	return c
}

// Estimator is the external pose-estimation model. Implementations are
// black boxes: accuracy and thresholds are pass-through configuration, not
// recomputed here.
type Estimator interface {
	// EstimatePoses runs the model over img and returns one Pose per
	// detected subject, most confident first.
	EstimatePoses(ctx context.Context, img image.Image) ([]pose.Pose, error)
	// Close releases the resources backing the model.
	Close(ctx context.Context) error
}
