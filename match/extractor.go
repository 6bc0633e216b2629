package match

import (
	"context"
	"image"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"

	"go.viam.com/posematch/estimate"
	"go.viam.com/posematch/pose"
)

// Extractor turns raw model output for one frame into per-subject live
// features.
type Extractor struct {
	est    estimate.Estimator
	cfg    estimate.Config
	triple pose.JointTriple
	logger golog.Logger
}

// NewExtractor returns an extractor gating on cfg's mode and thresholds.
func NewExtractor(est estimate.Estimator, cfg estimate.Config, triple pose.JointTriple, logger golog.Logger) *Extractor {
	return &Extractor{est: est, cfg: cfg.WithDefaults(), triple: triple, logger: logger}
}

// ExtractLive runs estimation over frame and returns one LiveState per
// subject that clears the mode's pose-confidence gate, alongside the kept
// poses in matching order. Each subject is independent; there is no
// identity tracking across frames. When flip correction is configured the
// keypoint x coordinates are mirrored; inference is never re-run on a
// mirrored frame.
func (ex *Extractor) ExtractLive(ctx context.Context, frame image.Image) ([]pose.Pose, []LiveState, error) {
	poses, err := ex.est.EstimatePoses(ctx, frame)
	if err != nil {
		return nil, nil, err
	}
	if ex.cfg.Mode == estimate.ModeSingle && len(poses) > 1 {
		poses = poses[:1]
	}
	width := float64(frame.Bounds().Dx())

	kept := make([]pose.Pose, 0, len(poses))
	states := make([]LiveState, 0, len(poses))
	for _, p := range poses {
		if p.Score < ex.cfg.MinPoseConfidence {
			continue
		}
		if ex.cfg.FlipHorizontal {
			p = p.MirrorX(width)
		}
		st := LiveState{Confidence: p.Score}
		angle, err := pose.BendAngle(p, ex.triple)
		switch {
		case err == nil:
			st.Angle = angle
			st.HasAngle = true
		case errors.Is(err, pose.ErrDegenerateGeometry):
			// angle absent for this subject this frame, nothing more
		default:
			ex.logger.Debugw("live angle not computable", "error", err)
		}
		kept = append(kept, p)
		states = append(states, st)
	}
	return kept, states, nil
}
