package match

import (
	"context"
	"time"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"

	"go.viam.com/posematch/estimate"
	"go.viam.com/posematch/pose"
)

// LoadReference runs one-shot pose estimation over the reference image and
// caches its bend angle. Only the most confident detection is considered
// and the frame is never flipped. A reference pose that does not clear
// minConfidence, or whose angle is not computable, leaves HasAngle unset:
// scoring stays disabled for the session while the process carries on.
//
// The image's release func runs on every exit path, so any intermediate
// representation created to feed the model is freed as soon as the one
// estimation call returns.
func LoadReference(
	ctx context.Context,
	imageRef string,
	load ImageLoader,
	est estimate.Estimator,
	triple pose.JointTriple,
	minConfidence float64,
	logger golog.Logger,
) (ReferenceState, error) {
	img, release, err := load(ctx, imageRef)
	if err != nil {
		return ReferenceState{}, errors.Wrapf(err, "loading reference image %q", imageRef)
	}
	defer release()

	poses, err := est.EstimatePoses(ctx, img)
	if err != nil {
		return ReferenceState{}, errors.Wrap(err, "estimating reference pose")
	}

	state := ReferenceState{LoadedAt: time.Now()}
	if len(poses) == 0 {
		logger.Warnw("no pose detected in reference image; scoring disabled", "image", imageRef)
		return state, nil
	}
	best := poses[0]
	state.Confidence = best.Score
	if best.Score < minConfidence {
		logger.Warnw("reference pose below confidence threshold; scoring disabled",
			"image", imageRef, "confidence", best.Score, "threshold", minConfidence)
		return state, nil
	}
	angle, err := pose.BendAngle(best, triple)
	if err != nil {
		logger.Warnw("reference angle not computable; scoring disabled", "image", imageRef, "error", err)
		return state, nil
	}
	state.Angle = angle
	state.HasAngle = true
	return state, nil
}
