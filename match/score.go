package match

import (
	"math"
)

// DefaultToleranceDeg is the angle delta, in degrees, beyond which a live
// pose no longer counts as a match at all.
const DefaultToleranceDeg = 20.0

// Scorer turns the delta between the reference angle and a live angle into
// a percentage. Tolerance is a fixed configured constant, never derived
// from data.
type Scorer struct {
	ToleranceDeg      float64
	MinPoseConfidence float64
}

// Score compares live against ref. The score is 100 at a delta of zero,
// falls linearly to 0 at ToleranceDeg, and is withheld entirely beyond it,
// when either angle is absent, or when the live pose's confidence is below
// the gate.
func (s Scorer) Score(ref ReferenceState, live LiveState) (int, bool) {
	if s.ToleranceDeg <= 0 {
		return 0, false
	}
	if !ref.HasAngle || !live.HasAngle {
		return 0, false
	}
	if live.Confidence < s.MinPoseConfidence {
		return 0, false
	}
	delta := math.Abs(ref.Angle - live.Angle)
	if delta > s.ToleranceDeg {
		return 0, false
	}
	return int(math.Round((1 - delta/s.ToleranceDeg) * 100)), true
}
