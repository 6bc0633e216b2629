package pose

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
)

// ErrDegenerateGeometry is returned when a bend angle is requested at a
// vertex that coincides with one of its ray endpoints.
var ErrDegenerateGeometry = errors.New("degenerate geometry: vertex coincides with a ray endpoint")

// Angle returns the angle at vertex between the rays toward a and b, in
// degrees in [0,180], using the two-vector dot-product formula. It never
// returns NaN: a zero-length ray fails with ErrDegenerateGeometry.
func Angle(vertex, a, b r2.Point) (float64, error) {
	va := a.Sub(vertex)
	vb := b.Sub(vertex)
	na := va.Norm()
	nb := vb.Norm()
	if na == 0 || nb == 0 {
		return 0, ErrDegenerateGeometry
	}
	cos := va.Dot(vb) / (na * nb)
	// rounding can push collinear rays just outside acos's domain
	cos = math.Max(-1, math.Min(1, cos))
	return math.Acos(cos) * 180 / math.Pi, nil
}

// JointTriple names the three landmarks a bend angle is computed from: the
// joint itself plus the far ends of its two adjoining segments.
type JointTriple struct {
	Vertex Landmark
	A      Landmark
	B      Landmark
}

// The elbow-bend features. RightElbowTriple is the feature tracked by
// default.
var (
	RightElbowTriple = JointTriple{Vertex: RightElbow, A: RightWrist, B: RightShoulder}
	LeftElbowTriple  = JointTriple{Vertex: LeftElbow, A: LeftWrist, B: LeftShoulder}
)

// BendAngle computes the bend angle of the named triple in p. The
// reference and live paths both resolve their feature through here, so the
// two are always computed from the same landmarks with the same formula.
func BendAngle(p Pose, triple JointTriple) (float64, error) {
	vertex, ok := p.Keypoint(triple.Vertex)
	if !ok {
		return 0, errors.Errorf("pose has no %q keypoint", triple.Vertex)
	}
	a, ok := p.Keypoint(triple.A)
	if !ok {
		return 0, errors.Errorf("pose has no %q keypoint", triple.A)
	}
	b, ok := p.Keypoint(triple.B)
	if !ok {
		return 0, errors.Errorf("pose has no %q keypoint", triple.B)
	}
	return Angle(vertex.Position, a.Position, b.Position)
}
