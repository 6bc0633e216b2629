package pose

import (
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"go.viam.com/test"
)

func TestAngle(t *testing.T) {
	origin := r2.Point{}

	// perpendicular rays
	deg, err := Angle(origin, r2.Point{X: 1}, r2.Point{Y: 1})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, deg, test.ShouldAlmostEqual, 90, 1e-9)

	// opposite rays
	deg, err = Angle(origin, r2.Point{X: 1}, r2.Point{X: -1})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, deg, test.ShouldAlmostEqual, 180, 1e-9)

	// collinear rays of different lengths; acos input must be clamped
	deg, err = Angle(origin, r2.Point{X: 0.1, Y: 0.3}, r2.Point{X: 0.2, Y: 0.6})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, deg, test.ShouldAlmostEqual, 0, 1e-6)

	// a vertex away from the origin
	deg, err = Angle(r2.Point{X: 2, Y: 2}, r2.Point{X: 3, Y: 2}, r2.Point{X: 2, Y: 5})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, deg, test.ShouldAlmostEqual, 90, 1e-9)
}

func TestAngleSymmetricAndBounded(t *testing.T) {
	vertex := r2.Point{X: 1, Y: -1}
	points := []r2.Point{
		{X: 2, Y: -1},
		{X: 1, Y: 4},
		{X: -3, Y: -2},
		{X: 0.5, Y: -0.5},
		{X: 100, Y: 7},
	}
	for _, a := range points {
		for _, b := range points {
			deg, err := Angle(vertex, a, b)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, math.IsNaN(deg), test.ShouldBeFalse)
			test.That(t, deg, test.ShouldBeBetweenOrEqual, 0, 180)
			swapped, err := Angle(vertex, b, a)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, swapped, test.ShouldAlmostEqual, deg, 1e-9)
		}
	}
}

func TestAngleDegenerate(t *testing.T) {
	vertex := r2.Point{X: 1, Y: 1}
	other := r2.Point{X: 3, Y: 4}

	_, err := Angle(vertex, vertex, other)
	test.That(t, errors.Is(err, ErrDegenerateGeometry), test.ShouldBeTrue)

	_, err = Angle(vertex, other, vertex)
	test.That(t, errors.Is(err, ErrDegenerateGeometry), test.ShouldBeTrue)
}

func TestBendAngle(t *testing.T) {
	p := Pose{
		Keypoints: []Keypoint{
			{Name: RightShoulder, Position: r2.Point{X: 0, Y: 0}, Score: 0.9},
			{Name: RightElbow, Position: r2.Point{X: 0, Y: 10}, Score: 0.9},
			{Name: RightWrist, Position: r2.Point{X: 10, Y: 10}, Score: 0.9},
		},
		Score: 0.9,
	}
	deg, err := BendAngle(p, RightElbowTriple)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, deg, test.ShouldAlmostEqual, 90, 1e-9)

	_, err = BendAngle(p, LeftElbowTriple)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "leftElbow")
}

func TestBendAngleMirrorInvariant(t *testing.T) {
	p := Pose{
		Keypoints: []Keypoint{
			{Name: RightShoulder, Position: r2.Point{X: 40, Y: 20}},
			{Name: RightElbow, Position: r2.Point{X: 55, Y: 60}},
			{Name: RightWrist, Position: r2.Point{X: 80, Y: 45}},
		},
	}
	deg, err := BendAngle(p, RightElbowTriple)
	test.That(t, err, test.ShouldBeNil)
	mirroredDeg, err := BendAngle(p.MirrorX(640), RightElbowTriple)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, mirroredDeg, test.ShouldAlmostEqual, deg, 1e-9)
}
