package match

import (
	"context"
	"image"
	"testing"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/posematch/estimate/fake"
	"go.viam.com/posematch/pose"
)

func bentElbowPose(score float64) pose.Pose {
	return pose.Pose{
		Keypoints: []pose.Keypoint{
			{Name: pose.RightShoulder, Position: r2.Point{X: 0, Y: 0}, Score: score},
			{Name: pose.RightElbow, Position: r2.Point{X: 0, Y: 10}, Score: score},
			{Name: pose.RightWrist, Position: r2.Point{X: 10, Y: 10}, Score: score},
		},
		Score: score,
	}
}

func testLoader(released *bool) ImageLoader {
	return func(ctx context.Context, ref string) (image.Image, func(), error) {
		return image.NewRGBA(image.Rect(0, 0, 64, 48)), func() { *released = true }, nil
	}
}

func TestLoadReference(t *testing.T) {
	logger := golog.NewTestLogger(t)
	est := &fake.Estimator{Poses: []pose.Pose{bentElbowPose(0.9)}}
	released := false

	state, err := LoadReference(context.Background(), "ref.png", testLoader(&released), est, pose.RightElbowTriple, 0.1, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, released, test.ShouldBeTrue)
	test.That(t, state.HasAngle, test.ShouldBeTrue)
	test.That(t, state.Confidence, test.ShouldEqual, 0.9)
	test.That(t, state.LoadedAt.IsZero(), test.ShouldBeFalse)

	// the reference path computes the same feature the live path would
	want, err := pose.BendAngle(bentElbowPose(0.9), pose.RightElbowTriple)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, state.Angle, test.ShouldAlmostEqual, want, 1e-9)
}

func TestLoadReferenceLowConfidence(t *testing.T) {
	logger := golog.NewTestLogger(t)
	est := &fake.Estimator{Poses: []pose.Pose{bentElbowPose(0.05)}}
	released := false

	state, err := LoadReference(context.Background(), "ref.png", testLoader(&released), est, pose.RightElbowTriple, 0.1, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, released, test.ShouldBeTrue)
	test.That(t, state.HasAngle, test.ShouldBeFalse)
	test.That(t, state.Confidence, test.ShouldEqual, 0.05)
}

func TestLoadReferenceNoPose(t *testing.T) {
	logger := golog.NewTestLogger(t)
	released := false

	state, err := LoadReference(context.Background(), "ref.png", testLoader(&released), &fake.Estimator{}, pose.RightElbowTriple, 0.1, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, released, test.ShouldBeTrue)
	test.That(t, state.HasAngle, test.ShouldBeFalse)
}

func TestLoadReferenceDegenerate(t *testing.T) {
	logger := golog.NewTestLogger(t)
	p := bentElbowPose(0.9)
	// wrist on top of the elbow
	p.Keypoints[2].Position = p.Keypoints[1].Position
	est := &fake.Estimator{Poses: []pose.Pose{p}}
	released := false

	state, err := LoadReference(context.Background(), "ref.png", testLoader(&released), est, pose.RightElbowTriple, 0.1, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, state.HasAngle, test.ShouldBeFalse)
	test.That(t, released, test.ShouldBeTrue)
}

func TestLoadReferenceErrors(t *testing.T) {
	logger := golog.NewTestLogger(t)

	failingLoader := func(ctx context.Context, ref string) (image.Image, func(), error) {
		return nil, nil, errors.New("no such file")
	}
	_, err := LoadReference(context.Background(), "missing.png", failingLoader, &fake.Estimator{}, pose.RightElbowTriple, 0.1, logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "missing.png")

	released := false
	est := &fake.Estimator{Err: errors.New("model exploded")}
	_, err = LoadReference(context.Background(), "ref.png", testLoader(&released), est, pose.RightElbowTriple, 0.1, logger)
	test.That(t, err, test.ShouldNotBeNil)
	// released even when estimation fails
	test.That(t, released, test.ShouldBeTrue)
}
