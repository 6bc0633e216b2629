package render

import (
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/golang/geo/r2"
	"go.viam.com/test"

	"go.viam.com/posematch/match"
	"go.viam.com/posematch/pose"
)

func TestOverlayRender(t *testing.T) {
	var got image.Image
	o, err := NewOverlay(0.5, func(img image.Image) error {
		got = img
		return nil
	})
	test.That(t, err, test.ShouldBeNil)

	p := pose.Pose{
		Keypoints: []pose.Keypoint{
			{Name: pose.RightElbow, Position: r2.Point{X: 50, Y: 50}, Score: 0.9},
			{Name: pose.RightWrist, Position: r2.Point{X: 80, Y: 80}, Score: 0.2}, // below part gate
		},
		Score: 0.9,
	}
	res := match.FrameResult{
		Frame:           image.NewRGBA(image.Rect(0, 0, 100, 100)),
		Subjects:        []match.SubjectScore{{Pose: p, Score: 80, Scored: true}},
		DisplayScore:    80,
		HasDisplayScore: true,
	}
	test.That(t, o.Render(context.Background(), res), test.ShouldBeNil)
	test.That(t, got, test.ShouldNotBeNil)
	test.That(t, got.Bounds().Dx(), test.ShouldEqual, 100)
	test.That(t, got.Bounds().Dy(), test.ShouldEqual, 100)

	// the confident keypoint is drawn, the gated one is not
	test.That(t, got.At(50, 50), test.ShouldNotResemble, color.RGBA{})
	test.That(t, got.At(80, 80), test.ShouldResemble, color.RGBA{})
}

func TestNewOverlayNeedsOutput(t *testing.T) {
	_, err := NewOverlay(0.5, nil)
	test.That(t, err, test.ShouldNotBeNil)
}
