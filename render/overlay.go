// Package render draws session output. The core pipeline never depends on
// it; it only consumes FrameResults as a display sink.
package render

import (
	"context"
	"fmt"
	"image"

	"github.com/fogleman/gg"
	"github.com/pkg/errors"

	"go.viam.com/posematch/match"
	"go.viam.com/posematch/pose"
)

// skeleton lists the landmark pairs joined by a segment when drawn.
var skeleton = [][2]pose.Landmark{
	{pose.LeftShoulder, pose.RightShoulder},
	{pose.LeftShoulder, pose.LeftElbow},
	{pose.LeftElbow, pose.LeftWrist},
	{pose.RightShoulder, pose.RightElbow},
	{pose.RightElbow, pose.RightWrist},
	{pose.LeftShoulder, pose.LeftHip},
	{pose.RightShoulder, pose.RightHip},
	{pose.LeftHip, pose.RightHip},
	{pose.LeftHip, pose.LeftKnee},
	{pose.LeftKnee, pose.LeftAnkle},
	{pose.RightHip, pose.RightKnee},
	{pose.RightKnee, pose.RightAnkle},
}

// Overlay implements match.Display by drawing detected keypoints, the
// skeleton, and the sticky score over each frame, handing the composed
// image to an output func.
type Overlay struct {
	minPartConfidence float64
	out               func(image.Image) error
}

// NewOverlay returns an overlay that skips keypoints below
// minPartConfidence when drawing and sends every composed frame to out.
func NewOverlay(minPartConfidence float64, out func(image.Image) error) (*Overlay, error) {
	if out == nil {
		return nil, errors.New("overlay needs an output func")
	}
	return &Overlay{minPartConfidence: minPartConfidence, out: out}, nil
}

// Render draws res onto a copy of its frame.
func (o *Overlay) Render(ctx context.Context, res match.FrameResult) error {
	b := res.Frame.Bounds()
	dc := gg.NewContext(b.Dx(), b.Dy())
	dc.DrawImage(res.Frame, 0, 0)

	for _, sub := range res.Subjects {
		o.drawPose(dc, sub.Pose)
	}
	if res.HasDisplayScore {
		dc.SetRGB(1, 1, 0)
		dc.DrawString(fmt.Sprintf("%d%%", res.DisplayScore), 10, 20)
	}
	return o.out(dc.Image())
}

func (o *Overlay) drawPose(dc *gg.Context, p pose.Pose) {
	dc.SetRGBA(0, 1, 0, 0.8)
	dc.SetLineWidth(2)
	for _, seg := range skeleton {
		a, okA := p.Keypoint(seg[0])
		b, okB := p.Keypoint(seg[1])
		if !okA || !okB || a.Score < o.minPartConfidence || b.Score < o.minPartConfidence {
			continue
		}
		dc.DrawLine(a.Position.X, a.Position.Y, b.Position.X, b.Position.Y)
		dc.Stroke()
	}

	dc.SetRGBA(1, 0, 0, 0.9)
	for _, kp := range p.Keypoints {
		if kp.Score < o.minPartConfidence {
			continue
		}
		dc.DrawCircle(kp.Position.X, kp.Position.Y, 3)
		dc.Fill()
	}
}
