// Package match scores a live subject's joint geometry against a
// reference pose extracted once from a static image.
package match

import (
	"context"
	"image"
	"time"

	"go.viam.com/posematch/pose"
)

// ReferenceState is the cached feature of the reference image. It is built
// exactly once at startup and read-only afterwards. HasAngle stays false
// when the reference pose never cleared the confidence gate; scoring is
// then disabled for the whole session.
type ReferenceState struct {
	Angle      float64
	HasAngle   bool
	Confidence float64
	LoadedAt   time.Time
}

// LiveState is the per-frame feature of one detected subject. It is
// recomputed from scratch every frame, never merged with a prior frame's.
type LiveState struct {
	Angle      float64
	HasAngle   bool
	Confidence float64
}

// SubjectScore pairs one subject's pose with its score for a frame.
// Scored is false when the subject was out of tolerance or had no usable
// angle.
type SubjectScore struct {
	Pose   pose.Pose
	Live   LiveState
	Score  int
	Scored bool
}

// FrameResult is everything a display sink needs for one frame.
// DisplayScore is sticky: frames that produce no fresh score carry the
// last one forward rather than blanking it.
type FrameResult struct {
	Frame           image.Image
	Subjects        []SubjectScore
	DisplayScore    int
	HasDisplayScore bool
}

// VideoSource yields live frames on demand. The release func returned
// with each frame frees whatever backs it and must be called once the
// frame is no longer needed.
type VideoSource interface {
	Next(ctx context.Context) (image.Image, func(), error)
	Close() error
}

// ImageLoader resolves a reference-image identifier to decoded pixels.
// The release func frees any intermediate representation backing the
// image and must be called on every exit path once the caller is done.
type ImageLoader func(ctx context.Context, ref string) (image.Image, func(), error)

// Display consumes per-frame results and owns all visual output.
type Display interface {
	Render(ctx context.Context, res FrameResult) error
}

// Status consumes coarse lifecycle signals for user-facing messaging.
type Status interface {
	LoadingStarted()
	LoadingFinished()
	SourceUnavailable(err error)
}
