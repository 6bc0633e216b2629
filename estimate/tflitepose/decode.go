package tflitepose

import (
	"github.com/golang/geo/r2"
	"github.com/pkg/errors"

	"go.viam.com/posematch/pose"
)

// Each keypoint is reported as (y, x, score). A multi-pose row carries the
// 17 keypoints plus a bounding box and an overall score.
const (
	keypointLen     = 3
	singlePoseLen   = 17 * keypointLen
	multiPoseRowLen = 17*keypointLen + 4 + 1
)

// decodeSinglePose decodes a [1,1,17,3] output: 17 keypoints as
// (y, x, score) with coordinates normalized to [0,1]. The model reports no
// overall confidence, so the mean keypoint score stands in for it.
func decodeSinglePose(vals []float32, frameW, frameH float64) (pose.Pose, error) {
	if len(vals) != singlePoseLen {
		return pose.Pose{}, errors.Errorf("expected %d output values, got %d", singlePoseLen, len(vals))
	}
	p := pose.Pose{Keypoints: make([]pose.Keypoint, len(pose.Landmarks))}
	var sum float64
	for i, name := range pose.Landmarks {
		y := float64(vals[i*keypointLen+0])
		x := float64(vals[i*keypointLen+1])
		score := float64(vals[i*keypointLen+2])
		p.Keypoints[i] = pose.Keypoint{
			Name:     name,
			Position: r2.Point{X: x * frameW, Y: y * frameH},
			Score:    score,
		}
		sum += score
	}
	p.Score = sum / float64(len(pose.Landmarks))
	return p, nil
}

// decodeMultiPose decodes a [1,N,56] output: per row, 17 keypoints as
// (y, x, score), a bounding box, and an overall score. Rows below
// scoreThreshold are dropped and at most maxDetections rows are kept; the
// model emits rows most confident first.
func decodeMultiPose(vals []float32, frameW, frameH, scoreThreshold float64, maxDetections int) ([]pose.Pose, error) {
	if len(vals)%multiPoseRowLen != 0 {
		return nil, errors.Errorf("output length %d is not a multiple of %d", len(vals), multiPoseRowLen)
	}
	rows := len(vals) / multiPoseRowLen
	var poses []pose.Pose
	for r := 0; r < rows; r++ {
		row := vals[r*multiPoseRowLen : (r+1)*multiPoseRowLen]
		overall := float64(row[multiPoseRowLen-1])
		if overall < scoreThreshold {
			continue
		}
		if maxDetections > 0 && len(poses) == maxDetections {
			break
		}
		p := pose.Pose{
			Keypoints: make([]pose.Keypoint, len(pose.Landmarks)),
			Score:     overall,
		}
		for i, name := range pose.Landmarks {
			p.Keypoints[i] = pose.Keypoint{
				Name:     name,
				Position: r2.Point{X: float64(row[i*keypointLen+1]) * frameW, Y: float64(row[i*keypointLen+0]) * frameH},
				Score:    float64(row[i*keypointLen+2]),
			}
		}
		poses = append(poses, p)
	}
	return poses, nil
}
