// Package pose defines the body-landmark data model shared by the
// reference and live estimation paths.
package pose

import (
	"github.com/golang/geo/r2"
)

// Landmark names one of the body points reported by the estimation model.
type Landmark string

// The landmarks reported by PoseNet-family models, in model output order.
const (
	Nose          Landmark = "nose"
	LeftEye       Landmark = "leftEye"
	RightEye      Landmark = "rightEye"
	LeftEar       Landmark = "leftEar"
	RightEar      Landmark = "rightEar"
	LeftShoulder  Landmark = "leftShoulder"
	RightShoulder Landmark = "rightShoulder"
	LeftElbow     Landmark = "leftElbow"
	RightElbow    Landmark = "rightElbow"
	LeftWrist     Landmark = "leftWrist"
	RightWrist    Landmark = "rightWrist"
	LeftHip       Landmark = "leftHip"
	RightHip      Landmark = "rightHip"
	LeftKnee      Landmark = "leftKnee"
	RightKnee     Landmark = "rightKnee"
	LeftAnkle     Landmark = "leftAnkle"
	RightAnkle    Landmark = "rightAnkle"
)

// Landmarks lists every landmark in model output order.
var Landmarks = []Landmark{
	Nose,
	LeftEye,
	RightEye,
	LeftEar,
	RightEar,
	LeftShoulder,
	RightShoulder,
	LeftElbow,
	RightElbow,
	LeftWrist,
	RightWrist,
	LeftHip,
	RightHip,
	LeftKnee,
	RightKnee,
	LeftAnkle,
	RightAnkle,
}

// Keypoint is one detected landmark: its position in frame coordinates and
// the model's confidence in it, in [0,1].
type Keypoint struct {
	Name     Landmark
	Position r2.Point
	Score    float64
}

// Pose is the ordered set of keypoints detected for one subject plus the
// model's overall confidence in the detection, in [0,1].
type Pose struct {
	Keypoints []Keypoint
	Score     float64
}

// Keypoint returns the named keypoint, reporting whether the pose has it.
func (p Pose) Keypoint(name Landmark) (Keypoint, bool) {
	for _, kp := range p.Keypoints {
		if kp.Name == name {
			return kp, true
		}
	}
	return Keypoint{}, false
}

// MirrorX returns a copy of the pose with every keypoint's x coordinate
// mirrored about a frame of the given width. Landmark identities are left
// alone: mirroring coordinates corrects a horizontally flipped subject
// without re-running inference or permuting left/right names.
func (p Pose) MirrorX(width float64) Pose {
	mirrored := Pose{
		Keypoints: make([]Keypoint, len(p.Keypoints)),
		Score:     p.Score,
	}
	for i, kp := range p.Keypoints {
		kp.Position = r2.Point{X: width - kp.Position.X, Y: kp.Position.Y}
		mirrored.Keypoints[i] = kp
	}
	return mirrored
}
