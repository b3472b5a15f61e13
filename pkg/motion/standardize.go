package motion

import "fmt"

// BodyScoreThreshold is the minimum (exclusive) score for a body keypoint
const BodyScoreThreshold = 0.2

// Gate decides whether a detection is trustworthy enough to use.
// A detection passes when its score is strictly above Threshold.
type Gate struct {
	Threshold float64
	Disabled  bool // Accept everything
}

var (
	// BodyGate is the confidence gate for PoseNet keypoints
	BodyGate = Gate{Threshold: BodyScoreThreshold}

	// NoGate accepts every detection (face modality)
	NoGate = Gate{Disabled: true}
)

// Accept reports whether a detection with this score passes the gate
func (g Gate) Accept(score float64) bool {
	if g.Disabled {
		return true
	}
	return score > g.Threshold
}

// Standardize maps detections onto the layout's slots.
// The first detection for a name wins, names outside the layout are dropped,
// and missing or rejected slots get the zero record {name, 0, 0, 0}.
func Standardize(layout Layout, dets []Detection, gate Gate) Frame {
	byName := make(map[string]Detection, len(dets))
	for _, d := range dets {
		if _, seen := byName[d.Name]; !seen {
			byName[d.Name] = d
		}
	}

	frame := layout.Empty()
	for i := range frame.Keypoints {
		d, ok := byName[frame.Keypoints[i].Name]
		if !ok || !gate.Accept(d.Score) {
			continue
		}
		frame.Keypoints[i].Score = d.Score
		frame.Keypoints[i].X = d.X
		frame.Keypoints[i].Y = d.Y
	}
	return frame
}

// StandardizeFace builds a face frame from the first detected face.
// Cluster positions are the mean of their points; coordinates stay in
// source units. ok is false when there is no face.
func StandardizeFace(faces []FaceDetection) (frame Frame, ok bool, err error) {
	if len(faces) == 0 {
		return Frame{}, false, nil
	}
	face := faces[0]

	frame = FaceLayout.Empty()
	frame.Keypoints[0] = Keypoint{
		Name:  SlotBox,
		Score: face.Score,
		X:     face.Box.X,
		Y:     face.Box.Y,
		W:     face.Box.Width,
		H:     face.Box.Height,
	}

	clusters := [][]Point{face.LeftEye, face.RightEye, face.Nose, face.Mouth}
	for i, pts := range clusters {
		center, err := ClusterCenter(pts)
		if err != nil {
			return Frame{}, false, fmt.Errorf("%s: %w", frame.Keypoints[i+1].Name, err)
		}
		frame.Keypoints[i+1].Score = face.Score
		frame.Keypoints[i+1].X = center.X
		frame.Keypoints[i+1].Y = center.Y
	}
	return frame, true, nil
}

// OrientationFrame builds an orientation frame from already normalized
// angles. Each axis is stored in its slot's X.
func OrientationFrame(o Angles) Frame {
	frame := OrientationLayout.Empty()
	for i, v := range []float64{o.Alpha, o.Beta, o.Gamma} {
		frame.Keypoints[i].Score = 1
		frame.Keypoints[i].X = v
	}
	return frame
}
