package motion

import (
	"fmt"
	"math"
)

// FaceFields is the flat face record used by capture clients that
// normalize in the browser. Field order matches the encoded vector.
type FaceFields struct {
	X, Y, Width, Height float64
	LeftEyeX, LeftEyeY   float64
	RightEyeX, RightEyeY float64
	NoseX, NoseY         float64
	MouthX, MouthY       float64
}

// Frame converts the flat record into a face frame with unit score
func (ff FaceFields) Frame() Frame {
	frame := FaceLayout.Empty()
	frame.Keypoints[0] = Keypoint{Name: SlotBox, Score: 1, X: ff.X, Y: ff.Y, W: ff.Width, H: ff.Height}
	pairs := [][2]float64{
		{ff.LeftEyeX, ff.LeftEyeY},
		{ff.RightEyeX, ff.RightEyeY},
		{ff.NoseX, ff.NoseY},
		{ff.MouthX, ff.MouthY},
	}
	for i, p := range pairs {
		frame.Keypoints[i+1].Score = 1
		frame.Keypoints[i+1].X = p[0]
		frame.Keypoints[i+1].Y = p[1]
	}
	return frame
}

// Encode flattens a standardized frame into its wire vector.
//
//	body:        x, y for every slot (score is not sent)
//	face:        box x, y, w, h, then leftEye, rightEye, nose, mouth x, y
//	orientation: alpha, beta, gamma
//
// NaN and infinite values are sent as 0.
func Encode(f Frame) (Encoded, error) {
	layout, ok := LayoutFor(f.Modality)
	if !ok {
		return Encoded{}, fmt.Errorf("%w: %q", ErrUnknownModality, f.Modality)
	}
	if !layout.Matches(f) {
		return Encoded{}, fmt.Errorf("%w: %s frame with %d slots", ErrLayoutMismatch, f.Modality, f.Len())
	}

	values := make([]float32, 0, layout.EncodedLen())
	switch f.Modality {
	case Face:
		box := f.Keypoints[0]
		values = append(values, finite(box.X), finite(box.Y), finite(box.W), finite(box.H))
		for _, kp := range f.Keypoints[1:] {
			values = append(values, finite(kp.X), finite(kp.Y))
		}
	case Orientation:
		for _, kp := range f.Keypoints {
			values = append(values, finite(kp.X))
		}
	default:
		for _, kp := range f.Keypoints {
			values = append(values, finite(kp.X), finite(kp.Y))
		}
	}

	return Encoded{Modality: f.Modality, Values: values}, nil
}

func finite(v float64) float32 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	f := float32(v)
	if math.IsInf(float64(f), 0) {
		return 0
	}
	return f
}
