package motion

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestStandardize_AlwaysFullLayout(t *testing.T) {
	layouts := []Layout{BodyLayout, FaceLayout, OrientationLayout}
	inputs := map[string][]Detection{
		"empty":   nil,
		"one":     {{Name: "nose", Score: 0.9, X: 1, Y: 2}},
		"unknown": {{Name: "tail", Score: 1, X: 5, Y: 5}},
	}

	for _, layout := range layouts {
		for name, dets := range inputs {
			t.Run(string(layout.Modality())+"/"+name, func(t *testing.T) {
				frame := Standardize(layout, dets, NoGate)
				if frame.Len() != layout.Len() {
					t.Fatalf("Len = %d, want %d", frame.Len(), layout.Len())
				}
				if !layout.Matches(frame) {
					t.Errorf("frame slots %v do not follow layout order", frame.Keypoints)
				}
			})
		}
	}
}

func TestStandardize_DropsUnknownNames(t *testing.T) {
	dets := []Detection{
		{Name: "tail", Score: 0.99, X: 100, Y: 100},
		{Name: "leftWrist", Score: 0.8, X: 10, Y: 20},
	}

	frame := Standardize(BodyLayout, dets, BodyGate)

	if frame.Len() != 17 {
		t.Fatalf("Len = %d, want 17", frame.Len())
	}
	if _, ok := frame.Keypoint("tail"); ok {
		t.Error("unknown slot should be dropped")
	}
	kp, _ := frame.Keypoint("leftWrist")
	if kp.X != 10 || kp.Y != 20 || kp.Score != 0.8 {
		t.Errorf("leftWrist = %+v, want copied detection", kp)
	}
}

func TestStandardize_FirstDuplicateWins(t *testing.T) {
	dets := []Detection{
		{Name: "nose", Score: 0.9, X: 1, Y: 1},
		{Name: "nose", Score: 0.95, X: 2, Y: 2},
	}

	frame := Standardize(BodyLayout, dets, BodyGate)
	kp, _ := frame.Keypoint("nose")
	if kp.X != 1 {
		t.Errorf("nose.X = %v, want 1 (first detection)", kp.X)
	}
}

func TestStandardize_OrderIndependent(t *testing.T) {
	a := []Detection{
		{Name: "rightAnkle", Score: 0.5, X: 7, Y: 8},
		{Name: "nose", Score: 0.5, X: 1, Y: 2},
		{Name: "leftHip", Score: 0.5, X: 3, Y: 4},
	}
	b := []Detection{a[2], a[0], a[1]}

	fa := Standardize(BodyLayout, a, BodyGate)
	fb := Standardize(BodyLayout, b, BodyGate)

	if diff := cmp.Diff(fa, fb); diff != "" {
		t.Errorf("output depends on input order (-a +b):\n%s", diff)
	}
}

func TestGate_RejectedEqualsMissing(t *testing.T) {
	tests := []struct {
		name  string
		score float64
	}{
		{"at threshold", 0.2},
		{"below threshold", 0.1},
		{"zero", 0},
	}

	missing := Standardize(BodyLayout, nil, BodyGate)

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dets := []Detection{{Name: "nose", Score: tc.score, X: 320, Y: 240}}
			frame := Standardize(BodyLayout, dets, BodyGate)
			if diff := cmp.Diff(missing, frame); diff != "" {
				t.Errorf("gated detection differs from missing (-missing +gated):\n%s", diff)
			}
		})
	}
}

func TestGate_Accept(t *testing.T) {
	tests := []struct {
		gate  Gate
		score float64
		want  bool
	}{
		{BodyGate, 0.21, true},
		{BodyGate, 0.2, false},
		{NoGate, 0, true},
		{Gate{Threshold: 0.5}, 0.6, true},
	}

	for _, tc := range tests {
		if got := tc.gate.Accept(tc.score); got != tc.want {
			t.Errorf("%+v.Accept(%v) = %v, want %v", tc.gate, tc.score, got, tc.want)
		}
	}
}

func TestStandardizeFace(t *testing.T) {
	faces := []FaceDetection{
		{
			Box:      Box{X: 100, Y: 50, Width: 200, Height: 240},
			Score:    0.7,
			LeftEye:  []Point{{X: 140, Y: 100}, {X: 160, Y: 110}},
			RightEye: []Point{{X: 240, Y: 105}},
			Nose:     []Point{{X: 200, Y: 150}, {X: 200, Y: 170}, {X: 200, Y: 160}},
			Mouth:    []Point{{X: 180, Y: 220}, {X: 220, Y: 220}},
		},
		{Box: Box{X: 1, Y: 1, Width: 1, Height: 1}},
	}

	frame, ok, err := StandardizeFace(faces)
	if err != nil {
		t.Fatalf("StandardizeFace error: %v", err)
	}
	if !ok {
		t.Fatal("expected a face")
	}

	want := Frame{
		Modality: Face,
		Keypoints: []Keypoint{
			{Name: SlotBox, Score: 0.7, X: 100, Y: 50, W: 200, H: 240},
			{Name: SlotLeftEye, Score: 0.7, X: 150, Y: 105},
			{Name: SlotRightEye, Score: 0.7, X: 240, Y: 105},
			{Name: SlotNose, Score: 0.7, X: 200, Y: 160},
			{Name: SlotMouth, Score: 0.7, X: 200, Y: 220},
		},
	}
	if diff := cmp.Diff(want, frame); diff != "" {
		t.Errorf("face frame mismatch (-want +got):\n%s", diff)
	}
}

func TestStandardizeFace_NoFace(t *testing.T) {
	_, ok, err := StandardizeFace(nil)
	if err != nil || ok {
		t.Errorf("StandardizeFace(nil) = ok %v, err %v; want false, nil", ok, err)
	}
}

func TestStandardizeFace_EmptyCluster(t *testing.T) {
	faces := []FaceDetection{{
		LeftEye:  []Point{{X: 1, Y: 1}},
		RightEye: []Point{{X: 1, Y: 1}},
		Nose:     nil,
		Mouth:    []Point{{X: 1, Y: 1}},
	}}

	if _, _, err := StandardizeFace(faces); err == nil {
		t.Error("expected error for empty nose cluster")
	}
}
