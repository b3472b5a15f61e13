package motion

import (
	"errors"
	"math"
	"testing"
)

func TestNormalizePixels_Bounds(t *testing.T) {
	frame := Standardize(BodyLayout, []Detection{
		{Name: "nose", Score: 1, X: 0, Y: 0},
		{Name: "leftEye", Score: 1, X: 640, Y: 480},
		{Name: "rightEye", Score: 1, X: 800, Y: -48},
	}, BodyGate)

	norm := NormalizePixels(frame, 640, 480)

	tests := []struct {
		slot         string
		wantX, wantY float64
	}{
		{"nose", 0, 0},
		{"leftEye", 1, 1},
		{"rightEye", 1.25, -0.1}, // not clamped
	}
	for _, tc := range tests {
		kp, _ := norm.Keypoint(tc.slot)
		if math.Abs(kp.X-tc.wantX) > 1e-9 || math.Abs(kp.Y-tc.wantY) > 1e-9 {
			t.Errorf("%s = (%v, %v), want (%v, %v)", tc.slot, kp.X, kp.Y, tc.wantX, tc.wantY)
		}
	}

	// Input frame is untouched
	if kp, _ := frame.Keypoint("leftEye"); kp.X != 640 {
		t.Errorf("NormalizePixels mutated its input: leftEye.X = %v", kp.X)
	}
}

func TestNormalizePixels_Box(t *testing.T) {
	frame := FaceLayout.Empty()
	frame.Keypoints[0] = Keypoint{Name: SlotBox, X: 160, Y: 120, W: 320, H: 240}

	norm := NormalizePixels(frame, 640, 480)
	box := norm.Keypoints[0]

	if box.X != 0.25 || box.Y != 0.25 || box.W != 0.5 || box.H != 0.5 {
		t.Errorf("box = %+v, want x=y=0.25 w=h=0.5", box)
	}
}

func TestNormalizePixels_ZeroDimension(t *testing.T) {
	frame := Standardize(BodyLayout, []Detection{{Name: "nose", Score: 1, X: 10, Y: 10}}, BodyGate)

	norm := NormalizePixels(frame, 0, 0)
	kp, _ := norm.Keypoint("nose")
	if kp.X != 0 || kp.Y != 0 {
		t.Errorf("zero dimension should normalize to 0, got (%v, %v)", kp.X, kp.Y)
	}
}

func TestClusterCenter(t *testing.T) {
	tests := []struct {
		name string
		pts  []Point
		want Point
	}{
		{"single", []Point{{X: 3, Y: 4}}, Point{X: 3, Y: 4}},
		{"pair", []Point{{X: 0, Y: 0}, {X: 10, Y: 20}}, Point{X: 5, Y: 10}},
		{"independent axes", []Point{{X: 1, Y: 9}, {X: 2, Y: 6}, {X: 3, Y: 3}}, Point{X: 2, Y: 6}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ClusterCenter(tc.pts)
			if err != nil {
				t.Fatalf("ClusterCenter error: %v", err)
			}
			if got != tc.want {
				t.Errorf("ClusterCenter = %+v, want %+v", got, tc.want)
			}
		})
	}

	if _, err := ClusterCenter(nil); !errors.Is(err, ErrEmptyCluster) {
		t.Errorf("ClusterCenter(nil) error = %v, want ErrEmptyCluster", err)
	}
}

func TestNormalizeOrientation_Bounds(t *testing.T) {
	tests := []struct {
		name string
		in   Angles
		want Angles
	}{
		{"minimum", Angles{Alpha: 0, Beta: -180, Gamma: -90}, Angles{Alpha: 0, Beta: 0, Gamma: 0}},
		{"maximum", Angles{Alpha: 360, Beta: 180, Gamma: 90}, Angles{Alpha: 1, Beta: 1, Gamma: 1}},
		{"center", Angles{Alpha: 180, Beta: 0, Gamma: 0}, Angles{Alpha: 0.5, Beta: 0.5, Gamma: 0.5}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := NormalizeOrientation(tc.in)
			if got != tc.want {
				t.Errorf("NormalizeOrientation(%+v) = %+v, want %+v", tc.in, got, tc.want)
			}
		})
	}
}
