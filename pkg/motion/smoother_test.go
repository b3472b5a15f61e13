package motion

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func bodyFrameWithNose(x, y, score float64) Frame {
	return Standardize(BodyLayout, []Detection{{Name: "nose", Score: score, X: x, Y: y}}, NoGate)
}

func noseX(t *testing.T, f Frame) float64 {
	t.Helper()
	kp, ok := f.Keypoint("nose")
	if !ok {
		t.Fatal("frame has no nose slot")
	}
	return kp.X
}

func TestSmoother_DepthOneIsVerbatim(t *testing.T) {
	s := NewSmoother(1)
	in := bodyFrameWithNose(0.3, 0.7, 0.9)

	out := s.Push(in)
	if diff := cmp.Diff(in, out); diff != "" {
		t.Errorf("depth 1 should return the frame unchanged (-in +out):\n%s", diff)
	}

	out = s.Push(bodyFrameWithNose(0.9, 0.1, 0.5))
	if got := noseX(t, out); got != 0.9 {
		t.Errorf("depth 1 should only use the latest frame, nose.X = %v", got)
	}
}

func TestSmoother_IdenticalFramesUnchanged(t *testing.T) {
	s := NewSmoother(5)
	in := bodyFrameWithNose(0.25, 0.75, 0.5)

	var out Frame
	for i := 0; i < 5; i++ {
		out = s.Push(in)
	}
	if diff := cmp.Diff(in, out); diff != "" {
		t.Errorf("mean of identical frames should equal the frame (-in +out):\n%s", diff)
	}
}

func TestSmoother_MeanAndEviction(t *testing.T) {
	s := NewSmoother(2)

	s.Push(bodyFrameWithNose(0, 0, 1))
	out := s.Push(bodyFrameWithNose(1, 0, 1))
	if got := noseX(t, out); got != 0.5 {
		t.Errorf("mean of [0, 1] = %v, want 0.5", got)
	}

	out = s.Push(bodyFrameWithNose(0.5, 0, 1))
	if got := noseX(t, out); got != 0.75 {
		t.Errorf("after eviction mean of [1, 0.5] = %v, want 0.75", got)
	}
	if s.Len() != 2 {
		t.Errorf("Len = %d, want 2", s.Len())
	}
}

func TestSmoother_AveragesScoreAndBox(t *testing.T) {
	s := NewSmoother(2)
	a := FaceLayout.Empty()
	a.Keypoints[0] = Keypoint{Name: SlotBox, Score: 0.2, X: 0.1, Y: 0.1, W: 0.2, H: 0.4}
	b := FaceLayout.Empty()
	b.Keypoints[0] = Keypoint{Name: SlotBox, Score: 0.6, X: 0.3, Y: 0.3, W: 0.4, H: 0.6}

	s.Push(a)
	out := s.Push(b)
	box := out.Keypoints[0]

	const eps = 1e-9
	if math.Abs(box.Score-0.4) > eps || math.Abs(box.W-0.3) > eps || math.Abs(box.H-0.5) > eps {
		t.Errorf("box = %+v, want score 0.4, w 0.3, h 0.5", box)
	}
}

func TestSmoother_SetDepthResets(t *testing.T) {
	s := NewSmoother(3)
	s.Push(bodyFrameWithNose(0, 0, 1))
	s.Push(bodyFrameWithNose(0, 0, 1))

	if err := s.SetDepth(4); err != nil {
		t.Fatalf("SetDepth error: %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("window not cleared, Len = %d", s.Len())
	}

	in := bodyFrameWithNose(1, 1, 1)
	out := s.Push(in)
	if diff := cmp.Diff(in, out); diff != "" {
		t.Errorf("first frame after reset should be returned as-is (-in +out):\n%s", diff)
	}
}

func TestSmoother_SameDepthKeepsWindow(t *testing.T) {
	s := NewSmoother(3)
	s.Push(bodyFrameWithNose(0, 0, 1))

	if err := s.SetDepth(3); err != nil {
		t.Fatalf("SetDepth error: %v", err)
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
}

func TestSmoother_InvalidDepth(t *testing.T) {
	s := NewSmoother(2)
	for _, d := range []int{0, -3} {
		if err := s.SetDepth(d); !errors.Is(err, ErrInvalidDepth) {
			t.Errorf("SetDepth(%d) error = %v, want ErrInvalidDepth", d, err)
		}
	}
	if s.Depth() != 2 {
		t.Errorf("Depth changed to %d after invalid SetDepth", s.Depth())
	}

	if NewSmoother(0).Depth() != 1 {
		t.Error("NewSmoother(0) should clamp depth to 1")
	}
}

func TestSmoother_ShapeChangeResets(t *testing.T) {
	s := NewSmoother(3)
	s.Push(bodyFrameWithNose(1, 1, 1))

	out := s.Push(OrientationFrame(Angles{Alpha: 0.5}))
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1 after modality change", s.Len())
	}
	if out.Modality != Orientation {
		t.Errorf("Modality = %s, want orientation", out.Modality)
	}
}

func TestSmoother_OutputIsCopy(t *testing.T) {
	s := NewSmoother(1)
	out := s.Push(bodyFrameWithNose(0.5, 0.5, 1))
	out.Keypoints[0].X = 99

	next := s.Push(bodyFrameWithNose(0.5, 0.5, 1))
	if got := noseX(t, next); got != 0.5 {
		t.Errorf("mutating output leaked into window, nose.X = %v", got)
	}
}
