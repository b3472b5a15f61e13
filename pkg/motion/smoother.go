package motion

// Smoother keeps the most recent frames and averages them slot by slot.
// It is owned by a single session and is not safe for concurrent use.
type Smoother struct {
	depth  int
	window []Frame
}

// NewSmoother creates a smoother with the given window depth.
// Depths below 1 are raised to 1.
func NewSmoother(depth int) *Smoother {
	if depth < 1 {
		depth = 1
	}
	return &Smoother{
		depth:  depth,
		window: make([]Frame, 0, depth),
	}
}

// Depth returns the configured window size
func (s *Smoother) Depth() int {
	return s.depth
}

// Len returns how many frames are currently in the window
func (s *Smoother) Len() int {
	return len(s.window)
}

// SetDepth changes the window size and clears the window.
// Setting the current depth again leaves the window untouched.
func (s *Smoother) SetDepth(depth int) error {
	if depth < 1 {
		return ErrInvalidDepth
	}
	if depth == s.depth {
		return nil
	}
	s.depth = depth
	s.Reset()
	return nil
}

// Reset drops all history
func (s *Smoother) Reset() {
	s.window = s.window[:0]
}

// Push appends a frame, evicts the oldest frames beyond the depth, and
// returns the slot-wise mean of the window.
func (s *Smoother) Push(f Frame) Frame {
	// A frame of a different shape would make the mean meaningless
	if len(s.window) > 0 && !sameShape(s.window[0], f) {
		s.Reset()
	}

	s.window = append(s.window, f.Clone())
	for len(s.window) > s.depth {
		s.window[0] = Frame{}
		s.window = s.window[1:]
	}

	if len(s.window) == 1 {
		return s.window[0].Clone()
	}
	return s.mean()
}

func (s *Smoother) mean() Frame {
	latest := s.window[len(s.window)-1]
	out := latest.Clone()

	for i := range out.Keypoints {
		name := out.Keypoints[i].Name
		var sum Keypoint
		n := 0
		for _, f := range s.window {
			if i >= len(f.Keypoints) || f.Keypoints[i].Name != name {
				continue
			}
			kp := f.Keypoints[i]
			sum.Score += kp.Score
			sum.X += kp.X
			sum.Y += kp.Y
			sum.W += kp.W
			sum.H += kp.H
			n++
		}
		c := float64(n)
		out.Keypoints[i] = Keypoint{
			Name:  name,
			Score: sum.Score / c,
			X:     sum.X / c,
			Y:     sum.Y / c,
			W:     sum.W / c,
			H:     sum.H / c,
		}
	}
	return out
}

func sameShape(a, b Frame) bool {
	if a.Modality != b.Modality || len(a.Keypoints) != len(b.Keypoints) {
		return false
	}
	for i := range a.Keypoints {
		if a.Keypoints[i].Name != b.Keypoints[i].Name {
			return false
		}
	}
	return true
}
