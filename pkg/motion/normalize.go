package motion

// NormalizePixels divides x (and box width) by width and y (and box height)
// by height. Values are not clamped: boxes that extend past the frame
// produce values outside [0,1]. A zero dimension maps to 0.
func NormalizePixels(f Frame, width, height float64) Frame {
	out := f.Clone()
	for i := range out.Keypoints {
		kp := &out.Keypoints[i]
		kp.X = ratio(kp.X, width)
		kp.Y = ratio(kp.Y, height)
		kp.W = ratio(kp.W, width)
		kp.H = ratio(kp.H, height)
	}
	return out
}

// ClusterCenter returns the mean position of a landmark cluster
func ClusterCenter(pts []Point) (Point, error) {
	if len(pts) == 0 {
		return Point{}, ErrEmptyCluster
	}
	var sx, sy float64
	for _, p := range pts {
		sx += p.X
		sy += p.Y
	}
	n := float64(len(pts))
	return Point{X: sx / n, Y: sy / n}, nil
}

// NormalizeOrientation maps each axis's native degree range onto [0,1)
func NormalizeOrientation(o Angles) Angles {
	return Angles{
		Alpha: o.Alpha / 360,
		Beta:  (o.Beta + 180) / 360,
		Gamma: (o.Gamma + 90) / 180,
	}
}

func ratio(v, dim float64) float64 {
	if dim == 0 {
		return 0
	}
	return v / dim
}
