package motion

// Layout is the fixed, ordered list of slot names for a modality.
// The order is the wire contract with Wekinator and never changes at runtime.
type Layout struct {
	modality Modality
	slots    []string
}

// Slot names for the face layout
const (
	SlotBox      = "box"
	SlotLeftEye  = "leftEye"
	SlotRightEye = "rightEye"
	SlotNose     = "nose"
	SlotMouth    = "mouth"
)

// Slot names for the orientation layout
const (
	SlotAlpha = "alpha"
	SlotBeta  = "beta"
	SlotGamma = "gamma"
)

var (
	// BodyLayout is the 17 PoseNet keypoints
	BodyLayout = Layout{
		modality: Body,
		slots: []string{
			"nose", "leftEye", "rightEye", "leftEar", "rightEar",
			"leftShoulder", "rightShoulder", "leftElbow", "rightElbow",
			"leftWrist", "rightWrist", "leftHip", "rightHip",
			"leftKnee", "rightKnee", "leftAnkle", "rightAnkle",
		},
	}

	// FaceLayout is the bounding box followed by four landmark clusters
	FaceLayout = Layout{
		modality: Face,
		slots:    []string{SlotBox, SlotLeftEye, SlotRightEye, SlotNose, SlotMouth},
	}

	// OrientationLayout is the three device rotation axes
	OrientationLayout = Layout{
		modality: Orientation,
		slots:    []string{SlotAlpha, SlotBeta, SlotGamma},
	}
)

// LayoutFor returns the layout for a modality
func LayoutFor(m Modality) (Layout, bool) {
	switch m {
	case Body:
		return BodyLayout, true
	case Face:
		return FaceLayout, true
	case Orientation:
		return OrientationLayout, true
	}
	return Layout{}, false
}

// Modality returns the modality this layout belongs to
func (l Layout) Modality() Modality {
	return l.modality
}

// Len returns the slot count
func (l Layout) Len() int {
	return len(l.slots)
}

// Slots returns a copy of the slot names in order
func (l Layout) Slots() []string {
	out := make([]string, len(l.slots))
	copy(out, l.slots)
	return out
}

// Index returns the position of a slot name, or -1
func (l Layout) Index(name string) int {
	for i, s := range l.slots {
		if s == name {
			return i
		}
	}
	return -1
}

// Empty returns a frame with every slot set to the default zero record
func (l Layout) Empty() Frame {
	kps := make([]Keypoint, len(l.slots))
	for i, name := range l.slots {
		kps[i] = Keypoint{Name: name}
	}
	return Frame{Modality: l.modality, Keypoints: kps}
}

// Matches reports whether f has this layout's modality and slot order
func (l Layout) Matches(f Frame) bool {
	if f.Modality != l.modality || len(f.Keypoints) != len(l.slots) {
		return false
	}
	for i, kp := range f.Keypoints {
		if kp.Name != l.slots[i] {
			return false
		}
	}
	return true
}

// EncodedLen returns the length of the encoded vector for this layout.
// The face box contributes 4 values, orientation axes 1, every other slot 2.
func (l Layout) EncodedLen() int {
	switch l.modality {
	case Face:
		return 4 + 2*(len(l.slots)-1)
	case Orientation:
		return len(l.slots)
	default:
		return 2 * len(l.slots)
	}
}
