// Package motion turns variable-shape perception output into fixed-shape
// numeric frames for the Wekinator input protocol.
//
// The stages are plain functions and values: Standardize maps detections
// onto a fixed slot layout (with a confidence Gate), the Normalize helpers
// rescale source units into [0,1], a Smoother averages the most recent frames,
// and Encode flattens a frame into the float vector sent over OSC.
package motion

import "errors"

// Modality identifies which tracker produced a frame
type Modality string

const (
	Face        Modality = "face"
	Body        Modality = "body"
	Orientation Modality = "orientation"
)

// Valid reports whether m is one of the known modalities
func (m Modality) Valid() bool {
	switch m {
	case Face, Body, Orientation:
		return true
	}
	return false
}

var (
	// ErrEmptyCluster is returned when a landmark cluster has no points
	ErrEmptyCluster = errors.New("motion: landmark cluster has no points")

	// ErrInvalidDepth is returned for a smoothing depth below 1
	ErrInvalidDepth = errors.New("motion: smoothing depth must be >= 1")

	// ErrUnknownModality is returned when a frame carries no known modality
	ErrUnknownModality = errors.New("motion: unknown modality")

	// ErrLayoutMismatch is returned when a frame does not match its layout
	ErrLayoutMismatch = errors.New("motion: frame does not match slot layout")
)

// Point is a 2-D position in source units
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Box is a bounding box in source units (top-left corner plus size)
type Box struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Detection is a single named, scored point from a body pose model
type Detection struct {
	Name  string
	Score float64 // 0-1
	X, Y  float64 // Source units (pixels)
}

// FaceDetection is one detected face: a box and four landmark clusters.
// Every cluster should hold at least one point.
type FaceDetection struct {
	Box      Box
	Score    float64
	LeftEye  []Point
	RightEye []Point
	Nose     []Point
	Mouth    []Point
}

// Angles holds device rotation angles.
// In degrees: Alpha [0,360), Beta [-180,180), Gamma [-90,90).
type Angles struct {
	Alpha float64 `json:"alpha"`
	Beta  float64 `json:"beta"`
	Gamma float64 `json:"gamma"`
}

// BodyInput is one tick of body pose output plus the capture size it was
// measured against. Pre-normalized input uses Width = Height = 1.
type BodyInput struct {
	Width, Height float64
	Detections    []Detection
}

// FaceInput is one tick of face detector output plus the capture size
type FaceInput struct {
	Width, Height float64
	Faces         []FaceDetection
}

// Keypoint is one standardized slot record.
// W and H are only used by the face box slot.
type Keypoint struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	W     float64 `json:"w,omitempty"`
	H     float64 `json:"h,omitempty"`
}

// Frame holds exactly one Keypoint per slot of its modality's layout,
// in layout order.
type Frame struct {
	Modality  Modality   `json:"modality"`
	Keypoints []Keypoint `json:"keypoints"`
}

// Len returns the number of slots in the frame
func (f Frame) Len() int {
	return len(f.Keypoints)
}

// Keypoint returns the slot with the given name
func (f Frame) Keypoint(name string) (Keypoint, bool) {
	for _, kp := range f.Keypoints {
		if kp.Name == name {
			return kp, true
		}
	}
	return Keypoint{}, false
}

// Clone returns a deep copy of the frame
func (f Frame) Clone() Frame {
	kps := make([]Keypoint, len(f.Keypoints))
	copy(kps, f.Keypoints)
	return Frame{Modality: f.Modality, Keypoints: kps}
}

// Encoded is the flat float vector for one OSC message
type Encoded struct {
	Modality Modality  `json:"modality"`
	Values   []float32 `json:"values"`
}
