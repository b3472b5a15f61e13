// Package detection provides local face detection using computer vision,
// producing the same face detections capture clients send.
package detection

import (
	"sort"

	"github.com/teslashibe/go-wekbridge/pkg/motion"
)

// Detector is the interface for face detection backends
type Detector interface {
	// Detect finds faces in the JPEG image, in pixels
	Detect(jpeg []byte) (motion.FaceInput, error)

	// Close releases resources
	Close() error
}

// Config holds detector configuration
type Config struct {
	ModelPath        string  // Path to ONNX model
	ConfidenceThresh float64 // Minimum confidence (default 0.5)
	InputWidth       int     // Model input width
	InputHeight      int     // Model input height
}

// DefaultConfig returns production defaults for YuNet
func DefaultConfig() Config {
	return Config{
		ModelPath:        "models/face_detection_yunet.onnx",
		ConfidenceThresh: 0.5,
		InputWidth:       320,
		InputHeight:      320,
	}
}

// SortBest orders faces so the most prominent comes first.
// Priority: score * 0.7 + relative area * 0.3.
// The pipeline keeps only the first face, so this decides who is tracked.
func SortBest(faces []motion.FaceDetection) {
	if len(faces) < 2 {
		return
	}

	maxArea := 0.0
	for _, f := range faces {
		if a := area(f); a > maxArea {
			maxArea = a
		}
	}

	rank := func(f motion.FaceDetection) float64 {
		r := f.Score * 0.7
		if maxArea > 0 {
			r += area(f) / maxArea * 0.3
		}
		return r
	}
	sort.SliceStable(faces, func(i, j int) bool {
		return rank(faces[i]) > rank(faces[j])
	})
}

func area(f motion.FaceDetection) float64 {
	return f.Box.Width * f.Box.Height
}
