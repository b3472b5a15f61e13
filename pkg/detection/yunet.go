package detection

import (
	"fmt"
	"image"
	"os"
	"sync"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-wekbridge/internal/log"
	"github.com/teslashibe/go-wekbridge/pkg/motion"
)

// yunetCols is the width of a FaceDetectorYN result row:
//
//	0-3:   x, y, w, h (bounding box in pixels)
//	4-5:   eye on the image left (the subject's right eye)
//	6-7:   eye on the image right
//	8-9:   nose tip
//	10-11: mouth corner on the image left
//	12-13: mouth corner on the image right
//	14:    face score
const yunetCols = 15

// YuNetDetector uses OpenCV's FaceDetectorYN for face detection
type YuNetDetector struct {
	detector gocv.FaceDetectorYN
	config   Config
	mu       sync.Mutex // Protects inference
}

// NewYuNet creates a new YuNet face detector using GoCV's built-in FaceDetectorYN
func NewYuNet(cfg Config) (*YuNetDetector, error) {
	if _, err := os.Stat(cfg.ModelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("model file not found: %s", cfg.ModelPath)
	}

	// Input size is updated per image
	detector := gocv.NewFaceDetectorYNWithParams(
		cfg.ModelPath,
		"",
		image.Pt(cfg.InputWidth, cfg.InputHeight),
		float32(cfg.ConfidenceThresh),
		0.3,  // NMS threshold
		5000, // Top K
		int(gocv.NetBackendDefault),
		int(gocv.NetTargetCPU),
	)

	return &YuNetDetector{
		detector: detector,
		config:   cfg,
	}, nil
}

// Detect finds faces in the JPEG image
func (d *YuNetDetector) Detect(jpeg []byte) (motion.FaceInput, error) {
	img, err := gocv.IMDecode(jpeg, gocv.IMReadColor)
	if err != nil {
		return motion.FaceInput{}, fmt.Errorf("decode image: %w", err)
	}
	defer img.Close()

	return d.DetectMat(img)
}

// DetectMat finds faces in a decoded image. Faces are returned in pixels,
// best first.
func (d *YuNetDetector) DetectMat(img gocv.Mat) (motion.FaceInput, error) {
	if img.Empty() {
		return motion.FaceInput{}, fmt.Errorf("empty image")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.detector.SetInputSize(image.Pt(img.Cols(), img.Rows()))

	faces := gocv.NewMat()
	defer faces.Close()

	d.detector.Detect(img, &faces)

	in := motion.FaceInput{
		Width:  float64(img.Cols()),
		Height: float64(img.Rows()),
	}
	if faces.Cols() < yunetCols {
		return in, nil
	}

	for r := 0; r < faces.Rows(); r++ {
		var row [yunetCols]float32
		for c := range row {
			row[c] = faces.GetFloatAt(r, c)
		}
		in.Faces = append(in.Faces, faceFromRow(row))
	}
	SortBest(in.Faces)

	if len(in.Faces) > 0 {
		log.Debug("yunet found faces", "count", len(in.Faces))
	}
	return in, nil
}

// faceFromRow converts one YuNet result row into a face detection.
// Each landmark becomes a one-point cluster; the mouth uses both corners.
func faceFromRow(row [yunetCols]float32) motion.FaceDetection {
	pt := func(i int) motion.Point {
		return motion.Point{X: float64(row[i]), Y: float64(row[i+1])}
	}
	return motion.FaceDetection{
		Box: motion.Box{
			X:      float64(row[0]),
			Y:      float64(row[1]),
			Width:  float64(row[2]),
			Height: float64(row[3]),
		},
		Score:    float64(row[14]),
		LeftEye:  []motion.Point{pt(4)},
		RightEye: []motion.Point{pt(6)},
		Nose:     []motion.Point{pt(8)},
		Mouth:    []motion.Point{pt(10), pt(12)},
	}
}

// Close releases the detector resources
func (d *YuNetDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.detector.Close()
	return nil
}
