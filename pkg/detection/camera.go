package detection

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-wekbridge/pkg/motion"
)

// ErrCameraClosed is returned when reading from a camera that is not open
var ErrCameraClosed = errors.New("detection: camera not open")

// CameraFaceSource reads frames from a local camera and detects faces.
// The camera is acquired on Open and released on Close, so a session
// holds it only while tracking.
type CameraFaceSource struct {
	device   interface{} // Device index or stream URL
	detector *YuNetDetector

	mu    sync.Mutex
	cap   *gocv.VideoCapture
	frame gocv.Mat
}

// NewCameraFaceSource creates a face source for a capture device
func NewCameraFaceSource(device interface{}, detector *YuNetDetector) *CameraFaceSource {
	return &CameraFaceSource{device: device, detector: detector}
}

// Open acquires the camera. Opening an open camera does nothing.
func (c *CameraFaceSource) Open(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cap != nil {
		return nil
	}
	vc, err := gocv.OpenVideoCapture(c.device)
	if err != nil {
		return fmt.Errorf("open camera %v: %w", c.device, err)
	}
	c.cap = vc
	c.frame = gocv.NewMat()
	return nil
}

// DetectFaces grabs one frame and runs face detection on it
func (c *CameraFaceSource) DetectFaces(ctx context.Context) (motion.FaceInput, error) {
	if err := ctx.Err(); err != nil {
		return motion.FaceInput{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cap == nil {
		return motion.FaceInput{}, ErrCameraClosed
	}
	if ok := c.cap.Read(&c.frame); !ok || c.frame.Empty() {
		return motion.FaceInput{}, fmt.Errorf("read frame from camera %v", c.device)
	}
	return c.detector.DetectMat(c.frame)
}

// Close releases the camera
func (c *CameraFaceSource) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cap == nil {
		return nil
	}
	err := c.cap.Close()
	c.frame.Close()
	c.cap = nil
	return err
}
