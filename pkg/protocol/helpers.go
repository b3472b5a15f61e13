package protocol

import (
	"github.com/teslashibe/go-wekbridge/pkg/motion"
)

// =============================================================================
// Helper functions for creating messages
// =============================================================================

// NewAckMessage confirms a control message
func NewAckMessage(forType MessageType, sessionID string, tracking bool, depth int) (*Message, error) {
	return NewMessage(TypeAck, AckData{
		For:       forType,
		SessionID: sessionID,
		Tracking:  tracking,
		Depth:     depth,
	})
}

// NewErrorMessage reports a rejected message
func NewErrorMessage(forType MessageType, err error) (*Message, error) {
	return NewMessage(TypeError, ErrorData{For: forType, Error: err.Error()})
}

// NewClearMessage tells the client to clear a modality's display
func NewClearMessage(m motion.Modality) (*Message, error) {
	return NewMessage(TypeClear, ClearData{Modality: string(m)})
}

// NewPongMessage creates a pong response message
func NewPongMessage(pingTS, pongTS int64) (*Message, error) {
	return NewMessage(TypePong, PongData{
		PingTS:    pingTS,
		PongTS:    pongTS,
		LatencyMs: pongTS - pingTS,
	})
}

// NewSmoothingMessage creates a smoothing depth change
func NewSmoothingMessage(depth int) (*Message, error) {
	return NewMessage(TypeSmoothing, SmoothingData{Depth: depth})
}

// =============================================================================
// Conversion to pipeline inputs
// =============================================================================

// Frame converts a normalized face record into a face frame
func (f *FaceData) Frame() motion.Frame {
	return motion.FaceFields{
		X: f.X.Float64(), Y: f.Y.Float64(),
		Width: f.Width.Float64(), Height: f.Height.Float64(),
		LeftEyeX: f.LeftEyeX.Float64(), LeftEyeY: f.LeftEyeY.Float64(),
		RightEyeX: f.RightEyeX.Float64(), RightEyeY: f.RightEyeY.Float64(),
		NoseX: f.NoseX.Float64(), NoseY: f.NoseY.Float64(),
		MouthX: f.MouthX.Float64(), MouthY: f.MouthY.Float64(),
	}.Frame()
}

// Input converts normalized keypoints into a body input with unit size
func (b *BodyData) Input() motion.BodyInput {
	dets := make([]motion.Detection, 0, len(b.Keypoints))
	for _, kp := range b.Keypoints {
		dets = append(dets, motion.Detection{
			Name:  kp.Part,
			Score: kp.Score.Float64(),
			X:     kp.X.Float64(),
			Y:     kp.Y.Float64(),
		})
	}
	return motion.BodyInput{Width: 1, Height: 1, Detections: dets}
}

// Frame converts normalized angles into an orientation frame
func (o *OrientationData) Frame() motion.Frame {
	return motion.OrientationFrame(motion.Angles{
		Alpha: o.Alpha.Float64(),
		Beta:  o.Beta.Float64(),
		Gamma: o.Gamma.Float64(),
	})
}

// Input converts pose output into a body input
func (b *BodyPoseData) Input() motion.BodyInput {
	dets := make([]motion.Detection, 0, len(b.Keypoints))
	for _, kp := range b.Keypoints {
		dets = append(dets, motion.Detection{
			Name:  kp.Part,
			Score: kp.Score.Float64(),
			X:     kp.Position.X.Float64(),
			Y:     kp.Position.Y.Float64(),
		})
	}
	return motion.BodyInput{
		Width:      b.Width.Float64(),
		Height:     b.Height.Float64(),
		Detections: dets,
	}
}

// Input converts face detector output into a face input
func (f *FacePoseData) Input() motion.FaceInput {
	faces := make([]motion.FaceDetection, 0, len(f.Faces))
	for _, fp := range f.Faces {
		faces = append(faces, motion.FaceDetection{
			Box: motion.Box{
				X:      fp.Box.X.Float64(),
				Y:      fp.Box.Y.Float64(),
				Width:  fp.Box.Width.Float64(),
				Height: fp.Box.Height.Float64(),
			},
			Score:    fp.Score.Float64(),
			LeftEye:  points(fp.Landmarks.LeftEye),
			RightEye: points(fp.Landmarks.RightEye),
			Nose:     points(fp.Landmarks.Nose),
			Mouth:    points(fp.Landmarks.Mouth),
		})
	}
	return motion.FaceInput{
		Width:  f.Width.Float64(),
		Height: f.Height.Float64(),
		Faces:  faces,
	}
}

// Orientation returns the angles in degrees
func (d *DeviceOrientationData) Orientation() motion.Angles {
	return motion.Angles{
		Alpha: d.Alpha.Float64(),
		Beta:  d.Beta.Float64(),
		Gamma: d.Gamma.Float64(),
	}
}

func points(ps []Position) []motion.Point {
	out := make([]motion.Point, len(ps))
	for i, p := range ps {
		out[i] = motion.Point{X: p.X.Float64(), Y: p.Y.Float64()}
	}
	return out
}
