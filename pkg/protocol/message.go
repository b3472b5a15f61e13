// Package protocol defines the WebSocket messages exchanged between capture
// clients (browser pages, the replay tool) and the relay server.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageType identifies the type of WebSocket message
type MessageType string

const (
	// Capture → Relay, already normalized in the client
	TypeFaceData        MessageType = "faceData"        // Flat face record
	TypeBodyData        MessageType = "bodyData"        // Normalized keypoints
	TypeOrientationData MessageType = "orientationData" // Normalized angles

	// Capture → Relay, raw detector output (normalized by the relay)
	TypeBodyPose          MessageType = "bodyPose"          // Pixel keypoints + capture size
	TypeFacePose          MessageType = "facePose"          // Faces with landmark clusters + capture size
	TypeDeviceOrientation MessageType = "deviceOrientation" // Angles in degrees

	// Session control
	TypeStart     MessageType = "start"
	TypeStop      MessageType = "stop"
	TypeSmoothing MessageType = "smoothing"

	// Relay → Capture
	TypeAck   MessageType = "ack"
	TypeError MessageType = "error"
	TypeClear MessageType = "clear" // No face this tick, clear the display

	// Bidirectional
	TypePing MessageType = "ping"
	TypePong MessageType = "pong"
)

// Message is the base wrapper for all WebSocket messages
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp int64           `json:"ts,omitempty"` // Unix milliseconds
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(msgType MessageType, data interface{}) (*Message, error) {
	var rawData json.RawMessage
	if data != nil {
		var err error
		rawData, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal message data: %w", err)
		}
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
		Data:      rawData,
	}, nil
}

// ParseData unmarshals the message data into the provided struct
func (m *Message) ParseData(v interface{}) error {
	if m.Data == nil {
		return nil
	}
	return json.Unmarshal(m.Data, v)
}

// Bytes returns the JSON-encoded message
func (m *Message) Bytes() ([]byte, error) {
	return json.Marshal(m)
}

// ParseMessage parses a JSON message from bytes
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	if msg.Type == "" {
		return nil, fmt.Errorf("failed to parse message: missing type")
	}
	return &msg, nil
}

// =============================================================================
// Normalized capture data
// =============================================================================

// FaceData is a face record normalized to the capture size
type FaceData struct {
	X         Number `json:"x"`
	Y         Number `json:"y"`
	Width     Number `json:"width"`
	Height    Number `json:"height"`
	LeftEyeX  Number `json:"leftEyeX"`
	LeftEyeY  Number `json:"leftEyeY"`
	RightEyeX Number `json:"rightEyeX"`
	RightEyeY Number `json:"rightEyeY"`
	NoseX     Number `json:"noseX"`
	NoseY     Number `json:"noseY"`
	MouthX    Number `json:"mouthX"`
	MouthY    Number `json:"mouthY"`
}

// BodyData holds normalized PoseNet keypoints
type BodyData struct {
	Keypoints []BodyKeypoint `json:"keypoints"`
}

// BodyKeypoint is one normalized keypoint
type BodyKeypoint struct {
	Part  string `json:"part"`
	Score Number `json:"score"`
	X     Number `json:"x"`
	Y     Number `json:"y"`
}

// OrientationData holds angles already mapped onto [0,1)
type OrientationData struct {
	Alpha Number `json:"alpha"`
	Beta  Number `json:"beta"`
	Gamma Number `json:"gamma"`
}

// =============================================================================
// Raw detector output
// =============================================================================

// BodyPoseData is pose model output in pixels
type BodyPoseData struct {
	Width     Number         `json:"width"`
	Height    Number         `json:"height"`
	Keypoints []PoseKeypoint `json:"keypoints"`
}

// PoseKeypoint is one keypoint in pixels
type PoseKeypoint struct {
	Part     string   `json:"part"`
	Score    Number   `json:"score"`
	Position Position `json:"position"`
}

// Position is a 2-D point
type Position struct {
	X Number `json:"x"`
	Y Number `json:"y"`
}

// FacePoseData is face detector output in pixels
type FacePoseData struct {
	Width  Number     `json:"width"`
	Height Number     `json:"height"`
	Faces  []FacePose `json:"faces"`
}

// FacePose is one detected face
type FacePose struct {
	Box       BoxData   `json:"box"`
	Score     Number    `json:"score"`
	Landmarks Landmarks `json:"landmarks"`
}

// BoxData is a bounding box
type BoxData struct {
	X      Number `json:"x"`
	Y      Number `json:"y"`
	Width  Number `json:"width"`
	Height Number `json:"height"`
}

// Landmarks holds the point lists for each face cluster
type Landmarks struct {
	LeftEye  []Position `json:"leftEye"`
	RightEye []Position `json:"rightEye"`
	Nose     []Position `json:"nose"`
	Mouth    []Position `json:"mouth"`
}

// DeviceOrientationData holds device angles in degrees
type DeviceOrientationData struct {
	Alpha Number `json:"alpha"`
	Beta  Number `json:"beta"`
	Gamma Number `json:"gamma"`
}

// =============================================================================
// Control and replies
// =============================================================================

// SmoothingData sets the smoothing depth
type SmoothingData struct {
	Depth int `json:"depth"`
}

// AckData confirms a control message
type AckData struct {
	For       MessageType `json:"for"`
	SessionID string      `json:"session_id"`
	Tracking  bool        `json:"tracking"`
	Depth     int         `json:"depth"`
}

// ErrorData reports a rejected message
type ErrorData struct {
	For   MessageType `json:"for,omitempty"`
	Error string      `json:"error"`
}

// ClearData tells the client no face was found
type ClearData struct {
	Modality string `json:"modality"`
}

// PongData contains pong response
type PongData struct {
	PingTS    int64 `json:"ping_ts"`
	PongTS    int64 `json:"pong_ts"`
	LatencyMs int64 `json:"latency_ms"`
}
