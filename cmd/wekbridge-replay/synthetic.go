package main

import (
	"math"

	"github.com/teslashibe/go-wekbridge/pkg/motion"
	"github.com/teslashibe/go-wekbridge/pkg/protocol"
)

const (
	captureWidth  = 640
	captureHeight = 480
)

// skeleton is a standing figure in pixels, roughly centered
var skeleton = map[string][2]float64{
	"nose":          {320, 100},
	"leftEye":       {310, 90},
	"rightEye":      {330, 90},
	"leftEar":       {300, 95},
	"rightEar":      {340, 95},
	"leftShoulder":  {280, 150},
	"rightShoulder": {360, 150},
	"leftElbow":     {260, 210},
	"rightElbow":    {380, 210},
	"leftWrist":     {250, 270},
	"rightWrist":    {390, 270},
	"leftHip":       {295, 280},
	"rightHip":      {345, 280},
	"leftKnee":      {290, 360},
	"rightKnee":     {350, 360},
	"leftAnkle":     {290, 440},
	"rightAnkle":    {350, 440},
}

// bodyPose returns the figure at time t (seconds): it sways sideways and
// waves the right arm.
func bodyPose(t float64) protocol.BodyPoseData {
	sway := 40 * math.Sin(t*0.5*2*math.Pi)
	wave := 60 * math.Sin(t*2*math.Pi)

	data := protocol.BodyPoseData{Width: captureWidth, Height: captureHeight}
	for _, part := range motion.BodyLayout.Slots() {
		p := skeleton[part]
		x, y := p[0]+sway, p[1]
		if part == "rightWrist" || part == "rightElbow" {
			y -= wave
		}
		data.Keypoints = append(data.Keypoints, protocol.PoseKeypoint{
			Part:     part,
			Score:    0.9,
			Position: protocol.Position{X: protocol.Number(x), Y: protocol.Number(y)},
		})
	}
	return data
}

// facePose returns one face nodding at time t
func facePose(t float64) protocol.FacePoseData {
	nod := 15 * math.Sin(t*2*math.Pi)
	pos := func(x, y float64) protocol.Position {
		return protocol.Position{X: protocol.Number(x), Y: protocol.Number(y + nod)}
	}

	return protocol.FacePoseData{
		Width:  captureWidth,
		Height: captureHeight,
		Faces: []protocol.FacePose{{
			Box:   protocol.BoxData{X: 260, Y: protocol.Number(140 + nod), Width: 120, Height: 150},
			Score: 0.95,
			Landmarks: protocol.Landmarks{
				LeftEye:  []protocol.Position{pos(290, 190), pos(300, 186), pos(310, 190)},
				RightEye: []protocol.Position{pos(330, 190), pos(340, 186), pos(350, 190)},
				Nose:     []protocol.Position{pos(320, 200), pos(320, 220), pos(320, 235)},
				Mouth:    []protocol.Position{pos(300, 255), pos(320, 262), pos(340, 255)},
			},
		}},
	}
}

// deviceOrientation returns a slowly rotating device at time t, in degrees
func deviceOrientation(t float64) protocol.DeviceOrientationData {
	return protocol.DeviceOrientationData{
		Alpha: protocol.Number(math.Mod(t*36, 360)),
		Beta:  protocol.Number(45 * math.Sin(t*0.25*2*math.Pi)),
		Gamma: protocol.Number(30 * math.Cos(t*0.25*2*math.Pi)),
	}
}
