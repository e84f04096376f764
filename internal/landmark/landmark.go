// Package landmark provides the observation types produced by the landmark
// feed: normalized 3D points for tracked hands and faces.
package landmark

import "math"

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist            = 0
	ThumbCMC         = 1
	ThumbMCP         = 2
	ThumbIP          = 3
	ThumbTip         = 4
	IndexMCP         = 5
	IndexPIP         = 6
	IndexDIP         = 7
	IndexTip         = 8
	MiddleMCP        = 9
	MiddlePIP        = 10
	MiddleDIP        = 11
	MiddleTip        = 12
	RingMCP          = 13
	RingPIP          = 14
	RingDIP          = 15
	RingTip          = 16
	PinkyMCP         = 17
	PinkyPIP         = 18
	PinkyDIP         = 19
	PinkyTip         = 20
	NumHandLandmarks = 21
)

// Point3D is a single landmark position. X and Y are normalized to [0,1] in
// screen space; Z is relative depth.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandObservation is one tracked hand: 21 landmarks plus the handedness label
// as reported by the feed. A front-facing camera mirrors the label, so the
// raw "Left"/"Right" here is the opposite of the physical hand; consumers
// that care about the physical hand must invert it.
type HandObservation struct {
	Points     [NumHandLandmarks]Point3D `json:"points"`
	Handedness string                    `json:"handedness"` // "Left" or "Right", as reported
	Score      float64                   `json:"score"`
}

// FaceObservation is one tracked face: the full 478-point face mesh.
type FaceObservation struct {
	Points [NumFaceLandmarks]Point3D `json:"points"`
	Score  float64                   `json:"score"`
}

// Frame is the per-video-frame output of a landmark feed. Hands holds zero or
// more tracked hands (primary hand first); Face is nil when no face was
// detected. TimestampMs is monotonically non-decreasing across frames.
type Frame struct {
	TimestampMs int64             `json:"timestamp"`
	Hands       []HandObservation `json:"hands"`
	Face        *FaceObservation  `json:"face,omitempty"`
}

// Distance3D calculates the Euclidean distance between two landmark points.
func Distance3D(a, b Point3D) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Midpoint returns the point halfway between a and b.
func Midpoint(a, b Point3D) Point3D {
	return Point3D{
		X: (a.X + b.X) / 2,
		Y: (a.Y + b.Y) / 2,
		Z: (a.Z + b.Z) / 2,
	}
}

// PalmCenter approximates the palm position of a hand as the midpoint of the
// wrist and the index finger MCP joint.
func (h *HandObservation) PalmCenter() Point3D {
	return Midpoint(h.Points[Wrist], h.Points[IndexMCP])
}
