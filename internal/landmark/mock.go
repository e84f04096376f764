package landmark

import (
	"gocv.io/x/gocv"
)

// MockFeed is a test implementation of the Feed interface.
// It allows tests to control the detection results.
type MockFeed struct {
	frame Frame
	err   error
}

// NewMockFeed creates a new MockFeed instance.
func NewMockFeed() *MockFeed {
	return &MockFeed{}
}

// SetFrame sets the observations that will be returned by Detect.
func (m *MockFeed) SetFrame(frame Frame) {
	m.frame = frame
}

// SetError sets the error that will be returned by Detect.
func (m *MockFeed) SetError(err error) {
	m.err = err
}

// Detect returns the pre-configured frame or error. The frame's timestamp is
// replaced with the requested one.
func (m *MockFeed) Detect(frame *gocv.Mat, timestampMs int64) (Frame, error) {
	if m.err != nil {
		return Frame{TimestampMs: timestampMs}, m.err
	}
	result := m.frame
	result.TimestampMs = timestampMs
	return result, nil
}

// Close is a no-op for the mock feed.
func (m *MockFeed) Close() error {
	return nil
}

// NeutralHand returns a preset HandObservation of a relaxed right hand:
// fingers loosely together, no pinch, no raised index finger.
func NeutralHand() HandObservation {
	hand := HandObservation{
		Handedness: "Right",
		Score:      0.95,
	}

	hand.Points[Wrist] = Point3D{X: 0.50, Y: 0.80, Z: 0.0}

	hand.Points[ThumbCMC] = Point3D{X: 0.56, Y: 0.76, Z: 0.0}
	hand.Points[ThumbMCP] = Point3D{X: 0.60, Y: 0.71, Z: 0.0}
	hand.Points[ThumbIP] = Point3D{X: 0.61, Y: 0.66, Z: 0.0}
	hand.Points[ThumbTip] = Point3D{X: 0.62, Y: 0.62, Z: 0.0}

	hand.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.68, Z: 0.0}
	hand.Points[IndexPIP] = Point3D{X: 0.54, Y: 0.64, Z: 0.0}
	hand.Points[IndexDIP] = Point3D{X: 0.53, Y: 0.62, Z: 0.0}
	hand.Points[IndexTip] = Point3D{X: 0.52, Y: 0.58, Z: 0.0}

	hand.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.67, Z: 0.0}
	hand.Points[MiddlePIP] = Point3D{X: 0.49, Y: 0.63, Z: 0.0}
	hand.Points[MiddleDIP] = Point3D{X: 0.485, Y: 0.60, Z: 0.0}
	hand.Points[MiddleTip] = Point3D{X: 0.48, Y: 0.58, Z: 0.0}

	hand.Points[RingMCP] = Point3D{X: 0.46, Y: 0.68, Z: 0.0}
	hand.Points[RingPIP] = Point3D{X: 0.45, Y: 0.64, Z: 0.0}
	hand.Points[RingDIP] = Point3D{X: 0.445, Y: 0.61, Z: 0.0}
	hand.Points[RingTip] = Point3D{X: 0.44, Y: 0.59, Z: 0.0}

	hand.Points[PinkyMCP] = Point3D{X: 0.42, Y: 0.70, Z: 0.0}
	hand.Points[PinkyPIP] = Point3D{X: 0.41, Y: 0.66, Z: 0.0}
	hand.Points[PinkyDIP] = Point3D{X: 0.405, Y: 0.63, Z: 0.0}
	hand.Points[PinkyTip] = Point3D{X: 0.40, Y: 0.61, Z: 0.0}

	return hand
}

// PinchHand returns a preset HandObservation with the thumb and index
// fingertips touching (distance well under the pinch threshold).
func PinchHand() HandObservation {
	hand := NeutralHand()
	hand.Points[ThumbTip] = Point3D{X: 0.55, Y: 0.60, Z: 0.0}
	hand.Points[IndexTip] = Point3D{X: 0.57, Y: 0.62, Z: 0.0}
	return hand
}

// OpenPalmHand returns a preset HandObservation with all fingers spread wide.
func OpenPalmHand() HandObservation {
	hand := HandObservation{
		Handedness: "Right",
		Score:      0.95,
	}

	hand.Points[Wrist] = Point3D{X: 0.50, Y: 0.85, Z: 0.0}

	hand.Points[ThumbCMC] = Point3D{X: 0.58, Y: 0.78, Z: 0.0}
	hand.Points[ThumbMCP] = Point3D{X: 0.66, Y: 0.70, Z: 0.0}
	hand.Points[ThumbIP] = Point3D{X: 0.73, Y: 0.62, Z: 0.0}
	hand.Points[ThumbTip] = Point3D{X: 0.80, Y: 0.55, Z: 0.0}

	hand.Points[IndexMCP] = Point3D{X: 0.58, Y: 0.62, Z: 0.0}
	hand.Points[IndexPIP] = Point3D{X: 0.60, Y: 0.50, Z: 0.0}
	hand.Points[IndexDIP] = Point3D{X: 0.61, Y: 0.40, Z: 0.0}
	hand.Points[IndexTip] = Point3D{X: 0.62, Y: 0.30, Z: 0.0}

	hand.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.60, Z: 0.0}
	hand.Points[MiddlePIP] = Point3D{X: 0.50, Y: 0.47, Z: 0.0}
	hand.Points[MiddleDIP] = Point3D{X: 0.50, Y: 0.35, Z: 0.0}
	hand.Points[MiddleTip] = Point3D{X: 0.50, Y: 0.25, Z: 0.0}

	hand.Points[RingMCP] = Point3D{X: 0.43, Y: 0.62, Z: 0.0}
	hand.Points[RingPIP] = Point3D{X: 0.41, Y: 0.50, Z: 0.0}
	hand.Points[RingDIP] = Point3D{X: 0.39, Y: 0.40, Z: 0.0}
	hand.Points[RingTip] = Point3D{X: 0.38, Y: 0.30, Z: 0.0}

	hand.Points[PinkyMCP] = Point3D{X: 0.37, Y: 0.66, Z: 0.0}
	hand.Points[PinkyPIP] = Point3D{X: 0.33, Y: 0.57, Z: 0.0}
	hand.Points[PinkyDIP] = Point3D{X: 0.29, Y: 0.48, Z: 0.0}
	hand.Points[PinkyTip] = Point3D{X: 0.26, Y: 0.40, Z: 0.0}

	return hand
}

// PointingHand returns a preset HandObservation with the index finger
// extended upward and the remaining fingers curled.
func PointingHand() HandObservation {
	hand := NeutralHand()

	hand.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.65, Z: 0.0}
	hand.Points[IndexPIP] = Point3D{X: 0.555, Y: 0.56, Z: 0.0}
	hand.Points[IndexDIP] = Point3D{X: 0.558, Y: 0.48, Z: 0.0}
	hand.Points[IndexTip] = Point3D{X: 0.56, Y: 0.40, Z: 0.0}

	hand.Points[ThumbTip] = Point3D{X: 0.62, Y: 0.60, Z: 0.0}
	hand.Points[MiddleTip] = Point3D{X: 0.52, Y: 0.60, Z: 0.0}
	hand.Points[RingTip] = Point3D{X: 0.48, Y: 0.62, Z: 0.0}
	hand.Points[PinkyTip] = Point3D{X: 0.44, Y: 0.64, Z: 0.0}

	return hand
}

// NeutralFace returns a preset FaceObservation with a centered, level face:
// eyes half open, brows at baseline, mouth closed.
func NeutralFace() FaceObservation {
	var face FaceObservation
	face.Score = 0.95

	face.Points[FaceNoseTip] = Point3D{X: 0.50, Y: 0.50, Z: -0.02}
	face.Points[FaceForehead] = Point3D{X: 0.50, Y: 0.30, Z: 0.0}
	face.Points[FaceChin] = Point3D{X: 0.50, Y: 0.70, Z: 0.0}
	face.Points[FaceLeftCheek] = Point3D{X: 0.35, Y: 0.50, Z: 0.0}
	face.Points[FaceRightCheek] = Point3D{X: 0.65, Y: 0.50, Z: 0.0}

	face.Points[FaceLeftEyeOuter] = Point3D{X: 0.38, Y: 0.45, Z: 0.0}
	face.Points[FaceLeftEyeInner] = Point3D{X: 0.46, Y: 0.45, Z: 0.0}
	face.Points[FaceLeftEyeTop] = Point3D{X: 0.42, Y: 0.44, Z: 0.0}
	face.Points[FaceLeftEyeBottom] = Point3D{X: 0.42, Y: 0.46, Z: 0.0}

	face.Points[FaceRightEyeInner] = Point3D{X: 0.54, Y: 0.45, Z: 0.0}
	face.Points[FaceRightEyeOuter] = Point3D{X: 0.62, Y: 0.45, Z: 0.0}
	face.Points[FaceRightEyeTop] = Point3D{X: 0.58, Y: 0.44, Z: 0.0}
	face.Points[FaceRightEyeBottom] = Point3D{X: 0.58, Y: 0.46, Z: 0.0}

	face.Points[FaceLeftBrow] = Point3D{X: 0.42, Y: 0.405, Z: 0.0}
	face.Points[FaceRightBrow] = Point3D{X: 0.58, Y: 0.405, Z: 0.0}

	face.Points[FaceUpperLip] = Point3D{X: 0.50, Y: 0.600, Z: 0.0}
	face.Points[FaceLowerLip] = Point3D{X: 0.50, Y: 0.601, Z: 0.0}
	face.Points[FaceMouthLeft] = Point3D{X: 0.44, Y: 0.6005, Z: 0.0}
	face.Points[FaceMouthRight] = Point3D{X: 0.56, Y: 0.6005, Z: 0.0}

	return face
}

// OpenMouthFace returns NeutralFace with the mouth wide open.
func OpenMouthFace() FaceObservation {
	face := NeutralFace()
	face.Points[FaceUpperLip] = Point3D{X: 0.50, Y: 0.58, Z: 0.0}
	face.Points[FaceLowerLip] = Point3D{X: 0.50, Y: 0.64, Z: 0.0}
	face.Points[FaceMouthLeft] = Point3D{X: 0.44, Y: 0.61, Z: 0.0}
	face.Points[FaceMouthRight] = Point3D{X: 0.56, Y: 0.61, Z: 0.0}
	return face
}
