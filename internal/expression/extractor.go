// Package expression converts face landmark observations into a smoothed
// facial-expression vector and a debounced speaking signal.
package expression

import (
	"time"

	"github.com/ayusman/abhinaya/internal/landmark"
)

// Vector is the fixed-shape set of facial features extracted per frame.
// Angle fields are degrees clamped to [-30,30]; openness fields are
// normalized to [0,1]; brow and smile fields to [-1,1]. FaceX/FaceY are the
// normalized nose-tip position.
type Vector struct {
	LeftEyeOpenness  float64 `json:"leftEyeOpenness"`
	RightEyeOpenness float64 `json:"rightEyeOpenness"`
	LeftBrowY        float64 `json:"leftBrowY"`
	RightBrowY       float64 `json:"rightBrowY"`
	HeadAngleX       float64 `json:"headAngleX"`
	HeadAngleY       float64 `json:"headAngleY"`
	HeadAngleZ       float64 `json:"headAngleZ"`
	MouthOpenness    float64 `json:"mouthOpenness"`
	MouthSmile       float64 `json:"mouthSmile"`
	FaceX            float64 `json:"faceX"`
	FaceY            float64 `json:"faceY"`
	FaceDetected     bool    `json:"faceDetected"`
}

// Neutral returns the vector emitted when no face is tracked: eyes open,
// head level, mouth closed, face centered.
func Neutral() Vector {
	return Vector{
		LeftEyeOpenness:  1,
		RightEyeOpenness: 1,
		FaceX:            0.5,
		FaceY:            0.5,
	}
}

// Callbacks holds the listener functions invoked by the extractor.
// Unset callbacks are skipped.
type Callbacks struct {
	// OnExpressionUpdate receives the smoothed expression vector each
	// frame a face is tracked, plus one neutral faceDetected=false vector
	// per loss transition.
	OnExpressionUpdate func(v Vector)

	// OnSpeakingStart fires once per debounced speaking transition.
	OnSpeakingStart func()

	// OnSpeakingEnd fires once per stop transition with the measured
	// speaking duration.
	OnSpeakingEnd func(duration time.Duration)

	// OnMouthOpennessChange reports the speaking channel's smoothed mouth
	// opening ratio every tracked frame.
	OnMouthOpennessChange func(value float64)
}

// Config holds the extractor's tuning values.
type Config struct {
	// SmoothingFactor is the per-field exponential smoothing factor for
	// the emitted expression vector.
	SmoothingFactor float64

	// SpeakingSmoothing is the smoothing factor of the independent
	// mouth-openness channel feeding the speaking hysteresis.
	SpeakingSmoothing float64

	// SpeakingThreshold is the smoothed mouth-opening ratio above which a
	// frame counts as "open".
	SpeakingThreshold float64

	// SpeakingOnFrames is how many consecutive open frames start speech.
	SpeakingOnFrames int

	// SpeakingOffFrames is how many consecutive closed frames end speech.
	// Larger than SpeakingOnFrames so rapid articulation does not flicker.
	SpeakingOffFrames int
}

// DefaultConfig returns the extractor tuning used in production.
func DefaultConfig() Config {
	return Config{
		SmoothingFactor:   0.4,
		SpeakingSmoothing: 0.3,
		SpeakingThreshold: 0.02,
		SpeakingOnFrames:  3,
		SpeakingOffFrames: 6,
	}
}

// Extractor turns per-frame face observations into smoothed expression
// vectors. One instance per tracked session; not safe for concurrent use.
type Extractor struct {
	config   Config
	cb       Callbacks
	smoothed Vector
	detected bool
	speaking SpeakingState
	lastTS   int64
	now      func() time.Time
}

// NewExtractor creates an Extractor with the given tuning and listeners.
func NewExtractor(config Config, cb Callbacks) *Extractor {
	return &Extractor{
		config:   config,
		cb:       cb,
		smoothed: Neutral(),
		lastTS:   -1,
		now:      time.Now,
	}
}

// Vector returns the most recently emitted smoothed expression vector.
func (e *Extractor) Vector() Vector {
	return e.smoothed
}

// Speaking returns a copy of the current speaking state.
func (e *Extractor) Speaking() SpeakingState {
	return e.speaking
}

// ProcessFrame extracts, smooths, and emits the expression vector for the
// face observed at the given timestamp. A nil face drives the loss
// transition; a duplicate timestamp is a no-op.
func (e *Extractor) ProcessFrame(timestampMs int64, face *landmark.FaceObservation) {
	if timestampMs == e.lastTS {
		return
	}
	e.lastTS = timestampMs

	if face == nil {
		e.handleFaceLost()
		return
	}

	raw := extractFeatures(face)

	e.smoothed = lerpVector(e.smoothed, raw, e.config.SmoothingFactor)
	e.smoothed.FaceDetected = true
	e.detected = true

	if e.cb.OnExpressionUpdate != nil {
		e.cb.OnExpressionUpdate(e.smoothed)
	}

	e.updateSpeaking(face)
}

// handleFaceLost emits one neutral faceDetected=false vector per loss
// transition and forces the speaking state off.
func (e *Extractor) handleFaceLost() {
	if !e.detected {
		return
	}
	e.detected = false
	e.smoothed = Neutral()
	e.smoothed.FaceDetected = false

	if e.cb.OnExpressionUpdate != nil {
		e.cb.OnExpressionUpdate(e.smoothed)
	}

	e.stopSpeaking()
	e.speaking = SpeakingState{}
}

// lerpVector applies independent exponential smoothing to every numeric
// field. FaceDetected is copied from raw unsmoothed.
func lerpVector(prev, raw Vector, factor float64) Vector {
	lerp := func(p, r float64) float64 { return p + (r-p)*factor }
	return Vector{
		LeftEyeOpenness:  lerp(prev.LeftEyeOpenness, raw.LeftEyeOpenness),
		RightEyeOpenness: lerp(prev.RightEyeOpenness, raw.RightEyeOpenness),
		LeftBrowY:        lerp(prev.LeftBrowY, raw.LeftBrowY),
		RightBrowY:       lerp(prev.RightBrowY, raw.RightBrowY),
		HeadAngleX:       lerp(prev.HeadAngleX, raw.HeadAngleX),
		HeadAngleY:       lerp(prev.HeadAngleY, raw.HeadAngleY),
		HeadAngleZ:       lerp(prev.HeadAngleZ, raw.HeadAngleZ),
		MouthOpenness:    lerp(prev.MouthOpenness, raw.MouthOpenness),
		MouthSmile:       lerp(prev.MouthSmile, raw.MouthSmile),
		FaceX:            lerp(prev.FaceX, raw.FaceX),
		FaceY:            lerp(prev.FaceY, raw.FaceY),
		FaceDetected:     raw.FaceDetected,
	}
}
