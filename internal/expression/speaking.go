package expression

import (
	"time"

	"github.com/ayusman/abhinaya/internal/landmark"
)

// SpeakingState tracks the debounced speaking signal. ConsecutiveOpenFrames
// and ConsecutiveClosedFrames are mutually exclusive: an open frame zeroes
// the closed counter and vice versa.
type SpeakingState struct {
	IsSpeaking              bool
	SmoothedOpenness        float64
	ConsecutiveOpenFrames   int
	ConsecutiveClosedFrames int
	SpeakingStart           time.Time
}

// updateSpeaking runs the independent mouth-openness channel: its own
// exponential smoothing over the raw lip-gap ratio, then asymmetric
// consecutive-frame hysteresis so single threshold crossings never flip the
// state.
func (e *Extractor) updateSpeaking(face *landmark.FaceObservation) {
	raw := mouthOpenRatio(face)
	s := &e.speaking
	s.SmoothedOpenness += (raw - s.SmoothedOpenness) * e.config.SpeakingSmoothing

	if e.cb.OnMouthOpennessChange != nil {
		e.cb.OnMouthOpennessChange(s.SmoothedOpenness)
	}

	if s.SmoothedOpenness > e.config.SpeakingThreshold {
		s.ConsecutiveOpenFrames++
		s.ConsecutiveClosedFrames = 0
		if !s.IsSpeaking && s.ConsecutiveOpenFrames >= e.config.SpeakingOnFrames {
			s.IsSpeaking = true
			s.SpeakingStart = e.now()
			if e.cb.OnSpeakingStart != nil {
				e.cb.OnSpeakingStart()
			}
		}
		return
	}

	s.ConsecutiveClosedFrames++
	s.ConsecutiveOpenFrames = 0
	if s.IsSpeaking && s.ConsecutiveClosedFrames >= e.config.SpeakingOffFrames {
		e.stopSpeaking()
	}
}

// stopSpeaking ends an active speaking run, reporting its duration.
func (e *Extractor) stopSpeaking() {
	s := &e.speaking
	if !s.IsSpeaking {
		return
	}
	s.IsSpeaking = false
	s.ConsecutiveOpenFrames = 0
	s.ConsecutiveClosedFrames = 0
	duration := e.now().Sub(s.SpeakingStart)
	if e.cb.OnSpeakingEnd != nil {
		e.cb.OnSpeakingEnd(duration)
	}
}
