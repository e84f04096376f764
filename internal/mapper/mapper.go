// Package mapper translates gesture events and expression vectors into
// avatar control parameters, arbitrating between competing reactions with
// wall-clock cooldowns so they do not visually collide.
package mapper

import (
	"time"

	"github.com/ayusman/abhinaya/internal/expression"
	"github.com/ayusman/abhinaya/internal/gesture"
)

// Config holds the mapper's sensitivities, cooldown intervals, and the
// viewport used to normalize click coordinates back from pixel space.
type Config struct {
	TiltSensitivity  float64       // degrees of body tilt per unit of focus
	TiltYDamping     float64       // damping applied to vertical tilt
	DragTiltMaxX     float64       // drag-driven tilt clamp, degrees
	DragTiltMaxY     float64       // drag-driven tilt clamp, degrees
	HeadTiltBleed    float64       // share of head rotation X/Z bled into body tilt
	ChannelSmoothing float64       // second-stage smoothing for expression channels
	ZoomSurpriseIn   float64       // pinch-zoom scale that triggers "surprised"
	ZoomSurpriseOut  float64       // pinch-zoom scale that reverts to default
	ListeningLean    float64       // forward lean, degrees, while listening
	SweepHold        time.Duration // how long a swipe sweep holds before returning
	ClickCooldown    time.Duration
	PinchCooldown    time.Duration
	SwipeCooldown    time.Duration
	WaveCooldown     time.Duration
	LipSyncGate      float64
	LipSyncGain      float64
	LipSyncSmoothing float64
	ViewportWidth    float64
	ViewportHeight   float64
}

// DefaultConfig returns the production mapping defaults.
func DefaultConfig() Config {
	return Config{
		TiltSensitivity:  15,
		TiltYDamping:     0.5,
		DragTiltMaxX:     30,
		DragTiltMaxY:     15,
		HeadTiltBleed:    0.3,
		ChannelSmoothing: 0.3,
		ZoomSurpriseIn:   1.2,
		ZoomSurpriseOut:  0.8,
		ListeningLean:    8,
		SweepHold:        500 * time.Millisecond,
		ClickCooldown:    500 * time.Millisecond,
		PinchCooldown:    time.Second,
		SwipeCooldown:    800 * time.Millisecond,
		WaveCooldown:     time.Second,
		LipSyncGate:      0.01,
		LipSyncGain:      2.0,
		LipSyncSmoothing: 0.3,
		ViewportWidth:    1280,
		ViewportHeight:   720,
	}
}

// Mapper consumes recognizer and extractor events and drives a bound
// AvatarModel. Until Bind succeeds the mapper is inert: every handler is a
// no-op, and the avatar simply stays neutral.
type Mapper struct {
	config    Config
	model     AvatarModel
	cooldowns *CooldownRegistry
	channels  []binding
	lip       lipSync

	gesture     gesture.Gesture
	pointing    bool
	facePresent bool
	speaking    bool
	surprised   bool
	sweepUntil  time.Time
	sweeping    bool
	headX       float64
	headZ       float64

	now func() time.Time
}

// New creates a Mapper with the given configuration. The mapper stays inert
// until an avatar model is bound.
func New(config Config) *Mapper {
	return &Mapper{
		config:    config,
		cooldowns: NewCooldownRegistry(),
		lip: lipSync{
			gate:        config.LipSyncGate,
			sensitivity: config.LipSyncGain,
			smoothing:   config.LipSyncSmoothing,
		},
		gesture: gesture.Idle,
		now:     time.Now,
	}
}

// Bind resolves the expression channels against the model and activates the
// mapper. Overrides maps channel names to preferred parameter names, letting
// stored per-model aliases win over the built-in lists. Channels the model
// does not expose are skipped silently every frame.
func (m *Mapper) Bind(model AvatarModel, overrides map[string]string) {
	m.model = model
	if model == nil {
		m.channels = nil
		return
	}
	m.channels = resolveChannels(model, overrides)
}

// Cooldowns exposes the registry for inspection.
func (m *Mapper) Cooldowns() *CooldownRegistry {
	return m.cooldowns
}

// HandleGestureChange applies the gesture→reaction table. One reaction per
// gesture change; a reaction still cooling down is skipped entirely.
func (m *Mapper) HandleGestureChange(g gesture.Gesture) {
	if m.model == nil {
		return
	}
	m.gesture = g
	m.pointing = g == gesture.Point

	switch g {
	case gesture.Pinch:
		if m.cooldowns.TryAcquire("pinch", m.config.PinchCooldown) {
			m.model.SetExpression(ExpressionSurprised)
		}

	case gesture.SwipeLeft, gesture.SwipeRight:
		if m.cooldowns.TryAcquire("swipe", m.config.SwipeCooldown) {
			dir := 1.0
			if g == gesture.SwipeLeft {
				dir = -1.0
			}
			m.model.SetFocus(dir, 0)
			m.model.SetBodyAngle(dir*m.config.TiltSensitivity, 0, 0)
			m.sweeping = true
			m.sweepUntil = m.now().Add(m.config.SweepHold)
		}

	case gesture.OpenPalm:
		if m.cooldowns.TryAcquire("wave", m.config.WaveCooldown) {
			m.model.PlayMotion(MotionGroupWave, 0, MotionPriorityNormal)
		}

	case gesture.Idle:
		m.model.SetFocus(0, 0)
		m.model.SetBodyAngle(0, 0, 0)
		m.model.SetExpression(ExpressionDefault)
		m.surprised = false
		m.sweeping = false
	}
}

// HandleAirClick plays the tap motion and snaps the gaze to the click point.
func (m *Mapper) HandleAirClick(screenX, screenY float64) {
	if m.model == nil {
		return
	}
	if !m.cooldowns.TryAcquire("click", m.config.ClickCooldown) {
		return
	}
	m.model.PlayMotion(MotionGroupTap, 0, MotionPriorityNormal)
	fx := (screenX/m.config.ViewportWidth - 0.5) * 2
	fy := -(screenY/m.config.ViewportHeight - 0.5) * 2
	m.model.SetFocus(fx, fy)
}

// HandleAirDrag drives body tilt directly from drag deltas.
func (m *Mapper) HandleAirDrag(dx, dy float64) {
	if m.model == nil {
		return
	}
	tiltX := clampf(dx, -m.config.DragTiltMaxX, m.config.DragTiltMaxX)
	tiltY := clampf(dy, -m.config.DragTiltMaxY, m.config.DragTiltMaxY)
	m.model.SetBodyAngle(tiltX, tiltY, 0)
}

// HandlePinchZoom edge-triggers the surprised expression on zoom-in and
// reverts on zoom-out. Scales inside the dead zone change nothing.
func (m *Mapper) HandlePinchZoom(scale float64) {
	if m.model == nil {
		return
	}
	switch {
	case scale > m.config.ZoomSurpriseIn && !m.surprised:
		m.surprised = true
		m.model.SetExpression(ExpressionSurprised)
	case scale < m.config.ZoomSurpriseOut && m.surprised:
		m.surprised = false
		m.model.SetExpression(ExpressionDefault)
	}
}

// HandlePointerMove drives the continuous gaze and body-tilt channels from
// the hand position. Suppressed while a swipe sweep is holding.
func (m *Mapper) HandlePointerMove(x, y float64) {
	if m.model == nil {
		return
	}
	if m.sweeping {
		// Hold the sweep until its deadline; tracking resumes on the
		// next frame after the return to neutral.
		m.sweepExpired()
		return
	}

	fx := (x - 0.5) * 2
	fy := -(y - 0.5) * 2
	m.model.SetFocus(fx, fy)

	tiltX := fx*m.config.TiltSensitivity + m.config.HeadTiltBleed*m.headX
	tiltY := fy * m.config.TiltSensitivity * m.config.TiltYDamping
	tiltZ := m.config.HeadTiltBleed * m.headZ
	m.model.SetBodyAngle(tiltX, tiltY, tiltZ)
}

// HandleExpression maps the smoothed expression vector onto the resolved
// avatar channels, with per-channel sensitivity and a second smoothing pass.
// The double smoothing (extractor + mapper) is deliberate: the first pass
// stabilizes perception, this one paces each parameter independently.
func (m *Mapper) HandleExpression(v expression.Vector) {
	if m.model == nil {
		return
	}

	if v.FaceDetected != m.facePresent {
		m.facePresent = v.FaceDetected
		// Continuous tracking takes precedence over ambient idle motion;
		// exactly one mode switch per face-presence change.
		m.model.SetTrackingMode(m.facePresent)
	}
	if !v.FaceDetected {
		return
	}

	if m.sweeping {
		m.sweepExpired()
	}

	for i := range m.channels {
		b := &m.channels[i]
		raw := b.spec.value(v) * b.spec.sensitivity
		b.smoothed += (raw - b.smoothed) * m.config.ChannelSmoothing
		if b.resolved {
			m.model.SetParameter(b.handle, b.smoothed)
		}
	}

	m.headX = v.HeadAngleX
	m.headZ = v.HeadAngleZ
}

// HandleSpeakingStart requests the listening pose and begins lip sync.
func (m *Mapper) HandleSpeakingStart() {
	if m.model == nil {
		return
	}
	m.speaking = true
	m.model.SetFocus(0, 0)
	m.model.SetBodyAngle(0, m.config.ListeningLean, 0)
	m.model.SetTrackingMode(true)
}

// HandleSpeakingEnd releases the pose, closes the mouth, and resumes idle
// motion if no face is tracked.
func (m *Mapper) HandleSpeakingEnd(_ time.Duration) {
	if m.model == nil {
		return
	}
	m.speaking = false
	m.lip.reset()
	m.model.SetMouthOpenness(0)
	m.model.SetBodyAngle(0, 0, 0)
	m.model.SetTrackingMode(m.facePresent)
}

// HandleMouthOpenness feeds the lip-sync pipeline while speaking.
func (m *Mapper) HandleMouthOpenness(value float64) {
	if m.model == nil || !m.speaking {
		return
	}
	m.model.SetMouthOpenness(m.lip.update(value))
}

// sweepExpired returns the avatar to neutral once a swipe sweep's hold
// deadline passes. It reports whether a sweep finished on this call.
func (m *Mapper) sweepExpired() bool {
	if !m.sweeping || m.now().Before(m.sweepUntil) {
		return false
	}
	m.sweeping = false
	m.model.SetFocus(0, 0)
	m.model.SetBodyAngle(0, 0, 0)
	return true
}

func clampf(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
