// Package gesture converts per-frame hand landmark observations into
// discrete gesture events and continuous pointer/zoom deltas.
package gesture

import (
	"math"
	"strings"
	"time"

	"github.com/ayusman/abhinaya/internal/landmark"
)

// Gesture identifies one of the recognized gesture classes.
type Gesture string

const (
	Idle       Gesture = "idle"
	Pinch      Gesture = "pinch"
	Drag       Gesture = "drag"
	Click      Gesture = "click"
	SwipeLeft  Gesture = "swipe_left"
	SwipeRight Gesture = "swipe_right"
	Point      Gesture = "point"
	OpenPalm   Gesture = "open_palm"
)

// HistorySize bounds the recognizer's gesture history buffer.
const HistorySize = 32

// Callbacks holds the listener functions invoked by the recognizer.
// Unset callbacks are skipped. Within one frame the invocation order is
// fixed: OnHandDetected, OnGestureChange, then click/drag/zoom events,
// then OnPointerMove and OnLandmarksUpdate.
type Callbacks struct {
	// OnHandDetected reports which logical hands are visible this frame.
	// The feed's raw handedness is mirrored by the front camera, so a raw
	// "Left" label means the physical right hand.
	OnHandDetected func(isLeft, isRight bool)

	// OnGestureChange fires when the active gesture class changes.
	OnGestureChange func(g Gesture)

	// OnAirClick fires on a forward index-finger poke, with the click
	// point converted to viewport pixel coordinates.
	OnAirClick func(screenX, screenY float64)

	// OnAirDrag fires while a pinch is moved, with displacement deltas
	// scaled x100.
	OnAirDrag func(dx, dy float64)

	// OnPinchZoom fires while a sustained pinch spreads or tightens, with
	// the ratio of the previous pinch distance to the current one.
	OnPinchZoom func(scale float64)

	// OnPointerMove reports the palm center of the primary hand every
	// processed frame a hand is visible.
	OnPointerMove func(x, y float64)

	// OnLandmarksUpdate is a diagnostic passthrough of the raw
	// observations, for visualization clients. Not used for control.
	OnLandmarksUpdate func(hands []landmark.HandObservation)
}

// Config holds the recognizer's detection thresholds. All distances are in
// the feed's normalized coordinate space.
type Config struct {
	PinchThreshold  float64       // thumb-index distance below which a pinch starts
	ZoomDeadZone    float64       // minimum |scale-1| before a zoom event fires
	DragThreshold   float64       // per-axis palm displacement that turns a pinch into a drag
	ClickDepthDelta float64       // same-frame index-tip depth decrease that counts as a poke
	ClickCooldown   time.Duration // lockout between air clicks
	SwipeThreshold  float64       // per-frame horizontal palm displacement for a swipe
	SpreadThreshold float64       // mean consecutive fingertip gap for an open palm
	PointThreshold  float64       // vertical margins for the pointing pose
	ViewportWidth   float64       // pixel width used for click coordinates
	ViewportHeight  float64       // pixel height used for click coordinates
}

// DefaultConfig returns the recognizer thresholds tuned for the MediaPipe
// hand landmarker at arm's length from a laptop camera.
func DefaultConfig() Config {
	return Config{
		PinchThreshold:  0.05,
		ZoomDeadZone:    0.05,
		DragThreshold:   0.02,
		ClickDepthDelta: 0.03,
		ClickCooldown:   300 * time.Millisecond,
		SwipeThreshold:  0.15,
		SpreadThreshold: 0.15,
		PointThreshold:  0.05,
		ViewportWidth:   1280,
		ViewportHeight:  720,
	}
}

// State is the recognizer's per-session mutable state. It is reset to the
// zero state whenever no hand is observed.
type State struct {
	Gesture       Gesture
	Pinching      bool
	Dragging      bool
	LastPinchDist float64
	PinchStart    landmark.Point3D
	LastPalm      landmark.Point3D
	HasLastPalm   bool
	LastDepth     float64
	HasLastDepth  bool
	ClickLockout  time.Time
	History       []Gesture
	HandsVisible  bool
}

// Recognizer maintains gesture state across frames and fires callbacks as
// gestures are detected. All geometry is total: any landmark array of the
// expected shape is safe input.
type Recognizer struct {
	config Config
	cb     Callbacks
	state  State
	lastTS int64
	now    func() time.Time
}

// NewRecognizer creates a Recognizer with the given thresholds and listeners.
func NewRecognizer(config Config, cb Callbacks) *Recognizer {
	return &Recognizer{
		config: config,
		cb:     cb,
		state:  State{Gesture: Idle},
		lastTS: -1,
		now:    time.Now,
	}
}

// State returns a copy of the current recognizer state.
func (r *Recognizer) State() State {
	s := r.state
	s.History = append([]Gesture(nil), r.state.History...)
	return s
}

// Reset returns the recognizer to its initial idle state without firing
// callbacks.
func (r *Recognizer) Reset() {
	r.state = State{Gesture: Idle}
	r.lastTS = -1
}

// ProcessFrame classifies the hands observed at the given timestamp.
// A timestamp equal to the previously processed one is a no-op, guarding
// against duplicate invocation from an external polling loop.
func (r *Recognizer) ProcessFrame(timestampMs int64, hands []landmark.HandObservation) {
	if timestampMs == r.lastTS {
		return
	}
	r.lastTS = timestampMs

	if len(hands) == 0 {
		r.handleNoHands()
		return
	}

	r.fireHandDetected(hands)

	primary := &hands[0]
	palm := primary.PalmCenter()

	r.detectPinch(primary, palm)
	r.detectClick(primary)
	r.detectSwipe(palm)
	r.detectOpenPalm(primary)
	r.detectPoint(primary)

	r.state.LastPalm = palm
	r.state.HasLastPalm = true
	r.state.LastDepth = primary.Points[landmark.IndexTip].Z
	r.state.HasLastDepth = true
	r.state.HandsVisible = true

	if r.cb.OnPointerMove != nil {
		r.cb.OnPointerMove(palm.X, palm.Y)
	}
	if r.cb.OnLandmarksUpdate != nil {
		r.cb.OnLandmarksUpdate(hands)
	}
}

// handleNoHands resets the state, history included, and reports idle exactly
// once per transition into "no hands", not on every empty frame. The idle
// transition itself is recorded, so the fresh history starts with Idle.
func (r *Recognizer) handleNoHands() {
	if !r.state.HandsVisible {
		return
	}
	prev := r.state.Gesture
	r.state = State{Gesture: Idle}
	if prev != Idle {
		r.recordGesture(Idle)
	}
}

// fireHandDetected reports logical handedness for every visible hand.
// The raw label is inverted: a mirrored "Left" is the physical right hand.
func (r *Recognizer) fireHandDetected(hands []landmark.HandObservation) {
	if r.cb.OnHandDetected == nil {
		return
	}
	var isLeft, isRight bool
	for i := range hands {
		if strings.EqualFold(hands[i].Handedness, "left") {
			isRight = true
		} else {
			isLeft = true
		}
	}
	r.cb.OnHandDetected(isLeft, isRight)
}

func (r *Recognizer) detectPinch(hand *landmark.HandObservation, palm landmark.Point3D) {
	dist := landmark.Distance3D(hand.Points[landmark.ThumbTip], hand.Points[landmark.IndexTip])

	if dist < r.config.PinchThreshold {
		if !r.state.Pinching {
			r.state.Pinching = true
			r.state.LastPinchDist = dist
			r.state.PinchStart = palm
			r.setGesture(Pinch)
			return
		}

		if r.state.LastPinchDist > 0 && dist > 0 {
			scale := r.state.LastPinchDist / dist
			if math.Abs(scale-1) > r.config.ZoomDeadZone && r.cb.OnPinchZoom != nil {
				r.cb.OnPinchZoom(scale)
			}
		}
		r.state.LastPinchDist = dist

		if r.state.HasLastPalm {
			dx := palm.X - r.state.LastPalm.X
			dy := palm.Y - r.state.LastPalm.Y
			if math.Abs(dx) > r.config.DragThreshold || math.Abs(dy) > r.config.DragThreshold {
				r.state.Dragging = true
				r.setGesture(Drag)
				if r.cb.OnAirDrag != nil {
					r.cb.OnAirDrag(dx*100, dy*100)
				}
			}
		}
		return
	}

	if r.state.Pinching {
		r.state.Pinching = false
		r.state.Dragging = false
		r.state.PinchStart = landmark.Point3D{}
	}
}

// detectClick looks for a forward index-finger poke: a same-frame depth
// decrease beyond the configured delta. Suppressed while pinching and during
// the click cooldown.
func (r *Recognizer) detectClick(hand *landmark.HandObservation) {
	if r.state.Pinching || !r.state.HasLastDepth {
		return
	}
	if r.now().Before(r.state.ClickLockout) {
		return
	}

	tip := hand.Points[landmark.IndexTip]
	if r.state.LastDepth-tip.Z <= r.config.ClickDepthDelta {
		return
	}

	r.setGesture(Click)
	if r.cb.OnAirClick != nil {
		r.cb.OnAirClick(tip.X*r.config.ViewportWidth, tip.Y*r.config.ViewportHeight)
	}
	r.state.ClickLockout = r.now().Add(r.config.ClickCooldown)
}

func (r *Recognizer) detectSwipe(palm landmark.Point3D) {
	if r.state.Pinching || !r.state.HasLastPalm {
		return
	}

	dx := palm.X - r.state.LastPalm.X
	switch {
	case dx > r.config.SwipeThreshold:
		r.setGesture(SwipeRight)
	case dx < -r.config.SwipeThreshold:
		r.setGesture(SwipeLeft)
	}
}

// detectOpenPalm checks the mean distance between consecutive fingertips
// (thumb, index, middle, ring, pinky) against the spread threshold.
func (r *Recognizer) detectOpenPalm(hand *landmark.HandObservation) {
	tips := [5]int{landmark.ThumbTip, landmark.IndexTip, landmark.MiddleTip, landmark.RingTip, landmark.PinkyTip}

	var total float64
	for i := 0; i < len(tips)-1; i++ {
		total += landmark.Distance3D(hand.Points[tips[i]], hand.Points[tips[i+1]])
	}

	if total/4 > r.config.SpreadThreshold {
		r.setGesture(OpenPalm)
	}
}

// detectPoint checks for an extended index finger with the other fingers
// curled below it.
func (r *Recognizer) detectPoint(hand *landmark.HandObservation) {
	indexTip := hand.Points[landmark.IndexTip]
	indexMCP := hand.Points[landmark.IndexMCP]

	if indexTip.Y >= indexMCP.Y-r.config.PointThreshold {
		return
	}

	for _, idx := range [3]int{landmark.MiddleTip, landmark.RingTip, landmark.PinkyTip} {
		if hand.Points[idx].Y <= indexTip.Y+r.config.PointThreshold {
			return
		}
	}

	r.setGesture(Point)
}

// setGesture records a newly fired gesture and notifies the listener.
// The active gesture is simply the last one to fire; unchanged gestures do
// not re-notify.
func (r *Recognizer) setGesture(g Gesture) {
	if r.state.Gesture == g {
		return
	}
	r.state.Gesture = g
	r.recordGesture(g)
}

func (r *Recognizer) recordGesture(g Gesture) {
	if len(r.state.History) >= HistorySize {
		copy(r.state.History, r.state.History[1:])
		r.state.History = r.state.History[:HistorySize-1]
	}
	r.state.History = append(r.state.History, g)
	if r.cb.OnGestureChange != nil {
		r.cb.OnGestureChange(g)
	}
}
