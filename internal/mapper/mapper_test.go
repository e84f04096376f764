package mapper

import (
	"math"
	"testing"
	"time"

	"github.com/ayusman/abhinaya/internal/expression"
	"github.com/ayusman/abhinaya/internal/gesture"
)

func newTestMapper(avatar *MockAvatar) (*Mapper, *time.Time) {
	m := New(DefaultConfig())
	now := time.Unix(2000, 0)
	clock := func() time.Time { return now }
	m.now = clock
	m.cooldowns.now = clock
	m.Bind(avatar, nil)
	return m, &now
}

func allParams() []string {
	return []string{
		"ParamEyeLOpen", "ParamEyeROpen", "ParamBrowLY", "ParamBrowRY",
		"ParamAngleX", "ParamAngleY", "ParamAngleZ",
		"ParamMouthOpenY", "ParamMouthForm",
	}
}

func trackedVector() expression.Vector {
	v := expression.Neutral()
	v.FaceDetected = true
	return v
}

func TestUnboundMapperIsInert(t *testing.T) {
	m := New(DefaultConfig())

	// No model bound: nothing may panic, nothing may fire.
	m.HandleGestureChange(gesture.OpenPalm)
	m.HandleAirClick(100, 100)
	m.HandleAirDrag(5, 5)
	m.HandlePinchZoom(2)
	m.HandlePointerMove(0.5, 0.5)
	m.HandleExpression(trackedVector())
	m.HandleSpeakingStart()
	m.HandleMouthOpenness(0.5)
	m.HandleSpeakingEnd(time.Second)
}

func TestClickReactionAndCooldown(t *testing.T) {
	avatar := NewMockAvatar(allParams()...)
	m, now := newTestMapper(avatar)

	m.HandleAirClick(640, 360)
	if len(avatar.Motions) != 1 || avatar.Motions[0].Group != MotionGroupTap {
		t.Fatalf("expected tap motion, got %v", avatar.Motions)
	}
	// Center click snaps the gaze to (0,0).
	if avatar.FocusX != 0 || avatar.FocusY != 0 {
		t.Errorf("expected centered focus, got (%f, %f)", avatar.FocusX, avatar.FocusY)
	}

	// A second click inside the 500ms cooldown is skipped.
	*now = now.Add(200 * time.Millisecond)
	m.HandleAirClick(0, 0)
	if len(avatar.Motions) != 1 {
		t.Errorf("click re-fired during cooldown: %v", avatar.Motions)
	}

	*now = now.Add(400 * time.Millisecond)
	m.HandleAirClick(1280, 720)
	if len(avatar.Motions) != 2 {
		t.Errorf("expected click after cooldown, got %v", avatar.Motions)
	}
	if avatar.FocusX != 1 || avatar.FocusY != -1 {
		t.Errorf("bottom-right click focus = (%f, %f), want (1, -1)", avatar.FocusX, avatar.FocusY)
	}
}

func TestSwipeSweepAndSharedCooldown(t *testing.T) {
	avatar := NewMockAvatar(allParams()...)
	m, now := newTestMapper(avatar)

	m.HandleGestureChange(gesture.SwipeRight)
	if avatar.FocusX != 1 || avatar.BodyX != 15 {
		t.Fatalf("expected right sweep, got focus %f body %f", avatar.FocusX, avatar.BodyX)
	}

	// The opposite direction shares the swipe cooldown.
	*now = now.Add(100 * time.Millisecond)
	m.HandleGestureChange(gesture.SwipeLeft)
	if avatar.FocusX != 1 {
		t.Errorf("swipe_left fired during shared cooldown")
	}

	// After the 500ms hold the next frame returns the avatar to neutral.
	*now = now.Add(500 * time.Millisecond)
	m.HandlePointerMove(0.9, 0.5)
	if avatar.FocusX != 0 || avatar.BodyX != 0 {
		t.Errorf("sweep did not return to neutral: focus %f body %f", avatar.FocusX, avatar.BodyX)
	}
}

func TestOpenPalmWaveCooldown(t *testing.T) {
	avatar := NewMockAvatar(allParams()...)
	m, now := newTestMapper(avatar)

	m.HandleGestureChange(gesture.OpenPalm)
	m.HandleGestureChange(gesture.Idle)
	*now = now.Add(500 * time.Millisecond)
	m.HandleGestureChange(gesture.OpenPalm)

	waves := 0
	for _, mo := range avatar.Motions {
		if mo.Group == MotionGroupWave {
			waves++
		}
	}
	if waves != 1 {
		t.Errorf("expected 1 wave within cooldown window, got %d", waves)
	}
}

func TestPointerFocusMapping(t *testing.T) {
	avatar := NewMockAvatar(allParams()...)
	m, _ := newTestMapper(avatar)

	m.HandlePointerMove(0.75, 0.25)

	// focus = (pos-0.5)*2, y inverted.
	if math.Abs(avatar.FocusX-0.5) > 1e-9 || math.Abs(avatar.FocusY-0.5) > 1e-9 {
		t.Errorf("focus = (%f, %f), want (0.5, 0.5)", avatar.FocusX, avatar.FocusY)
	}
	// Body tilt follows focus at 15 deg sensitivity, y damped x0.5.
	if math.Abs(avatar.BodyX-7.5) > 1e-9 || math.Abs(avatar.BodyY-3.75) > 1e-9 {
		t.Errorf("body = (%f, %f), want (7.5, 3.75)", avatar.BodyX, avatar.BodyY)
	}
}

func TestDragTiltClamped(t *testing.T) {
	avatar := NewMockAvatar(allParams()...)
	m, _ := newTestMapper(avatar)

	m.HandleAirDrag(90, -40)
	if avatar.BodyX != 30 || avatar.BodyY != -15 {
		t.Errorf("drag tilt = (%f, %f), want clamped (30, -15)", avatar.BodyX, avatar.BodyY)
	}
}

func TestZoomSurpriseEdgeTriggered(t *testing.T) {
	avatar := NewMockAvatar(allParams()...)
	m, _ := newTestMapper(avatar)

	// Scale sequence 1.0 -> 1.3 held: surprised exactly once.
	m.HandlePinchZoom(1.0)
	m.HandlePinchZoom(1.3)
	m.HandlePinchZoom(1.3)
	m.HandlePinchZoom(1.25)

	surprised := 0
	for _, e := range avatar.Expressions {
		if e == ExpressionSurprised {
			surprised++
		}
	}
	if surprised != 1 {
		t.Fatalf("expected surprised exactly once, got %d (%v)", surprised, avatar.Expressions)
	}

	// Dead zone between 0.8 and 1.2 changes nothing.
	m.HandlePinchZoom(1.0)
	if len(avatar.Expressions) != 1 {
		t.Errorf("dead zone emitted expression: %v", avatar.Expressions)
	}

	// Zooming out past 0.8 reverts to default.
	m.HandlePinchZoom(0.7)
	if last := avatar.Expressions[len(avatar.Expressions)-1]; last != ExpressionDefault {
		t.Errorf("expected revert to default, got %v", avatar.Expressions)
	}
}

func TestExpressionChannelsSensitivityAndSmoothing(t *testing.T) {
	avatar := NewMockAvatar(allParams()...)
	m, _ := newTestMapper(avatar)

	v := trackedVector()
	v.MouthOpenness = 0.5
	v.HeadAngleY = 10
	m.HandleExpression(v)

	// mouthOpen: raw 0.5 x sensitivity 2.0, smoothed from 0 with 0.3.
	mouthHandle, _ := avatar.ResolveParameter("ParamMouthOpenY")
	if got := avatar.ParamValues[mouthHandle]; math.Abs(got-0.3) > 1e-9 {
		t.Errorf("mouthOpen = %f, want 0.3", got)
	}
	// angleY: raw 10 x sensitivity 0.8, smoothed from 0 with 0.3.
	angleYHandle, _ := avatar.ResolveParameter("ParamAngleY")
	if got := avatar.ParamValues[angleYHandle]; math.Abs(got-2.4) > 1e-9 {
		t.Errorf("angleY = %f, want 2.4", got)
	}
}

func TestUnresolvedChannelsSilentlySkipped(t *testing.T) {
	// A model exposing only the head angles: the remaining channels must
	// be skipped without error.
	avatar := NewMockAvatar("ParamAngleX", "ParamAngleY", "ParamAngleZ")
	m, _ := newTestMapper(avatar)

	v := trackedVector()
	v.MouthOpenness = 1
	v.HeadAngleX = 30
	m.HandleExpression(v)

	if len(avatar.ParamValues) != 3 {
		t.Errorf("expected 3 resolved channels written, got %d", len(avatar.ParamValues))
	}
}

func TestAliasOverridesWin(t *testing.T) {
	avatar := NewMockAvatar("CustomMouth")
	m := New(DefaultConfig())
	m.Bind(avatar, map[string]string{"mouthOpen": "CustomMouth"})

	v := trackedVector()
	v.MouthOpenness = 1
	m.HandleExpression(v)

	if len(avatar.ParamValues) != 1 {
		t.Errorf("override alias did not resolve: %v", avatar.ParamValues)
	}
}

func TestTrackingModeOncePerPresenceChange(t *testing.T) {
	avatar := NewMockAvatar(allParams()...)
	m, _ := newTestMapper(avatar)

	v := trackedVector()
	m.HandleExpression(v)
	m.HandleExpression(v)
	m.HandleExpression(v)

	lost := expression.Neutral()
	lost.FaceDetected = false
	m.HandleExpression(lost)

	want := []bool{true, false}
	if len(avatar.TrackingCalls) != len(want) {
		t.Fatalf("tracking mode set %d times, want %d", len(avatar.TrackingCalls), len(want))
	}
	for i := range want {
		if avatar.TrackingCalls[i] != want[i] {
			t.Errorf("tracking call %d = %v, want %v", i, avatar.TrackingCalls[i], want[i])
		}
	}
}

func TestLipSyncPipeline(t *testing.T) {
	avatar := NewMockAvatar(allParams()...)
	m, _ := newTestMapper(avatar)

	// Not speaking: mouth values are ignored.
	m.HandleMouthOpenness(0.5)
	if len(avatar.MouthValues) != 0 {
		t.Fatalf("lip sync wrote while not speaking: %v", avatar.MouthValues)
	}

	m.HandleSpeakingStart()
	if avatar.BodyY != m.config.ListeningLean {
		t.Errorf("expected listening lean %f, got %f", m.config.ListeningLean, avatar.BodyY)
	}

	// Below the gate snaps to zero input; smoothing keeps output at 0.
	m.HandleMouthOpenness(0.005)
	if avatar.MouthValues[0] != 0 {
		t.Errorf("gated input produced %f", avatar.MouthValues[0])
	}

	// 0.4 raw x 2.0 gain clamps to 0.8, smoothed from 0 with 0.3.
	m.HandleMouthOpenness(0.4)
	if math.Abs(avatar.MouthValues[1]-0.24) > 1e-9 {
		t.Errorf("lip sync output %f, want 0.24", avatar.MouthValues[1])
	}

	// Gain saturation: 0.9 x 2.0 clamps to 1.
	m.HandleMouthOpenness(0.9)
	want := 0.24 + (1-0.24)*0.3
	if math.Abs(avatar.MouthValues[2]-want) > 1e-9 {
		t.Errorf("lip sync output %f, want %f", avatar.MouthValues[2], want)
	}

	// Speaking end forces the mouth shut and releases the pose.
	m.HandleSpeakingEnd(2 * time.Second)
	if last := avatar.MouthValues[len(avatar.MouthValues)-1]; last != 0 {
		t.Errorf("mouth not forced to 0 on speaking end: %f", last)
	}
	if avatar.BodyY != 0 {
		t.Errorf("pose not released on speaking end: %f", avatar.BodyY)
	}
}

func TestCooldownRegistry(t *testing.T) {
	c := NewCooldownRegistry()
	now := time.Unix(3000, 0)
	c.now = func() time.Time { return now }

	if !c.TryAcquire("tap", time.Second) {
		t.Fatal("first acquire must succeed")
	}
	if c.TryAcquire("tap", time.Second) {
		t.Fatal("second acquire within interval must fail")
	}
	if !c.Active("tap") {
		t.Error("expected active cooldown")
	}

	// Independent names do not contend.
	if !c.TryAcquire("wave", time.Second) {
		t.Error("independent name blocked")
	}

	// Stale entries are ignored once expired.
	now = now.Add(2 * time.Second)
	if !c.TryAcquire("tap", time.Second) {
		t.Error("expired cooldown still blocking")
	}
}
