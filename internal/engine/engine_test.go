package engine

import (
	"testing"

	"github.com/ayusman/abhinaya/internal/expression"
	"github.com/ayusman/abhinaya/internal/gesture"
	"github.com/ayusman/abhinaya/internal/landmark"
	"github.com/ayusman/abhinaya/internal/mapper"
	"github.com/ayusman/abhinaya/internal/scene"
)

// sceneRec records scene renderer calls for assertions.
type sceneRec struct {
	explosions []scene.Vec3
	pulses     []bool
	selections []scene.Vec3
	scales     []float64
	drags      int
}

func (r *sceneRec) TriggerExplosion(origin scene.Vec3) { r.explosions = append(r.explosions, origin) }
func (r *sceneRec) SetDragging(bool, float64, float64) { r.drags++ }
func (r *sceneRec) SetScale(v float64)                 { r.scales = append(r.scales, v) }
func (r *sceneRec) SetPulsing(active bool)             { r.pulses = append(r.pulses, active) }
func (r *sceneRec) SelectRegion(origin scene.Vec3)     { r.selections = append(r.selections, origin) }

func TestDefaultEngineGetOrCreate(t *testing.T) {
	ReleaseDefault()

	first := Default()
	if first == nil {
		t.Fatal("Default() returned nil")
	}
	if Default() != first {
		t.Error("repeated Default() calls returned different instances")
	}

	ReleaseDefault()
	ReleaseDefault() // release is idempotent

	fresh := Default()
	if fresh == nil {
		t.Fatal("Default() after release returned nil")
	}
	if fresh == first {
		t.Error("Default() after release returned the stale instance")
	}
	ReleaseDefault()
}

func TestUnboundEngineProcessesFramesSafely(t *testing.T) {
	e := New(DefaultConfig())

	face := landmark.OpenMouthFace()
	e.ProcessFrame(landmark.Frame{TimestampMs: 100, Hands: []landmark.HandObservation{landmark.PinchHand()}, Face: &face})
	e.ProcessFrame(landmark.Frame{TimestampMs: 133})
	e.ProcessFrame(landmark.Frame{TimestampMs: 166})
}

func TestPinchReachesAvatarAndSpeakingReachesScene(t *testing.T) {
	e := New(DefaultConfig())
	avatar := mapper.NewMockAvatar()
	renderer := &sceneRec{}
	e.BindAvatar(avatar, nil)
	e.BindScene(renderer)

	face := landmark.OpenMouthFace()
	ts := int64(1000)
	for i := 0; i < 3; i++ {
		e.ProcessFrame(landmark.Frame{
			TimestampMs: ts,
			Hands:       []landmark.HandObservation{landmark.PinchHand()},
			Face:        &face,
		})
		ts += 33
	}

	if len(avatar.Expressions) == 0 || avatar.Expressions[0] != mapper.ExpressionSurprised {
		t.Errorf("expressions = %v, want surprised from the pinch reaction", avatar.Expressions)
	}
	if len(renderer.pulses) != 1 || !renderer.pulses[0] {
		t.Errorf("pulses = %v, want [true] after three open-mouth frames", renderer.pulses)
	}
}

func TestSpeakingEndClosesMouthAndStopsPulse(t *testing.T) {
	e := New(DefaultConfig())
	avatar := mapper.NewMockAvatar()
	renderer := &sceneRec{}
	e.BindAvatar(avatar, nil)
	e.BindScene(renderer)

	open := landmark.OpenMouthFace()
	closed := landmark.NeutralFace()
	ts := int64(1000)
	for i := 0; i < 3; i++ {
		e.ProcessFrame(landmark.Frame{TimestampMs: ts, Face: &open})
		ts += 33
	}
	for !renderer.hasStopPulse() {
		e.ProcessFrame(landmark.Frame{TimestampMs: ts, Face: &closed})
		ts += 33
		if ts > 100000 {
			t.Fatal("speaking never ended on closed-mouth frames")
		}
	}

	if len(avatar.MouthValues) == 0 || avatar.MouthValues[len(avatar.MouthValues)-1] != 0 {
		t.Errorf("mouth values = %v, want forced 0 at speaking end", avatar.MouthValues)
	}
}

func (r *sceneRec) hasStopPulse() bool {
	return len(r.pulses) > 0 && !r.pulses[len(r.pulses)-1]
}

func TestHandEventsPrecedeExpressionEvents(t *testing.T) {
	e := New(DefaultConfig())
	var order []string
	e.SetObservers(Observers{
		OnHandPresence: func(bool, bool) { order = append(order, "presence") },
		OnGesture:      func(gesture.Gesture) { order = append(order, "gesture") },
		OnLandmarks:    func([]landmark.HandObservation) { order = append(order, "landmarks") },
		OnExpression:   func(expression.Vector) { order = append(order, "expression") },
	})

	face := landmark.NeutralFace()
	e.ProcessFrame(landmark.Frame{
		TimestampMs: 100,
		Hands:       []landmark.HandObservation{landmark.PinchHand()},
		Face:        &face,
	})

	want := []string{"presence", "gesture", "landmarks", "expression"}
	if len(order) != len(want) {
		t.Fatalf("event order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("event order = %v, want %v", order, want)
		}
	}
}

func TestAirClickReachesScene(t *testing.T) {
	e := New(DefaultConfig())
	renderer := &sceneRec{}
	e.BindScene(renderer)

	// A pinch pose with a same-frame forward index poke triggers the click.
	hand := landmark.NeutralHand()
	e.ProcessFrame(landmark.Frame{TimestampMs: 100, Hands: []landmark.HandObservation{hand}})

	poked := hand
	poked.Points[landmark.IndexTip].Z = hand.Points[landmark.IndexTip].Z - 0.05
	e.ProcessFrame(landmark.Frame{TimestampMs: 133, Hands: []landmark.HandObservation{poked}})

	if len(renderer.explosions) != 1 {
		t.Fatalf("explosions = %d, want 1 after the forward poke", len(renderer.explosions))
	}
	if renderer.explosions[0].Z != -30 {
		t.Errorf("explosion Z = %v, want -30", renderer.explosions[0].Z)
	}
}

func TestDuplicateFrameLeavesSceneUntouched(t *testing.T) {
	e := New(DefaultConfig())
	renderer := &sceneRec{}
	e.BindScene(renderer)

	// Seed an active zoom lerp so every processed frame emits a scale.
	e.Scene().HandlePinchZoom(2.0)

	e.ProcessFrame(landmark.Frame{TimestampMs: 100})
	if len(renderer.scales) != 1 {
		t.Fatalf("scales = %d, want 1 after the first frame", len(renderer.scales))
	}

	// Re-delivering the same frame must not advance the lerp or emit anything.
	e.ProcessFrame(landmark.Frame{TimestampMs: 100})
	if len(renderer.scales) != 1 {
		t.Fatalf("scales = %d, duplicate frame advanced the scene", len(renderer.scales))
	}

	e.ProcessFrame(landmark.Frame{TimestampMs: 133})
	if len(renderer.scales) != 2 {
		t.Errorf("scales = %d, want 2 after a fresh frame", len(renderer.scales))
	}
}
