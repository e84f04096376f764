package capture

import (
	"testing"

	"gocv.io/x/gocv"
)

// stillFrame and movingFrame build solid analysis frames; a black-to-white
// flip changes every pixel, a repeat changes none.
func stillFrame(t *testing.T, ts int64) Frame {
	t.Helper()
	mat := gocv.NewMatWithSize(FrameHeight, FrameWidth, gocv.MatTypeCV8UC3)
	t.Cleanup(func() { mat.Close() })
	return Frame{Mat: &mat, TimestampMs: ts}
}

func movingFrame(t *testing.T, ts int64) Frame {
	t.Helper()
	mat := gocv.NewMatWithSize(FrameHeight, FrameWidth, gocv.MatTypeCV8UC3)
	mat.SetTo(gocv.NewScalar(255, 255, 255, 0))
	t.Cleanup(func() { mat.Close() })
	return Frame{Mat: &mat, TimestampMs: ts}
}

func TestNewMotionGateDefaults(t *testing.T) {
	g := NewMotionGate(0, 0)
	defer g.Close()

	if g.threshold != 1.0 {
		t.Errorf("threshold = %f, want default 1.0", g.threshold)
	}
	if g.idleAfterMs != IdleAfterMs {
		t.Errorf("idleAfterMs = %d, want default %d", g.idleAfterMs, IdleAfterMs)
	}
	if g.Mode() != ModeIdle {
		t.Errorf("Mode() = %v, want idle before any frame", g.Mode())
	}
}

func TestMotionGate_StillFramesStayIdle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	g := NewMotionGate(1.0, 0)
	defer g.Close()

	if mode := g.Observe(stillFrame(t, 1000)); mode != ModeIdle {
		t.Errorf("priming frame mode = %v, want idle", mode)
	}
	if mode := g.Observe(stillFrame(t, 1200)); mode != ModeIdle {
		t.Errorf("identical frame mode = %v, want idle (score %f)", mode, g.Score())
	}
}

func TestMotionGate_MotionLatchesActive(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	g := NewMotionGate(1.0, 0)
	defer g.Close()

	g.Observe(stillFrame(t, 1000))
	if mode := g.Observe(movingFrame(t, 1200)); mode != ModeActive {
		t.Fatalf("black-to-white frame mode = %v, want active (score %f)", mode, g.Score())
	}
	if g.Score() < 50.0 {
		t.Errorf("score = %f, want > 50 for a full-frame flip", g.Score())
	}

	// A quiet frame inside the idle window keeps the gate latched active.
	if mode := g.Observe(movingFrame(t, 1400)); mode != ModeActive {
		t.Errorf("quiet frame inside the window dropped to %v", mode)
	}
}

func TestMotionGate_QuietStretchFallsBackToIdle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	g := NewMotionGate(1.0, 500)
	defer g.Close()

	g.Observe(stillFrame(t, 1000))
	if mode := g.Observe(movingFrame(t, 1100)); mode != ModeActive {
		t.Fatalf("mode = %v, want active after motion", mode)
	}

	// Repeated white frames score zero change; the fallback is driven by
	// the frame timestamps, not the wall clock.
	if mode := g.Observe(movingFrame(t, 1400)); mode != ModeActive {
		t.Fatalf("mode = %v, want active inside the 500ms window", mode)
	}
	if mode := g.Observe(movingFrame(t, 1700)); mode != ModeIdle {
		t.Errorf("mode = %v, want idle after the quiet stretch", mode)
	}
}

func TestMotionGate_ResetReprimes(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	g := NewMotionGate(1.0, 0)
	defer g.Close()

	g.Observe(stillFrame(t, 1000))
	g.Observe(movingFrame(t, 1100))
	g.Reset()

	if g.Mode() != ModeIdle {
		t.Errorf("Mode() after Reset = %v, want idle", g.Mode())
	}

	// The first frame after a reset only primes; even a white frame must
	// not score against the dropped baseline.
	if mode := g.Observe(movingFrame(t, 1200)); mode != ModeIdle {
		t.Errorf("priming frame after Reset = %v, want idle", mode)
	}
}

func TestMotionGate_SetThreshold(t *testing.T) {
	g := NewMotionGate(1.0, 0)
	defer g.Close()

	g.SetThreshold(5.0)
	if g.threshold != 5.0 {
		t.Errorf("threshold = %f, want 5.0", g.threshold)
	}

	g.SetThreshold(-1.0)
	if g.threshold != 5.0 {
		t.Errorf("negative threshold should be ignored, got %f", g.threshold)
	}
}

func TestMotionGate_EmptyFrameIgnored(t *testing.T) {
	g := NewMotionGate(1.0, 0)
	defer g.Close()

	if mode := g.Observe(Frame{TimestampMs: 1000}); mode != ModeIdle {
		t.Errorf("matless frame mode = %v, want idle", mode)
	}
}

func TestMotionGate_Close_Multiple(t *testing.T) {
	g := NewMotionGate(1.0, 0)

	g.Close()
	g.Close()
}

func TestModeString(t *testing.T) {
	if ModeIdle.String() != "idle" || ModeActive.String() != "active" {
		t.Errorf("Mode strings = %q/%q, want idle/active", ModeIdle, ModeActive)
	}
}
