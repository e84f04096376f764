package engine

import (
	"testing"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/abhinaya/internal/capture"
	"github.com/ayusman/abhinaya/internal/gesture"
	"github.com/ayusman/abhinaya/internal/landmark"
)

func TestRunnerPumpsGatedFramesIntoEngine(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	black := gocv.NewMatWithSize(capture.FrameHeight, capture.FrameWidth, gocv.MatTypeCV8UC3)
	defer black.Close()
	white := gocv.NewMatWithSize(capture.FrameHeight, capture.FrameWidth, gocv.MatTypeCV8UC3)
	white.SetTo(gocv.NewScalar(255, 255, 255, 0))
	defer white.Close()

	// Alternating full-frame flips keep the motion gate active after the
	// first frame primes it.
	cam := capture.NewMockCamera([]*gocv.Mat{&black, &white}, true)
	cam.SetClock(1000, 66)

	eng := New(DefaultConfig())
	gestures := make(chan gesture.Gesture, 16)
	eng.SetObservers(Observers{
		OnGesture: func(g gesture.Gesture) { gestures <- g },
	})

	r := NewRunner(RunnerConfig{Camera: cam, Feed: landmark.DefaultConfig()}, eng)
	feed := landmark.NewMockFeed()
	feed.SetFrame(landmark.Frame{Hands: []landmark.HandObservation{landmark.PinchHand()}})
	r.SetFeed(feed)

	if err := r.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer r.Stop()
	r.SetEnabled(true)

	select {
	case g := <-gestures:
		if g != gesture.Pinch {
			t.Errorf("gesture = %v, want pinch", g)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no gesture reached the engine")
	}

	// Reaching the feed requires the gate to have gone active, which the
	// runner mirrors onto the camera rate.
	var sawActive bool
	for _, fps := range cam.FPSLog() {
		if fps == capture.ActiveFPS {
			sawActive = true
		}
	}
	if !sawActive {
		t.Errorf("FPS log = %v, runner never switched to the active rate", cam.FPSLog())
	}
}

func TestRunnerStartStopIdempotent(t *testing.T) {
	cam := capture.NewMockCamera(nil, false)
	eng := New(DefaultConfig())
	r := NewRunner(RunnerConfig{Camera: cam}, eng)
	r.SetFeed(landmark.NewMockFeed())

	if err := r.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := r.Start(); err != nil {
		t.Errorf("second Start() error = %v", err)
	}

	r.Stop()
	r.Stop()

	if cam.IsOpen() {
		t.Error("camera still open after Stop")
	}
}
