package engine

import (
	"log"
	"sync"
	"time"

	"github.com/ayusman/abhinaya/internal/capture"
	"github.com/ayusman/abhinaya/internal/landmark"
)

// RunnerConfig holds the capture-side configuration. Camera is optional;
// when nil a real device camera is opened for CameraID.
type RunnerConfig struct {
	CameraID     int
	MotionThresh float64
	Feed         landmark.Config
	Camera       capture.Camera
}

// Runner owns the camera, the motion gate, and the landmark feed, and pumps
// frames into an Engine. Capture runs at the idle rate until the gate sees
// motion, then drops back after a quiet stretch.
type Runner struct {
	config  RunnerConfig
	engine  *Engine
	camera  capture.Camera
	gate    *capture.MotionGate
	feed    landmark.Feed
	enabled bool
	mu      sync.RWMutex
	stopCh  chan struct{}
}

// NewRunner creates a Runner feeding the given engine. The MediaPipe feed is
// preferred; if its subprocess cannot start the failure is logged once and a
// mock feed keeps the pipeline alive but inert.
func NewRunner(config RunnerConfig, eng *Engine) *Runner {
	camera := config.Camera
	if camera == nil {
		camera = capture.NewCamera(config.CameraID)
	}

	r := &Runner{
		config: config,
		engine: eng,
		camera: camera,
		gate:   capture.NewMotionGate(config.MotionThresh, capture.IdleAfterMs),
	}

	if feed, err := landmark.NewMediaPipeFeed(config.Feed); err == nil {
		r.feed = feed
		log.Println("Using MediaPipe landmark feed")
	} else {
		log.Printf("MediaPipe not available (%v), using mock feed", err)
		r.feed = landmark.NewMockFeed()
	}

	return r
}

// SetEnabled toggles frame processing without stopping the capture loop.
func (r *Runner) SetEnabled(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enabled = enabled
}

// IsEnabled reports whether frame processing is active.
func (r *Runner) IsEnabled() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.enabled
}

// SetFeed replaces the landmark feed. Used by tests and by the daemon when a
// feed becomes available after startup.
func (r *Runner) SetFeed(feed landmark.Feed) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.feed = feed
}

// Feed returns the active landmark feed.
func (r *Runner) Feed() landmark.Feed {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.feed
}

// Camera returns the camera instance.
func (r *Runner) Camera() capture.Camera {
	return r.camera
}

// Gate returns the motion gate instance.
func (r *Runner) Gate() *capture.MotionGate {
	return r.gate
}

// Start opens the camera and launches the capture loop. Calling Start on a
// running Runner is a no-op.
func (r *Runner) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stopCh != nil {
		return nil
	}

	if err := r.camera.Open(); err != nil {
		return err
	}
	r.camera.SetFPS(capture.IdleFPS)

	r.stopCh = make(chan struct{})
	go r.run(r.stopCh)

	log.Println("Tracking pipeline started")
	return nil
}

// Stop halts the capture loop and releases the camera, motion gate, and
// feed. Safe to call repeatedly.
func (r *Runner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stopCh != nil {
		close(r.stopCh)
		r.stopCh = nil
	}

	if err := r.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}
	r.gate.Close()

	if r.feed != nil {
		if err := r.feed.Close(); err != nil {
			log.Printf("Error closing landmark feed: %v", err)
		}
	}

	log.Println("Tracking pipeline stopped")
}

// run is the capture loop. Every frame passes through the motion gate; only
// active-mode frames reach the landmark feed. On the fall back to idle it
// pushes one empty frame so the recognizer and extractor take their loss
// transitions.
func (r *Runner) run(stopCh chan struct{}) {
	mode := capture.ModeIdle

	ticker := time.NewTicker(time.Second / time.Duration(capture.IdleFPS))
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if !r.IsEnabled() {
				continue
			}

			frame, err := r.camera.ReadFrame()
			if err != nil {
				log.Printf("Error reading frame: %v", err)
				continue
			}

			if next := r.gate.Observe(frame); next != mode {
				mode = next
				log.Printf("Switched to %s mode", mode)
				switch mode {
				case capture.ModeActive:
					r.camera.SetFPS(capture.ActiveFPS)
					ticker.Reset(time.Second / time.Duration(capture.ActiveFPS))
				case capture.ModeIdle:
					r.camera.SetFPS(capture.IdleFPS)
					ticker.Reset(time.Second / time.Duration(capture.IdleFPS))

					r.engine.ProcessFrame(landmark.Frame{TimestampMs: frame.TimestampMs})
					frame.Close()
					continue
				}
			}

			if mode != capture.ModeActive {
				frame.Close()
				continue
			}

			feed := r.Feed()
			if feed == nil {
				frame.Close()
				continue
			}

			result, err := feed.Detect(frame.Mat, frame.TimestampMs)
			frame.Close()
			if err != nil {
				log.Printf("Error detecting landmarks: %v", err)
				continue
			}

			r.engine.ProcessFrame(result)
		}
	}
}
