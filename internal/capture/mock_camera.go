package capture

import (
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// MockCamera plays prepared frames with a deterministic capture clock, so
// tests can drive the motion gate and the landmark feed without hardware.
// Each ReadFrame stamps the current clock value and advances it by the
// configured step. SetFPS calls are recorded for rate-switch assertions.
type MockCamera struct {
	mu     sync.Mutex
	frames []*gocv.Mat
	index  int
	loop   bool
	open   bool
	fps    int
	fpsLog []int
	nowMs  int64
	stepMs int64
}

// NewMockCamera creates a mock over the given frame sequence. The clock
// starts at 1000ms and steps 33ms per read until SetClock overrides it.
func NewMockCamera(frames []*gocv.Mat, loop bool) *MockCamera {
	return &MockCamera{
		frames: frames,
		loop:   loop,
		fps:    IdleFPS,
		nowMs:  1000,
		stepMs: 33,
	}
}

// SetClock sets the timestamp of the next frame and the step between frames.
func (c *MockCamera) SetClock(startMs, stepMs int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nowMs = startMs
	if stepMs > 0 {
		c.stepMs = stepMs
	}
}

// Open rewinds playback and marks the camera open.
func (c *MockCamera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = true
	c.index = 0
	return nil
}

// Close marks the camera closed. The frames stay owned by the caller.
func (c *MockCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = false
	return nil
}

// ReadFrame returns a clone of the next frame stamped with the mock clock.
func (c *MockCamera) ReadFrame() (Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.open {
		return Frame{}, ErrCameraNotOpen
	}
	if len(c.frames) == 0 {
		return Frame{}, fmt.Errorf("no frames available")
	}

	if c.index >= len(c.frames) {
		if !c.loop {
			return Frame{}, fmt.Errorf("no more frames")
		}
		c.index = 0
	}

	mat := c.frames[c.index].Clone()
	c.index++

	ts := c.nowMs
	c.nowMs += c.stepMs

	return Frame{Mat: &mat, TimestampMs: ts}, nil
}

// SetFPS records the requested rate. Mock playback itself is unpaced.
func (c *MockCamera) SetFPS(fps int) {
	if fps <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fps = fps
	c.fpsLog = append(c.fpsLog, fps)
}

// FPS returns the last requested rate.
func (c *MockCamera) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fps
}

// FPSLog returns every rate passed to SetFPS, in order.
func (c *MockCamera) FPSLog() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]int(nil), c.fpsLog...)
}

// IsOpen reports whether Open has been called without a matching Close.
func (c *MockCamera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

// SetFrames replaces the frame sequence and rewinds playback.
func (c *MockCamera) SetFrames(frames []*gocv.Mat) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = frames
	c.index = 0
}

// Reset restarts playback from the beginning.
func (c *MockCamera) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.index = 0
}

var _ Camera = (*MockCamera)(nil)
