// Package capture feeds the tracking pipeline: it reads timestamped camera
// frames via GoCV (OpenCV) and gates the landmark feed on scene motion.
package capture

import (
	"errors"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// Capture rates. Tracking runs slow while the scene is still and speeds up
// when the motion gate sees movement.
const (
	// IdleFPS is the capture rate while the scene is still.
	IdleFPS = 5
	// ActiveFPS is the capture rate during active tracking.
	ActiveFPS = 15
	// IdleAfterMs is how long without motion before the gate drops the
	// pipeline back to idle.
	IdleAfterMs = 2000
)

// Capture resolution. 640x480 keeps the JPEG handoff to the landmark service
// cheap at the active rate.
const (
	FrameWidth  = 640
	FrameHeight = 480
)

// ErrCameraNotOpen is returned when trying to read from a camera that is not open.
var ErrCameraNotOpen = errors.New("camera is not open")

// Frame is one captured image stamped at read time. The timestamp travels
// with the frame into the landmark feed and orders the gesture state machine
// downstream, so it comes from the capture clock, not from the consumer.
type Frame struct {
	Mat         *gocv.Mat
	TimestampMs int64
}

// Close releases the underlying image. Safe on a zero Frame.
func (f Frame) Close() {
	if f.Mat != nil {
		f.Mat.Close()
	}
}

// Camera defines the interface for camera capture implementations.
type Camera interface {
	Open() error
	Close() error
	ReadFrame() (Frame, error)
	SetFPS(fps int)
	FPS() int
	IsOpen() bool
}

// webcam captures from a physical camera device using GoCV.
type webcam struct {
	deviceID int
	capture  *gocv.VideoCapture
	mu       sync.Mutex
	running  bool
	fps      int
}

// NewCamera creates a Camera for the given device ID, starting at the idle
// rate.
func NewCamera(deviceID int) Camera {
	return &webcam{
		deviceID: deviceID,
		fps:      IdleFPS,
	}
}

// Open opens the camera and pins the tracking resolution.
func (c *webcam) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil
	}

	capture, err := gocv.OpenVideoCapture(c.deviceID)
	if err != nil {
		return err
	}

	capture.Set(gocv.VideoCaptureFrameWidth, FrameWidth)
	capture.Set(gocv.VideoCaptureFrameHeight, FrameHeight)
	capture.Set(gocv.VideoCaptureFPS, float64(c.fps))

	c.capture = capture
	c.running = true

	return nil
}

// Close closes the camera and releases resources.
func (c *webcam) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		c.running = false
		return nil
	}

	err := c.capture.Close()
	c.capture = nil
	c.running = false

	return err
}

// ReadFrame reads a single frame and stamps it with the capture time.
// The caller is responsible for closing the returned frame.
func (c *webcam) ReadFrame() (Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		return Frame{}, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	if ok := c.capture.Read(&mat); !ok {
		mat.Close()
		return Frame{}, errors.New("failed to read frame from camera")
	}

	if mat.Empty() {
		mat.Close()
		return Frame{}, errors.New("captured frame is empty")
	}

	return Frame{Mat: &mat, TimestampMs: time.Now().UnixMilli()}, nil
}

// SetFPS sets the frames per second for capture.
// Values less than or equal to 0 are ignored.
func (c *webcam) SetFPS(fps int) {
	if fps <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.fps = fps

	if c.capture != nil {
		c.capture.Set(gocv.VideoCaptureFPS, float64(fps))
	}
}

// FPS returns the current frames per second setting.
func (c *webcam) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.fps
}

// IsOpen returns true if the camera is currently open and running.
func (c *webcam) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.running
}
