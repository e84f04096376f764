package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// Mode is the capture mode decided by the motion gate.
type Mode int

const (
	// ModeIdle means the scene is still and tracking can run slow.
	ModeIdle Mode = iota
	// ModeActive means the scene is moving and tracking runs at full rate.
	ModeActive
)

// String returns the mode name for logging.
func (m Mode) String() string {
	if m == ModeActive {
		return "active"
	}
	return "idle"
}

// Motion scoring constants. Frames are shrunk to a fixed analysis width
// before differencing so the gate stays cheap at the active rate.
const (
	gateWidth         = 160
	gateBlurSize      = 7
	gateDiffThreshold = 25
)

// MotionGate decides between idle and active capture by frame differencing.
// Activity latches: one moving frame switches to active, and the gate only
// falls back to idle after a quiet stretch of IdleAfterMs. The quiet stretch
// is measured against frame timestamps, so recorded playback through the
// mock camera gates the same way live capture does.
type MotionGate struct {
	mu           sync.Mutex
	threshold    float64
	idleAfterMs  int64
	prev         gocv.Mat
	primed       bool
	mode         Mode
	score        float64
	lastMotionMs int64
}

// NewMotionGate creates a gate. threshold is the percentage of analysis
// pixels that must change to count as motion; idleAfterMs is the quiet
// stretch before falling back to idle. Non-positive arguments take the
// package defaults.
func NewMotionGate(threshold float64, idleAfterMs int64) *MotionGate {
	if threshold <= 0 {
		threshold = 1.0
	}
	if idleAfterMs <= 0 {
		idleAfterMs = IdleAfterMs
	}
	return &MotionGate{
		threshold:   threshold,
		idleAfterMs: idleAfterMs,
		prev:        gocv.NewMat(),
	}
}

// Observe scores one frame against the previous one and returns the capture
// mode the pipeline should run in. The first frame primes the baseline and
// leaves the mode unchanged.
func (g *MotionGate) Observe(frame Frame) Mode {
	g.mu.Lock()
	defer g.mu.Unlock()

	if frame.Mat == nil || frame.Mat.Empty() {
		return g.mode
	}

	small := gocv.NewMat()
	defer small.Close()

	if frame.Mat.Channels() > 1 {
		gocv.CvtColor(*frame.Mat, &small, gocv.ColorBGRToGray)
	} else {
		frame.Mat.CopyTo(&small)
	}

	height := small.Rows() * gateWidth / small.Cols()
	if height < 1 {
		height = 1
	}
	gocv.Resize(small, &small, image.Point{X: gateWidth, Y: height}, 0, 0, gocv.InterpolationArea)
	gocv.GaussianBlur(small, &small, image.Point{X: gateBlurSize, Y: gateBlurSize}, 0, 0, gocv.BorderDefault)

	if !g.primed {
		small.CopyTo(&g.prev)
		g.primed = true
		g.lastMotionMs = frame.TimestampMs
		return g.mode
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(small, g.prev, &diff)
	gocv.Threshold(diff, &diff, gateDiffThreshold, 255, gocv.ThresholdBinary)

	changed := gocv.CountNonZero(diff)
	total := diff.Rows() * diff.Cols()
	g.score = float64(changed) / float64(total) * 100.0
	small.CopyTo(&g.prev)

	if g.score > g.threshold {
		g.lastMotionMs = frame.TimestampMs
		g.mode = ModeActive
	} else if g.mode == ModeActive && frame.TimestampMs-g.lastMotionMs > g.idleAfterMs {
		g.mode = ModeIdle
	}

	return g.mode
}

// Mode returns the current capture mode.
func (g *MotionGate) Mode() Mode {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.mode
}

// Score returns the change percentage of the last scored frame.
func (g *MotionGate) Score() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.score
}

// SetThreshold sets the motion threshold.
// Values less than or equal to 0 are ignored.
func (g *MotionGate) SetThreshold(threshold float64) {
	if threshold <= 0 {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.threshold = threshold
}

// Reset drops the baseline and returns the gate to idle. The next observed
// frame primes a fresh baseline.
func (g *MotionGate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.reset()
}

// Close releases the baseline frame. The gate may be reused afterwards.
func (g *MotionGate) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.reset()
}

func (g *MotionGate) reset() {
	if !g.prev.Empty() {
		g.prev.Close()
		g.prev = gocv.NewMat()
	}
	g.primed = false
	g.mode = ModeIdle
	g.score = 0
}
