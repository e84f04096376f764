package landmark

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// MediaPipeFeed implements Feed using a Python MediaPipe subprocess running
// the hand landmarker and face mesh models. Frames are shipped as
// length-prefixed JPEG and results come back as one JSON line per frame.
type MediaPipeFeed struct {
	config    Config
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	stdout    *bufio.Reader
	mu        sync.Mutex
	started   bool
	lastUsed  time.Time
	idleTimer *time.Timer
}

// NewMediaPipeFeed creates a new MediaPipe landmark feed.
// The Python process is started lazily on first detection.
func NewMediaPipeFeed(config Config) (*MediaPipeFeed, error) {
	scriptPath := findTrackerScript()
	if scriptPath == "" {
		return nil, fmt.Errorf("landmark_service.py not found")
	}

	return &MediaPipeFeed{
		config: config,
	}, nil
}

// Detect analyzes a frame and returns the hand and face landmarks seen in it.
func (f *MediaPipeFeed) Detect(frame *gocv.Mat, timestampMs int64) (Frame, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	result := Frame{TimestampMs: timestampMs}

	if err := f.ensureStarted(); err != nil {
		return result, err
	}

	// Encode frame as JPEG
	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		return result, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	data := buf.GetBytes()

	// Write length (4 bytes big-endian) + data
	length := make([]byte, 4)
	binary.BigEndian.PutUint32(length, uint32(len(data)))

	if _, err := f.stdin.Write(length); err != nil {
		return result, fmt.Errorf("write length: %w", err)
	}
	if _, err := f.stdin.Write(data); err != nil {
		return result, fmt.Errorf("write data: %w", err)
	}

	// Read JSON response
	line, err := f.stdout.ReadString('\n')
	if err != nil {
		return result, fmt.Errorf("read response: %w", err)
	}

	var response struct {
		Hands []jsonHand `json:"hands"`
		Face  *jsonFace  `json:"face"`
	}
	if err := json.Unmarshal([]byte(line), &response); err != nil {
		return result, fmt.Errorf("parse response: %w", err)
	}

	for _, h := range response.Hands {
		// A hand with a short landmark list is a tracker glitch; drop it
		// rather than hand incomplete geometry downstream.
		if len(h.Points) < NumHandLandmarks {
			continue
		}
		result.Hands = append(result.Hands, h.toHandObservation())
	}
	if response.Face != nil && len(response.Face.Points) >= NumFaceLandmarks {
		face := response.Face.toFaceObservation()
		result.Face = &face
	}

	f.lastUsed = time.Now()
	f.resetIdleTimer()

	return result, nil
}

// Close shuts down the Python process.
func (f *MediaPipeFeed) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.shutdown()
}

func (f *MediaPipeFeed) ensureStarted() error {
	if f.started {
		return nil
	}

	scriptPath := findTrackerScript()
	if scriptPath == "" {
		return fmt.Errorf("landmark_service.py not found")
	}

	// Use virtual environment Python if available
	pythonPath := findVenvPython()
	if pythonPath == "" {
		pythonPath = "python3"
	}

	f.cmd = exec.Command(pythonPath, scriptPath)

	stdin, err := f.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}

	stdout, err := f.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}

	// Capture stderr for debugging
	f.cmd.Stderr = os.Stderr

	if err := f.cmd.Start(); err != nil {
		return fmt.Errorf("start landmark service: %w", err)
	}

	f.stdin = stdin
	f.stdout = bufio.NewReader(stdout)
	f.started = true
	f.lastUsed = time.Now()

	return nil
}

func (f *MediaPipeFeed) shutdown() error {
	if !f.started {
		return nil
	}

	if f.idleTimer != nil {
		f.idleTimer.Stop()
		f.idleTimer = nil
	}

	if f.stdin != nil {
		f.stdin.Close()
	}

	err := f.cmd.Wait()
	f.started = false
	f.cmd = nil
	f.stdin = nil
	f.stdout = nil

	return err
}

func (f *MediaPipeFeed) resetIdleTimer() {
	if f.idleTimer != nil {
		f.idleTimer.Stop()
	}
	f.idleTimer = time.AfterFunc(30*time.Second, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.shutdown()
	})
}

func findTrackerScript() string {
	// Get executable directory
	execPath, err := os.Executable()
	var execDir string
	if err == nil {
		execDir = filepath.Dir(execPath)
	}

	candidates := []string{
		"scripts/landmark_service.py",
		"../scripts/landmark_service.py",
		filepath.Join(execDir, "scripts/landmark_service.py"),
		filepath.Join(os.Getenv("HOME"), ".abhinaya/scripts/landmark_service.py"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			absPath, err := filepath.Abs(path)
			if err == nil {
				return absPath
			}
			return path
		}
	}
	return ""
}

// findVenvPython looks for a Python interpreter in a virtual environment.
// It checks for venv/bin/python relative to the project directory.
func findVenvPython() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}
	execDir := filepath.Dir(execPath)

	candidates := []string{
		"venv/bin/python",
		"../venv/bin/python",
		"../../venv/bin/python",
		filepath.Join(execDir, "venv/bin/python"),
		filepath.Join(os.Getenv("HOME"), ".abhinaya/venv/bin/python"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			absPath, err := filepath.Abs(path)
			if err == nil {
				return absPath
			}
			return path
		}
	}
	return ""
}

// jsonHand represents the per-hand JSON structure from the Python service.
type jsonHand struct {
	Points     []jsonPoint `json:"points"`
	Handedness string      `json:"handedness"`
	Score      float64     `json:"score"`
}

// jsonFace represents the face mesh JSON structure from the Python service.
type jsonFace struct {
	Points []jsonPoint `json:"points"`
	Score  float64     `json:"score"`
}

type jsonPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (h jsonHand) toHandObservation() HandObservation {
	obs := HandObservation{
		Handedness: h.Handedness,
		Score:      h.Score,
	}

	for i := 0; i < NumHandLandmarks && i < len(h.Points); i++ {
		obs.Points[i] = Point3D{
			X: h.Points[i].X,
			Y: h.Points[i].Y,
			Z: h.Points[i].Z,
		}
	}

	return obs
}

func (f jsonFace) toFaceObservation() FaceObservation {
	obs := FaceObservation{Score: f.Score}

	for i := 0; i < NumFaceLandmarks && i < len(f.Points); i++ {
		obs.Points[i] = Point3D{
			X: f.Points[i].X,
			Y: f.Points[i].Y,
			Z: f.Points[i].Z,
		}
	}

	return obs
}
