package landmark

import "gocv.io/x/gocv"

// Feed defines the interface for landmark tracking implementations.
// A Feed turns a video frame into at most one Frame of hand and face
// observations; recognition never touches pixels directly.
type Feed interface {
	// Detect analyzes a video frame and returns the landmarks observed in
	// it. A frame with no hands and no face is a valid result.
	Detect(frame *gocv.Mat, timestampMs int64) (Frame, error)

	// Close releases any resources held by the feed.
	Close() error
}

// Config holds configuration options for landmark tracking.
type Config struct {
	// MaxHands is the maximum number of hands to track (default: 2).
	MaxHands int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MaxHands:        2,
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
	}
}
