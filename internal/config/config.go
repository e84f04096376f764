// Package config loads the daemon configuration from a TOML file and
// overlays it onto the built-in defaults. A missing file is not an error:
// the daemon runs on defaults until the user writes one.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/ayusman/abhinaya/internal/engine"
)

// FileConfig represents the TOML configuration file. All fields are
// pointers: nil means "keep the default".
type FileConfig struct {
	Camera     CameraConfig     `toml:"camera"`
	Server     ServerConfig     `toml:"server"`
	Gesture    GestureConfig    `toml:"gesture"`
	Expression ExpressionConfig `toml:"expression"`
	Mapping    MappingConfig    `toml:"mapping"`
	Storage    StorageConfig    `toml:"storage"`
}

// CameraConfig maps capture settings.
type CameraConfig struct {
	Device          *int     `toml:"device"`
	MotionThreshold *float64 `toml:"motion-threshold"`
}

// ServerConfig maps the HTTP/websocket listener settings.
type ServerConfig struct {
	Addr *string `toml:"addr"`
}

// GestureConfig maps hand-gesture detection thresholds.
type GestureConfig struct {
	PinchThreshold  *float64 `toml:"pinch-threshold"`
	SwipeThreshold  *float64 `toml:"swipe-threshold"`
	ClickCooldownMs *int     `toml:"click-cooldown-ms"`
	ViewportWidth   *float64 `toml:"viewport-width"`
	ViewportHeight  *float64 `toml:"viewport-height"`
}

// ExpressionConfig maps facial-expression extraction tuning.
type ExpressionConfig struct {
	Smoothing         *float64 `toml:"smoothing"`
	SpeakingThreshold *float64 `toml:"speaking-threshold"`
}

// MappingConfig maps avatar-mapping tuning.
type MappingConfig struct {
	TiltSensitivity  *float64 `toml:"tilt-sensitivity"`
	ChannelSmoothing *float64 `toml:"channel-smoothing"`
	ClickCooldownMs  *int     `toml:"click-cooldown-ms"`
	SwipeCooldownMs  *int     `toml:"swipe-cooldown-ms"`
	LipSyncGain      *float64 `toml:"lip-sync-gain"`
}

// StorageConfig maps the profile database location.
type StorageConfig struct {
	DBPath *string `toml:"db-path"`
}

// DataDir returns the daemon's data directory, creating it if needed.
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	dir := filepath.Join(home, ".abhinaya")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}
	return dir, nil
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads a TOML config from the given path. Missing file is not an error.
func Load(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// Apply overlays the file values onto an engine configuration.
func (f FileConfig) Apply(cfg engine.Config) engine.Config {
	if f.Gesture.PinchThreshold != nil {
		cfg.Gesture.PinchThreshold = *f.Gesture.PinchThreshold
	}
	if f.Gesture.SwipeThreshold != nil {
		cfg.Gesture.SwipeThreshold = *f.Gesture.SwipeThreshold
	}
	if f.Gesture.ClickCooldownMs != nil {
		cfg.Gesture.ClickCooldown = time.Duration(*f.Gesture.ClickCooldownMs) * time.Millisecond
	}
	if f.Gesture.ViewportWidth != nil {
		cfg.Gesture.ViewportWidth = *f.Gesture.ViewportWidth
		cfg.Mapper.ViewportWidth = *f.Gesture.ViewportWidth
	}
	if f.Gesture.ViewportHeight != nil {
		cfg.Gesture.ViewportHeight = *f.Gesture.ViewportHeight
		cfg.Mapper.ViewportHeight = *f.Gesture.ViewportHeight
	}

	if f.Expression.Smoothing != nil {
		cfg.Expression.SmoothingFactor = *f.Expression.Smoothing
	}
	if f.Expression.SpeakingThreshold != nil {
		cfg.Expression.SpeakingThreshold = *f.Expression.SpeakingThreshold
	}

	if f.Mapping.TiltSensitivity != nil {
		cfg.Mapper.TiltSensitivity = *f.Mapping.TiltSensitivity
	}
	if f.Mapping.ChannelSmoothing != nil {
		cfg.Mapper.ChannelSmoothing = *f.Mapping.ChannelSmoothing
	}
	if f.Mapping.ClickCooldownMs != nil {
		cfg.Mapper.ClickCooldown = time.Duration(*f.Mapping.ClickCooldownMs) * time.Millisecond
	}
	if f.Mapping.SwipeCooldownMs != nil {
		cfg.Mapper.SwipeCooldown = time.Duration(*f.Mapping.SwipeCooldownMs) * time.Millisecond
	}
	if f.Mapping.LipSyncGain != nil {
		cfg.Mapper.LipSyncGain = *f.Mapping.LipSyncGain
	}

	return cfg
}

// CameraID returns the configured camera device, defaulting to 0.
func (f FileConfig) CameraID() int {
	if f.Camera.Device != nil {
		return *f.Camera.Device
	}
	return 0
}

// MotionThreshold returns the configured motion threshold, defaulting to
// 1% pixel change.
func (f FileConfig) MotionThreshold() float64 {
	if f.Camera.MotionThreshold != nil {
		return *f.Camera.MotionThreshold
	}
	return 1.0
}

// ServerAddr returns the configured listener address, defaulting to :8080.
func (f FileConfig) ServerAddr() string {
	if f.Server.Addr != nil {
		return *f.Server.Addr
	}
	return ":8080"
}

// DBPath returns the configured database path, or the default under the
// data directory.
func (f FileConfig) DBPath() (string, error) {
	if f.Storage.DBPath != nil {
		return *f.Storage.DBPath, nil
	}
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "abhinaya.db"), nil
}
