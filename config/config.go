// Package config loads the engine configuration from
// ~/.config/rglr-gnrtr/engine.json, falling back to defaults when the file
// is absent.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	gerrors "github.com/gruntwork-io/go-commons/errors"
)

// Config holds the options that shape the engine at startup.
type Config struct {
	// BeatsPerBar is the time signature numerator.
	BeatsPerBar int `json:"beatsPerBar,omitempty"`

	// InternalBPM is the starting tempo for the internal clock.
	InternalBPM float64 `json:"internalBPM,omitempty"`

	// ClockTimeoutMs is the external clock-loss window in milliseconds.
	ClockTimeoutMs int `json:"clockTimeoutMs,omitempty"`

	// FrameRate is the drive loop rate in frames per second.
	FrameRate int `json:"frameRate,omitempty"`

	// MIDIInputPort names the MIDI input to listen on; empty means none.
	MIDIInputPort string `json:"midiInputPort,omitempty"`

	// SceneDurationSec is the default scene interpolation duration.
	SceneDurationSec float64 `json:"sceneDurationSec,omitempty"`

	// SceneEasing is the default scene interpolation easing name.
	SceneEasing string `json:"sceneEasing,omitempty"`
}

// DefaultConfig returns a config with reasonable defaults for real usage.
func DefaultConfig() *Config {
	return &Config{
		BeatsPerBar:      4,
		InternalBPM:      120,
		ClockTimeoutMs:   200,
		FrameRate:        60,
		SceneDurationSec: 2.0,
		SceneEasing:      "inOutCubic",
	}
}

// ConfigDir returns the config directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", gerrors.WithStackTrace(err)
	}
	return filepath.Join(home, ".config", "rglr-gnrtr"), nil
}

// ConfigPath returns the full path to engine.json.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "engine.json"), nil
}

// Load reads the config file, filling any unset field from the defaults. A
// missing file is not an error.
func Load() (*Config, error) {
	cfg := DefaultConfig()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, gerrors.WithStackTrace(err)
	}
	var fileCfg Config
	if err := json.Unmarshal(data, &fileCfg); err != nil {
		return cfg, gerrors.WithStackTrace(err)
	}
	merge(cfg, &fileCfg)
	return cfg, nil
}

// Save writes the config file, creating the directory if needed.
func Save(cfg *Config) error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return gerrors.WithStackTrace(err)
	}
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return gerrors.WithStackTrace(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return gerrors.WithStackTrace(err)
	}
	return nil
}

func merge(dst, src *Config) {
	if src.BeatsPerBar > 0 {
		dst.BeatsPerBar = src.BeatsPerBar
	}
	if src.InternalBPM > 0 {
		dst.InternalBPM = src.InternalBPM
	}
	if src.ClockTimeoutMs > 0 {
		dst.ClockTimeoutMs = src.ClockTimeoutMs
	}
	if src.FrameRate > 0 {
		dst.FrameRate = src.FrameRate
	}
	if src.MIDIInputPort != "" {
		dst.MIDIInputPort = src.MIDIInputPort
	}
	if src.SceneDurationSec > 0 {
		dst.SceneDurationSec = src.SceneDurationSec
	}
	if src.SceneEasing != "" {
		dst.SceneEasing = src.SceneEasing
	}
}
