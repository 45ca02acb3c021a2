package audio

import (
	"os"
	"strconv"
)

// Config holds audio cue settings
type Config struct {
	Enabled      bool
	MasterVolume float64 // 0.0-1.0
	SampleRate   int
}

// DefaultConfig returns cues disabled at 70% volume
func DefaultConfig() *Config {
	return &Config{
		Enabled:      false,
		MasterVolume: 0.7,
		SampleRate:   44100,
	}
}

// LoadConfig loads audio configuration from environment variables
func LoadConfig() *Config {
	cfg := DefaultConfig()

	if enabled := os.Getenv("CATCTL_AUDIO_ENABLED"); enabled != "" {
		if val, err := strconv.ParseBool(enabled); err == nil {
			cfg.Enabled = val
		}
	}

	// Master volume as 0-100
	if volume := os.Getenv("CATCTL_MASTER_VOLUME"); volume != "" {
		if val, err := strconv.Atoi(volume); err == nil {
			cfg.MasterVolume = clampVolume(float64(val) / 100.0)
		}
	}

	if sampleRate := os.Getenv("CATCTL_SAMPLE_RATE"); sampleRate != "" {
		if val, err := strconv.Atoi(sampleRate); err == nil && val > 0 {
			cfg.SampleRate = val
		}
	}

	return cfg
}

func clampVolume(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
