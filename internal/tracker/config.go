package tracker

import (
	"github.com/banshee-data/instrec/internal/config"
	"github.com/banshee-data/instrec/internal/tracks"
)

// Config holds tracker parameters.
type Config struct {
	Track tracks.Config

	MinMatchScore      float64 // Scores below this never associate a detection with a track
	MaxInactiveFrames  int     // Frames without a detection before a track is evicted
	ReapIntervalFrames int     // Run pending decay passes every this many frames
	MaxTracks          int     // Maximum number of live tracks
	UpdateWorkers      int     // Tracks updated in parallel per frame
}

// DefaultConfig returns tracker configuration loaded from the canonical
// tuning defaults file (config/tuning.defaults.json).
// Panics if the file cannot be found.
func DefaultConfig() Config {
	return ConfigFromTuning(config.MustLoadDefaultConfig())
}

// ConfigFromTuning builds a Config from a loaded TuningConfig.
func ConfigFromTuning(cfg *config.TuningConfig) Config {
	return Config{
		Track:              tracks.ConfigFromTuning(cfg),
		MinMatchScore:      cfg.GetMinMatchScore(),
		MaxInactiveFrames:  cfg.GetMaxInactiveFrames(),
		ReapIntervalFrames: cfg.GetReapIntervalFrames(),
		MaxTracks:          cfg.GetMaxTracks(),
		UpdateWorkers:      cfg.GetUpdateWorkers(),
	}
}
