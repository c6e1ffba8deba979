package tracks

import (
	"github.com/banshee-data/instrec/internal/config"
)

// Reap weight parameters. The weight grows with fused evidence and is
// capped so that long-lived volumes are not pruned destructively.
const (
	ReapWeightPerFusedFrame = 0.33
	MinReapWeight           = 1
	MaxReapWeight           = 5
)

// Config holds the immutable thresholds shared by tracks. Tracks copy it
// at construction; tuning means building tracks with a different Config.
type Config struct {
	// Consecutive estimation failures (or contradicting estimates) before a
	// Static track loses its classification.
	MaxUncertainFramesStatic int
	// Same as MaxUncertainFramesStatic, for Dynamic tracks.
	MaxUncertainFramesDynamic int
	// Residual translation (after removing egomotion) above which a frame
	// counts as evidence of independent motion.
	TransErrorThreshold float64
	// Minimum frames before a track may start a reconstruction.
	MinFramesForReconstruction int

	// Floor of any same-class match score, keeping every same-class
	// candidate strictly above any different-class candidate.
	MinSameClassScore float64
	// Per-missed-frame multiplier applied to match scores across gaps.
	TemporalDiscount float64
}

// DefaultConfig returns track configuration loaded from the canonical
// tuning defaults file (config/tuning.defaults.json).
// Panics if the file cannot be found; intended for tests and binaries
// that have already validated config availability.
func DefaultConfig() Config {
	return ConfigFromTuning(config.MustLoadDefaultConfig())
}

// ConfigFromTuning builds a Config from a loaded TuningConfig.
func ConfigFromTuning(cfg *config.TuningConfig) Config {
	return Config{
		MaxUncertainFramesStatic:   cfg.GetMaxUncertainFramesStatic(),
		MaxUncertainFramesDynamic:  cfg.GetMaxUncertainFramesDynamic(),
		TransErrorThreshold:        cfg.GetTransErrorThreshold(),
		MinFramesForReconstruction: cfg.GetMinFramesForReconstruction(),
		MinSameClassScore:          cfg.GetMinSameClassScore(),
		TemporalDiscount:           cfg.GetTemporalDiscount(),
	}
}
