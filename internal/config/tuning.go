package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
// This is the single source of truth for all default tuning values.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig represents the root configuration for tracking and
// reconstruction gating parameters. Every field is optional; the Get*
// accessors fall back to built-in defaults for anything not set.
type TuningConfig struct {
	// Track state machine
	MaxUncertainFramesStatic   *int     `json:"max_uncertain_frames_static,omitempty"`
	MaxUncertainFramesDynamic  *int     `json:"max_uncertain_frames_dynamic,omitempty"`
	TransErrorThreshold        *float64 `json:"trans_error_threshold,omitempty"`
	MinFramesForReconstruction *int     `json:"min_frames_for_reconstruction,omitempty"`

	// Match scoring
	MinSameClassScore *float64 `json:"min_same_class_score,omitempty"`
	TemporalDiscount  *float64 `json:"temporal_discount,omitempty"`

	// Tracker (orchestration) params
	MinMatchScore      *float64 `json:"min_match_score,omitempty"`
	MaxInactiveFrames  *int     `json:"max_inactive_frames,omitempty"`
	ReapIntervalFrames *int     `json:"reap_interval_frames,omitempty"`
	MaxTracks          *int     `json:"max_tracks,omitempty"`
	UpdateWorkers      *int     `json:"update_workers,omitempty"`
}

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
// Use LoadTuningConfig to load actual values from the defaults file.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file.
// The file must have a .json extension and be under 1MB.
// Fields omitted from the JSON file fall back to the Get* defaults, so
// partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical tuning defaults from DefaultConfigPath.
// It searches for the file in the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,          // one level down
		"../../" + DefaultConfigPath,       // from internal/<pkg>/ or cmd/<tool>/
		"../../../" + DefaultConfigPath,    // deeper packages
		"../../../../" + DefaultConfigPath, // even deeper
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	if c.MaxUncertainFramesStatic != nil && *c.MaxUncertainFramesStatic < 1 {
		return fmt.Errorf("max_uncertain_frames_static must be at least 1, got %d", *c.MaxUncertainFramesStatic)
	}
	if c.MaxUncertainFramesDynamic != nil && *c.MaxUncertainFramesDynamic < 1 {
		return fmt.Errorf("max_uncertain_frames_dynamic must be at least 1, got %d", *c.MaxUncertainFramesDynamic)
	}
	if c.TransErrorThreshold != nil && *c.TransErrorThreshold <= 0 {
		return fmt.Errorf("trans_error_threshold must be positive, got %f", *c.TransErrorThreshold)
	}
	if c.MinFramesForReconstruction != nil && *c.MinFramesForReconstruction < 1 {
		return fmt.Errorf("min_frames_for_reconstruction must be at least 1, got %d", *c.MinFramesForReconstruction)
	}
	if c.MinSameClassScore != nil {
		if *c.MinSameClassScore <= 0 || *c.MinSameClassScore >= 1 {
			return fmt.Errorf("min_same_class_score must be in (0, 1), got %f", *c.MinSameClassScore)
		}
	}
	if c.TemporalDiscount != nil {
		if *c.TemporalDiscount <= 0 || *c.TemporalDiscount > 1 {
			return fmt.Errorf("temporal_discount must be in (0, 1], got %f", *c.TemporalDiscount)
		}
	}
	if c.MinMatchScore != nil {
		if *c.MinMatchScore < 0 || *c.MinMatchScore > 1 {
			return fmt.Errorf("min_match_score must be between 0 and 1, got %f", *c.MinMatchScore)
		}
	}
	if c.MaxInactiveFrames != nil && *c.MaxInactiveFrames < 0 {
		return fmt.Errorf("max_inactive_frames must be non-negative, got %d", *c.MaxInactiveFrames)
	}
	if c.ReapIntervalFrames != nil && *c.ReapIntervalFrames < 1 {
		return fmt.Errorf("reap_interval_frames must be at least 1, got %d", *c.ReapIntervalFrames)
	}
	if c.MaxTracks != nil && *c.MaxTracks < 1 {
		return fmt.Errorf("max_tracks must be at least 1, got %d", *c.MaxTracks)
	}
	if c.UpdateWorkers != nil && *c.UpdateWorkers < 1 {
		return fmt.Errorf("update_workers must be at least 1, got %d", *c.UpdateWorkers)
	}
	return nil
}

// GetMaxUncertainFramesStatic returns the max_uncertain_frames_static value or the default.
func (c *TuningConfig) GetMaxUncertainFramesStatic() int {
	if c.MaxUncertainFramesStatic == nil {
		return 3
	}
	return *c.MaxUncertainFramesStatic
}

// GetMaxUncertainFramesDynamic returns the max_uncertain_frames_dynamic value or the default.
func (c *TuningConfig) GetMaxUncertainFramesDynamic() int {
	if c.MaxUncertainFramesDynamic == nil {
		return 2
	}
	return *c.MaxUncertainFramesDynamic
}

// GetTransErrorThreshold returns the trans_error_threshold value or the default.
func (c *TuningConfig) GetTransErrorThreshold() float64 {
	if c.TransErrorThreshold == nil {
		return 0.20
	}
	return *c.TransErrorThreshold
}

// GetMinFramesForReconstruction returns the min_frames_for_reconstruction value or the default.
func (c *TuningConfig) GetMinFramesForReconstruction() int {
	if c.MinFramesForReconstruction == nil {
		return 6
	}
	return *c.MinFramesForReconstruction
}

// GetMinSameClassScore returns the min_same_class_score value or the default.
func (c *TuningConfig) GetMinSameClassScore() float64 {
	if c.MinSameClassScore == nil {
		return 0.01
	}
	return *c.MinSameClassScore
}

// GetTemporalDiscount returns the temporal_discount value or the default.
func (c *TuningConfig) GetTemporalDiscount() float64 {
	if c.TemporalDiscount == nil {
		return 0.8
	}
	return *c.TemporalDiscount
}

// GetMinMatchScore returns the min_match_score value or the default.
func (c *TuningConfig) GetMinMatchScore() float64 {
	if c.MinMatchScore == nil {
		return 0.25
	}
	return *c.MinMatchScore
}

// GetMaxInactiveFrames returns the max_inactive_frames value or the default.
func (c *TuningConfig) GetMaxInactiveFrames() int {
	if c.MaxInactiveFrames == nil {
		return 3
	}
	return *c.MaxInactiveFrames
}

// GetReapIntervalFrames returns the reap_interval_frames value or the default.
func (c *TuningConfig) GetReapIntervalFrames() int {
	if c.ReapIntervalFrames == nil {
		return 5
	}
	return *c.ReapIntervalFrames
}

// GetMaxTracks returns the max_tracks value or the default.
func (c *TuningConfig) GetMaxTracks() int {
	if c.MaxTracks == nil {
		return 64
	}
	return *c.MaxTracks
}

// GetUpdateWorkers returns the update_workers value or the default.
func (c *TuningConfig) GetUpdateWorkers() int {
	if c.UpdateWorkers == nil {
		return 4
	}
	return *c.UpdateWorkers
}
