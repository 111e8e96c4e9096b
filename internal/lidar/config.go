package lidar

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// LidarConfig holds the immutable per-sensor parameters. A config is
// validated when the engine is configured and is read-only afterwards;
// replacing it rebuilds the laser angle table.
type LidarConfig struct {
	// Channels is the number of fixed vertical-angle lasers.
	Channels int `json:"channels"`
	// UpperFovLimit and LowerFovLimit bound the vertical field of view
	// in degrees. Channel 0 fires at the upper limit.
	UpperFovLimit float64 `json:"upper_fov_limit"`
	LowerFovLimit float64 `json:"lower_fov_limit"`
	// Range is the maximum ray distance in metres.
	Range float64 `json:"range"`
	// PointsPerSecond is the total sample budget across all channels.
	PointsPerSecond float64 `json:"points_per_second"`
	// RotationFrequency is the sweep speed in revolutions per second.
	RotationFrequency float64 `json:"rotation_frequency"`
	// ShowDebugPoints requests a visual marker per hit; observational only.
	ShowDebugPoints bool `json:"show_debug_points"`
}

// DefaultLidarConfig mirrors a 32-channel spinning unit at 10 Hz.
func DefaultLidarConfig() LidarConfig {
	return LidarConfig{
		Channels:          32,
		UpperFovLimit:     10.0,
		LowerFovLimit:     -30.0,
		Range:             50.0,
		PointsPerSecond:   56000,
		RotationFrequency: 10.0,
	}
}

// Validate rejects configurations the scan engine cannot run with.
func (c LidarConfig) Validate() error {
	if c.Channels <= 0 {
		return fmt.Errorf("channels must be >= 1, got %d", c.Channels)
	}
	if c.LowerFovLimit > c.UpperFovLimit {
		return fmt.Errorf("lower fov limit %.2f exceeds upper fov limit %.2f",
			c.LowerFovLimit, c.UpperFovLimit)
	}
	if c.Range <= 0 {
		return fmt.Errorf("range must be positive, got %.2f", c.Range)
	}
	if c.PointsPerSecond <= 0 {
		return fmt.Errorf("points per second must be positive, got %.2f", c.PointsPerSecond)
	}
	return nil
}

// lidarConfigFile is the on-disk form of LidarConfig. Fields are pointers
// so a partial file only overrides the keys it names.
type lidarConfigFile struct {
	Channels          *int     `json:"channels,omitempty"`
	UpperFovLimit     *float64 `json:"upper_fov_limit,omitempty"`
	LowerFovLimit     *float64 `json:"lower_fov_limit,omitempty"`
	Range             *float64 `json:"range,omitempty"`
	PointsPerSecond   *float64 `json:"points_per_second,omitempty"`
	RotationFrequency *float64 `json:"rotation_frequency,omitempty"`
	ShowDebugPoints   *bool    `json:"show_debug_points,omitempty"`
}

// LoadLidarConfig reads a JSON sensor config file and applies it on top of
// DefaultLidarConfig. Omitted fields keep their defaults, so partial
// configs are safe. The result is validated before it is returned.
func LoadLidarConfig(path string) (LidarConfig, error) {
	cfg := DefaultLidarConfig()

	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return cfg, fmt.Errorf("sensor config must have .json extension, got %q", ext)
	}

	const maxFileSize = 1 * 1024 * 1024
	info, err := os.Stat(cleanPath)
	if err != nil {
		return cfg, fmt.Errorf("failed to stat sensor config: %w", err)
	}
	if info.Size() > maxFileSize {
		return cfg, fmt.Errorf("sensor config too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return cfg, fmt.Errorf("failed to read sensor config: %w", err)
	}

	var file lidarConfigFile
	if err := json.Unmarshal(data, &file); err != nil {
		return cfg, fmt.Errorf("failed to parse sensor config JSON: %w", err)
	}

	if file.Channels != nil {
		cfg.Channels = *file.Channels
	}
	if file.UpperFovLimit != nil {
		cfg.UpperFovLimit = *file.UpperFovLimit
	}
	if file.LowerFovLimit != nil {
		cfg.LowerFovLimit = *file.LowerFovLimit
	}
	if file.Range != nil {
		cfg.Range = *file.Range
	}
	if file.PointsPerSecond != nil {
		cfg.PointsPerSecond = *file.PointsPerSecond
	}
	if file.RotationFrequency != nil {
		cfg.RotationFrequency = *file.RotationFrequency
	}
	if file.ShowDebugPoints != nil {
		cfg.ShowDebugPoints = *file.ShowDebugPoints
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid sensor config: %w", err)
	}
	return cfg, nil
}
