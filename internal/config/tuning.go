package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/relabs-tech/affect_computer/internal/affect"
)

const maxTuningFileSize = 1 << 20

// LoadTuning reads classifier threshold overrides from a YAML file.
// Keys omitted from the file keep their defaults, so partial files are safe.
func LoadTuning(path string) (affect.Thresholds, error) {
	cleanPath := filepath.Clean(path)
	switch ext := filepath.Ext(cleanPath); ext {
	case ".yaml", ".yml":
	default:
		return affect.Thresholds{}, fmt.Errorf("tuning file must have .yaml or .yml extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return affect.Thresholds{}, fmt.Errorf("failed to stat tuning file: %w", err)
	}
	if info.Size() > maxTuningFileSize {
		return affect.Thresholds{}, fmt.Errorf("tuning file too large: %d bytes (max %d)", info.Size(), maxTuningFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return affect.Thresholds{}, fmt.Errorf("failed to read tuning file: %w", err)
	}
	return ParseTuning(data)
}

// ParseTuning decodes YAML threshold overrides over affect.DefaultThresholds.
func ParseTuning(data []byte) (affect.Thresholds, error) {
	t := affect.DefaultThresholds()
	if err := yaml.Unmarshal(data, &t); err != nil {
		return affect.Thresholds{}, fmt.Errorf("failed to parse tuning: %w", err)
	}
	if err := ValidateThresholds(t); err != nil {
		return affect.Thresholds{}, err
	}
	return t, nil
}

// ValidateThresholds checks that the thresholds keep the rule ordering
// meaningful: rest < calm < anxious < active for standard deviation.
func ValidateThresholds(t affect.Thresholds) error {
	if t.RestStdDev <= 0 {
		return fmt.Errorf("rest_stddev must be positive, got %v", t.RestStdDev)
	}
	if !(t.RestStdDev < t.CalmStdDev && t.CalmStdDev < t.AnxiousStdDev && t.AnxiousStdDev < t.ActiveStdDev) {
		return fmt.Errorf("stddev thresholds must satisfy rest < calm < anxious < active, got %v < %v < %v < %v",
			t.RestStdDev, t.CalmStdDev, t.AnxiousStdDev, t.ActiveStdDev)
	}
	if t.ActiveDelta <= 0 || t.StressDelta < t.ActiveDelta {
		return fmt.Errorf("stress_delta (%v) must be at least active_delta (%v) > 0", t.StressDelta, t.ActiveDelta)
	}
	if t.CalmMeanTolerance <= 0 || t.ActiveMeanElevation <= 0 || t.FocusActivity <= 0 || t.AnxiousDelta <= 0 {
		return fmt.Errorf("calm_mean_tolerance, active_mean_elevation, focus_activity and anxious_delta must be positive")
	}
	if t.RestingRun < 1 {
		return fmt.Errorf("resting_run must be at least 1, got %d", t.RestingRun)
	}
	for name, v := range map[string]float64{
		"anxious_rhythm":    t.AnxiousRhythm,
		"distracted_rhythm": t.DistractedRhythm,
	} {
		if v < 0 || v >= 1 {
			return fmt.Errorf("%s must be in [0,1), got %v", name, v)
		}
	}
	if t.MinConfidence <= 0 || t.MinConfidence >= 1 {
		return fmt.Errorf("min_confidence must be in (0,1), got %v", t.MinConfidence)
	}
	return nil
}
