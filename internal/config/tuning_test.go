package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/affect_computer/internal/affect"
)

func TestParseTuning_PartialOverride(t *testing.T) {
	got, err := ParseTuning([]byte("calm_stddev: 0.4\nstress_delta: 6\n"))
	require.NoError(t, err)

	want := affect.DefaultThresholds()
	want.CalmStdDev = 0.4
	want.StressDelta = 6
	assert.Equal(t, want, got)
}

func TestParseTuning_Empty(t *testing.T) {
	got, err := ParseTuning(nil)
	require.NoError(t, err)
	assert.Equal(t, affect.DefaultThresholds(), got)
}

func TestParseTuning_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"malformed", "calm_stddev: [", "failed to parse tuning"},
		{"inverted ordering", "calm_stddev: 3", "rest < calm < anxious < active"},
		{"zero rest", "rest_stddev: 0", "rest_stddev must be positive"},
		{"stress below active", "stress_delta: 1", "stress_delta"},
		{"rhythm out of range", "anxious_rhythm: 1.5", "anxious_rhythm must be in [0,1)"},
		{"confidence floor", "min_confidence: 0", "min_confidence"},
		{"resting run", "resting_run: 0", "resting_run"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTuning([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadTuning_Extension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))

	_, err := LoadTuning(path)
	assert.ErrorContains(t, err, "extension")
}

func TestLoadTuning_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yml")
	require.NoError(t, os.WriteFile(path, []byte("focus_activity: 2.5\n"), 0o644))

	got, err := LoadTuning(path)
	require.NoError(t, err)
	assert.Equal(t, 2.5, got.FocusActivity)

	_, err = LoadTuning(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to stat tuning file")
}
