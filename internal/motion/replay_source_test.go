package motion

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/affect_computer/internal/affect"
)

const recording = `ts,x,y,z
# captured on the bench
2026-03-01T12:00:00Z,0.1,0.2,9.8
2026-03-01T12:00:00.02Z,0.0,0.0,10.1
,1,2,3
`

func TestReplaySource_Once(t *testing.T) {
	src, err := NewReplaySource(strings.NewReader(recording), false)
	require.NoError(t, err)

	samples, err := Drain(src, 0)
	require.NoError(t, err)

	want := []affect.AccelerationSample{
		{Timestamp: epoch, X: 0.1, Y: 0.2, Z: 9.8},
		{Timestamp: epoch.Add(20 * time.Millisecond), Z: 10.1},
		{X: 1, Y: 2, Z: 3},
	}
	if diff := cmp.Diff(want, samples); diff != "" {
		t.Errorf("replay mismatch (-want +got):\n%s", diff)
	}

	_, err = src.Next()
	assert.ErrorIs(t, err, ErrExhausted)
}

func TestReplaySource_Loop(t *testing.T) {
	src, err := NewReplaySource(strings.NewReader(recording), true)
	require.NoError(t, err)

	samples, err := Drain(src, 7)
	require.NoError(t, err)
	require.Len(t, samples, 7)
	assert.Equal(t, samples[0], samples[3])
	assert.Equal(t, samples[0], samples[6])
}

func TestReplaySource_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"empty", "ts,x,y,z\n", "no samples"},
		{"bad ts", "yesterday,1,2,3\n", "invalid ts"},
		{"bad axis", ",1,two,3\n", "invalid axis value"},
		{"wrong column count", ",1,2\n", "replay"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewReplaySource(strings.NewReader(tt.input), false)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestWriteCSV_RoundTripsThroughLoadReplay(t *testing.T) {
	src, err := NewMockSource("fidget", epoch, 20*time.Millisecond)
	require.NoError(t, err)
	samples, err := Drain(src, 12)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, samples))

	path := filepath.Join(t.TempDir(), "fidget.csv")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	replay, err := LoadReplay(path, false)
	require.NoError(t, err)
	got, err := Drain(replay, 0)
	require.NoError(t, err)

	if diff := cmp.Diff(samples, got); diff != "" {
		t.Errorf("recording changed on disk (-want +got):\n%s", diff)
	}
}
