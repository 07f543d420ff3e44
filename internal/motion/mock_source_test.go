package motion

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/affect_computer/internal/affect"
)

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func classifyProfile(t *testing.T, name string, n int) affect.Result {
	t.Helper()
	src, err := NewMockSource(name, epoch, 20*time.Millisecond)
	require.NoError(t, err)

	p := affect.NewPipeline(affect.DefaultConfig())
	var r affect.Result
	for i := 0; i < n; i++ {
		s, err := src.Next()
		require.NoError(t, err)
		r = p.Process(s)
	}
	return r
}

func TestMockSource_ProfilesClassify(t *testing.T) {
	tests := []struct {
		profile string
		samples int
		want    affect.EmotionType
	}{
		{"rest", 40, affect.EmotionCalm},
		{"rest", 120, affect.EmotionResting},
		{"walk", 60, affect.EmotionActive},
		{"run", 60, affect.EmotionActive},
		{"shake", 60, affect.EmotionStressed},
		{"tremor", 60, affect.EmotionAnxious},
		{"fidget", 60, affect.EmotionDistracted},
		{"desk", 30, affect.EmotionActive},
		{"desk", 60, affect.EmotionFocused},
	}

	for _, tt := range tests {
		t.Run(tt.profile, func(t *testing.T) {
			r := classifyProfile(t, tt.profile, tt.samples)
			assert.Equal(t, tt.want, r.Emotion.Emotion)
		})
	}
}

func TestMockSource_Timestamps(t *testing.T) {
	src, err := NewMockSource("walk", epoch, 10*time.Millisecond)
	require.NoError(t, err)

	samples, err := Drain(src, 5)
	require.NoError(t, err)
	require.Len(t, samples, 5)

	for i, s := range samples {
		assert.Equal(t, epoch.Add(time.Duration(i)*10*time.Millisecond), s.Timestamp)
	}
	assert.InDelta(t, affect.GravityBaseline-0.5, samples[0].Magnitude(), 1e-9)
	assert.InDelta(t, affect.GravityBaseline+4.5, samples[1].Magnitude(), 1e-9)
}

func TestMockSource_Deterministic(t *testing.T) {
	draw := func() []affect.AccelerationSample {
		src, err := NewMockSource("desk", epoch, 20*time.Millisecond)
		require.NoError(t, err)
		out, err := Drain(src, 250)
		require.NoError(t, err)
		return out
	}
	if diff := cmp.Diff(draw(), draw()); diff != "" {
		t.Errorf("mock source not deterministic (-first +second):\n%s", diff)
	}
}

func TestNewMockSource_Errors(t *testing.T) {
	_, err := NewMockSource("sleepwalk", epoch, time.Millisecond)
	assert.ErrorContains(t, err, "unknown motion profile")

	_, err = NewMockSource("rest", epoch, 0)
	assert.ErrorContains(t, err, "interval must be positive")
}

func TestProfiles(t *testing.T) {
	assert.Equal(t, []string{"desk", "fidget", "rest", "run", "shake", "tremor", "walk"}, Profiles())
}
