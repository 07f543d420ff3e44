package affect

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEmotion(t *testing.T) {
	for _, e := range AllEmotions() {
		got, err := ParseEmotion(string(e))
		require.NoError(t, err)
		assert.Equal(t, e, got)
	}

	got, err := ParseEmotion("euphoric")
	assert.Error(t, err)
	assert.Equal(t, EmotionUnknown, got)
}

func TestFactors_JSONKeepsOrder(t *testing.T) {
	f := Factors{
		{FactorShortTermDelta, 3.5},
		{FactorMagnitudeStdDev, 2.25},
		{FactorGravityDeviation, math.NaN()},
	}

	data, err := json.Marshal(f)
	require.NoError(t, err)
	assert.Equal(t, `{"shortTermDelta":3.5,"magnitudeStdDev":2.25,"gravityDeviation":0}`, string(data))

	var back Factors
	require.NoError(t, json.Unmarshal(data, &back))
	require.Len(t, back, 3)
	assert.Equal(t, FactorShortTermDelta, back[0].Name)
	assert.Equal(t, FactorGravityDeviation, back[2].Name)

	v, ok := back.Get(FactorMagnitudeStdDev)
	assert.True(t, ok)
	assert.Equal(t, 2.25, v)
	_, ok = back.Get(FactorStillRun)
	assert.False(t, ok)

	assert.Equal(t, map[string]float64{
		FactorShortTermDelta:   3.5,
		FactorMagnitudeStdDev:  2.25,
		FactorGravityDeviation: 0,
	}, back.Map())
}

func TestFactors_JSONEdgeCases(t *testing.T) {
	data, err := json.Marshal(DetectedEmotion{Emotion: EmotionUnknown})
	require.NoError(t, err)
	assert.JSONEq(t, `{"emotion":"unknown","confidence":0,"factors":{}}`, string(data))

	var f Factors
	require.NoError(t, json.Unmarshal([]byte(`null`), &f))
	assert.Nil(t, f)

	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &f))
	assert.Error(t, json.Unmarshal([]byte(`{"a":"x"}`), &f))
}

func TestAffectiveState_Sanitized(t *testing.T) {
	s := AffectiveState{Arousal: math.Inf(1), Valence: -2, Stress: 7, Focus: 0.25}.sanitized()
	assert.Equal(t, AffectiveState{Arousal: 0.5, Valence: 0, Stress: 1, Focus: 0.25}, s)
}
