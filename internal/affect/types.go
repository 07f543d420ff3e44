// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package affect

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// GravityBaseline is the magnitude (m/s²) of a device lying still.
const GravityBaseline = 9.80665

// AccelerationSample is a single tri-axial acceleration reading in m/s².
type AccelerationSample struct {
	Timestamp time.Time `json:"ts"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	Z         float64   `json:"z"`
}

// MaxMagnitude caps a single sample's magnitude (m/s²), far above the
// range of any handheld accelerometer.
const MaxMagnitude = 1e4

// Magnitude returns the Euclidean norm of the sample after sanitizing
// non-finite components to zero, capped at MaxMagnitude.
func (s AccelerationSample) Magnitude() float64 {
	x, y, z := finiteOrZero(s.X), finiteOrZero(s.Y), finiteOrZero(s.Z)
	return math.Min(finiteOrZero(math.Hypot(math.Hypot(x, y), z)), MaxMagnitude)
}

// FeatureVector is derived by FeatureExtractor on every sample.
type FeatureVector struct {
	Timestamp        time.Time `json:"ts"`
	MagnitudeMean    float64   `json:"magnitude_mean"`
	MagnitudeStdDev  float64   `json:"magnitude_stddev"`
	ShortTermDelta   float64   `json:"short_term_delta"`
	SampleCount      int       `json:"sample_count"`
	ZeroCrossingRate float64   `json:"zero_crossing_rate"`
	StillRun         int       `json:"still_run"`
	ActivityLevel    float64   `json:"activity_level"`
}

// EmotionType is the closed set of categorical labels.
type EmotionType string

const (
	EmotionCalm       EmotionType = "calm"
	EmotionStressed   EmotionType = "stressed"
	EmotionActive     EmotionType = "active"
	EmotionResting    EmotionType = "resting"
	EmotionAnxious    EmotionType = "anxious"
	EmotionFocused    EmotionType = "focused"
	EmotionDistracted EmotionType = "distracted"
	EmotionUnknown    EmotionType = "unknown"
)

// AllEmotions lists every label in a stable display order.
func AllEmotions() []EmotionType {
	return []EmotionType{
		EmotionCalm,
		EmotionStressed,
		EmotionActive,
		EmotionResting,
		EmotionAnxious,
		EmotionFocused,
		EmotionDistracted,
		EmotionUnknown,
	}
}

// ParseEmotion converts a label back into an EmotionType.
func ParseEmotion(s string) (EmotionType, error) {
	for _, e := range AllEmotions() {
		if string(e) == s {
			return e, nil
		}
	}
	return EmotionUnknown, fmt.Errorf("unknown emotion %q", s)
}

// Factor names reported by the classifier.
const (
	FactorMagnitudeMean    = "magnitudeMean"
	FactorMagnitudeStdDev  = "magnitudeStdDev"
	FactorShortTermDelta   = "shortTermDelta"
	FactorGravityDeviation = "gravityDeviation"
	FactorZeroCrossingRate = "zeroCrossingRate"
	FactorStillRun         = "stillRun"
	FactorActivityLevel    = "activityLevel"
)

// Factor is a single named feature value that drove a decision.
type Factor struct {
	Name  string
	Value float64
}

// Factors keeps the decision inputs in the order the rule evaluated them.
type Factors []Factor

// Get returns the value recorded under name.
func (f Factors) Get(name string) (float64, bool) {
	for _, fc := range f {
		if fc.Name == name {
			return fc.Value, true
		}
	}
	return 0, false
}

// Map flattens the factors for callers that do not care about order.
func (f Factors) Map() map[string]float64 {
	m := make(map[string]float64, len(f))
	for _, fc := range f {
		m[fc.Name] = fc.Value
	}
	return m
}

// MarshalJSON encodes the factors as a JSON object preserving order.
func (f Factors) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, fc := range f {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(fc.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(finiteOrZero(fc.Value))
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object, keeping the key order of the input.
func (f *Factors) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*f = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("factors: expected object, got %v", tok)
	}
	out := Factors{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("factors: expected key, got %v", keyTok)
		}
		var v float64
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("factors: value for %q: %w", name, err)
		}
		out = append(out, Factor{Name: name, Value: v})
	}
	*f = out
	return nil
}

// DetectedEmotion is the output of one classification.
type DetectedEmotion struct {
	Emotion    EmotionType `json:"emotion"`
	Confidence float64     `json:"confidence"`
	Factors    Factors     `json:"factors"`
}

// AffectiveState is a point in the continuous affect space, every
// dimension in [0,1].
type AffectiveState struct {
	Arousal float64 `json:"arousal"`
	Valence float64 `json:"valence"`
	Stress  float64 `json:"stress"`
	Focus   float64 `json:"focus"`
}

// NeutralState is returned whenever there is nothing to aggregate.
func NeutralState() AffectiveState {
	return AffectiveState{Arousal: 0.5, Valence: 0.5, Stress: 0.5, Focus: 0.5}
}

func (s AffectiveState) sanitized() AffectiveState {
	return AffectiveState{
		Arousal: clampUnit(s.Arousal, 0.5),
		Valence: clampUnit(s.Valence, 0.5),
		Stress:  clampUnit(s.Stress, 0.5),
		Focus:   clampUnit(s.Focus, 0.5),
	}
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// clampUnit restricts v to [0,1], replacing non-finite values with fallback.
func clampUnit(v, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
