// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package affect

import "math"

// Thresholds are the tunable constants of the decision policy. All
// magnitudes are in m/s².
type Thresholds struct {
	RestStdDev          float64 `yaml:"rest_stddev" json:"rest_stddev"`
	CalmStdDev          float64 `yaml:"calm_stddev" json:"calm_stddev"`
	CalmMeanTolerance   float64 `yaml:"calm_mean_tolerance" json:"calm_mean_tolerance"`
	RestingRun          int     `yaml:"resting_run" json:"resting_run"`
	FocusActivity       float64 `yaml:"focus_activity" json:"focus_activity"`
	ActiveStdDev        float64 `yaml:"active_stddev" json:"active_stddev"`
	ActiveDelta         float64 `yaml:"active_delta" json:"active_delta"`
	ActiveMeanElevation float64 `yaml:"active_mean_elevation" json:"active_mean_elevation"`
	StressDelta         float64 `yaml:"stress_delta" json:"stress_delta"`
	AnxiousStdDev       float64 `yaml:"anxious_stddev" json:"anxious_stddev"`
	AnxiousDelta        float64 `yaml:"anxious_delta" json:"anxious_delta"`
	AnxiousRhythm       float64 `yaml:"anxious_rhythm" json:"anxious_rhythm"`
	DistractedRhythm    float64 `yaml:"distracted_rhythm" json:"distracted_rhythm"`
	MinConfidence       float64 `yaml:"min_confidence" json:"min_confidence"`
}

// DefaultThresholds returns the stock policy constants.
func DefaultThresholds() Thresholds {
	return Thresholds{
		RestStdDev:          0.05,
		CalmStdDev:          0.3,
		CalmMeanTolerance:   1.0,
		RestingRun:          90,
		FocusActivity:       1.0,
		ActiveStdDev:        2.0,
		ActiveDelta:         2.5,
		ActiveMeanElevation: 1.5,
		StressDelta:         5.0,
		AnxiousStdDev:       1.0,
		AnxiousDelta:        1.5,
		AnxiousRhythm:       0.5,
		DistractedRhythm:    0.4,
		MinConfidence:       0.1,
	}
}

// EmotionClassifier maps a feature vector to a DetectedEmotion using an
// ordered rule list. It holds no temporal state.
type EmotionClassifier struct {
	windowSize int
	t          Thresholds
}

// NewEmotionClassifier creates a classifier that refuses to guess until
// a full window of windowSize samples is available.
func NewEmotionClassifier(windowSize int, t Thresholds) *EmotionClassifier {
	return &EmotionClassifier{windowSize: windowSize, t: t}
}

// Thresholds returns the policy constants in use.
func (c *EmotionClassifier) Thresholds() Thresholds {
	return c.t
}

type rule struct {
	emotion EmotionType
	match   func(c *EmotionClassifier, f FeatureVector) (score float64, factors Factors, ok bool)
}

// rules is evaluated top to bottom; the first match wins.
var rules = []rule{
	{EmotionStressed, (*EmotionClassifier).matchStressed},
	{EmotionActive, (*EmotionClassifier).matchActive},
	{EmotionResting, (*EmotionClassifier).matchResting},
	{EmotionFocused, (*EmotionClassifier).matchFocused},
	{EmotionCalm, (*EmotionClassifier).matchCalm},
	{EmotionAnxious, (*EmotionClassifier).matchAnxious},
	{EmotionDistracted, (*EmotionClassifier).matchDistracted},
}

// Classify returns the label for f.
func (c *EmotionClassifier) Classify(f FeatureVector) DetectedEmotion {
	if f.SampleCount < c.windowSize {
		return unknownEmotion()
	}
	f = sanitizeFeatures(f)

	for _, r := range rules {
		score, factors, ok := r.match(c, f)
		if !ok {
			continue
		}
		return DetectedEmotion{
			Emotion:    r.emotion,
			Confidence: c.confidence(score),
			Factors:    factors,
		}
	}
	return unknownEmotion()
}

func unknownEmotion() DetectedEmotion {
	return DetectedEmotion{Emotion: EmotionUnknown, Confidence: 0, Factors: Factors{}}
}

// confidence lifts a [0,1] score above MinConfidence so a matched rule
// never reports zero.
func (c *EmotionClassifier) confidence(score float64) float64 {
	floor := clampUnit(c.t.MinConfidence, 0.1)
	if floor == 0 {
		floor = 0.01
	}
	return clampUnit(floor+(1-floor)*clampUnit(score, 0), floor)
}

func (c *EmotionClassifier) matchStressed(f FeatureVector) (float64, Factors, bool) {
	elev := f.MagnitudeMean - GravityBaseline
	if f.MagnitudeStdDev < c.t.ActiveStdDev || f.ShortTermDelta < c.t.StressDelta || elev >= c.t.ActiveMeanElevation {
		return 0, nil, false
	}
	score := mean3(
		above(f.MagnitudeStdDev, c.t.ActiveStdDev),
		above(f.ShortTermDelta, c.t.StressDelta),
		below(elev, c.t.ActiveMeanElevation),
	)
	return score, Factors{
		{FactorMagnitudeStdDev, f.MagnitudeStdDev},
		{FactorShortTermDelta, f.ShortTermDelta},
		{FactorMagnitudeMean, f.MagnitudeMean},
		{FactorGravityDeviation, elev},
	}, true
}

func (c *EmotionClassifier) matchActive(f FeatureVector) (float64, Factors, bool) {
	elev := f.MagnitudeMean - GravityBaseline
	if f.MagnitudeStdDev < c.t.ActiveStdDev || f.ShortTermDelta < c.t.ActiveDelta || elev < c.t.ActiveMeanElevation {
		return 0, nil, false
	}
	score := mean3(
		above(f.MagnitudeStdDev, c.t.ActiveStdDev),
		above(f.ShortTermDelta, c.t.ActiveDelta),
		above(elev, c.t.ActiveMeanElevation),
	)
	return score, Factors{
		{FactorMagnitudeStdDev, f.MagnitudeStdDev},
		{FactorShortTermDelta, f.ShortTermDelta},
		{FactorMagnitudeMean, f.MagnitudeMean},
		{FactorGravityDeviation, elev},
	}, true
}

func (c *EmotionClassifier) atRest(f FeatureVector) bool {
	return f.MagnitudeStdDev <= c.t.RestStdDev &&
		math.Abs(f.MagnitudeMean-GravityBaseline) <= c.t.CalmMeanTolerance
}

func (c *EmotionClassifier) matchResting(f FeatureVector) (float64, Factors, bool) {
	if !c.atRest(f) || f.StillRun < c.t.RestingRun {
		return 0, nil, false
	}
	run := 1.0
	if c.t.RestingRun > 0 {
		run = math.Min(1, float64(f.StillRun)/float64(2*c.t.RestingRun))
	}
	score := (below(f.MagnitudeStdDev, c.t.RestStdDev) + run) / 2
	return score, Factors{
		{FactorMagnitudeStdDev, f.MagnitudeStdDev},
		{FactorStillRun, float64(f.StillRun)},
		{FactorGravityDeviation, f.MagnitudeMean - GravityBaseline},
	}, true
}

func (c *EmotionClassifier) matchFocused(f FeatureVector) (float64, Factors, bool) {
	if !c.atRest(f) || f.ActivityLevel < c.t.FocusActivity {
		return 0, nil, false
	}
	score := (below(f.MagnitudeStdDev, c.t.RestStdDev) + above(f.ActivityLevel, c.t.FocusActivity)) / 2
	return score, Factors{
		{FactorMagnitudeStdDev, f.MagnitudeStdDev},
		{FactorActivityLevel, f.ActivityLevel},
		{FactorStillRun, float64(f.StillRun)},
	}, true
}

func (c *EmotionClassifier) matchCalm(f FeatureVector) (float64, Factors, bool) {
	dev := math.Abs(f.MagnitudeMean - GravityBaseline)
	if f.MagnitudeStdDev > c.t.CalmStdDev || dev > c.t.CalmMeanTolerance {
		return 0, nil, false
	}
	score := math.Min(below(f.MagnitudeStdDev, c.t.CalmStdDev), below(dev, c.t.CalmMeanTolerance))
	return score, Factors{
		{FactorMagnitudeStdDev, f.MagnitudeStdDev},
		{FactorGravityDeviation, f.MagnitudeMean - GravityBaseline},
	}, true
}

func (c *EmotionClassifier) matchAnxious(f FeatureVector) (float64, Factors, bool) {
	if f.MagnitudeStdDev <= c.t.CalmStdDev || f.MagnitudeStdDev > c.t.AnxiousStdDev ||
		f.ShortTermDelta > c.t.AnxiousDelta || f.ZeroCrossingRate < c.t.AnxiousRhythm {
		return 0, nil, false
	}
	score := (above(f.MagnitudeStdDev, c.t.CalmStdDev) + aboveRate(f.ZeroCrossingRate, c.t.AnxiousRhythm)) / 2
	return score, Factors{
		{FactorMagnitudeStdDev, f.MagnitudeStdDev},
		{FactorShortTermDelta, f.ShortTermDelta},
		{FactorZeroCrossingRate, f.ZeroCrossingRate},
	}, true
}

func (c *EmotionClassifier) matchDistracted(f FeatureVector) (float64, Factors, bool) {
	if f.MagnitudeStdDev <= c.t.CalmStdDev || f.MagnitudeStdDev >= c.t.ActiveStdDev ||
		f.ZeroCrossingRate < c.t.DistractedRhythm {
		return 0, nil, false
	}
	score := (above(f.MagnitudeStdDev, c.t.CalmStdDev) + aboveRate(f.ZeroCrossingRate, c.t.DistractedRhythm)) / 2
	return score, Factors{
		{FactorMagnitudeStdDev, f.MagnitudeStdDev},
		{FactorZeroCrossingRate, f.ZeroCrossingRate},
		{FactorShortTermDelta, f.ShortTermDelta},
	}, true
}

// above scores how far v sits past a floor threshold, normalized by it.
func above(v, threshold float64) float64 {
	if threshold <= 0 {
		return 1
	}
	return clampUnit((v-threshold)/threshold, 0)
}

// below scores how far v sits under a ceiling threshold.
func below(v, threshold float64) float64 {
	if threshold <= 0 {
		return 1
	}
	return clampUnit((threshold-v)/threshold, 0)
}

// aboveRate is above for values bounded by 1, such as rates.
func aboveRate(v, threshold float64) float64 {
	if threshold >= 1 {
		return 1
	}
	return clampUnit((v-threshold)/(1-threshold), 0)
}

func mean3(a, b, c float64) float64 {
	return (a + b + c) / 3
}

func sanitizeFeatures(f FeatureVector) FeatureVector {
	f.MagnitudeMean = finiteOrZero(f.MagnitudeMean)
	f.MagnitudeStdDev = math.Abs(finiteOrZero(f.MagnitudeStdDev))
	f.ShortTermDelta = math.Abs(finiteOrZero(f.ShortTermDelta))
	f.ZeroCrossingRate = clampUnit(f.ZeroCrossingRate, 0)
	f.ActivityLevel = finiteOrZero(f.ActivityLevel)
	return f
}
