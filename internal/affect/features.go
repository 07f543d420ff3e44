// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package affect

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// ExtractorConfig holds the tuning knobs of FeatureExtractor.
type ExtractorConfig struct {
	WindowSize          int     // magnitudes kept in the sliding window
	StillEpsilon        float64 // shortTermDelta at or below this counts as still (m/s²)
	ActivityDecay       float64 // per-sample decay of the activity peak, in (0,1)
	ZeroCrossingEpsilon float64 // differences smaller than this are ignored for zero crossings
}

// DefaultExtractorConfig returns a 30-sample window, about one second
// at typical phone sensor rates.
func DefaultExtractorConfig() ExtractorConfig {
	return ExtractorConfig{
		WindowSize:          30,
		StillEpsilon:        0.05,
		ActivityDecay:       0.98,
		ZeroCrossingEpsilon: 1e-3,
	}
}

func (c ExtractorConfig) normalized() ExtractorConfig {
	d := DefaultExtractorConfig()
	if c.WindowSize < 2 {
		c.WindowSize = d.WindowSize
	}
	if c.StillEpsilon <= 0 {
		c.StillEpsilon = d.StillEpsilon
	}
	if c.ActivityDecay <= 0 || c.ActivityDecay >= 1 {
		c.ActivityDecay = d.ActivityDecay
	}
	if c.ZeroCrossingEpsilon <= 0 {
		c.ZeroCrossingEpsilon = d.ZeroCrossingEpsilon
	}
	return c
}

// FeatureExtractor keeps a sliding window of acceleration magnitudes and
// derives a FeatureVector on every sample. It is not safe for concurrent
// use; Pipeline serializes access.
type FeatureExtractor struct {
	cfg      ExtractorConfig
	window   *ring[float64]
	stillRun int
	activity float64
}

// NewFeatureExtractor creates an extractor with an empty window.
func NewFeatureExtractor(cfg ExtractorConfig) *FeatureExtractor {
	cfg = cfg.normalized()
	return &FeatureExtractor{
		cfg:    cfg,
		window: newRing[float64](cfg.WindowSize),
	}
}

// WindowSize returns the configured window capacity.
func (fe *FeatureExtractor) WindowSize() int {
	return fe.cfg.WindowSize
}

// Observe pushes the sample's magnitude into the window and returns the
// updated features. Non-finite components are treated as zero and
// oversized magnitudes are capped, so every returned field is finite.
func (fe *FeatureExtractor) Observe(sample AccelerationSample) FeatureVector {
	mag := sample.Magnitude()

	var delta float64
	if prev, ok := fe.window.newest(); ok {
		delta = finiteOrZero(math.Abs(mag - prev))
	}
	fe.window.push(mag)

	if delta <= fe.cfg.StillEpsilon {
		fe.stillRun++
	} else {
		fe.stillRun = 0
	}

	vals := fe.window.items()
	mean, variance := stat.PopMeanVariance(vals, nil)
	mean = finiteOrZero(mean)
	variance = finiteOrZero(variance)
	if variance < 0 {
		variance = 0
	}
	std := math.Sqrt(variance)

	fe.activity = finiteOrZero(math.Max(std, fe.activity*fe.cfg.ActivityDecay))

	return FeatureVector{
		Timestamp:        sample.Timestamp,
		MagnitudeMean:    mean,
		MagnitudeStdDev:  std,
		ShortTermDelta:   delta,
		SampleCount:      fe.window.len(),
		ZeroCrossingRate: zeroCrossingRate(vals, fe.cfg.ZeroCrossingEpsilon),
		StillRun:         fe.stillRun,
		ActivityLevel:    fe.activity,
	}
}

// Reset drops the window and all derived temporal state.
func (fe *FeatureExtractor) Reset() {
	fe.window.reset()
	fe.stillRun = 0
	fe.activity = 0
}

// zeroCrossingRate is the fraction of sign flips between successive
// non-negligible first differences of vals.
func zeroCrossingRate(vals []float64, eps float64) float64 {
	var (
		prevSign int
		flips    int
		pairs    int
	)
	for i := 1; i < len(vals); i++ {
		d := vals[i] - vals[i-1]
		if math.Abs(d) < eps {
			continue
		}
		sign := 1
		if d < 0 {
			sign = -1
		}
		if prevSign != 0 {
			pairs++
			if sign != prevSign {
				flips++
			}
		}
		prevSign = sign
	}
	if pairs == 0 {
		return 0
	}
	return float64(flips) / float64(pairs)
}
