// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package motion

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/relabs-tech/affect_computer/internal/affect"
)

const g = affect.GravityBaseline

// profile maps a sample index to a magnitude in m/s².
type profile func(i int) float64

// swing alternates between g+lo and g+hi every sample.
func swing(lo, hi float64) profile {
	return func(i int) float64 {
		if i%2 == 0 {
			return g + lo
		}
		return g + hi
	}
}

var profiles = map[string]profile{
	"rest":   func(int) float64 { return g },
	"walk":   swing(-0.5, 4.5),
	"run":    swing(-1, 9),
	"shake":  swing(-8, 8),
	"tremor": swing(-0.5, 0.5),
	"fidget": swing(-1.2, 1.2),
	// 30 samples of typing followed by a long still stretch
	"desk": func(i int) float64 {
		if i%200 < 30 {
			return swing(0.5, 6.5)(i)
		}
		return g
	},
}

// Profiles lists the available mock motion profile names.
func Profiles() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Device tilt used to spread the magnitude over all three axes.
var tilt = [3]float64{0.1, 0.05, math.Sqrt(1 - 0.1*0.1 - 0.05*0.05)}

type mockSource struct {
	profile  profile
	start    time.Time
	interval time.Duration
	i        int
}

// NewMockSource creates a deterministic source that replays the named
// motion profile, timestamping sample i at start + i*interval.
func NewMockSource(name string, start time.Time, interval time.Duration) (Source, error) {
	p, ok := profiles[name]
	if !ok {
		return nil, fmt.Errorf("unknown motion profile %q (want one of %v)", name, Profiles())
	}
	if interval <= 0 {
		return nil, fmt.Errorf("mock interval must be positive, got %v", interval)
	}
	return &mockSource{profile: p, start: start, interval: interval}, nil
}

func (m *mockSource) Next() (affect.AccelerationSample, error) {
	mag := m.profile(m.i)
	s := affect.AccelerationSample{
		Timestamp: m.start.Add(time.Duration(m.i) * m.interval),
		X:         mag * tilt[0],
		Y:         mag * tilt[1],
		Z:         mag * tilt[2],
	}
	m.i++
	return s, nil
}
