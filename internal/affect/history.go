// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package affect

// HistoryConfig sets the capacity of each history buffer.
type HistoryConfig struct {
	EmotionCapacity int
	StateCapacity   int
}

// DefaultHistoryConfig keeps a few seconds of events at sensor rate.
func DefaultHistoryConfig() HistoryConfig {
	return HistoryConfig{EmotionCapacity: 200, StateCapacity: 200}
}

// HistoryTracker stores bounded emotion and state histories plus
// distribution counts that survive eviction. It is not safe for
// concurrent use; Pipeline serializes access.
type HistoryTracker struct {
	emotions     *ring[DetectedEmotion]
	states       *ring[AffectiveState]
	distribution map[EmotionType]int
	total        int
}

// NewHistoryTracker creates an empty tracker.
func NewHistoryTracker(cfg HistoryConfig) *HistoryTracker {
	d := DefaultHistoryConfig()
	if cfg.EmotionCapacity < 1 {
		cfg.EmotionCapacity = d.EmotionCapacity
	}
	if cfg.StateCapacity < 1 {
		cfg.StateCapacity = d.StateCapacity
	}
	return &HistoryTracker{
		emotions:     newRing[DetectedEmotion](cfg.EmotionCapacity),
		states:       newRing[AffectiveState](cfg.StateCapacity),
		distribution: make(map[EmotionType]int),
	}
}

// RecordEmotion appends e, evicting the oldest event when full, and
// bumps its distribution count.
func (h *HistoryTracker) RecordEmotion(e DetectedEmotion) {
	h.emotions.push(cloneEmotion(e))
	h.distribution[e.Emotion]++
	h.total++
}

// RecordState appends s, evicting the oldest snapshot when full.
func (h *HistoryTracker) RecordState(s AffectiveState) {
	h.states.push(s.sanitized())
}

// EmotionHistory returns the buffered events, oldest first.
func (h *HistoryTracker) EmotionHistory() []DetectedEmotion {
	return cloneEmotions(h.emotions.items())
}

// RecentEmotions returns up to n of the newest events, oldest first.
func (h *HistoryTracker) RecentEmotions(n int) []DetectedEmotion {
	return cloneEmotions(h.emotions.last(n))
}

// StateHistory returns the buffered snapshots, oldest first.
func (h *HistoryTracker) StateHistory() []AffectiveState {
	return h.states.items()
}

// RecentStates returns up to n of the newest snapshots, oldest first.
func (h *HistoryTracker) RecentStates(n int) []AffectiveState {
	return h.states.last(n)
}

// Distribution returns a copy of the per-label counts.
func (h *HistoryTracker) Distribution() map[EmotionType]int {
	out := make(map[EmotionType]int, len(h.distribution))
	for k, v := range h.distribution {
		out[k] = v
	}
	return out
}

// TotalRecorded is the number of emotions recorded since the last Clear.
func (h *HistoryTracker) TotalRecorded() int {
	return h.total
}

// DominantEmotion returns the most frequently recorded label, ignoring
// unknown. Ties go to the label listed first in AllEmotions.
func (h *HistoryTracker) DominantEmotion() EmotionType {
	best, bestCount := EmotionUnknown, 0
	for _, e := range AllEmotions() {
		if e == EmotionUnknown {
			continue
		}
		if c := h.distribution[e]; c > bestCount {
			best, bestCount = e, c
		}
	}
	return best
}

// AverageArousal is the mean arousal over the state buffer, 0.5 if empty.
func (h *HistoryTracker) AverageArousal() float64 {
	return h.average(func(s AffectiveState) float64 { return s.Arousal })
}

// AverageValence is the mean valence over the state buffer, 0.5 if empty.
func (h *HistoryTracker) AverageValence() float64 {
	return h.average(func(s AffectiveState) float64 { return s.Valence })
}

// AverageStress is the mean stress over the state buffer, 0.5 if empty.
func (h *HistoryTracker) AverageStress() float64 {
	return h.average(func(s AffectiveState) float64 { return s.Stress })
}

// AverageFocus is the mean focus over the state buffer, 0.5 if empty.
func (h *HistoryTracker) AverageFocus() float64 {
	return h.average(func(s AffectiveState) float64 { return s.Focus })
}

// AverageState combines the four averages.
func (h *HistoryTracker) AverageState() AffectiveState {
	return AffectiveState{
		Arousal: h.AverageArousal(),
		Valence: h.AverageValence(),
		Stress:  h.AverageStress(),
		Focus:   h.AverageFocus(),
	}
}

func (h *HistoryTracker) average(field func(AffectiveState) float64) float64 {
	n := h.states.len()
	if n == 0 {
		return 0.5
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += field(h.states.at(i))
	}
	return clampUnit(sum/float64(n), 0.5)
}

// Clear returns the tracker to its freshly constructed state.
func (h *HistoryTracker) Clear() {
	h.emotions.reset()
	h.states.reset()
	h.distribution = make(map[EmotionType]int)
	h.total = 0
}

func cloneEmotion(e DetectedEmotion) DetectedEmotion {
	if e.Factors != nil {
		cp := make(Factors, len(e.Factors))
		copy(cp, e.Factors)
		e.Factors = cp
	}
	return e
}

func cloneEmotions(in []DetectedEmotion) []DetectedEmotion {
	for i := range in {
		in[i] = cloneEmotion(in[i])
	}
	return in
}
