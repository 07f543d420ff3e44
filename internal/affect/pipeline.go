// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package affect

import (
	"sync"
	"time"
)

// Config bundles the settings of every pipeline stage.
type Config struct {
	Extractor         ExtractorConfig
	Thresholds        Thresholds
	History           HistoryConfig
	AggregationWindow int // trailing classifications blended into each state
}

// DefaultConfig returns the stock pipeline settings.
func DefaultConfig() Config {
	return Config{
		Extractor:         DefaultExtractorConfig(),
		Thresholds:        DefaultThresholds(),
		History:           DefaultHistoryConfig(),
		AggregationWindow: 10,
	}
}

// Result is everything produced for a single sample.
type Result struct {
	Timestamp time.Time       `json:"ts"`
	Features  FeatureVector   `json:"features"`
	Emotion   DetectedEmotion `json:"emotion"`
	State     AffectiveState  `json:"state"`
}

// Snapshot is a consistent view of the tracker for display and export.
type Snapshot struct {
	Emotions     []DetectedEmotion   `json:"emotions"`
	States       []AffectiveState    `json:"states"`
	Distribution map[EmotionType]int `json:"distribution"`
	Average      AffectiveState      `json:"average"`
	Dominant     EmotionType         `json:"dominant"`
	Total        int                 `json:"total"`
}

// Pipeline owns one instance of every stage. A single mutex guards all
// mutable state, so Process may run on a sensor goroutine while readers
// poll from another.
type Pipeline struct {
	mu         sync.Mutex
	cfg        Config
	extractor  *FeatureExtractor
	classifier *EmotionClassifier
	history    *HistoryTracker
	last       Result
	haveLast   bool
}

// NewPipeline builds a pipeline from cfg.
func NewPipeline(cfg Config) *Pipeline {
	if cfg.AggregationWindow < 1 {
		cfg.AggregationWindow = DefaultConfig().AggregationWindow
	}
	ex := NewFeatureExtractor(cfg.Extractor)
	cfg.Extractor = ex.cfg
	return &Pipeline{
		cfg:        cfg,
		extractor:  ex,
		classifier: NewEmotionClassifier(ex.WindowSize(), cfg.Thresholds),
		history:    NewHistoryTracker(cfg.History),
	}
}

// Config returns the effective configuration.
func (p *Pipeline) Config() Config {
	return p.cfg
}

// Process runs one sample through extraction, classification and
// aggregation, recording both outputs in the history.
func (p *Pipeline) Process(sample AccelerationSample) Result {
	p.mu.Lock()
	defer p.mu.Unlock()

	features := p.extractor.Observe(sample)
	emotion := p.classifier.Classify(features)
	p.history.RecordEmotion(emotion)

	state := Aggregate(p.history.RecentEmotions(p.cfg.AggregationWindow))
	p.history.RecordState(state)

	p.last = Result{
		Timestamp: sample.Timestamp,
		Features:  features,
		Emotion:   cloneEmotion(emotion),
		State:     state,
	}
	p.haveLast = true
	return p.last
}

// Current returns the latest result, if any sample has been processed.
func (p *Pipeline) Current() (Result, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	r := p.last
	r.Emotion = cloneEmotion(r.Emotion)
	return r, p.haveLast
}

// EmotionHistory returns the buffered emotions, oldest first.
func (p *Pipeline) EmotionHistory() []DetectedEmotion {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.history.EmotionHistory()
}

// RecentEmotions returns up to n of the newest emotions, oldest first.
func (p *Pipeline) RecentEmotions(n int) []DetectedEmotion {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.history.RecentEmotions(n)
}

// StateHistory returns the buffered states, oldest first.
func (p *Pipeline) StateHistory() []AffectiveState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.history.StateHistory()
}

// RecentStates returns up to n of the newest states, oldest first.
func (p *Pipeline) RecentStates(n int) []AffectiveState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.history.RecentStates(n)
}

// Distribution returns the per-label counts since the last reset.
func (p *Pipeline) Distribution() map[EmotionType]int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.history.Distribution()
}

// AverageArousal is the mean arousal over the state history.
func (p *Pipeline) AverageArousal() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.history.AverageArousal()
}

// AverageState is the mean of every dimension over the state history.
func (p *Pipeline) AverageState() AffectiveState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.history.AverageState()
}

// DominantEmotion is the most frequent known label since the last reset.
func (p *Pipeline) DominantEmotion() EmotionType {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.history.DominantEmotion()
}

// Snapshot captures history, distribution and averages under one lock.
func (p *Pipeline) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Snapshot{
		Emotions:     p.history.EmotionHistory(),
		States:       p.history.StateHistory(),
		Distribution: p.history.Distribution(),
		Average:      p.history.AverageState(),
		Dominant:     p.history.DominantEmotion(),
		Total:        p.history.TotalRecorded(),
	}
}

// Reset clears the sliding window and all history.
func (p *Pipeline) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.extractor.Reset()
	p.history.Clear()
	p.last = Result{}
	p.haveLast = false
}
