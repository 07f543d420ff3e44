// Package affect infers a categorical emotion label and a continuous
// affective state from a stream of tri-axial acceleration samples.
//
// Stages, leaves first: FeatureExtractor keeps a sliding window of
// magnitudes, EmotionClassifier applies an ordered rule list to the
// features, Aggregate blends recent labels into arousal, valence, stress
// and focus, and HistoryTracker keeps bounded histories plus
// distribution counts for display.
//
// The package performs no I/O. Every function is total: non-finite input
// is sanitized at the boundary and insufficient data yields the unknown
// label or the neutral state. Pipeline wires the stages together behind
// a single mutex.
package affect
