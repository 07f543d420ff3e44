package affect

// contributions places each label at a fixed point of the affect space.
var contributions = map[EmotionType]AffectiveState{
	EmotionCalm:       {Arousal: 0.25, Valence: 0.75, Stress: 0.20, Focus: 0.60},
	EmotionResting:    {Arousal: 0.10, Valence: 0.60, Stress: 0.10, Focus: 0.40},
	EmotionActive:     {Arousal: 0.80, Valence: 0.70, Stress: 0.35, Focus: 0.50},
	EmotionStressed:   {Arousal: 0.85, Valence: 0.20, Stress: 0.90, Focus: 0.30},
	EmotionAnxious:    {Arousal: 0.65, Valence: 0.30, Stress: 0.75, Focus: 0.35},
	EmotionFocused:    {Arousal: 0.45, Valence: 0.60, Stress: 0.30, Focus: 0.90},
	EmotionDistracted: {Arousal: 0.60, Valence: 0.40, Stress: 0.50, Focus: 0.15},
	EmotionUnknown:    {Arousal: 0.50, Valence: 0.50, Stress: 0.50, Focus: 0.50},
}

// Contribution returns the canonical affect vector of e.
func Contribution(e EmotionType) AffectiveState {
	if c, ok := contributions[e]; ok {
		return c
	}
	return NeutralState()
}

// Aggregate blends recent classifications, oldest first, into a single
// AffectiveState by confidence-weighted mean of their contributions.
// An empty list or all-zero confidences yield NeutralState.
func Aggregate(recent []DetectedEmotion) AffectiveState {
	var (
		sum    AffectiveState
		weight float64
	)
	for _, d := range recent {
		w := clampUnit(d.Confidence, 0)
		if w == 0 {
			continue
		}
		c := Contribution(d.Emotion)
		sum.Arousal += w * c.Arousal
		sum.Valence += w * c.Valence
		sum.Stress += w * c.Stress
		sum.Focus += w * c.Focus
		weight += w
	}
	if weight == 0 {
		return NeutralState()
	}
	return AffectiveState{
		Arousal: sum.Arousal / weight,
		Valence: sum.Valence / weight,
		Stress:  sum.Stress / weight,
		Focus:   sum.Focus / weight,
	}.sanitized()
}
