package app

import (
	"fmt"
	"io"

	"github.com/relabs-tech/affect_computer/internal/affect"
	"github.com/relabs-tech/affect_computer/internal/motion"
)

// Replay runs every sample of src through a fresh pipeline. Emotion
// changes are printed to out, and each result is saved to sink when it
// is non-nil. It returns the final tracker snapshot.
func Replay(src motion.Source, cfg affect.Config, sink ResultSink, sessionID string, out io.Writer) (affect.Snapshot, error) {
	samples, err := motion.Drain(src, 0)
	if err != nil {
		return affect.Snapshot{}, err
	}

	p := affect.NewPipeline(cfg)
	last := affect.EmotionType("")
	for i, s := range samples {
		r := p.Process(s)
		if sink != nil {
			if err := sink.SaveResult(sessionID, r); err != nil {
				return affect.Snapshot{}, fmt.Errorf("sample %d: %w", i, err)
			}
		}
		if out != nil && r.Emotion.Emotion != last {
			fmt.Fprintf(out, "%6d  %s\n", i, formatEmotion(r.Emotion))
			last = r.Emotion.Emotion
		}
	}
	return p.Snapshot(), nil
}

// WriteSummary prints the distribution and averages of a snapshot.
func WriteSummary(out io.Writer, snap affect.Snapshot) {
	fmt.Fprintf(out, "samples: %d  dominant: %s\n", snap.Total, snap.Dominant)
	for _, e := range affect.AllEmotions() {
		if n := snap.Distribution[e]; n > 0 {
			fmt.Fprintf(out, "  %-10s %6d  %5.1f%%\n", e, n, 100*float64(n)/float64(snap.Total))
		}
	}
	fmt.Fprintln(out, formatAffect(snap.Average))
}
