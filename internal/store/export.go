package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"
)

var exportHeader = []string{
	"ts", "emotion", "confidence", "arousal", "valence", "stress", "focus",
}

// ExportCSV writes one row per stored result of the session, joining
// each emotion with the state recorded alongside it.
func (s *Store) ExportCSV(w io.Writer, sessionID string) error {
	emotions, err := s.Emotions(sessionID)
	if err != nil {
		return err
	}
	states, err := s.States(sessionID)
	if err != nil {
		return err
	}
	if len(emotions) != len(states) {
		return fmt.Errorf("session %s is inconsistent: %d emotions, %d states", sessionID, len(emotions), len(states))
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for i, e := range emotions {
		st := states[i]
		if err := cw.Write([]string{
			e.Timestamp.Format(time.RFC3339Nano),
			string(e.Emotion),
			formatFloat(e.Confidence),
			formatFloat(st.Arousal),
			formatFloat(st.Valence),
			formatFloat(st.Stress),
			formatFloat(st.Focus),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
