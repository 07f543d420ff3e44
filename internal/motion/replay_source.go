package motion

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/relabs-tech/affect_computer/internal/affect"
)

type replaySource struct {
	samples []affect.AccelerationSample
	loop    bool
	pos     int
}

// LoadReplay reads a ts,x,y,z CSV recording from path.
func LoadReplay(path string, loop bool) (Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open replay file: %w", err)
	}
	defer f.Close()
	return NewReplaySource(f, loop)
}

// NewReplaySource parses a CSV recording with columns ts,x,y,z. The
// header row is optional. ts is RFC3339 or empty; empty timestamps stay
// zero. When loop is set the recording restarts instead of returning
// ErrExhausted.
func NewReplaySource(r io.Reader, loop bool) (Source, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 4
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	var samples []affect.AccelerationSample
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("replay: %w", err)
		}
		if line == 1 && strings.EqualFold(rec[0], "ts") {
			continue
		}
		s, err := parseRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("replay line %d: %w", line, err)
		}
		samples = append(samples, s)
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("replay: recording holds no samples")
	}
	return &replaySource{samples: samples, loop: loop}, nil
}

func parseRecord(rec []string) (affect.AccelerationSample, error) {
	var s affect.AccelerationSample
	if rec[0] != "" {
		ts, err := time.Parse(time.RFC3339Nano, rec[0])
		if err != nil {
			return s, fmt.Errorf("invalid ts %q: %w", rec[0], err)
		}
		s.Timestamp = ts
	}
	axes := [3]*float64{&s.X, &s.Y, &s.Z}
	for i, dst := range axes {
		v, err := strconv.ParseFloat(rec[i+1], 64)
		if err != nil {
			return s, fmt.Errorf("invalid axis value %q: %w", rec[i+1], err)
		}
		*dst = v
	}
	return s, nil
}

func (r *replaySource) Next() (affect.AccelerationSample, error) {
	if r.pos >= len(r.samples) {
		if !r.loop {
			return affect.AccelerationSample{}, ErrExhausted
		}
		r.pos = 0
	}
	s := r.samples[r.pos]
	r.pos++
	return s, nil
}

// WriteCSV records samples in the format NewReplaySource reads.
func WriteCSV(w io.Writer, samples []affect.AccelerationSample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"ts", "x", "y", "z"}); err != nil {
		return err
	}
	for _, s := range samples {
		ts := ""
		if !s.Timestamp.IsZero() {
			ts = s.Timestamp.Format(time.RFC3339Nano)
		}
		rec := []string{
			ts,
			strconv.FormatFloat(s.X, 'g', -1, 64),
			strconv.FormatFloat(s.Y, 'g', -1, 64),
			strconv.FormatFloat(s.Z, 'g', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
