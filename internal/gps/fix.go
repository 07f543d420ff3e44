package gps

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"

	nmea "github.com/adrianmo/go-nmea"
)

// Fix represents a single combined GPS fix suitable for JSON and MQTT.
type Fix struct {
	Time       string  `json:"time"`        // e.g. "12:34:56"
	Date       string  `json:"date"`        // e.g. "2025-12-06"
	Latitude   float64 `json:"lat"`         // decimal degrees
	Longitude  float64 `json:"lon"`         // decimal degrees
	SpeedKnots float64 `json:"speed_knots"` // speed over ground
	CourseDeg  float64 `json:"course_deg"`  // course over ground
	Validity   string  `json:"validity"`    // "A" (valid) / "V" (void)
	Satellites int64   `json:"satellites"`  // from GGA
	AltitudeM  float64 `json:"altitude_m"`  // from GGA
}

// Valid reports whether the receiver flagged the last RMC as active.
func (f Fix) Valid() bool {
	return f.Validity == nmea.ValidRMC
}

// Tracker folds NMEA sentences into the latest Fix. RMC completes a fix;
// GGA only enriches it with satellite count and altitude.
type Tracker struct {
	mu      sync.RWMutex
	current Fix
	haveRMC bool
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Update parses one NMEA line. It returns the updated fix and true when
// the line was an RMC sentence, which is when a fix should be published.
// Lines that are blank or not NMEA are skipped without error.
func (t *Tracker) Update(line string) (Fix, bool, error) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "$") {
		return Fix{}, false, nil
	}

	sentence, err := nmea.Parse(line)
	if err != nil {
		return Fix{}, false, fmt.Errorf("nmea parse: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	switch m := sentence.(type) {
	case nmea.RMC:
		t.current.Time = fmt.Sprintf("%02d:%02d:%02d", m.Time.Hour, m.Time.Minute, m.Time.Second)
		t.current.Date = fmt.Sprintf("20%02d-%02d-%02d", m.Date.YY, m.Date.MM, m.Date.DD)
		t.current.Latitude = m.Latitude
		t.current.Longitude = m.Longitude
		t.current.SpeedKnots = m.Speed
		t.current.CourseDeg = m.Course
		t.current.Validity = m.Validity
		t.haveRMC = true
		return t.current, true, nil
	case nmea.GGA:
		t.current.Satellites = m.NumSatellites
		t.current.AltitudeM = m.Altitude
	}
	return t.current, false, nil
}

// Latest returns the most recent fix and whether any RMC was seen.
func (t *Tracker) Latest() (Fix, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.current, t.haveRMC
}

// Store replaces the latest fix, e.g. with one received over MQTT.
func (t *Tracker) Store(f Fix) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current = f
	t.haveRMC = true
}

// Scan feeds every line of r into the tracker and calls onFix for each
// completed fix. Parse errors on noisy lines are passed to onErr when
// it is non-nil and otherwise ignored. Scan returns the reader's error.
func (t *Tracker) Scan(r io.Reader, onFix func(Fix), onErr func(error)) error {
	reader := bufio.NewReader(r)
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			fix, ok, perr := t.Update(line)
			switch {
			case perr != nil:
				if onErr != nil {
					onErr(perr)
				}
			case ok:
				onFix(fix)
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("GPS read: %w", err)
		}
	}
}
