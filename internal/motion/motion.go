package motion

import (
	"errors"

	"github.com/relabs-tech/affect_computer/internal/affect"
)

// ErrExhausted is returned by finite sources once every sample was read.
var ErrExhausted = errors.New("motion source exhausted")

// Source is anything that can provide acceleration samples over time:
// the mock profiles, the MPU9250 and CSV replays.
type Source interface {
	Next() (affect.AccelerationSample, error)
}

// Drain reads up to limit samples (all of them when limit <= 0) from src
// until it reports ErrExhausted.
func Drain(src Source, limit int) ([]affect.AccelerationSample, error) {
	var out []affect.AccelerationSample
	for limit <= 0 || len(out) < limit {
		s, err := src.Next()
		if errors.Is(err, ErrExhausted) {
			break
		}
		if err != nil {
			return out, err
		}
		out = append(out, s)
	}
	return out, nil
}
