package app

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/relabs-tech/affect_computer/internal/affect"
	"github.com/relabs-tech/affect_computer/internal/config"
)

var epoch = time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)

type published struct {
	topic   string
	payload []byte
}

type fakePublisher struct {
	mu   sync.Mutex
	msgs []published
	fail bool
}

func (f *fakePublisher) PublishJSON(topic string, v any) error {
	if f.fail {
		return errors.New("broker unavailable")
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, published{topic: topic, payload: data})
	return nil
}

func (f *fakePublisher) onTopic(topic string) [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out [][]byte
	for _, m := range f.msgs {
		if m.topic == topic {
			out = append(out, m.payload)
		}
	}
	return out
}

type savedResult struct {
	session string
	result  affect.Result
}

type fakeSink struct {
	saved []savedResult
}

func (f *fakeSink) SaveResult(sessionID string, r affect.Result) error {
	f.saved = append(f.saved, savedResult{sessionID, r})
	return nil
}

func newTestEngine(pub Publisher) *Engine {
	return NewEngine(config.Default(), affect.NewPipeline(affect.DefaultConfig()), pub)
}

func stillSample(i int) affect.AccelerationSample {
	return affect.AccelerationSample{
		Timestamp: epoch.Add(time.Duration(i) * 20 * time.Millisecond),
		Z:         affect.GravityBaseline,
	}
}
