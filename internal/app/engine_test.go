package app

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/affect_computer/internal/affect"
	"github.com/relabs-tech/affect_computer/internal/config"
)

func TestEngine_HandleSamplePublishesBothTopics(t *testing.T) {
	pub := &fakePublisher{}
	e := newTestEngine(pub)
	cfg := config.Default()

	var last affect.Result
	for i := 0; i < 30; i++ {
		last = e.HandleSample(stillSample(i))
	}
	require.Equal(t, affect.EmotionCalm, last.Emotion.Emotion)

	emotions := pub.onTopic(cfg.TopicEmotion)
	states := pub.onTopic(cfg.TopicAffect)
	require.Len(t, emotions, 30)
	require.Len(t, states, 30)

	var em EmotionMessage
	require.NoError(t, json.Unmarshal(emotions[29], &em))
	assert.Equal(t, last.Timestamp, em.Timestamp.UTC())
	assert.Equal(t, affect.EmotionCalm, em.Emotion)
	assert.Equal(t, last.Emotion.Confidence, em.Confidence)
	assert.Equal(t, last.Emotion.Factors, em.Factors)

	var am AffectMessage
	require.NoError(t, json.Unmarshal(states[0], &am))
	assert.Equal(t, affect.NeutralState(), am.AffectiveState)
}

func TestEngine_EmotionPayloadKeepsFactorOrder(t *testing.T) {
	pub := &fakePublisher{}
	e := newTestEngine(pub)
	for i := 0; i < 30; i++ {
		e.HandleSample(stillSample(i))
	}

	msgs := pub.onTopic(config.Default().TopicEmotion)
	raw := string(msgs[len(msgs)-1])
	assert.Contains(t, raw, `"emotion":"calm"`)
	assert.Regexp(t, `"factors":\{"magnitudeStdDev":[^,]+,"gravityDeviation":`, raw)
}

func TestEngine_RecordsToSink(t *testing.T) {
	sink := &fakeSink{}
	e := newTestEngine(nil)
	e.Record(sink, "session-1")

	r := e.HandleSample(stillSample(0))

	require.Len(t, sink.saved, 1)
	assert.Equal(t, "session-1", sink.saved[0].session)
	assert.Equal(t, r, sink.saved[0].result)
}

func TestEngine_PublishFailureStillProcesses(t *testing.T) {
	e := newTestEngine(&fakePublisher{fail: true})
	for i := 0; i < 40; i++ {
		e.HandleSample(stillSample(i))
	}
	assert.Equal(t, 40, e.Pipeline.Snapshot().Total)
}

func TestEngine_HandleAccelPayload(t *testing.T) {
	e := newTestEngine(&fakePublisher{})

	r, err := e.HandleAccelPayload([]byte(`{"ts":"2026-06-01T08:00:00Z","x":0,"y":0,"z":9.80665}`))
	require.NoError(t, err)
	assert.Equal(t, epoch, r.Timestamp.UTC())
	assert.Equal(t, 1, r.Features.SampleCount)
	assert.InDelta(t, affect.GravityBaseline, r.Features.MagnitudeMean, 1e-9)

	r, err = e.HandleAccelPayload([]byte(`{"x":1,"y":2,"z":3}`))
	require.NoError(t, err)
	assert.False(t, r.Timestamp.IsZero())

	_, err = e.HandleAccelPayload([]byte(`not json`))
	assert.ErrorContains(t, err, "accel payload")
}

func TestEngine_HandleGPSPayload(t *testing.T) {
	e := newTestEngine(nil)

	require.NoError(t, e.HandleGPSPayload([]byte(`{"lat":52.1,"lon":4.3,"validity":"A"}`)))
	fix, ok := e.GPS.Latest()
	require.True(t, ok)
	assert.Equal(t, 52.1, fix.Latitude)
	assert.True(t, fix.Valid())

	assert.Error(t, e.HandleGPSPayload([]byte(`{`)))
}
