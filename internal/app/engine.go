// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/relabs-tech/affect_computer/internal/affect"
	"github.com/relabs-tech/affect_computer/internal/config"
	"github.com/relabs-tech/affect_computer/internal/gps"
	"github.com/relabs-tech/affect_computer/internal/store"
)

// ResultSink persists pipeline results; *store.Store implements it.
type ResultSink interface {
	SaveResult(sessionID string, r affect.Result) error
}

// Engine turns acceleration samples into published emotions and states.
type Engine struct {
	Pipeline *affect.Pipeline
	Hub      *Hub
	GPS      *gps.Tracker

	pub          Publisher
	topicEmotion string
	topicAffect  string

	sink      ResultSink
	sessionID string
}

// NewEngine wires a pipeline to a publisher using the configured topics.
func NewEngine(cfg *config.Config, p *affect.Pipeline, pub Publisher) *Engine {
	return &Engine{
		Pipeline:     p,
		Hub:          NewHub(),
		GPS:          gps.NewTracker(),
		pub:          pub,
		topicEmotion: cfg.TopicEmotion,
		topicAffect:  cfg.TopicAffect,
	}
}

// Record stores every subsequent result under sessionID.
func (e *Engine) Record(sink ResultSink, sessionID string) {
	e.sink = sink
	e.sessionID = sessionID
}

// HandleSample runs one sample through the pipeline and fans the result
// out to MQTT, the store and websocket clients. Delivery failures are
// logged; the result is always returned.
func (e *Engine) HandleSample(s affect.AccelerationSample) affect.Result {
	r := e.Pipeline.Process(s)

	if e.pub != nil {
		if err := e.pub.PublishJSON(e.topicEmotion, EmotionMessage{Timestamp: r.Timestamp, DetectedEmotion: r.Emotion}); err != nil {
			log.Printf("engine: emotion publish error: %v", err)
		}
		if err := e.pub.PublishJSON(e.topicAffect, AffectMessage{Timestamp: r.Timestamp, AffectiveState: r.State}); err != nil {
			log.Printf("engine: affect publish error: %v", err)
		}
	}
	if e.sink != nil {
		if err := e.sink.SaveResult(e.sessionID, r); err != nil {
			log.Printf("engine: store error: %v", err)
		}
	}
	e.Hub.Broadcast(r)
	return r
}

// HandleAccelPayload decodes one TOPIC_ACCEL message and processes it.
func (e *Engine) HandleAccelPayload(payload []byte) (affect.Result, error) {
	var s affect.AccelerationSample
	if err := json.Unmarshal(payload, &s); err != nil {
		return affect.Result{}, fmt.Errorf("accel payload: %w", err)
	}
	if s.Timestamp.IsZero() {
		s.Timestamp = time.Now()
	}
	return e.HandleSample(s), nil
}

// HandleGPSPayload decodes one TOPIC_GPS message into the tracker.
func (e *Engine) HandleGPSPayload(payload []byte) error {
	var f gps.Fix
	if err := json.Unmarshal(payload, &f); err != nil {
		return fmt.Errorf("gps payload: %w", err)
	}
	e.GPS.Store(f)
	return nil
}

// RunEngine subscribes to acceleration samples, runs the affect pipeline
// and serves the web API until SIGINT or SIGTERM.
func RunEngine() error {
	cfg := config.Get()

	pcfg, err := cfg.PipelineConfig()
	if err != nil {
		return err
	}
	pipeline := affect.NewPipeline(pcfg)

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDEngine)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)
	log.Printf("engine: connected to MQTT broker at %s", cfg.MQTTBroker)

	engine := NewEngine(cfg, pipeline, &mqttPublisher{client: client})
	defer engine.Hub.Close()

	if cfg.StorePath != "" {
		st, err := store.Open(cfg.StorePath)
		if err != nil {
			return err
		}
		defer st.Close()

		sess, err := st.StartSession(cfg.SampleSource)
		if err != nil {
			return err
		}
		engine.Record(st, sess.ID)
		log.Printf("engine: recording session %s to %s", sess.ID, cfg.StorePath)
	}

	err = subscribe(client, cfg.TopicAccel, func(payload []byte) {
		if _, err := engine.HandleAccelPayload(payload); err != nil {
			log.Printf("engine: %v", err)
		}
	})
	if err != nil {
		return err
	}
	log.Printf("engine: subscribed to %s", cfg.TopicAccel)

	if cfg.TopicGPS != "" {
		err = subscribe(client, cfg.TopicGPS, func(payload []byte) {
			if err := engine.HandleGPSPayload(payload); err != nil {
				log.Printf("engine: %v", err)
			}
		})
		if err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.WebServerPort),
		Handler:           NewWebHandler(engine, "web"),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Printf("engine: web server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Println("engine: shutting down")
	case err := <-errCh:
		return fmt.Errorf("web server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
