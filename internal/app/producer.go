package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/relabs-tech/affect_computer/internal/config"
	"github.com/relabs-tech/affect_computer/internal/motion"
	"github.com/relabs-tech/affect_computer/internal/sensors"
)

// NewSampleSource builds the acceleration source selected by SAMPLE_SOURCE.
func NewSampleSource(cfg *config.Config) (motion.Source, error) {
	switch cfg.SampleSource {
	case config.SourceMock:
		interval := time.Duration(cfg.IMUSampleInterval) * time.Millisecond
		return motion.NewMockSource(cfg.MockProfile, time.Now(), interval)
	case config.SourceReplay:
		return motion.LoadReplay(cfg.ReplayFile, cfg.ReplayLoop)
	case config.SourceIMU:
		return sensors.NewAccelSource("imu", cfg.IMUSPIDevice, cfg.IMUCSPin, cfg.IMUAccelRange)
	default:
		return nil, fmt.Errorf("unknown sample source %q", cfg.SampleSource)
	}
}

// streamSamples publishes one sample per tick until ctx is done or a
// finite source runs out. It returns the number of samples published.
func streamSamples(ctx context.Context, src motion.Source, pub Publisher, topic string, interval time.Duration) (int, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	published := 0
	for {
		select {
		case <-ctx.Done():
			return published, nil
		case <-ticker.C:
		}

		s, err := src.Next()
		if errors.Is(err, motion.ErrExhausted) {
			return published, nil
		}
		if err != nil {
			log.Printf("producer: sample read error: %v", err)
			continue
		}

		if err := pub.PublishJSON(topic, s); err != nil {
			log.Printf("producer: publish error: %v", err)
			continue
		}
		published++
	}
}

// RunProducer reads acceleration samples from the configured source and
// publishes them on TOPIC_ACCEL.
func RunProducer() error {
	cfg := config.Get()

	src, err := NewSampleSource(cfg)
	if err != nil {
		return err
	}
	log.Printf("producer: using %s sample source", cfg.SampleSource)

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDProducer)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)
	log.Printf("producer: connected to MQTT, publishing to %s", cfg.TopicAccel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	interval := time.Duration(cfg.IMUSampleInterval) * time.Millisecond
	n, err := streamSamples(ctx, src, &mqttPublisher{client: client}, cfg.TopicAccel, interval)
	log.Printf("producer: published %d samples", n)
	return err
}
