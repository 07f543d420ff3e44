package app

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/relabs-tech/affect_computer/internal/affect"
	"github.com/relabs-tech/affect_computer/internal/config"
	"github.com/relabs-tech/affect_computer/internal/gps"
)

func formatEmotion(e affect.DetectedEmotion) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[EMO ]  %-10s conf=%.2f", e.Emotion, e.Confidence)
	for _, f := range e.Factors {
		fmt.Fprintf(&b, " %s=%.3f", f.Name, f.Value)
	}
	return b.String()
}

func formatAffect(s affect.AffectiveState) string {
	return fmt.Sprintf("[AFF ]  AROUSAL=%.2f  VALENCE=%.2f  STRESS=%.2f  FOCUS=%.2f",
		s.Arousal, s.Valence, s.Stress, s.Focus)
}

func formatFix(f gps.Fix) string {
	return fmt.Sprintf("[GPS ]  time=%s date=%s lat=%.6f lon=%.6f speed=%.1fkn course=%.1f° validity=%s",
		f.Time, f.Date, f.Latitude, f.Longitude, f.SpeedKnots, f.CourseDeg, f.Validity)
}

// RunConsoleMQTT prints every emotion, affect state and GPS fix seen on
// the broker until Ctrl+C.
func RunConsoleMQTT() error {
	cfg := config.Get()

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDConsole)
	if err != nil {
		return err
	}
	log.Printf("console: connected to MQTT broker at %s", cfg.MQTTBroker)

	err = subscribe(client, cfg.TopicEmotion, func(payload []byte) {
		var m EmotionMessage
		if err := json.Unmarshal(payload, &m); err != nil {
			log.Printf("console: emotion unmarshal error: %v", err)
			return
		}
		fmt.Println(formatEmotion(m.DetectedEmotion))
	})
	if err != nil {
		return err
	}
	log.Printf("console: subscribed to %s", cfg.TopicEmotion)

	err = subscribe(client, cfg.TopicAffect, func(payload []byte) {
		var m AffectMessage
		if err := json.Unmarshal(payload, &m); err != nil {
			log.Printf("console: affect unmarshal error: %v", err)
			return
		}
		fmt.Println(formatAffect(m.AffectiveState))
	})
	if err != nil {
		return err
	}
	log.Printf("console: subscribed to %s", cfg.TopicAffect)

	err = subscribe(client, cfg.TopicGPS, func(payload []byte) {
		var f gps.Fix
		if err := json.Unmarshal(payload, &f); err != nil {
			log.Printf("console: gps unmarshal error: %v", err)
			return
		}
		fmt.Println(formatFix(f))
	})
	if err != nil {
		return err
	}
	log.Printf("console: subscribed to %s", cfg.TopicGPS)

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	client.Disconnect(250)
	return nil
}
