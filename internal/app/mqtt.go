package app

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/affect_computer/internal/affect"
)

// EmotionMessage is the payload published on TOPIC_EMOTION.
type EmotionMessage struct {
	Timestamp time.Time `json:"ts"`
	affect.DetectedEmotion
}

// AffectMessage is the payload published on TOPIC_AFFECT.
type AffectMessage struct {
	Timestamp time.Time `json:"ts"`
	affect.AffectiveState
}

// Publisher sends JSON payloads to a topic.
type Publisher interface {
	PublishJSON(topic string, v any) error
}

type mqttPublisher struct {
	client mqtt.Client
}

// PublishJSON publishes v as a retained QoS 0 message.
func (p *mqttPublisher) PublishJSON(topic string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	token := p.client.Publish(topic, 0, true, payload)
	token.Wait()
	return token.Error()
}

func connectMQTT(broker, clientID string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("MQTT connect %s: %w", broker, token.Error())
	}
	return client, nil
}

func subscribe(client mqtt.Client, topic string, handler func(payload []byte)) error {
	token := client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		handler(msg.Payload())
	})
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("subscribe %s: %w", topic, token.Error())
	}
	return nil
}
