// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/relabs-tech/affect_computer/internal/affect"
)

// Sample sources understood by the producer.
const (
	SourceMock   = "mock"
	SourceIMU    = "imu"
	SourceReplay = "replay"
)

// Config holds all application configuration values.
type Config struct {
	// MQTT
	MQTTBroker           string
	MQTTClientIDProducer string
	MQTTClientIDEngine   string
	MQTTClientIDConsole  string
	MQTTClientIDDisplay  string
	MQTTClientIDGPS      string

	// Topics
	TopicAccel   string
	TopicEmotion string
	TopicAffect  string
	TopicGPS     string

	// Sample source: "mock", "imu" or "replay"
	SampleSource string
	MockProfile  string
	ReplayFile   string
	ReplayLoop   bool

	// IMU Hardware
	IMUSPIDevice string
	IMUCSPin     string
	// Accelerometer: 0=±2g, 1=±4g, 2=±8g, 3=±16g
	IMUAccelRange byte

	// GPS
	GPSSerialPort string
	GPSBaudRate   int

	// Pipeline
	FeatureWindowSize      int
	AggregationWindow      int
	EmotionHistoryCapacity int
	StateHistoryCapacity   int
	TuningFile             string // optional YAML threshold overrides

	// Store
	StorePath string // empty disables persistence

	// Timing
	IMUSampleInterval  int // milliseconds
	ConsoleLogInterval int // milliseconds

	// Web Server
	WebServerPort int

	// Display
	DisplayUpdateInterval int // milliseconds
}

// Package-level unexported variables for the process-wide config:
//   - globalConfig is only reachable through InitGlobal and Get.
//   - configOnce makes InitGlobal idempotent.
//   - configMu guards globalConfig; Get takes the read lock.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Default returns a Config with every optional value filled in.
func Default() *Config {
	p := affect.DefaultConfig()
	return &Config{
		MQTTBroker:             "tcp://localhost:1883",
		MQTTClientIDProducer:   "affect-producer",
		MQTTClientIDEngine:     "affect-engine",
		MQTTClientIDConsole:    "affect-console",
		MQTTClientIDDisplay:    "affect-display",
		MQTTClientIDGPS:        "affect-gps",
		TopicAccel:             "affect/accel",
		TopicEmotion:           "affect/emotion",
		TopicAffect:            "affect/state",
		TopicGPS:               "affect/gps",
		SampleSource:           SourceMock,
		MockProfile:            "walk",
		GPSSerialPort:          "/dev/serial0",
		GPSBaudRate:            9600,
		FeatureWindowSize:      p.Extractor.WindowSize,
		AggregationWindow:      p.AggregationWindow,
		EmotionHistoryCapacity: p.History.EmotionCapacity,
		StateHistoryCapacity:   p.History.StateCapacity,
		IMUSampleInterval:      20,
		ConsoleLogInterval:     1000,
		WebServerPort:          8080,
		DisplayUpdateInterval:  250,
	}
}

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads KEY=VALUE lines over Default. Blank lines and lines
// starting with '#' are ignored.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	var err error
	switch key {
	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_PRODUCER":
		c.MQTTClientIDProducer = value
	case "MQTT_CLIENT_ID_ENGINE":
		c.MQTTClientIDEngine = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_DISPLAY":
		c.MQTTClientIDDisplay = value
	case "MQTT_CLIENT_ID_GPS":
		c.MQTTClientIDGPS = value

	// Topics
	case "TOPIC_ACCEL":
		c.TopicAccel = value
	case "TOPIC_EMOTION":
		c.TopicEmotion = value
	case "TOPIC_AFFECT":
		c.TopicAffect = value
	case "TOPIC_GPS":
		c.TopicGPS = value

	// Sample source
	case "SAMPLE_SOURCE":
		switch value {
		case SourceMock, SourceIMU, SourceReplay:
			c.SampleSource = value
		default:
			return fmt.Errorf("SAMPLE_SOURCE must be %q, %q or %q, got %q", SourceMock, SourceIMU, SourceReplay, value)
		}
	case "MOCK_PROFILE":
		c.MockProfile = value
	case "REPLAY_FILE":
		c.ReplayFile = value
	case "REPLAY_LOOP":
		c.ReplayLoop, err = strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid REPLAY_LOOP %q: %w", value, err)
		}

	// IMU Hardware
	case "IMU_SPI_DEVICE":
		c.IMUSPIDevice = value
	case "IMU_CS_PIN":
		c.IMUCSPin = value
	case "IMU_ACCEL_RANGE":
		rangeVal, err := intInRange(key, value, 0, 3)
		if err != nil {
			return fmt.Errorf("%w (0=±2g, 1=±4g, 2=±8g, 3=±16g)", err)
		}
		c.IMUAccelRange = byte(rangeVal)

	// GPS
	case "GPS_SERIAL_PORT":
		c.GPSSerialPort = value
	case "GPS_BAUD_RATE":
		c.GPSBaudRate, err = intInRange(key, value, 1, 921600)

	// Pipeline
	case "FEATURE_WINDOW_SIZE":
		c.FeatureWindowSize, err = intInRange(key, value, 2, 10000)
	case "AGGREGATION_WINDOW":
		c.AggregationWindow, err = intInRange(key, value, 1, 10000)
	case "EMOTION_HISTORY_CAPACITY":
		c.EmotionHistoryCapacity, err = intInRange(key, value, 1, 1000000)
	case "STATE_HISTORY_CAPACITY":
		c.StateHistoryCapacity, err = intInRange(key, value, 1, 1000000)
	case "TUNING_FILE":
		c.TuningFile = value

	// Store
	case "STORE_PATH":
		c.StorePath = value

	// Timing
	case "IMU_SAMPLE_INTERVAL":
		c.IMUSampleInterval, err = intInRange(key, value, 1, 60000)
	case "CONSOLE_LOG_INTERVAL":
		c.ConsoleLogInterval, err = intInRange(key, value, 1, 3600000)

	// Web Server
	case "WEB_SERVER_PORT":
		c.WebServerPort, err = intInRange(key, value, 0, 65535)

	// Display
	case "DISPLAY_UPDATE_INTERVAL":
		c.DisplayUpdateInterval, err = intInRange(key, value, 1, 60000)

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return err
}

func intInRange(key, value string, min, max int) (int, error) {
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if v < min || v > max {
		return 0, fmt.Errorf("%s must be %d-%d, got %d", key, min, max, v)
	}
	return v, nil
}

// validate checks that all required fields are set.
func (c *Config) validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	if c.TopicAccel == "" || c.TopicEmotion == "" || c.TopicAffect == "" {
		return fmt.Errorf("TOPIC_ACCEL, TOPIC_EMOTION and TOPIC_AFFECT are required")
	}
	switch c.SampleSource {
	case SourceIMU:
		if c.IMUSPIDevice == "" {
			return fmt.Errorf("IMU_SPI_DEVICE is required when SAMPLE_SOURCE=imu")
		}
		if c.IMUCSPin == "" {
			return fmt.Errorf("IMU_CS_PIN is required when SAMPLE_SOURCE=imu")
		}
	case SourceReplay:
		if c.ReplayFile == "" {
			return fmt.Errorf("REPLAY_FILE is required when SAMPLE_SOURCE=replay")
		}
	}
	if c.AggregationWindow > c.EmotionHistoryCapacity {
		return fmt.Errorf("AGGREGATION_WINDOW (%d) cannot exceed EMOTION_HISTORY_CAPACITY (%d)",
			c.AggregationWindow, c.EmotionHistoryCapacity)
	}
	return nil
}

// PipelineConfig builds the affect pipeline settings, applying the
// tuning file when one is configured.
func (c *Config) PipelineConfig() (affect.Config, error) {
	p := affect.DefaultConfig()
	p.Extractor.WindowSize = c.FeatureWindowSize
	p.AggregationWindow = c.AggregationWindow
	p.History = affect.HistoryConfig{
		EmotionCapacity: c.EmotionHistoryCapacity,
		StateCapacity:   c.StateHistoryCapacity,
	}
	if c.TuningFile != "" {
		t, err := LoadTuning(c.TuningFile)
		if err != nil {
			return affect.Config{}, err
		}
		p.Thresholds = t
	}
	return p, nil
}

// InitGlobal initializes the global configuration from file.
// Only the first call loads; later calls return nil.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance, or nil before InitGlobal.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
