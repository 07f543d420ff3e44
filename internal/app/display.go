package app

import (
	"encoding/json"
	"fmt"
	"image"
	"log"
	"math"
	"strings"
	"sync"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/affect_computer/internal/affect"
	"github.com/relabs-tech/affect_computer/internal/config"
)

const (
	screenW = 128
	screenH = 64

	barX     = 16
	barWidth = screenW - barX - 2
)

// DisplayData holds the latest data for display
type DisplayData struct {
	mu sync.RWMutex

	emotion     affect.DetectedEmotion
	haveEmotion bool

	state     affect.AffectiveState
	haveState bool
}

type displaySnapshot struct {
	emotion     affect.DetectedEmotion
	haveEmotion bool
	state       affect.AffectiveState
	haveState   bool
}

func (d *DisplayData) snapshot() displaySnapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return displaySnapshot{
		emotion:     d.emotion,
		haveEmotion: d.haveEmotion,
		state:       d.state,
		haveState:   d.haveState,
	}
}

func newScreen() (*image1bit.VerticalLSB, *font.Drawer) {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, screenW, screenH))
	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}
	return img, drawer
}

// renderAffect draws the current emotion on the first line and one bar
// per affect dimension below it.
func renderAffect(s displaySnapshot) *image1bit.VerticalLSB {
	img, drawer := newScreen()

	if !s.haveEmotion && !s.haveState {
		drawer.Dot = fixed.P(0, 26)
		drawer.DrawBytes([]byte("Affect"))
		drawer.Dot = fixed.P(0, 39)
		drawer.DrawBytes([]byte("Waiting..."))
		return img
	}

	drawer.Dot = fixed.P(0, 10)
	if s.haveEmotion {
		drawer.DrawBytes([]byte(fmt.Sprintf("%s %3.0f%%", strings.ToUpper(string(s.emotion.Emotion)), s.emotion.Confidence*100)))
	} else {
		drawer.DrawBytes([]byte("..."))
	}

	if !s.haveState {
		return img
	}
	rows := []struct {
		label string
		value float64
	}{
		{"A", s.state.Arousal},
		{"V", s.state.Valence},
		{"S", s.state.Stress},
		{"F", s.state.Focus},
	}
	for i, row := range rows {
		baseline := 23 + i*13
		drawer.Dot = fixed.P(0, baseline)
		drawer.DrawBytes([]byte(row.label))
		drawBar(img, baseline-8, row.value)
	}
	return img
}

// drawBar draws a 6px high outlined bar filled to value in [0,1].
func drawBar(img *image1bit.VerticalLSB, top int, value float64) {
	if math.IsNaN(value) {
		value = 0
	}
	value = math.Max(0, math.Min(1, value))
	fill := int(math.Round(value * float64(barWidth-2)))

	for x := barX; x < barX+barWidth; x++ {
		img.SetBit(x, top, image1bit.On)
		img.SetBit(x, top+5, image1bit.On)
	}
	for y := top; y < top+6; y++ {
		img.SetBit(barX, y, image1bit.On)
		img.SetBit(barX+barWidth-1, y, image1bit.On)
	}
	for x := barX + 1; x < barX+1+fill; x++ {
		for y := top + 1; y < top+5; y++ {
			img.SetBit(x, y, image1bit.On)
		}
	}
}

func showSplash(dev *ssd1306.Dev) error {
	img, drawer := newScreen()

	drawer.Dot = fixed.P(10, 26)
	drawer.DrawBytes([]byte("Affect Pi"))

	drawer.Dot = fixed.P(5, 43)
	drawer.DrawBytes([]byte("Warming up"))

	return dev.Draw(dev.Bounds(), img, image.Point{})
}

// RunDisplay shows the latest emotion and affect state on an SSD1306 OLED.
func RunDisplay() error {
	cfg := config.Get()

	// Initialize periph
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to initialize periph: %w", err)
	}

	// Open I2C bus
	bus, err := i2creg.Open("")
	if err != nil {
		return fmt.Errorf("failed to open I2C bus: %w", err)
	}
	defer bus.Close()

	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize display: %w", err)
	}
	log.Println("display: initialized at 0x3C")

	if err := showSplash(dev); err != nil {
		log.Printf("display: error showing splash: %v", err)
	}

	data := &DisplayData{}

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDDisplay)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)
	log.Printf("display: connected to MQTT broker at %s", cfg.MQTTBroker)

	err = subscribe(client, cfg.TopicEmotion, func(payload []byte) {
		var m EmotionMessage
		if err := json.Unmarshal(payload, &m); err != nil {
			log.Printf("display: emotion unmarshal error: %v", err)
			return
		}
		data.mu.Lock()
		data.emotion = m.DetectedEmotion
		data.haveEmotion = true
		data.mu.Unlock()
	})
	if err != nil {
		return err
	}

	err = subscribe(client, cfg.TopicAffect, func(payload []byte) {
		var m AffectMessage
		if err := json.Unmarshal(payload, &m); err != nil {
			log.Printf("display: affect unmarshal error: %v", err)
			return
		}
		data.mu.Lock()
		data.state = m.AffectiveState
		data.haveState = true
		data.mu.Unlock()
	})
	if err != nil {
		return err
	}

	ticker := time.NewTicker(time.Duration(cfg.DisplayUpdateInterval) * time.Millisecond)
	defer ticker.Stop()

	log.Println("display: starting update loop")

	for range ticker.C {
		img := renderAffect(data.snapshot())
		if err := dev.Draw(dev.Bounds(), img, image.Point{}); err != nil {
			log.Printf("display: error updating display: %v", err)
		}
	}

	return nil
}
