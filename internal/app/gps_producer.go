package app

import (
	"log"

	serial "github.com/jacobsa/go-serial/serial"

	"github.com/relabs-tech/affect_computer/internal/config"
	"github.com/relabs-tech/affect_computer/internal/gps"
)

// RunGPSProducer opens the GPS serial port, parses NMEA sentences, and
// publishes combined GPS fixes as JSON on TOPIC_GPS.
func RunGPSProducer() error {
	cfg := config.Get()

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDGPS)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)
	log.Printf("GPS producer connected to MQTT broker at %s", cfg.MQTTBroker)

	serialOpts := serial.OpenOptions{
		PortName:              cfg.GPSSerialPort,
		BaudRate:              uint(cfg.GPSBaudRate),
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}

	port, err := serial.Open(serialOpts)
	if err != nil {
		return err
	}
	defer port.Close()
	log.Printf("GPS serial port opened on %s at %d baud", serialOpts.PortName, serialOpts.BaudRate)

	pub := &mqttPublisher{client: client}
	tracker := gps.NewTracker()
	return tracker.Scan(port, func(fix gps.Fix) {
		if err := pub.PublishJSON(cfg.TopicGPS, fix); err != nil {
			log.Printf("GPS publish error: %v", err)
			return
		}
		log.Printf("published GPS fix: %+v", fix)
	}, nil)
}
