package main

import (
	"log"

	"github.com/relabs-tech/affect_computer/internal/app"
	"github.com/relabs-tech/affect_computer/internal/config"
)

func main() {
	log.Println("starting affect-computer GPS producer (NMEA → MQTT)")

	if err := config.InitGlobal("affect_config.txt"); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunGPSProducer(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
