// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"
	"log"

	"github.com/relabs-tech/affect_computer/internal/app"
	"github.com/relabs-tech/affect_computer/internal/config"
)

func main() {
	configPath := flag.String("config", "./affect_config.txt", "path to configuration file")
	flag.Parse()

	log.Println("starting affect-computer engine (MQTT → affect pipeline → MQTT, web)")

	// Load configuration
	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunEngine(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
