// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"
	"log"

	"github.com/relabs-tech/affect_computer/internal/app"
)

func main() {
	profile := flag.String("profile", "walk", "mock motion profile")
	flag.Parse()

	log.Printf("starting affect-computer (mock console, profile %s)", *profile)

	if err := app.RunMockConsole(*profile); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
