// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/relabs-tech/affect_computer/internal/affect"
	"github.com/relabs-tech/affect_computer/internal/motion"
)

// runConsole processes n samples (forever when n <= 0) and prints a
// line for every sample whose emotion differs from the previous one,
// plus the aggregated state every logEvery samples.
func runConsole(out io.Writer, src motion.Source, p *affect.Pipeline, n, logEvery int, tick <-chan time.Time) error {
	last := affect.EmotionType("")
	for i := 0; n <= 0 || i < n; i++ {
		if tick != nil {
			<-tick
		}
		s, err := src.Next()
		if err != nil {
			return err
		}
		r := p.Process(s)

		if r.Emotion.Emotion != last {
			fmt.Fprintln(out, formatEmotion(r.Emotion))
			last = r.Emotion.Emotion
		}
		if logEvery > 0 && (i+1)%logEvery == 0 {
			fmt.Fprintln(out, formatAffect(r.State))
		}
	}
	return nil
}

// RunMockConsole runs the pipeline on a mock motion profile without any
// broker and prints the results.
func RunMockConsole(profile string) error {
	const interval = 20 * time.Millisecond
	src, err := motion.NewMockSource(profile, time.Now(), interval)
	if err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	p := affect.NewPipeline(affect.DefaultConfig())
	return runConsole(os.Stdout, src, p, 0, int(time.Second/interval), ticker.C)
}
