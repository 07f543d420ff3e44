// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package imu

import (
	"fmt"
	"time"

	"github.com/relabs-tech/affect_computer/internal/affect"
)

// AccelRaw is a single raw accelerometer reading in sensor counts.
type AccelRaw struct {
	Source string `json:"source"`

	Ax int16 `json:"ax"`
	Ay int16 `json:"ay"`
	Az int16 `json:"az"`
}

// AccelRawSource is anything that yields raw accelerometer readings.
type AccelRawSource interface {
	NextRaw() (AccelRaw, error)
}

// LSB per g for each MPU9250 ACCEL_FS_SEL setting (0=±2g .. 3=±16g).
var accelSensitivity = [4]float64{16384, 8192, 4096, 2048}

// AccelSensitivity returns the counts-per-g for an accelerometer range.
func AccelSensitivity(accelRange byte) (float64, error) {
	if int(accelRange) >= len(accelSensitivity) {
		return 0, fmt.Errorf("accel range %d out of range 0-3", accelRange)
	}
	return accelSensitivity[accelRange], nil
}

// ToSample converts raw counts into an acceleration sample in m/s².
func (r AccelRaw) ToSample(accelRange byte, ts time.Time) (affect.AccelerationSample, error) {
	lsb, err := AccelSensitivity(accelRange)
	if err != nil {
		return affect.AccelerationSample{}, err
	}
	scale := affect.GravityBaseline / lsb
	return affect.AccelerationSample{
		Timestamp: ts,
		X:         float64(r.Ax) * scale,
		Y:         float64(r.Ay) * scale,
		Z:         float64(r.Az) * scale,
	}, nil
}
