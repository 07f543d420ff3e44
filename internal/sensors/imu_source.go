// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"
	"time"

	"github.com/relabs-tech/affect_computer/internal/affect"
	"github.com/relabs-tech/affect_computer/internal/imu"
	"github.com/relabs-tech/affect_computer/internal/logging"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/devices/v3/mpu9250"
	"periph.io/x/host/v3"
)

// accelDevice is the subset of the MPU9250 driver the source reads from.
type accelDevice interface {
	GetAccelerationX() (int16, error)
	GetAccelerationY() (int16, error)
	GetAccelerationZ() (int16, error)
}

// AccelSource reads the MPU9250 accelerometer and converts counts to m/s².
type AccelSource struct {
	name       string
	dev        accelDevice
	accelRange byte
	now        func() time.Time
}

// NewAccelSource initializes an MPU9250 over SPI with the given chip
// select pin and accelerometer range (0=±2g .. 3=±16g).
func NewAccelSource(name, spiDev, csPin string, accelRange byte) (*AccelSource, error) {
	if _, err := imu.AccelSensitivity(accelRange); err != nil {
		return nil, fmt.Errorf("%s IMU: %w", name, err)
	}
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("%s IMU: periph host init: %w", name, err)
	}

	cs := gpioreg.ByName(csPin)
	if cs == nil {
		return nil, fmt.Errorf("%s IMU: CS pin %q not found", name, csPin)
	}

	tr, err := mpu9250.NewSpiTransport(spiDev, cs)
	if err != nil {
		return nil, fmt.Errorf("%s IMU: SPI transport (%s): %w", name, spiDev, err)
	}

	dev, err := mpu9250.New(tr)
	if err != nil {
		return nil, fmt.Errorf("%s IMU: device creation: %w", name, err)
	}

	if err := dev.Init(); err != nil {
		return nil, fmt.Errorf("%s IMU: initialization: %w", name, err)
	}

	if err := dev.SetAccelRange(accelRange); err != nil {
		return nil, fmt.Errorf("%s IMU: set accel range: %w", name, err)
	}
	logging.Logf("%s IMU: accelerometer range set to %d (±%dg)", name, accelRange, []int{2, 4, 8, 16}[accelRange])

	if _, err := dev.SelfTest(); err != nil {
		logging.Logf("Warning: %s IMU self-test failed: %v", name, err)
	} else {
		logging.Logf("%s IMU self-test passed", name)
	}

	if err := dev.Calibrate(); err != nil {
		logging.Logf("Warning: %s IMU calibration failed: %v", name, err)
	} else {
		logging.Logf("%s IMU calibration complete", name)
	}

	return newAccelSource(name, dev, accelRange), nil
}

func newAccelSource(name string, dev accelDevice, accelRange byte) *AccelSource {
	return &AccelSource{name: name, dev: dev, accelRange: accelRange, now: time.Now}
}

// NextRaw reads one accelerometer triple in sensor counts.
func (s *AccelSource) NextRaw() (imu.AccelRaw, error) {
	ax, err := s.dev.GetAccelerationX()
	if err != nil {
		return imu.AccelRaw{}, fmt.Errorf("%s IMU accel X: %w", s.name, err)
	}
	ay, err := s.dev.GetAccelerationY()
	if err != nil {
		return imu.AccelRaw{}, fmt.Errorf("%s IMU accel Y: %w", s.name, err)
	}
	az, err := s.dev.GetAccelerationZ()
	if err != nil {
		return imu.AccelRaw{}, fmt.Errorf("%s IMU accel Z: %w", s.name, err)
	}
	return imu.AccelRaw{Source: s.name, Ax: ax, Ay: ay, Az: az}, nil
}

// Next reads one sample in m/s², stamped with the read time.
func (s *AccelSource) Next() (affect.AccelerationSample, error) {
	raw, err := s.NextRaw()
	if err != nil {
		return affect.AccelerationSample{}, err
	}
	return raw.ToSample(s.accelRange, s.now())
}
