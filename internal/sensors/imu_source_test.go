package sensors

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/affect_computer/internal/affect"
	"github.com/relabs-tech/affect_computer/internal/imu"
	"github.com/relabs-tech/affect_computer/internal/motion"
)

type fakeDevice struct {
	x, y, z int16
	errAxis string
}

func (f *fakeDevice) read(axis string, v int16) (int16, error) {
	if f.errAxis == axis {
		return 0, errors.New("spi timeout")
	}
	return v, nil
}

func (f *fakeDevice) GetAccelerationX() (int16, error) { return f.read("x", f.x) }
func (f *fakeDevice) GetAccelerationY() (int16, error) { return f.read("y", f.y) }
func (f *fakeDevice) GetAccelerationZ() (int16, error) { return f.read("z", f.z) }

func TestAccelSource_Next(t *testing.T) {
	ts := time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)
	src := newAccelSource("left", &fakeDevice{z: 8192}, 1)
	src.now = func() time.Time { return ts }

	var _ motion.Source = src
	var _ imu.AccelRawSource = src

	raw, err := src.NextRaw()
	require.NoError(t, err)
	assert.Equal(t, imu.AccelRaw{Source: "left", Az: 8192}, raw)

	s, err := src.Next()
	require.NoError(t, err)
	assert.Equal(t, ts, s.Timestamp)
	assert.InDelta(t, affect.GravityBaseline, s.Magnitude(), 1e-9)
}

func TestAccelSource_ReadError(t *testing.T) {
	src := newAccelSource("left", &fakeDevice{errAxis: "y"}, 0)

	_, err := src.Next()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "left IMU accel Y")
	assert.Contains(t, err.Error(), "spi timeout")
}
