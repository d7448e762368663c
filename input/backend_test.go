package input_test

import (
	"testing"

	"github.com/noriah/tremor/input"
	"github.com/noriah/tremor/input/command"
	"github.com/noriah/tremor/input/synth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/noriah/tremor/input/all"
)

func TestRegisteredBackends(t *testing.T) {
	names := input.GetAllBackendNames()
	for _, name := range []string{"synth", "stdin", "command", "iio"} {
		assert.Contains(t, names, name)
		assert.True(t, input.HasBackend(name))
	}

	assert.Nil(t, input.FindBackend("portaudio"))

	_, err := input.InitBackend("portaudio")
	assert.Error(t, err)
}

func TestGetDevice(t *testing.T) {
	backend, err := input.InitBackend("synth")
	require.NoError(t, err)

	dv, err := input.GetDevice(backend, "")
	require.NoError(t, err)
	assert.Equal(t, synth.Tremor, dv)

	dv, err = input.GetDevice(backend, "burst")
	require.NoError(t, err)
	assert.Equal(t, synth.Burst, dv)

	_, err = input.GetDevice(backend, "sprint")
	assert.Error(t, err)
}

func TestGetDeviceParsesCommand(t *testing.T) {
	backend, err := input.InitBackend("command")
	require.NoError(t, err)

	dv, err := input.GetDevice(backend, "f32le:cat /dev/ttyACM0")
	require.NoError(t, err)
	assert.IsType(t, command.Device{}, dv)
	assert.Equal(t, "f32le:cat /dev/ttyACM0", dv.String())

	_, err = input.GetDevice(backend, "")
	assert.Error(t, err)

	_, err = input.GetDevice(backend, "   ")
	assert.Error(t, err)
}

func TestVectorMagnitude(t *testing.T) {
	assert.InDelta(t, 13.0, input.Vector{X: 3, Y: 4, Z: 12}.Magnitude(), 1e-12)
	assert.Equal(t, "(1, 2, 3)", input.Vector{X: 1, Y: 2, Z: 3}.String())
}
