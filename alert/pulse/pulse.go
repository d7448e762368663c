// Package pulse plays the alert tone through a PulseAudio sink using pacat.
package pulse

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/lawl/pulseaudio"
	"github.com/noriah/tremor/alert"
	"github.com/pkg/errors"
)

func init() {
	alert.RegisterBackend("pulse", Backend{})
}

// SampleRate of the rendered tone.
const SampleRate = 44100

type Backend struct{}

func (b Backend) Devices() ([]string, error) {
	c, err := pulseaudio.NewClient()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create client")
	}
	defer c.Close()

	s, err := c.Sinks()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get sinks")
	}

	var devices = make([]string, len(s))
	for i, sink := range s {
		devices[i] = sink.Name
	}

	return devices, nil
}

func (b Backend) Open(device string, tone alert.Tone) (alert.Alerter, error) {
	path, err := exec.LookPath("pacat")
	if err != nil {
		return nil, errors.Wrap(err, "pacat not found")
	}

	return NewPlayer([]string{path}, device, tone), nil
}

// Player pipes a rendered tone into a playback command.
type Player struct {
	argv []string
	pcm  []byte
}

// NewPlayer renders tone once; every Alert replays it. argv is the playback
// command without its format arguments.
func NewPlayer(argv []string, sink string, tone alert.Tone) *Player {
	args := append([]string{}, argv...)
	args = append(args,
		"--playback",
		"--raw",
		"--format=float32le",
		fmt.Sprintf("--rate=%d", SampleRate),
		"--channels=1",
	)

	if sink != "" {
		args = append(args, "-d", sink)
	}

	return &Player{
		argv: args,
		pcm:  alert.EncodeFloat32LE(tone.Samples(SampleRate)),
	}
}

// Args returns the full playback command line.
func (p *Player) Args() []string {
	return p.argv
}

func (p *Player) Alert(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, p.argv[0], p.argv[1:]...)
	cmd.Stdin = bytes.NewReader(p.pcm)
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return errors.Wrap(err, "failed to play tone")
	}

	return nil
}
