// Package config loads detector profiles from YAML. Durations are ISO 8601
// (PT10S) and every field is optional; unset fields keep their prior value.
package config

import (
	"bytes"
	"io"
	"os"
	"time"

	"github.com/noriah/tremor"
	"github.com/pkg/errors"
	"github.com/sosodev/duration"
	"gopkg.in/yaml.v3"
)

// Duration is an ISO 8601 duration.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return errors.New("duration must be a scalar")
	}

	parsed, err := duration.Parse(value.Value)
	if err != nil {
		return errors.Wrapf(err, "line %d: invalid duration %q", value.Line, value.Value)
	}

	*d = Duration(parsed.ToTimeDuration())
	return nil
}

// Profile is the file form of tremor.Config.
type Profile struct {
	Backend    *string  `yaml:"backend"`
	Device     *string  `yaml:"device"`
	SampleRate *float64 `yaml:"sample_rate"`
	SampleSize *int     `yaml:"sample_size"`
	FreeRun    *bool    `yaml:"free_run"`

	Band *struct {
		Low  *float64 `yaml:"low"`
		High *float64 `yaml:"high"`
	} `yaml:"band"`
	Window    *string `yaml:"window"`
	BinMethod *string `yaml:"bin_method"`

	Range *struct {
		Low  *float64 `yaml:"low"`
		High *float64 `yaml:"high"`
	} `yaml:"range"`
	DurationThreshold *int      `yaml:"duration_threshold"`
	MinDuration       *Duration `yaml:"min_duration"`

	Display *struct {
		Interval     *Duration `yaml:"interval"`
		IntensityMax *float64  `yaml:"intensity_max"`
		Clamp        *bool     `yaml:"clamp"`
		Pixels       *int      `yaml:"pixels"`
	} `yaml:"display"`

	Alert *struct {
		Backend   *string   `yaml:"backend"`
		Device    *string   `yaml:"device"`
		Frequency *float64  `yaml:"frequency"`
		Duration  *Duration `yaml:"duration"`
	} `yaml:"alert"`
}

// Load reads a profile file.
func Load(path string) (*Profile, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read profile")
	}

	profile, err := Parse(bytes.NewReader(buf))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse profile %s", path)
	}

	return profile, nil
}

// Parse decodes a profile. Unknown keys are an error.
func Parse(r io.Reader) (*Profile, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	profile := &Profile{}
	if err := dec.Decode(profile); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	return profile, nil
}

// Apply copies every set field onto cfg.
func (p *Profile) Apply(cfg *tremor.Config) {
	set(&cfg.Backend, p.Backend)
	set(&cfg.Device, p.Device)
	set(&cfg.SampleRate, p.SampleRate)
	set(&cfg.SampleSize, p.SampleSize)
	set(&cfg.FreeRun, p.FreeRun)
	set(&cfg.Window, p.Window)
	set(&cfg.BinMethod, p.BinMethod)
	set(&cfg.DurationThreshold, p.DurationThreshold)
	setDuration(&cfg.MinDuration, p.MinDuration)

	if p.Band != nil {
		set(&cfg.MinFrequency, p.Band.Low)
		set(&cfg.MaxFrequency, p.Band.High)
	}

	if p.Range != nil {
		set(&cfg.RangeLow, p.Range.Low)
		set(&cfg.RangeHigh, p.Range.High)
	}

	if p.Display != nil {
		setDuration(&cfg.DisplayInterval, p.Display.Interval)
		set(&cfg.IntensityMax, p.Display.IntensityMax)
		set(&cfg.ClampColor, p.Display.Clamp)
		set(&cfg.Pixels, p.Display.Pixels)
	}

	if p.Alert != nil {
		set(&cfg.Alert, p.Alert.Backend)
		set(&cfg.AlertDevice, p.Alert.Device)
		set(&cfg.Tone.Frequency, p.Alert.Frequency)
		setDuration(&cfg.Tone.Duration, p.Alert.Duration)
	}
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func setDuration(dst *time.Duration, src *Duration) {
	if src != nil {
		*dst = time.Duration(*src)
	}
}
