// Package all imports all backends implemented by the input package.
package all

import (
	_ "github.com/noriah/tremor/input/command"
	_ "github.com/noriah/tremor/input/iio"
	_ "github.com/noriah/tremor/input/stdinput"
	_ "github.com/noriah/tremor/input/synth"
)
