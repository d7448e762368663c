// Package all imports all alert backends.
package all

import (
	_ "github.com/noriah/tremor/alert/pulse"
)
