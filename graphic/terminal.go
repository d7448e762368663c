package graphic

import (
	"os"
	"strings"
)

// envPatch records an environment variable so a change to it can be undone.
type envPatch struct {
	key   string
	value string
	set   bool
}

func (p envPatch) restore() {
	if p.set {
		os.Setenv(p.key, p.value)
	}
}

// normalizeTerminal drops TERMINFO under tmux, where termbox fails on some
// TERMINFO and TERM combinations. The returned func puts TERMINFO back.
func normalizeTerminal() (func(), error) {
	noop := func() {}

	if !strings.HasPrefix(os.Getenv("TERM"), "tmux") {
		return noop, nil
	}

	patch := envPatch{key: "TERMINFO"}
	if patch.value, patch.set = os.LookupEnv(patch.key); !patch.set {
		return noop, nil
	}

	if err := os.Unsetenv(patch.key); err != nil {
		return nil, err
	}

	return patch.restore, nil
}
