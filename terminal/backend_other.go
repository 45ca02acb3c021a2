//go:build !windows && !linux && !darwin && !freebsd && !netbsd && !openbsd && !dragonfly

package terminal

import (
	"runtime"

	"github.com/pkg/errors"
)

type unsupportedBackend struct{}

// NewBackend returns a backend that refuses to start on this platform
func NewBackend() Backend {
	return unsupportedBackend{}
}

func (unsupportedBackend) Init() error {
	return errors.Errorf("keyboard input not supported on %s", runtime.GOOS)
}

func (unsupportedBackend) Fini() {}

func (unsupportedBackend) PollKey() (byte, bool, error) {
	return 0, false, errors.New("terminal not initialized")
}

func resetTerminalMode() {}
