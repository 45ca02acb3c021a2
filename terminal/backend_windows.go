//go:build windows

package terminal

import (
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows"
	"golang.org/x/term"
)

// The console runtime already delivers unbuffered, non-echoing keys through
// _kbhit/_getch, with arrow keys as a 224 prefix followed by the scan code.
var (
	msvcrt    = windows.NewLazySystemDLL("msvcrt.dll")
	procKbhit = msvcrt.NewProc("_kbhit")
	procGetch = msvcrt.NewProc("_getch")
)

type consoleBackend struct {
	inFd int
}

// NewBackend returns the keyboard backend for the host platform
func NewBackend() Backend {
	return &consoleBackend{inFd: int(os.Stdin.Fd())}
}

func (b *consoleBackend) Init() error {
	if !term.IsTerminal(b.inFd) {
		return errors.New("stdin is not a console")
	}
	if err := procKbhit.Find(); err != nil {
		return errors.Wrap(err, "load _kbhit")
	}
	if err := procGetch.Find(); err != nil {
		return errors.Wrap(err, "load _getch")
	}
	return nil
}

// Fini has nothing to restore; the console mode is never modified
func (b *consoleBackend) Fini() {}

func (b *consoleBackend) PollKey() (byte, bool, error) {
	r, _, _ := procKbhit.Call()
	if r == 0 {
		return 0, false, nil
	}
	c, _, _ := procGetch.Call()
	return byte(c), true, nil
}

func resetTerminalMode() {}
