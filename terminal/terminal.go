package terminal

import (
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/pkg/errors"
)

// ExitSignaled is the process exit code after a terminating signal
const ExitSignaled = 130

// Terminal owns a Backend for the process lifetime.
// Init acquires it, Fini releases it exactly once; a terminating signal
// releases it before the process exits.
type Terminal struct {
	backend Backend

	sigCh    chan os.Signal
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
	finiOnce sync.Once
	inited   bool

	// exit is swapped in tests
	exit func(code int)
}

// New wraps a backend; use NewBackend for the host platform
func New(backend Backend) *Terminal {
	return &Terminal{
		backend: backend,
		sigCh:   make(chan os.Signal, 1),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
		exit:    os.Exit,
	}
}

// Init acquires the terminal and starts the signal watcher
func (t *Terminal) Init() error {
	if err := t.backend.Init(); err != nil {
		return errors.Wrap(err, "terminal init")
	}
	t.inited = true

	signal.Notify(t.sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	go t.watchSignals()
	return nil
}

// watchSignals restores the terminal when the process is told to stop
func (t *Terminal) watchSignals() {
	defer close(t.doneCh)

	select {
	case <-t.stopCh:
		return
	case <-t.sigCh:
		t.release()
		t.exit(ExitSignaled)
	}
}

// Fini restores the prior terminal mode; safe to call more than once
func (t *Terminal) Fini() {
	if !t.inited {
		return
	}
	t.stopOnce.Do(func() {
		close(t.stopCh)
		<-t.doneCh
	})
	t.release()
}

func (t *Terminal) release() {
	t.finiOnce.Do(func() {
		signal.Stop(t.sigCh)
		t.backend.Fini()
	})
}

// PollKey implements input.KeySource
func (t *Terminal) PollKey() (byte, bool, error) {
	return t.backend.PollKey()
}

// Backend returns the wrapped backend
func (t *Terminal) Backend() Backend {
	return t.backend
}

// EmergencyReset attempts to restore terminal to sane state
// Call this from panic recovery if Fini() cannot be called normally
func EmergencyReset(w io.Writer) {
	w.Write(csiCursorShow)
	w.Write(csiAltScreenExit)
	w.Write(csiSGR0)

	// Flush if it's a file
	if f, ok := w.(*os.File); ok {
		f.Sync()
	}

	// Escape sequences alone don't restore termios
	// This is best-effort; ignore errors in crash context
	resetTerminalMode()
}
