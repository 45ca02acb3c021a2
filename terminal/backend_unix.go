//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package terminal

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

type unixBackend struct {
	in      *os.File
	inFd    int
	oldTerm *term.State
	buf     [1]byte
}

// NewBackend returns the keyboard backend for the host platform
func NewBackend() Backend {
	return &unixBackend{
		in:   os.Stdin,
		inFd: int(os.Stdin.Fd()),
	}
}

// Init switches stdin to non-canonical, non-echoing mode with VMIN=0/VTIME=0.
// ISIG and output processing stay on so Ctrl+C still signals and newlines still render.
func (b *unixBackend) Init() error {
	if !term.IsTerminal(b.inFd) {
		return errors.New("stdin is not a terminal")
	}

	old, err := term.GetState(b.inFd)
	if err != nil {
		return errors.Wrap(err, "save terminal state")
	}

	termios, err := unix.IoctlGetTermios(b.inFd, ioctlReadTermios)
	if err != nil {
		return errors.Wrap(err, "read termios")
	}
	termios.Lflag &^= unix.ICANON | unix.ECHO
	termios.Cc[unix.VMIN] = 0
	termios.Cc[unix.VTIME] = 0
	if err := unix.IoctlSetTermios(b.inFd, ioctlWriteTermios, termios); err != nil {
		return errors.Wrap(err, "set termios")
	}

	b.oldTerm = old
	return nil
}

func (b *unixBackend) Fini() {
	if b.oldTerm != nil {
		term.Restore(b.inFd, b.oldTerm)
		b.oldTerm = nil
	}
}

// PollKey checks stdin with a zero-timeout poll and reads at most one byte
func (b *unixBackend) PollKey() (byte, bool, error) {
	fds := []unix.PollFd{
		{Fd: int32(b.inFd), Events: unix.POLLIN},
	}

	var n int
	var err error
	for {
		n, err = unix.Poll(fds, 0)
		if err != unix.EINTR {
			break
		}
	}
	if err != nil {
		return 0, false, errors.Wrap(err, "poll stdin")
	}
	if n == 0 || fds[0].Revents&(unix.POLLIN|unix.POLLHUP|unix.POLLERR) == 0 {
		return 0, false, nil
	}

	rn, err := unix.Read(b.inFd, b.buf[:])
	if err != nil {
		if err == unix.EINTR || err == unix.EAGAIN {
			return 0, false, nil
		}
		return 0, false, errors.Wrap(err, "read stdin")
	}
	if rn == 0 {
		if fds[0].Revents&unix.POLLHUP != 0 {
			return 0, false, io.EOF
		}
		return 0, false, nil
	}
	return b.buf[0], true, nil
}

// resetTerminalMode attempts to restore terminal to cooked mode
// Best-effort for crash recovery; errors ignored
func resetTerminalMode() {
	// Try to restore via /dev/tty (works even if stdin redirected)
	if tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0); err == nil {
		defer tty.Close()
		fd := int(tty.Fd())
		if termios, err := unix.IoctlGetTermios(fd, ioctlReadTermios); err == nil {
			termios.Lflag |= unix.ECHO | unix.ICANON | unix.ISIG | unix.IEXTEN
			termios.Iflag |= unix.ICRNL
			unix.IoctlSetTermios(fd, ioctlWriteTermios, termios)
		}
	}
}
