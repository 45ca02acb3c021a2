package terminal

// Backend abstracts platform-specific keyboard acquisition.
// PollKey must never block: ok is false when no byte is pending.
type Backend interface {
	// Lifecycle
	Init() error
	Fini()

	// PollKey returns the next pending input byte, if any
	PollKey() (b byte, ok bool, err error)
}
