package client

// Process exit codes
const (
	ExitOK      = 0 // Quit, local exit, peer close
	ExitSetup   = 1 // Could not establish the session
	ExitSession = 2 // Send, receive or input failure mid-session
)

// Reason records why the loop ended
type Reason uint8

const (
	ReasonNone Reason = iota
	ReasonQuit
	ReasonLocalExit
	ReasonPeerClosed
	ReasonCanceled
	ReasonSendFailed
	ReasonReceiveFailed
	ReasonInputFailed
)

var reasonNames = [...]string{
	ReasonNone:          "none",
	ReasonQuit:          "quit",
	ReasonLocalExit:     "local exit",
	ReasonPeerClosed:    "peer closed",
	ReasonCanceled:      "canceled",
	ReasonSendFailed:    "send failed",
	ReasonReceiveFailed: "receive failed",
	ReasonInputFailed:   "input failed",
}

// String implements fmt.Stringer
func (r Reason) String() string {
	if int(r) < len(reasonNames) {
		return reasonNames[r]
	}
	return "unknown"
}

// Result is the outcome of Loop.Run
type Result struct {
	Reason Reason
	Err    error
}

// Failed reports a mid-session I/O failure
func (r Result) Failed() bool {
	switch r.Reason {
	case ReasonSendFailed, ReasonReceiveFailed, ReasonInputFailed:
		return true
	}
	return false
}

// ExitCode maps the result to a process exit code
func (r Result) ExitCode() int {
	if r.Failed() {
		return ExitSession
	}
	return ExitOK
}
