package input

// Command is a request understood by the remote peer
type Command uint8

const (
	CommandNone Command = iota
	CommandUp
	CommandDown
	CommandLeft
	CommandRight
	CommandQuit
)

var commandTokens = [...]string{
	CommandNone:  "",
	CommandUp:    "UP",
	CommandDown:  "DOWN",
	CommandLeft:  "LEFT",
	CommandRight: "RIGHT",
	CommandQuit:  "QUIT",
}

// Token returns the wire token, empty for CommandNone
func (c Command) Token() string {
	if int(c) >= len(commandTokens) {
		return ""
	}
	return commandTokens[c]
}

// String implements fmt.Stringer
func (c Command) String() string {
	if t := c.Token(); t != "" {
		return t
	}
	return "NONE"
}

// Action is the outcome of one decoder tick
type Action uint8

const (
	ActionNone Action = iota // Nothing to do this tick
	ActionSend               // Command must be sent to the peer
	ActionExit               // Local exit, nothing is sent
)

// Decoded pairs an action with the command it carries (ActionSend only)
type Decoded struct {
	Action  Action
	Command Command
}
