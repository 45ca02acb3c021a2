package input

import (
	"runtime"

	"github.com/pkg/errors"
)

// Convention selects how multi-byte arrow keys arrive from the key source
type Convention uint8

const (
	// ConventionEscape is the ANSI terminal form: ESC '[' final
	ConventionEscape Convention = iota
	// ConventionConsole is the console API form: 224 scan
	ConventionConsole
)

// Lead and intro bytes of extended key sequences
const (
	LeadEscape  byte = 27  // ESC
	IntroCSI    byte = '[' // 91
	LeadConsole byte = 224
)

// DefaultConvention returns the convention native to the host platform
func DefaultConvention() Convention {
	if runtime.GOOS == "windows" {
		return ConventionConsole
	}
	return ConventionEscape
}

// ParseConvention maps a flag value to a Convention
func ParseConvention(s string) (Convention, error) {
	switch s {
	case "", "auto":
		return DefaultConvention(), nil
	case "escape", "ansi", "posix":
		return ConventionEscape, nil
	case "console", "windows":
		return ConventionConsole, nil
	default:
		return 0, errors.Errorf("unknown key convention %q (want auto, escape or console)", s)
	}
}

// String implements fmt.Stringer
func (c Convention) String() string {
	switch c {
	case ConventionEscape:
		return "escape"
	case ConventionConsole:
		return "console"
	default:
		return "unknown"
	}
}

// KeyTable describes one extended-key convention plus the plain key bindings
type KeyTable struct {
	// Lead starts an extended sequence
	Lead byte

	// Intro must follow Lead before the final byte, zero when the convention has none
	Intro byte

	// Finals maps the last byte of an extended sequence to a command
	Finals map[byte]Command

	// Plain maps single bytes to decoder outcomes
	Plain map[byte]Decoded
}

func plainBindings() map[byte]Decoded {
	return map[byte]Decoded{
		'q': {ActionSend, CommandQuit},
		'Q': {ActionSend, CommandQuit},
		'e': {ActionExit, CommandNone},
		'E': {ActionExit, CommandNone},
	}
}

// EscapeKeyTable returns bindings for ESC [ A/B/C/D arrow sequences
func EscapeKeyTable() *KeyTable {
	return &KeyTable{
		Lead:  LeadEscape,
		Intro: IntroCSI,
		Finals: map[byte]Command{
			'A': CommandUp,    // 65
			'B': CommandDown,  // 66
			'C': CommandRight, // 67
			'D': CommandLeft,  // 68
		},
		Plain: plainBindings(),
	}
}

// ConsoleKeyTable returns bindings for 224-prefixed console scan codes
func ConsoleKeyTable() *KeyTable {
	return &KeyTable{
		Lead: LeadConsole,
		Finals: map[byte]Command{
			72: CommandUp,
			80: CommandDown,
			75: CommandLeft,
			77: CommandRight,
		},
		Plain: plainBindings(),
	}
}

// KeyTableFor returns the table for a convention
func KeyTableFor(c Convention) *KeyTable {
	if c == ConventionConsole {
		return ConsoleKeyTable()
	}
	return EscapeKeyTable()
}

// Sequence returns the byte sequence that encodes cmd under this table, nil if unbound.
// Used by key sources that receive already-decoded keys and must re-encode them.
func (t *KeyTable) Sequence(cmd Command) []byte {
	for final, c := range t.Finals {
		if c != cmd {
			continue
		}
		if t.Intro != 0 {
			return []byte{t.Lead, t.Intro, final}
		}
		return []byte{t.Lead, final}
	}
	return nil
}
