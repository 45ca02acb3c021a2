package terminal

// Sequences written by EmergencyReset
var (
	csiSGR0          = []byte("\x1b[0m")
	csiCursorShow    = []byte("\x1b[?25h")
	csiAltScreenExit = []byte("\x1b[?1049l")
)
