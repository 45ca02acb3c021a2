package audio

// Cue identifies a client event that can be sounded
type Cue int

const (
	CueSent   Cue = iota // Command written to the peer
	CueReply             // Reply received
	CueClosed            // Peer closed the session
	CueError             // Send or receive failure
	cueCount
)

// String implements fmt.Stringer
func (c Cue) String() string {
	switch c {
	case CueSent:
		return "sent"
	case CueReply:
		return "reply"
	case CueClosed:
		return "closed"
	case CueError:
		return "error"
	default:
		return "unknown"
	}
}
