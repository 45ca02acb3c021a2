package network

import (
	"bytes"
	"strings"

	"github.com/pkg/errors"
)

// Wire format: one bare uppercase ASCII token per write.
// There is no delimiter, length prefix or request id; replies are matched to
// requests purely by strict alternation over a single TCP stream. A peer that
// pipelines or splits replies will desynchronise the client.

// MaxTokenSize bounds a single command token
const MaxTokenSize = 64

// EncodeToken returns the wire bytes for a command token
func EncodeToken(token string) ([]byte, error) {
	if token == "" {
		return nil, errors.New("empty token")
	}
	if len(token) > MaxTokenSize {
		return nil, errors.Errorf("token exceeds %d bytes", MaxTokenSize)
	}
	for i := 0; i < len(token); i++ {
		c := token[i]
		if c < 'A' || c > 'Z' {
			return nil, errors.Errorf("invalid token byte 0x%02x in %q", c, token)
		}
	}
	return []byte(token), nil
}

// ReplyText renders a reply for display: cut at the first NUL, invalid UTF-8 replaced
func ReplyText(reply []byte) string {
	if i := bytes.IndexByte(reply, 0); i >= 0 {
		reply = reply[:i]
	}
	return strings.ToValidUTF8(string(reply), "�")
}
