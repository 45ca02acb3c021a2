package input

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptSource replays bytes one PollKey at a time; gap entries report no key
type scriptSource struct {
	steps []int // -1 = no key pending
	pos   int
	err   error
}

func newScript(steps ...int) *scriptSource {
	return &scriptSource{steps: steps}
}

func bytesScript(b ...byte) *scriptSource {
	steps := make([]int, len(b))
	for i, v := range b {
		steps[i] = int(v)
	}
	return newScript(steps...)
}

func (s *scriptSource) PollKey() (byte, bool, error) {
	if s.err != nil {
		return 0, false, s.err
	}
	if s.pos >= len(s.steps) {
		return 0, false, nil
	}
	v := s.steps[s.pos]
	s.pos++
	if v < 0 {
		return 0, false, nil
	}
	return byte(v), true, nil
}

func TestDecoder_PlainKeys(t *testing.T) {
	tests := []struct {
		key  byte
		want Decoded
	}{
		{'q', Decoded{ActionSend, CommandQuit}},
		{'Q', Decoded{ActionSend, CommandQuit}},
		{'e', Decoded{ActionExit, CommandNone}},
		{'E', Decoded{ActionExit, CommandNone}},
		{'x', Decoded{}},
		{'A', Decoded{}},
		{'[', Decoded{}},
		{0, Decoded{}},
		{0x7f, Decoded{}},
	}

	for _, conv := range []Convention{ConventionEscape, ConventionConsole} {
		for _, tt := range tests {
			t.Run(conv.String()+"/"+string(rune(tt.key)), func(t *testing.T) {
				d := NewDecoder(bytesScript(tt.key), KeyTableFor(conv))
				got, err := d.Next()
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			})
		}
	}
}

func TestDecoder_EscapeSequences(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  Decoded
	}{
		{"up", []byte{27, 91, 65}, Decoded{ActionSend, CommandUp}},
		{"down", []byte{27, 91, 66}, Decoded{ActionSend, CommandDown}},
		{"right", []byte{27, 91, 67}, Decoded{ActionSend, CommandRight}},
		{"left", []byte{27, 91, 68}, Decoded{ActionSend, CommandLeft}},
		{"unknown final", []byte{27, 91, 69}, Decoded{}},
		{"home key", []byte{27, 91, 'H'}, Decoded{}},
		{"bad intro", []byte{27, 'O', 65}, Decoded{}},
		{"console lead ignored", []byte{224, 72}, Decoded{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDecoder(bytesScript(tt.input...), EscapeKeyTable())
			got, err := d.Next()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecoder_ConsoleSequences(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  Decoded
	}{
		{"up", []byte{224, 72}, Decoded{ActionSend, CommandUp}},
		{"down", []byte{224, 80}, Decoded{ActionSend, CommandDown}},
		{"left", []byte{224, 75}, Decoded{ActionSend, CommandLeft}},
		{"right", []byte{224, 77}, Decoded{ActionSend, CommandRight}},
		{"delete key", []byte{224, 83}, Decoded{}},
		{"escape lead ignored", []byte{27, 91, 65}, Decoded{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDecoder(bytesScript(tt.input...), ConsoleKeyTable())
			got, err := d.Next()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecoder_NoKeyPending(t *testing.T) {
	d := NewDecoder(newScript(), EscapeKeyTable())
	got, err := d.Next()
	require.NoError(t, err)
	assert.Equal(t, ActionNone, got.Action)
}

func TestDecoder_PartialSequence(t *testing.T) {
	t.Run("escape lead only", func(t *testing.T) {
		d := NewDecoder(newScript(27, -1), EscapeKeyTable())
		got, err := d.Next()
		require.NoError(t, err)
		assert.Equal(t, Decoded{}, got)
	})

	t.Run("escape intro without final", func(t *testing.T) {
		d := NewDecoder(newScript(27, 91, -1), EscapeKeyTable())
		got, err := d.Next()
		require.NoError(t, err)
		assert.Equal(t, Decoded{}, got)
	})

	t.Run("console lead only", func(t *testing.T) {
		d := NewDecoder(newScript(224, -1), ConsoleKeyTable())
		got, err := d.Next()
		require.NoError(t, err)
		assert.Equal(t, Decoded{}, got)
	})

	t.Run("late bytes decode as plain keys", func(t *testing.T) {
		// ESC then a gap: the stragglers '[' 'A' are read on later ticks as unbound plain bytes
		src := newScript(27, -1, 91, 65)
		d := NewDecoder(src, EscapeKeyTable())
		for i := 0; i < 3; i++ {
			got, err := d.Next()
			require.NoError(t, err)
			assert.Equal(t, Decoded{}, got, "tick %d", i)
		}
	})
}

func TestDecoder_NoStateAcrossTicks(t *testing.T) {
	src := bytesScript(27, 91, 65, 'q', 27, 91, 68, 'e')
	d := NewDecoder(src, EscapeKeyTable())

	want := []Decoded{
		{ActionSend, CommandUp},
		{ActionSend, CommandQuit},
		{ActionSend, CommandLeft},
		{ActionExit, CommandNone},
		{},
	}
	for i, w := range want {
		got, err := d.Next()
		require.NoError(t, err)
		assert.Equal(t, w, got, "tick %d", i)
	}
}

func TestDecoder_SourceError(t *testing.T) {
	boom := errors.New("stdin closed")
	d := NewDecoder(&scriptSource{err: boom}, EscapeKeyTable())
	_, err := d.Next()
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}
