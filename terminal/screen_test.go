package terminal

import (
	"fmt"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/catctl/input"
)

func newSimScreen(t *testing.T, conv input.Convention) (*Screen, tcell.SimulationScreen) {
	t.Helper()
	sim := tcell.NewSimulationScreen("UTF-8")
	s := NewScreen(sim, input.KeyTableFor(conv), "catctl 127.0.0.1:65432")
	require.NoError(t, s.Init())
	t.Cleanup(s.Fini)
	return s, sim
}

// rowText reads a row under the screen lock so a concurrent redraw is never observed half done
func rowText(s *Screen, sim tcell.SimulationScreen, y int) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, _ := sim.Size()
	row := make([]rune, 0, w)
	for x := 0; x < w; x++ {
		mainc, _, _, _ := sim.GetContent(x, y)
		if mainc == 0 {
			mainc = ' '
		}
		row = append(row, mainc)
	}
	return string(row)
}

func TestScreen_EncodeKey(t *testing.T) {
	esc := NewScreen(nil, input.EscapeKeyTable(), "")
	con := NewScreen(nil, input.ConsoleKeyTable(), "")

	tests := []struct {
		name string
		s    *Screen
		key  tcell.Key
		r    rune
		want []byte
	}{
		{"escape up", esc, tcell.KeyUp, 0, []byte{27, '[', 'A'}},
		{"escape down", esc, tcell.KeyDown, 0, []byte{27, '[', 'B'}},
		{"escape right", esc, tcell.KeyRight, 0, []byte{27, '[', 'C'}},
		{"escape left", esc, tcell.KeyLeft, 0, []byte{27, '[', 'D'}},
		{"console up", con, tcell.KeyUp, 0, []byte{224, 72}},
		{"console left", con, tcell.KeyLeft, 0, []byte{224, 75}},
		{"rune q", esc, tcell.KeyRune, 'q', []byte{'q'}},
		{"non-ascii rune", esc, tcell.KeyRune, 'é', nil},
		{"ctrl+c exits", esc, tcell.KeyCtrlC, 0, []byte{'e'}},
		{"home ignored", esc, tcell.KeyHome, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.s.encodeKey(tt.key, tt.r))
		})
	}
}

func TestScreen_PollKeyDeliversWholeSequence(t *testing.T) {
	s := NewScreen(nil, input.EscapeKeyTable(), "")
	s.keyCh <- []byte{27, '[', 'A'}
	s.keyCh <- []byte{'q'}

	dec := input.NewDecoder(s, input.EscapeKeyTable())

	got, err := dec.Next()
	require.NoError(t, err)
	assert.Equal(t, input.Decoded{Action: input.ActionSend, Command: input.CommandUp}, got)

	got, err = dec.Next()
	require.NoError(t, err)
	assert.Equal(t, input.Decoded{Action: input.ActionSend, Command: input.CommandQuit}, got)

	got, err = dec.Next()
	require.NoError(t, err)
	assert.Equal(t, input.ActionNone, got.Action)
}

func TestScreen_DrawsHeaderAndTranscript(t *testing.T) {
	s, sim := newSimScreen(t, input.ConventionEscape)

	s.Infof("Sent: '%s'", "UP")
	s.Errorf("recv failed")

	assert.Contains(t, rowText(s, sim, 0), "catctl 127.0.0.1:65432")
	assert.Contains(t, rowText(s, sim, 1), "Sent: 'UP'")
	assert.Contains(t, rowText(s, sim, 2), "recv failed")

	s.mu.Lock()
	_, _, style, _ := sim.GetContent(0, 2)
	s.mu.Unlock()
	fg, _, _ := style.Decompose()
	assert.Equal(t, tcell.ColorRed, fg)
}

func TestScreen_ScrollsToLatest(t *testing.T) {
	s, sim := newSimScreen(t, input.ConventionEscape)

	_, h := sim.Size()
	require.Greater(t, h, 2)
	total := h + 10

	for i := 0; i < total; i++ {
		s.Infof("line %03d", i)
	}

	// Header row plus the last h-1 lines
	assert.Contains(t, rowText(s, sim, 1), fmt.Sprintf("line %03d", total-(h-1)))
	assert.Contains(t, rowText(s, sim, h-1), fmt.Sprintf("line %03d", total-1))
	assert.Len(t, s.Lines(), total)
}

func TestScreen_TranscriptBounded(t *testing.T) {
	s := NewScreen(nil, input.EscapeKeyTable(), "")
	for i := 0; i < maxTranscript+10; i++ {
		s.Infof("%s", fmt.Sprint(i))
	}
	lines := s.Lines()
	assert.Len(t, lines, maxTranscript)
	assert.Equal(t, fmt.Sprint(maxTranscript+9), lines[len(lines)-1])
}

func TestScreen_FiniIdempotent(t *testing.T) {
	sim := tcell.NewSimulationScreen("UTF-8")
	s := NewScreen(sim, input.EscapeKeyTable(), "")
	require.NoError(t, s.Init())

	s.Fini()
	s.Fini()

	// Writes after Fini are kept but not drawn
	s.Infof("Client finished.")
	assert.Equal(t, []string{"Client finished."}, s.Lines())
}
