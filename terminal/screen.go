package terminal

import (
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"

	"github.com/lixenwraith/catctl/input"
)

// maxTranscript bounds the lines kept for redraw
const maxTranscript = 512

var (
	styleHeader = tcell.StyleDefault.Reverse(true)
	styleInfo   = tcell.StyleDefault
	styleError  = tcell.StyleDefault.Foreground(tcell.ColorRed)
)

type transcriptLine struct {
	text  string
	style tcell.Style
}

// Screen is a full-screen tcell view that doubles as a Backend and a console.
// tcell decodes keys itself; arrows are re-encoded into the active key table's
// byte sequence so the shared decoder sees the same bytes a raw terminal would send.
type Screen struct {
	screen tcell.Screen
	table  *input.KeyTable
	title  string

	keyCh   chan []byte
	pending []byte

	mu     sync.Mutex
	lines  []transcriptLine
	closed bool

	stopCh   chan struct{}
	doneCh   chan struct{}
	finiOnce sync.Once
}

// NewScreen wraps s; pass nil to use the real terminal
func NewScreen(s tcell.Screen, table *input.KeyTable, title string) *Screen {
	return &Screen{
		screen: s,
		table:  table,
		title:  title,
		keyCh:  make(chan []byte, 256),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Init starts the screen and its event pump
func (s *Screen) Init() error {
	if s.screen == nil {
		scr, err := tcell.NewScreen()
		if err != nil {
			return errors.Wrap(err, "create screen")
		}
		s.screen = scr
	}
	if err := s.screen.Init(); err != nil {
		return errors.Wrap(err, "init screen")
	}
	s.screen.Clear()
	s.draw()

	go s.pump()
	return nil
}

// Fini stops the pump and restores the terminal
func (s *Screen) Fini() {
	s.finiOnce.Do(func() {
		if s.screen == nil {
			return
		}
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()

		close(s.stopCh)
		// Fini makes PollEvent return nil, releasing the pump
		s.screen.Fini()
		<-s.doneCh
	})
}

// pump converts blocking tcell events into queued key bytes
func (s *Screen) pump() {
	defer close(s.doneCh)

	for {
		ev := s.screen.PollEvent()
		if ev == nil {
			return
		}

		switch ev := ev.(type) {
		case *tcell.EventKey:
			seq := s.encodeKey(ev.Key(), ev.Rune())
			if len(seq) == 0 {
				continue
			}
			select {
			case s.keyCh <- seq:
			case <-s.stopCh:
				return
			}
		case *tcell.EventResize:
			s.screen.Sync()
			s.draw()
		}
	}
}

// encodeKey maps a tcell key to the raw bytes a terminal would have produced
func (s *Screen) encodeKey(key tcell.Key, r rune) []byte {
	switch key {
	case tcell.KeyUp:
		return s.table.Sequence(input.CommandUp)
	case tcell.KeyDown:
		return s.table.Sequence(input.CommandDown)
	case tcell.KeyLeft:
		return s.table.Sequence(input.CommandLeft)
	case tcell.KeyRight:
		return s.table.Sequence(input.CommandRight)
	case tcell.KeyCtrlC:
		// tcell swallows SIGINT; treat Ctrl+C as the local exit key
		return []byte{'e'}
	case tcell.KeyRune:
		if r > 0 && r < 0x80 {
			return []byte{byte(r)}
		}
	}
	return nil
}

// PollKey implements Backend; a whole key sequence is queued atomically
func (s *Screen) PollKey() (byte, bool, error) {
	if len(s.pending) == 0 {
		select {
		case seq := <-s.keyCh:
			s.pending = seq
		default:
			return 0, false, nil
		}
	}
	b := s.pending[0]
	s.pending = s.pending[1:]
	return b, true, nil
}

// Lines returns a copy of the transcript text
func (s *Screen) Lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.lines))
	for i, l := range s.lines {
		out[i] = l.text
	}
	return out
}

// Infof appends an informational line
func (s *Screen) Infof(format string, args ...any) {
	s.appendLine(fmt.Sprintf(format, args...), styleInfo)
}

// Errorf appends an error line
func (s *Screen) Errorf(format string, args ...any) {
	s.appendLine(fmt.Sprintf(format, args...), styleError)
}

func (s *Screen) appendLine(text string, style tcell.Style) {
	s.mu.Lock()
	s.lines = append(s.lines, transcriptLine{text: text, style: style})
	if len(s.lines) > maxTranscript {
		s.lines = s.lines[len(s.lines)-maxTranscript:]
	}
	s.mu.Unlock()
	s.draw()
}

// draw renders the header and as many trailing transcript lines as fit
func (s *Screen) draw() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.screen == nil || s.closed {
		return
	}
	w, h := s.screen.Size()
	s.screen.Clear()
	if w <= 0 || h <= 0 {
		return
	}

	s.drawText(0, s.title, w, styleHeader, true)

	rows := h - 1
	start := 0
	if len(s.lines) > rows {
		start = len(s.lines) - rows
	}
	for i, line := range s.lines[start:] {
		s.drawText(i+1, line.text, w, line.style, false)
	}
	s.screen.Show()
}

func (s *Screen) drawText(y int, text string, w int, style tcell.Style, fill bool) {
	x := 0
	for _, r := range text {
		if x >= w {
			break
		}
		s.screen.SetContent(x, y, r, nil, style)
		x++
	}
	if fill {
		for ; x < w; x++ {
			s.screen.SetContent(x, y, ' ', nil, style)
		}
	}
}
