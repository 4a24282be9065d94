package tui

import tea "github.com/charmbracelet/bubbletea"

const (
	minWidth  = 60
	minHeight = 16
)

// screenGateway implements quiz.FullscreenGateway for a terminal. The quiz
// counts as fullscreen while the alternate screen is active and the window
// is at least minWidth x minHeight.
type screenGateway struct {
	alt      bool
	width    int
	height   int
	reported bool

	subs    map[int]func(bool)
	nextSub int
	pending []tea.Cmd
}

func newScreenGateway() *screenGateway {
	return &screenGateway{subs: map[int]func(bool){}}
}

func (s *screenGateway) RequestEnter() {
	if s.alt {
		return
	}
	s.alt = true
	s.pending = append(s.pending, tea.EnterAltScreen)
}

func (s *screenGateway) Subscribe(fn func(bool)) func() {
	s.nextSub++
	id := s.nextSub
	s.subs[id] = fn
	return func() { delete(s.subs, id) }
}

func (s *screenGateway) exit() {
	if !s.alt {
		return
	}
	s.alt = false
	s.pending = append(s.pending, tea.ExitAltScreen)
}

func (s *screenGateway) resize(width, height int) {
	s.width = width
	s.height = height
}

func (s *screenGateway) isFullscreen() bool {
	return s.alt && s.width >= minWidth && s.height >= minHeight
}

// sync notifies subscribers when the fullscreen state changed since the
// last call.
func (s *screenGateway) sync() {
	cur := s.isFullscreen()
	if cur == s.reported {
		return
	}
	s.reported = cur
	for _, fn := range s.subs {
		fn(cur)
	}
}

func (s *screenGateway) drain() []tea.Cmd {
	cmds := s.pending
	s.pending = nil
	return cmds
}
