package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/tuiquiz/internal/quiz"
)

type timerMsg struct {
	id quiz.TimerID
}

type teaTimer struct {
	every  time.Duration
	repeat bool
	fn     func()
}

// teaClock implements quiz.Clock on the Bubble Tea loop. Scheduling queues
// a tea.Tick command; the callback runs in Update when its timerMsg comes
// back, so controller code never runs off the loop goroutine.
type teaClock struct {
	next    quiz.TimerID
	timers  map[quiz.TimerID]*teaTimer
	pending []tea.Cmd
}

func newTeaClock() *teaClock {
	return &teaClock{timers: map[quiz.TimerID]*teaTimer{}}
}

func (c *teaClock) Every(d time.Duration, fn func()) quiz.TimerID {
	return c.add(d, true, fn)
}

func (c *teaClock) After(d time.Duration, fn func()) quiz.TimerID {
	return c.add(d, false, fn)
}

func (c *teaClock) Cancel(id quiz.TimerID) {
	delete(c.timers, id)
}

func (c *teaClock) add(d time.Duration, repeat bool, fn func()) quiz.TimerID {
	c.next++
	id := c.next
	c.timers[id] = &teaTimer{every: d, repeat: repeat, fn: fn}
	c.schedule(id, d)
	return id
}

func (c *teaClock) schedule(id quiz.TimerID, d time.Duration) {
	c.pending = append(c.pending, tea.Tick(d, func(time.Time) tea.Msg {
		return timerMsg{id: id}
	}))
}

// fire runs the callback for id unless it was cancelled meanwhile.
func (c *teaClock) fire(id quiz.TimerID) {
	t, ok := c.timers[id]
	if !ok {
		return
	}
	if t.repeat {
		c.schedule(id, t.every)
	} else {
		delete(c.timers, id)
	}
	t.fn()
}

func (c *teaClock) drain() []tea.Cmd {
	cmds := c.pending
	c.pending = nil
	return cmds
}
