package quiz

import (
	"fmt"

	"github.com/verte-zerg/tuiquiz/internal/model"
)

// Feedback messages shown on the results screen.
const (
	FeedbackNeedsImprovement = "You need to work hard."
	FeedbackModerate         = "Nice, you can perform better."
	FeedbackStrong           = "Well Done!! Keep it up."
	FeedbackTimeExpired      = "Ohh!! You ran out of time."
)

// View is everything the render surface needs to draw one frame.
type View struct {
	Phase model.Phase
	// Loading is set while no questions are available, including after a
	// failed load. LoadError then carries the reason.
	Loading   bool
	LoadError string
	// NeedsFullscreen blocks the quiz content behind a prompt.
	NeedsFullscreen bool

	QuestionNumber int
	QuestionCount  int
	Question       string
	Options        []string
	// Selected is the highlighted option, or -1.
	Selected int

	TimeRemaining int
	TimeLeft      string
	Score         int
	Reason        model.CompletionReason
	Feedback      string
}

// ViewModel projects the session for rendering. It has no side effects.
func (c *Controller) ViewModel() View {
	v := View{
		Phase:           c.phase,
		Loading:         len(c.questions) == 0,
		NeedsFullscreen: c.phase == model.PhaseActive && !c.fullscreen,
		QuestionCount:   len(c.questions),
		Selected:        -1,
		TimeRemaining:   c.timeRemaining,
		TimeLeft:        FormatTime(c.timeRemaining),
		Score:           c.score,
		Reason:          c.reason,
	}
	if c.loadErr != nil {
		v.LoadError = c.loadErr.Error()
	}
	if c.phase == model.PhaseActive && c.currentIndex < len(c.questions) {
		q := c.questions[c.currentIndex]
		v.QuestionNumber = c.currentIndex + 1
		v.Question = q.Text
		v.Options = append([]string(nil), q.Options...)
		if c.hasSelected {
			v.Selected = c.selected
		}
	}
	if c.phase == model.PhaseCompleted {
		v.Feedback = CompletionFeedback(c.reason, c.score)
	}
	return v
}

// Feedback classifies a final score.
func Feedback(score int) string {
	switch {
	case score < 4:
		return FeedbackNeedsImprovement
	case score <= 7:
		return FeedbackModerate
	default:
		return FeedbackStrong
	}
}

// CompletionFeedback returns the results-screen message. Running out of
// time replaces the score-based feedback.
func CompletionFeedback(reason model.CompletionReason, score int) string {
	if reason == model.ReasonTimeExpired {
		return FeedbackTimeExpired
	}
	return Feedback(score)
}

// FormatTime renders seconds as M:SS.
func FormatTime(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// Session is a read-only copy of the session counters.
type Session struct {
	Phase         model.Phase
	CurrentIndex  int
	Score         int
	TimeRemaining int
	Reason        model.CompletionReason
}

// Session returns the current counters.
func (c *Controller) Session() Session {
	return Session{
		Phase:         c.phase,
		CurrentIndex:  c.currentIndex,
		Score:         c.score,
		TimeRemaining: c.timeRemaining,
		Reason:        c.reason,
	}
}
