// Package model defines shared data structures.
package model

import "time"

// DefaultTotalSeconds is the time budget of a quiz attempt.
const DefaultTotalSeconds = 600

// Config defines quiz settings.
type Config struct {
	QuestionsPath string
	TotalSeconds  int
	Store         string
	RedisAddr     string
	LogLevel      string
}

// Question is a single multiple-choice question.
type Question struct {
	Text          string   `json:"question" yaml:"question"`
	Options       []string `json:"options" yaml:"options"`
	CorrectAnswer string   `json:"answer" yaml:"answer"`
}

// Phase is the lifecycle stage of a quiz session.
type Phase string

// Known phases.
const (
	PhaseNotStarted Phase = "not_started"
	PhaseActive     Phase = "active"
	PhaseCompleted  Phase = "completed"
)

// Valid reports whether p is one of the known phases.
func (p Phase) Valid() bool {
	switch p {
	case PhaseNotStarted, PhaseActive, PhaseCompleted:
		return true
	default:
		return false
	}
}

// CompletionReason records why a session ended.
type CompletionReason string

// Completion reasons.
const (
	ReasonNone                 CompletionReason = ""
	ReasonTimeExpired          CompletionReason = "time_expired"
	ReasonAllQuestionsAnswered CompletionReason = "all_answered"
)

// Snapshot is the persisted projection of an active session.
// Pointer fields distinguish absent keys from zero values.
type Snapshot struct {
	CurrentIndex         *int       `json:"currentIndex"`
	Score                *int       `json:"score"`
	TimeRemainingSeconds *int       `json:"timeRemainingSeconds"`
	Phase                *Phase     `json:"phase"`
	AttemptID            string     `json:"attemptId,omitempty"`
	StartedAt            *time.Time `json:"startedAt,omitempty"`
}

// Attempt captures a finished quiz attempt.
type Attempt struct {
	ID            string
	StartedAt     time.Time
	EndedAt       time.Time
	Score         int
	Total         int
	Reason        CompletionReason
	TimeRemaining int
}
