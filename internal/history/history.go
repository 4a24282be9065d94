// Package history renders the log of finished quiz attempts.
package history

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/verte-zerg/tuiquiz/internal/model"
	"github.com/verte-zerg/tuiquiz/internal/quiz"
)

// Lister reads logged attempts, oldest first.
type Lister interface {
	ListAttempts(ctx context.Context, last int) ([]model.Attempt, error)
}

// Write prints the last attempts as an aligned table. A non-positive last
// prints all of them.
func Write(ctx context.Context, w io.Writer, src Lister, last int) error {
	attempts, err := src.ListAttempts(ctx, last)
	if err != nil {
		return fmt.Errorf("failed to list attempts: %w", err)
	}
	if len(attempts) == 0 {
		_, err := fmt.Fprintln(w, "No finished attempts yet.")
		return err
	}
	for _, line := range Lines(attempts, time.Local) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

// Lines formats attempts as table lines, header first.
func Lines(attempts []model.Attempt, loc *time.Location) []string {
	headers := []string{"Finished", "Score", "Result", "Time left", "Took"}
	rows := make([][]string, 0, len(attempts))
	for _, a := range attempts {
		rows = append(rows, []string{
			a.EndedAt.In(loc).Format("2006-01-02 15:04"),
			fmt.Sprintf("%d/%d", a.Score, a.Total),
			resultLabel(a),
			quiz.FormatTime(a.TimeRemaining),
			formatDuration(a.EndedAt.Sub(a.StartedAt)),
		})
	}
	return formatTable(headers, rows, map[int]bool{1: true, 3: true, 4: true})
}

func resultLabel(a model.Attempt) string {
	if a.Reason == model.ReasonTimeExpired {
		return "out of time"
	}
	switch quiz.Feedback(a.Score) {
	case quiz.FeedbackStrong:
		return "strong"
	case quiz.FeedbackModerate:
		return "moderate"
	default:
		return "needs work"
	}
}

func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return quiz.FormatTime(int(d.Round(time.Second) / time.Second))
}
