package questions

import (
	"fmt"
	"strings"

	"github.com/verte-zerg/tuiquiz/internal/model"
)

// Validate checks that q has text, at least two options and an answer
// matching one of them exactly.
func Validate(q model.Question) error {
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("question text is empty")
	}
	if len(q.Options) < 2 {
		return fmt.Errorf("expected at least 2 options, got %d", len(q.Options))
	}
	for _, opt := range q.Options {
		if opt == q.CorrectAnswer {
			return nil
		}
	}
	return fmt.Errorf("answer %q is not one of the options", q.CorrectAnswer)
}
