package quiz

import (
	"errors"
	"testing"

	"github.com/verte-zerg/tuiquiz/internal/model"
)

func TestFeedbackTiers(t *testing.T) {
	cases := []struct {
		score int
		want  string
	}{
		{0, FeedbackNeedsImprovement},
		{3, FeedbackNeedsImprovement},
		{4, FeedbackModerate},
		{7, FeedbackModerate},
		{8, FeedbackStrong},
		{10, FeedbackStrong},
	}
	for _, tc := range cases {
		if got := Feedback(tc.score); got != tc.want {
			t.Fatalf("Feedback(%d) = %q, want %q", tc.score, got, tc.want)
		}
	}
}

func TestCompletionFeedbackTimeout(t *testing.T) {
	if got := CompletionFeedback(model.ReasonTimeExpired, 9); got != FeedbackTimeExpired {
		t.Fatalf("expected timeout message, got %q", got)
	}
	if got := CompletionFeedback(model.ReasonAllQuestionsAnswered, 9); got != FeedbackStrong {
		t.Fatalf("expected score feedback, got %q", got)
	}
}

func TestFormatTime(t *testing.T) {
	cases := map[int]string{
		600: "10:00",
		599: "9:59",
		65:  "1:05",
		5:   "0:05",
		0:   "0:00",
		-3:  "0:00",
	}
	for in, want := range cases {
		if got := FormatTime(in); got != want {
			t.Fatalf("FormatTime(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestSnapshotRoundTripKeepsPhase(t *testing.T) {
	idx, score, remaining := 2, 1, 300
	phase := model.PhaseActive
	raw, err := EncodeSnapshot(model.Snapshot{
		CurrentIndex:         &idx,
		Score:                &score,
		TimeRemainingSeconds: &remaining,
		Phase:                &phase,
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	s, err := DecodeSnapshot(raw, 5, 600)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if *s.Phase != model.PhaseActive || *s.CurrentIndex != 2 {
		t.Fatalf("unexpected snapshot: %s", raw)
	}
}

func TestDecodeSnapshotAcceptsEndOfQuiz(t *testing.T) {
	raw := `{"currentIndex":5,"score":5,"timeRemainingSeconds":10,"phase":"active"}`
	if _, err := DecodeSnapshot(raw, 5, 600); err != nil {
		t.Fatalf("currentIndex equal to question count should be valid: %v", err)
	}
	_, err := DecodeSnapshot(raw, 4, 600)
	if !errors.Is(err, ErrInvalidSnapshot) {
		t.Fatalf("expected ErrInvalidSnapshot, got %v", err)
	}
}
