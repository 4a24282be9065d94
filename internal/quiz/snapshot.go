package quiz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/verte-zerg/tuiquiz/internal/model"
)

// ErrInvalidSnapshot is returned for snapshots that cannot be resumed.
var ErrInvalidSnapshot = errors.New("invalid snapshot")

// EncodeSnapshot serializes the resumable part of a session.
func EncodeSnapshot(s model.Snapshot) (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeSnapshot parses raw and checks it against the loaded question count
// and the configured time budget.
func DecodeSnapshot(raw string, questionCount, total int) (model.Snapshot, error) {
	var s model.Snapshot
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return model.Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	switch {
	case s.CurrentIndex == nil:
		return model.Snapshot{}, fmt.Errorf("%w: missing currentIndex", ErrInvalidSnapshot)
	case s.Score == nil:
		return model.Snapshot{}, fmt.Errorf("%w: missing score", ErrInvalidSnapshot)
	case s.TimeRemainingSeconds == nil:
		return model.Snapshot{}, fmt.Errorf("%w: missing timeRemainingSeconds", ErrInvalidSnapshot)
	case s.Phase == nil:
		return model.Snapshot{}, fmt.Errorf("%w: missing phase", ErrInvalidSnapshot)
	}
	if !s.Phase.Valid() {
		return model.Snapshot{}, fmt.Errorf("%w: unknown phase %q", ErrInvalidSnapshot, *s.Phase)
	}
	idx, score, remaining := *s.CurrentIndex, *s.Score, *s.TimeRemainingSeconds
	if idx < 0 || idx > questionCount {
		return model.Snapshot{}, fmt.Errorf("%w: currentIndex %d outside [0, %d]", ErrInvalidSnapshot, idx, questionCount)
	}
	if score < 0 || score > idx {
		return model.Snapshot{}, fmt.Errorf("%w: score %d outside [0, %d]", ErrInvalidSnapshot, score, idx)
	}
	if remaining <= 0 || remaining > total {
		return model.Snapshot{}, fmt.Errorf("%w: timeRemainingSeconds %d outside (0, %d]", ErrInvalidSnapshot, remaining, total)
	}
	return s, nil
}

func (c *Controller) snapshot() model.Snapshot {
	idx, score, remaining, phase := c.currentIndex, c.score, c.timeRemaining, c.phase
	s := model.Snapshot{
		CurrentIndex:         &idx,
		Score:                &score,
		TimeRemainingSeconds: &remaining,
		Phase:                &phase,
		AttemptID:            c.attemptID,
	}
	if !c.startedAt.IsZero() {
		startedAt := c.startedAt
		s.StartedAt = &startedAt
	}
	return s
}

// persist writes the snapshot while the quiz is active. Failures are logged
// and otherwise ignored.
func (c *Controller) persist() {
	if c.phase != model.PhaseActive {
		return
	}
	raw, err := EncodeSnapshot(c.snapshot())
	if err != nil {
		c.log.Warn("failed to encode snapshot", zap.Error(err))
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := c.kv.Set(ctx, c.key, raw); err != nil {
		c.log.Warn("failed to persist snapshot", zap.Error(err))
	}
}

func (c *Controller) deleteSnapshot() {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := c.kv.Delete(ctx, c.key); err != nil {
		c.log.Warn("failed to delete snapshot", zap.Error(err))
	}
}

// restore resumes an active session from the store. Anything that does not
// describe a resumable active session is deleted.
func (c *Controller) restore(ctx context.Context) {
	raw, ok, err := c.kv.Get(ctx, c.key)
	if err != nil {
		c.log.Warn("failed to read snapshot", zap.Error(err))
		return
	}
	if !ok {
		return
	}
	s, err := DecodeSnapshot(raw, len(c.questions), c.total)
	if err != nil {
		c.log.Info("discarding snapshot", zap.Error(err))
		c.deleteSnapshot()
		return
	}
	if *s.Phase != model.PhaseActive {
		c.log.Info("discarding inactive snapshot", zap.String("phase", string(*s.Phase)))
		c.deleteSnapshot()
		return
	}

	c.generation++
	c.phase = model.PhaseActive
	c.currentIndex = *s.CurrentIndex
	c.score = *s.Score
	c.timeRemaining = *s.TimeRemainingSeconds
	c.reason = model.ReasonNone
	c.clearSelection()
	c.attemptID = s.AttemptID
	if s.StartedAt != nil {
		c.startedAt = *s.StartedAt
	}
	c.log.Info("quiz resumed",
		zap.String("attempt", c.attemptID),
		zap.Int("index", c.currentIndex),
		zap.Int("score", c.score),
		zap.Int("remaining", c.timeRemaining),
	)
	if c.currentIndex >= len(c.questions) {
		c.CompleteQuiz(model.ReasonAllQuestionsAnswered)
	}
}
