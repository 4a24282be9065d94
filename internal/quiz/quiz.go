// Package quiz implements the timed quiz state machine.
//
// A Controller owns one quiz session and is driven by five stimuli: timer
// ticks, answer selections, fullscreen changes, start and restart. It never
// touches a terminal, a timer or a database directly; those are reached
// through the Clock, FullscreenGateway, KV and Provider interfaces so the
// same controller runs under Bubble Tea and under fakes in tests.
//
// All methods must be called from a single goroutine. Clock callbacks are
// expected to be delivered on that same goroutine.
package quiz

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/verte-zerg/tuiquiz/internal/model"
)

const (
	// DefaultFeedbackDelay is how long a selected option stays highlighted
	// before the quiz moves on.
	DefaultFeedbackDelay = 500 * time.Millisecond
	// DefaultKey is the persistence key of the session snapshot.
	DefaultKey = "quizState"

	tickInterval   = time.Second
	persistTimeout = 2 * time.Second
)

// TimerID identifies a scheduled callback. Zero is never a valid ID.
type TimerID uint64

// Clock schedules callbacks.
type Clock interface {
	Every(d time.Duration, fn func()) TimerID
	After(d time.Duration, fn func()) TimerID
	Cancel(id TimerID)
}

// FullscreenGateway enters fullscreen and reports fullscreen changes.
type FullscreenGateway interface {
	// RequestEnter asks for fullscreen. The outcome arrives, if at all,
	// through the subscription.
	RequestEnter()
	Subscribe(fn func(isFullscreen bool)) (unsubscribe func())
}

// KV is a string key-value store.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Provider delivers the ordered question list.
type Provider interface {
	Load(ctx context.Context) ([]model.Question, error)
}

// Recorder receives finished attempts.
type Recorder interface {
	RecordAttempt(ctx context.Context, a model.Attempt) error
}

// Options tunes a Controller. Zero values select the defaults.
type Options struct {
	TotalSeconds  int
	FeedbackDelay time.Duration
	Key           string
	Logger        *zap.Logger
	Recorder      Recorder
	Now           func() time.Time
}

// Controller owns a quiz session.
type Controller struct {
	provider Provider
	kv       KV
	clock    Clock
	screen   FullscreenGateway
	recorder Recorder
	log      *zap.Logger

	key           string
	total         int
	feedbackDelay time.Duration
	now           func() time.Time

	questions []model.Question
	loaded    bool
	loadErr   error

	phase         model.Phase
	currentIndex  int
	score         int
	timeRemaining int
	reason        model.CompletionReason

	selected       int
	hasSelected    bool
	pendingCorrect bool

	fullscreen bool

	// generation changes on every start and restart; deferred settles
	// scheduled under an older generation are ignored.
	generation  uint64
	tick        TimerID
	settle      TimerID
	unsubscribe func()

	attemptID string
	startedAt time.Time
}

// New constructs a Controller in the NotStarted phase.
func New(provider Provider, kv KV, clock Clock, screen FullscreenGateway, opts Options) *Controller {
	c := &Controller{
		provider:      provider,
		kv:            kv,
		clock:         clock,
		screen:        screen,
		recorder:      opts.Recorder,
		log:           opts.Logger,
		key:           opts.Key,
		total:         opts.TotalSeconds,
		feedbackDelay: opts.FeedbackDelay,
		now:           opts.Now,
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	if c.key == "" {
		c.key = DefaultKey
	}
	if c.total <= 0 {
		c.total = model.DefaultTotalSeconds
	}
	if c.feedbackDelay <= 0 {
		c.feedbackDelay = DefaultFeedbackDelay
	}
	if c.now == nil {
		c.now = time.Now
	}
	c.reset()
	return c
}

func (c *Controller) reset() {
	c.phase = model.PhaseNotStarted
	c.currentIndex = 0
	c.score = 0
	c.timeRemaining = c.total
	c.reason = model.ReasonNone
	c.clearSelection()
	c.attemptID = ""
	c.startedAt = time.Time{}
}

func (c *Controller) clearSelection() {
	c.selected = 0
	c.hasSelected = false
	c.pendingCorrect = false
}

// Initialize loads the questions and applies them. It blocks for as long
// as the provider does; event loops should call LoadQuestions off the loop
// and hand the result to ApplyQuestions instead.
func (c *Controller) Initialize(ctx context.Context) error {
	qs, err := c.LoadQuestions(ctx)
	return c.ApplyQuestions(ctx, qs, err)
}

// LoadQuestions fetches the question list from the provider. It touches no
// controller state and may run on any goroutine.
func (c *Controller) LoadQuestions(ctx context.Context) ([]model.Question, error) {
	return c.provider.Load(ctx)
}

// ApplyQuestions installs the result of LoadQuestions, restores a persisted
// session if one is valid, subscribes to fullscreen changes and starts the
// one-second tick. A load failure leaves the question list empty and is
// returned; the controller stays usable and renders a loading state.
func (c *Controller) ApplyQuestions(ctx context.Context, qs []model.Question, err error) error {
	c.loaded = true
	if err != nil {
		c.loadErr = err
		c.log.Error("failed to load questions", zap.Error(err))
	} else {
		c.loadErr = nil
		c.questions = qs
		c.log.Info("questions loaded", zap.Int("count", len(qs)))
		rctx, cancel := context.WithTimeout(ctx, persistTimeout)
		c.restore(rctx)
		cancel()
	}
	if c.unsubscribe == nil {
		c.unsubscribe = c.screen.Subscribe(c.OnFullscreenChanged)
	}
	c.armTick()
	return err
}

// Close cancels pending timers and drops the fullscreen subscription.
func (c *Controller) Close() {
	c.cancelTick()
	c.cancelSettle()
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
}

// StartQuiz begins a fresh attempt. It is a no-op unless the quiz is
// NotStarted or Completed.
func (c *Controller) StartQuiz() {
	if c.phase != model.PhaseNotStarted && c.phase != model.PhaseCompleted {
		return
	}
	c.generation++
	c.cancelSettle()
	c.reset()
	c.phase = model.PhaseActive
	c.attemptID = uuid.NewString()
	c.startedAt = c.now()
	c.log.Info("quiz started", zap.String("attempt", c.attemptID), zap.Int("questions", len(c.questions)))
	c.persist()
	c.armTick()
	c.screen.RequestEnter()
}

// OnTick advances the countdown by one second. The tick that reaches zero
// completes the quiz.
func (c *Controller) OnTick() {
	if c.phase != model.PhaseActive {
		return
	}
	if c.timeRemaining > 0 {
		c.timeRemaining--
	}
	if c.timeRemaining == 0 {
		c.CompleteQuiz(model.ReasonTimeExpired)
		return
	}
	c.persist()
}

// OnFullscreenChanged records the fullscreen state. It gates rendering only.
func (c *Controller) OnFullscreenChanged(isFullscreen bool) {
	if c.fullscreen != isFullscreen {
		c.log.Debug("fullscreen changed", zap.Bool("fullscreen", isFullscreen))
	}
	c.fullscreen = isFullscreen
}

// SelectAnswer picks an option of the current question. While a previous
// selection is still on screen further selections are ignored. The answer
// is scored, and the quiz advances, once the feedback delay has elapsed.
func (c *Controller) SelectAnswer(optionIndex int) {
	if c.phase != model.PhaseActive || c.hasSelected {
		return
	}
	if c.currentIndex >= len(c.questions) {
		return
	}
	q := c.questions[c.currentIndex]
	if optionIndex < 0 || optionIndex >= len(q.Options) {
		return
	}
	c.selected = optionIndex
	c.hasSelected = true
	c.pendingCorrect = q.Options[optionIndex] == q.CorrectAnswer

	gen, index := c.generation, c.currentIndex
	c.settle = c.clock.After(c.feedbackDelay, func() {
		c.settleAnswer(gen, index)
	})
}

func (c *Controller) settleAnswer(gen uint64, index int) {
	if gen != c.generation || c.phase != model.PhaseActive || index != c.currentIndex || !c.hasSelected {
		return
	}
	c.settle = 0
	if c.pendingCorrect {
		c.score++
	}
	c.clearSelection()
	c.currentIndex++
	if c.currentIndex < len(c.questions) {
		c.persist()
		return
	}
	c.CompleteQuiz(model.ReasonAllQuestionsAnswered)
}

// CompleteQuiz ends the active attempt. Calls outside the Active phase are
// ignored. An answer still in its feedback window counts as answered.
func (c *Controller) CompleteQuiz(reason model.CompletionReason) {
	if c.phase != model.PhaseActive {
		return
	}
	if c.hasSelected && c.currentIndex < len(c.questions) {
		if c.pendingCorrect {
			c.score++
		}
		c.currentIndex++
	}
	c.phase = model.PhaseCompleted
	c.reason = reason
	c.cancelTick()
	c.cancelSettle()
	c.clearSelection()
	c.deleteSnapshot()
	c.log.Info("quiz completed",
		zap.String("attempt", c.attemptID),
		zap.String("reason", string(reason)),
		zap.Int("score", c.score),
		zap.Int("total", len(c.questions)),
	)
	c.recordAttempt()
}

// RestartQuiz discards any progress and returns to NotStarted.
func (c *Controller) RestartQuiz() {
	c.generation++
	c.cancelSettle()
	c.cancelTick()
	c.deleteSnapshot()
	c.reset()
	c.log.Info("quiz restarted")
}

func (c *Controller) armTick() {
	if c.tick != 0 {
		return
	}
	c.tick = c.clock.Every(tickInterval, c.OnTick)
}

func (c *Controller) cancelTick() {
	if c.tick == 0 {
		return
	}
	c.clock.Cancel(c.tick)
	c.tick = 0
}

func (c *Controller) cancelSettle() {
	if c.settle == 0 {
		return
	}
	c.clock.Cancel(c.settle)
	c.settle = 0
}

func (c *Controller) recordAttempt() {
	if c.recorder == nil {
		return
	}
	startedAt := c.startedAt
	if startedAt.IsZero() {
		startedAt = c.now()
	}
	id := c.attemptID
	if id == "" {
		id = uuid.NewString()
	}
	a := model.Attempt{
		ID:            id,
		StartedAt:     startedAt,
		EndedAt:       c.now(),
		Score:         c.score,
		Total:         len(c.questions),
		Reason:        c.reason,
		TimeRemaining: c.timeRemaining,
	}
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := c.recorder.RecordAttempt(ctx, a); err != nil {
		c.log.Warn("failed to record attempt", zap.String("attempt", id), zap.Error(err))
	}
}
