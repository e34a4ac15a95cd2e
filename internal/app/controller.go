package app

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/shovanNITS/Quiz-Generator-App/internal/domain"
	"github.com/shovanNITS/Quiz-Generator-App/internal/opentdb"
	"github.com/sirupsen/logrus"
)

// DefaultTickInterval is how often the elapsed-time display refreshes.
const DefaultTickInterval = time.Second

const loadFailureMessage = "Could not load quiz. Try again later."

// Presenter renders session state. Calls are made while the controller holds
// its lock, so implementations must not call back into the controller.
type Presenter interface {
	Render(View)
	Tick(elapsed string)
	Notify(message string)
}

// QuestionSource fetches raw questions for a quiz configuration.
type QuestionSource interface {
	FetchQuestions(ctx context.Context, cfg domain.QuizConfig) ([]opentdb.RawQuestion, error)
}

// AuthStatus reports whether the auth gate is open.
type AuthStatus interface {
	Authenticated() bool
}

// SessionRepository tracks live sessions (in-memory, Redis, etc).
type SessionRepository interface {
	Put(session *Controller)
	Get(id string) (*Controller, bool)
	Delete(id string)
	Len() int
}

// QuestionView is the question currently on screen.
type QuestionView struct {
	Number   int                 `json:"number"`
	Total    int                 `json:"total"`
	Kind     domain.QuestionType `json:"kind"`
	Prompt   string              `json:"prompt"`
	Options  []string            `json:"options"`
	Selected string              `json:"selected,omitempty"`
}

// View is a snapshot of everything a presentation needs to draw a screen.
type View struct {
	SessionID  string            `json:"sessionId"`
	Screen     domain.Screen     `json:"screen"`
	Form       domain.QuizConfig `json:"form"`
	Loading    bool              `json:"loading"`
	Title      string            `json:"title,omitempty"`
	Question   *QuestionView     `json:"question,omitempty"`
	CanAdvance bool              `json:"canAdvance"`
	Progress   int               `json:"progress"`
	Elapsed    string            `json:"elapsed"`
	Result     *Result           `json:"result,omitempty"`
}

// Controller drives one quiz session through config, quiz and results.
type Controller struct {
	id        string
	source    QuestionSource
	presenter Presenter
	clock     Clock
	shuffler  Shuffler
	tick      time.Duration
	auth      AuthStatus
	log       logrus.FieldLogger

	mu         sync.Mutex
	screen     domain.Screen
	form       domain.QuizConfig
	config     domain.QuizConfig
	loading    bool
	fetching   bool
	questions  []domain.Question
	answers    map[int]domain.Answer
	index      int
	canAdvance bool
	startedAt  time.Time
	elapsed    int
	result     *Result
	epoch      uint64
	timer      *sessionTimer
	timerGen   uint64
	closed     bool
}

type sessionTimer struct {
	ticker Ticker
	cancel context.CancelFunc
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(clock Clock) Option {
	return func(c *Controller) { c.clock = clock }
}

// WithShuffler sets the randomness used to order answer options.
func WithShuffler(s Shuffler) Option {
	return func(c *Controller) { c.shuffler = s }
}

// WithTickInterval overrides how often the timer display refreshes.
func WithTickInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.tick = d
		}
	}
}

// WithAuth gates SubmitConfig on an open auth gate.
func WithAuth(auth AuthStatus) Option {
	return func(c *Controller) { c.auth = auth }
}

// WithLogger sets the session logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Controller) {
		if log != nil {
			c.log = log
		}
	}
}

func NewController(id string, source QuestionSource, presenter Presenter, opts ...Option) *Controller {
	c := &Controller{
		id:        id,
		source:    source,
		presenter: presenter,
		clock:     SystemClock(),
		shuffler:  rand.New(rand.NewSource(time.Now().UnixNano())),
		tick:      DefaultTickInterval,
		log:       logrus.StandardLogger(),
		screen:    domain.ScreenConfig,
		form:      domain.DefaultForm(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.WithField("session", id)
	return c
}

// ID returns the session identifier.
func (c *Controller) ID() string { return c.id }

// View returns a snapshot of the current state.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

// Refresh re-renders the current state.
func (c *Controller) Refresh() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.renderLocked()
}

// SubmitConfig fetches and normalizes questions, then starts the quiz. On
// failure the session stays on the config screen and the user is notified.
func (c *Controller) SubmitConfig(ctx context.Context, cfg domain.QuizConfig) error {
	c.mu.Lock()
	if err := c.checkOpenLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	if c.auth != nil && !c.auth.Authenticated() {
		c.mu.Unlock()
		return domain.ErrUnauthenticated
	}
	if c.screen != domain.ScreenConfig {
		c.mu.Unlock()
		return domain.ErrInvalidTransition
	}
	// A reset clears loading but the old request may still be in flight.
	if c.loading || c.fetching {
		c.mu.Unlock()
		return domain.ErrFetchInProgress
	}
	cfg.Topic = strings.TrimSpace(cfg.Topic)
	if err := cfg.Validate(); err != nil {
		c.presenter.Notify(err.Error())
		c.mu.Unlock()
		return err
	}

	c.form = cfg
	c.loading = true
	c.fetching = true
	epoch := c.epoch
	c.renderLocked()
	c.mu.Unlock()

	raw, err := c.source.FetchQuestions(ctx, cfg)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.fetching = false
	if c.closed || c.epoch != epoch {
		c.log.Info("discarding questions fetched for a reset session")
		return domain.ErrStaleSession
	}
	c.loading = false

	if err != nil {
		c.log.WithError(err).Error("could not load quiz")
		c.presenter.Notify(loadFailureMessage)
		c.renderLocked()
		return err
	}
	if len(raw) == 0 {
		c.log.WithField("topic", cfg.Topic).Warn("no questions matched quiz configuration")
		c.presenter.Notify(loadFailureMessage)
		c.renderLocked()
		return domain.ErrNoQuestions
	}

	c.config = cfg
	c.questions = NormalizeAll(raw, c.shuffler)
	c.beginLocked()
	c.log.WithFields(logrus.Fields{
		"topic":     cfg.Topic,
		"questions": len(c.questions),
	}).Info("quiz started")
	c.renderLocked()
	return nil
}

// Select records or overwrites the answer for the current question.
func (c *Controller) Select(option string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkOpenLocked(); err != nil {
		return err
	}
	if c.screen != domain.ScreenQuiz {
		return domain.ErrInvalidTransition
	}

	question := c.questions[c.index]
	if !question.HasOption(option) {
		return domain.ErrOptionNotFound
	}
	c.answers[c.index] = domain.Answer{
		QuestionID:   question.ID,
		ChosenOption: option,
		IsCorrect:    option == question.CorrectAnswer,
	}
	c.canAdvance = true
	c.renderLocked()
	return nil
}

// Advance moves to the next question, or to results after the last one.
func (c *Controller) Advance() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkOpenLocked(); err != nil {
		return err
	}
	if c.screen != domain.ScreenQuiz {
		return domain.ErrInvalidTransition
	}
	if !c.canAdvance {
		return domain.ErrNoSelection
	}

	if c.index < len(c.questions)-1 {
		c.index++
		c.canAdvance = false
	} else {
		c.finishLocked()
	}
	c.renderLocked()
	return nil
}

// Quit abandons the running quiz when confirmed and reports whether it did.
func (c *Controller) Quit(confirmed bool) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkOpenLocked(); err != nil {
		return false, err
	}
	if c.screen != domain.ScreenQuiz {
		return false, domain.ErrInvalidTransition
	}
	if !confirmed {
		return false, nil
	}

	c.resetLocked()
	c.log.Info("quiz quit")
	c.renderLocked()
	return true, nil
}

// Retake restarts the finished quiz with the same questions.
func (c *Controller) Retake() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkOpenLocked(); err != nil {
		return err
	}
	if c.screen != domain.ScreenResults {
		return domain.ErrInvalidTransition
	}

	c.beginLocked()
	c.renderLocked()
	return nil
}

// NewQuiz resets everything, including the form, back to the config screen.
func (c *Controller) NewQuiz() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkOpenLocked(); err != nil {
		return err
	}

	c.resetLocked()
	c.form = domain.DefaultForm()
	c.renderLocked()
	return nil
}

// Abandon drops any session in progress without confirmation, keeping the form.
func (c *Controller) Abandon() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkOpenLocked(); err != nil {
		return err
	}

	c.resetLocked()
	c.renderLocked()
	return nil
}

// Close stops the timer and silences the presenter.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.stopTimerLocked()
	c.epoch++
	c.closed = true
}

func (c *Controller) checkOpenLocked() error {
	if c.closed {
		return domain.ErrSessionClosed
	}
	return nil
}

func (c *Controller) beginLocked() {
	c.answers = make(map[int]domain.Answer, len(c.questions))
	c.index = 0
	c.canAdvance = false
	c.result = nil
	c.startedAt = c.clock.Now()
	c.elapsed = 0
	c.screen = domain.ScreenQuiz
	c.startTimerLocked()
}

func (c *Controller) finishLocked() {
	c.stopTimerLocked()
	c.elapsed = c.elapsedLocked()
	c.index = len(c.questions)
	c.canAdvance = false
	c.screen = domain.ScreenResults
	c.result = buildResult(c.config, c.questions, c.answers, c.elapsed)
	c.log.WithFields(logrus.Fields{
		"correct":    c.result.Correct,
		"total":      c.result.Total,
		"percentage": c.result.Percentage,
	}).Info("quiz finished")
}

func (c *Controller) resetLocked() {
	c.stopTimerLocked()
	c.epoch++
	c.loading = false
	c.config = domain.QuizConfig{}
	c.questions = nil
	c.answers = nil
	c.index = 0
	c.canAdvance = false
	c.startedAt = time.Time{}
	c.elapsed = 0
	c.result = nil
	c.screen = domain.ScreenConfig
}

func (c *Controller) elapsedLocked() int {
	seconds := int(c.clock.Now().Sub(c.startedAt) / time.Second)
	if seconds < 0 {
		return 0
	}
	return seconds
}

func (c *Controller) startTimerLocked() {
	c.stopTimerLocked()

	ticker := c.clock.NewTicker(c.tick)
	ctx, cancel := context.WithCancel(context.Background())
	c.timerGen++
	c.timer = &sessionTimer{ticker: ticker, cancel: cancel}
	go c.runTimer(ctx, ticker, c.timerGen)
}

func (c *Controller) stopTimerLocked() {
	if c.timer == nil {
		return
	}
	c.timer.cancel()
	c.timer.ticker.Stop()
	c.timer = nil
	c.timerGen++
}

func (c *Controller) runTimer(ctx context.Context, ticker Ticker, gen uint64) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			c.onTick(gen)
		}
	}
}

func (c *Controller) onTick(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	// A tick queued before the timer was stopped belongs to an older generation.
	if c.closed || c.timer == nil || c.timerGen != gen || c.screen != domain.ScreenQuiz {
		return
	}
	c.elapsed = c.elapsedLocked()
	c.presenter.Tick(FormatClock(c.elapsed))
}

func (c *Controller) renderLocked() {
	if c.closed {
		return
	}
	c.presenter.Render(c.viewLocked())
}

func (c *Controller) viewLocked() View {
	view := View{
		SessionID: c.id,
		Screen:    c.screen,
		Form:      c.form,
		Loading:   c.loading,
		Elapsed:   FormatClock(c.elapsed),
	}

	switch c.screen {
	case domain.ScreenQuiz:
		question := c.questions[c.index]
		selected := ""
		if answer, ok := c.answers[c.index]; ok {
			selected = answer.ChosenOption
		}
		view.Title = quizTitle(c.config)
		view.Question = &QuestionView{
			Number:   c.index + 1,
			Total:    len(c.questions),
			Kind:     question.Kind,
			Prompt:   question.Prompt,
			Options:  append([]string(nil), question.Options...),
			Selected: selected,
		}
		view.CanAdvance = c.canAdvance
		view.Progress = c.index * 100 / len(c.questions)
	case domain.ScreenResults:
		view.Title = quizTitle(c.config)
		view.Progress = 100
		view.Result = c.result
	}
	return view
}

func quizTitle(cfg domain.QuizConfig) string {
	if cfg.Topic == "" {
		return "Trivia Quiz"
	}
	return cfg.Topic + " Quiz"
}
