package app_test

import (
	"context"
	"io"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/shovanNITS/Quiz-Generator-App/internal/app"
	"github.com/shovanNITS/Quiz-Generator-App/internal/domain"
	"github.com/shovanNITS/Quiz-Generator-App/internal/opentdb"
	"github.com/sirupsen/logrus"
)

type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*fakeTicker
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) NewTicker(time.Duration) app.Ticker {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticker := &fakeTicker{ch: make(chan time.Time, 1)}
	f.tickers = append(f.tickers, ticker)
	return ticker
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

// Fire delivers a tick on the most recently created ticker.
func (f *fakeClock) Fire() {
	f.mu.Lock()
	ticker := f.tickers[len(f.tickers)-1]
	now := f.now
	f.mu.Unlock()
	select {
	case ticker.ch <- now:
	default:
	}
}

func (f *fakeClock) tickerCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tickers)
}

func (f *fakeClock) latest() *fakeTicker {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tickers[len(f.tickers)-1]
}

type fakeTicker struct {
	ch      chan time.Time
	mu      sync.Mutex
	stopped bool
}

func (t *fakeTicker) C() <-chan time.Time { return t.ch }

func (t *fakeTicker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
}

func (t *fakeTicker) isStopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

type recordingPresenter struct {
	mu      sync.Mutex
	views   []app.View
	notices []string
	ticks   chan string
}

func newRecordingPresenter() *recordingPresenter {
	return &recordingPresenter{ticks: make(chan string, 16)}
}

func (p *recordingPresenter) Render(v app.View) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.views = append(p.views, v)
}

func (p *recordingPresenter) Tick(elapsed string) {
	select {
	case p.ticks <- elapsed:
	default:
	}
}

func (p *recordingPresenter) Notify(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notices = append(p.notices, message)
}

func (p *recordingPresenter) renderCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.views)
}

func (p *recordingPresenter) lastNotice() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.notices) == 0 {
		return ""
	}
	return p.notices[len(p.notices)-1]
}

type stubSource struct {
	mu    sync.Mutex
	raw   []opentdb.RawQuestion
	err   error
	calls int
}

func (s *stubSource) FetchQuestions(_ context.Context, _ domain.QuizConfig) ([]opentdb.RawQuestion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.raw, s.err
}

func (s *stubSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// blockingSource holds the fetch until release is closed.
type blockingSource struct {
	raw     []opentdb.RawQuestion
	started chan struct{}
	release chan struct{}
}

func newBlockingSource(raw []opentdb.RawQuestion) *blockingSource {
	return &blockingSource{
		raw:     raw,
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
}

func (s *blockingSource) FetchQuestions(ctx context.Context, _ domain.QuizConfig) ([]opentdb.RawQuestion, error) {
	s.started <- struct{}{}
	select {
	case <-s.release:
		return s.raw, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type stubAuth bool

func (a stubAuth) Authenticated() bool { return bool(a) }

func scienceRaw() []opentdb.RawQuestion {
	return []opentdb.RawQuestion{
		{
			Type:             opentdb.TypeMultiple,
			Difficulty:       "easy",
			Category:         "Science &amp; Nature",
			Question:         "Which planet is the largest?",
			CorrectAnswer:    "Jupiter",
			IncorrectAnswers: []string{"Saturn", "Neptune", "Earth"},
		},
		{
			Type:             opentdb.TypeMultiple,
			Difficulty:       "easy",
			Category:         "Science &amp; Nature",
			Question:         "What is H&lt;sub&gt;2&lt;/sub&gt;O commonly called?",
			CorrectAnswer:    "Water",
			IncorrectAnswers: []string{"Hydrogen", "Oxygen", "Salt"},
		},
	}
}

func scienceConfig() domain.QuizConfig {
	return domain.QuizConfig{
		Topic:         "science",
		Difficulty:    domain.DifficultyEasy,
		QuestionCount: 2,
		QuestionType:  domain.QuestionTypeMCQ,
	}
}

func quietLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestController(t *testing.T, source app.QuestionSource, opts ...app.Option) (*app.Controller, *recordingPresenter, *fakeClock) {
	t.Helper()
	presenter := newRecordingPresenter()
	clock := newFakeClock()
	base := []app.Option{
		app.WithClock(clock),
		app.WithShuffler(rand.New(rand.NewSource(7))),
		app.WithLogger(quietLogger()),
	}
	controller := app.NewController("session-1", source, presenter, append(base, opts...)...)
	t.Cleanup(controller.Close)
	return controller, presenter, clock
}

func startQuiz(t *testing.T, controller *app.Controller, cfg domain.QuizConfig) {
	t.Helper()
	if err := controller.SubmitConfig(context.Background(), cfg); err != nil {
		t.Fatalf("submit config: %v", err)
	}
	if got := controller.View().Screen; got != domain.ScreenQuiz {
		t.Fatalf("expected quiz screen, got %s", got)
	}
}

func answerAndAdvance(t *testing.T, controller *app.Controller, option string) {
	t.Helper()
	if err := controller.Select(option); err != nil {
		t.Fatalf("select %q: %v", option, err)
	}
	if err := controller.Advance(); err != nil {
		t.Fatalf("advance: %v", err)
	}
}

func expectTick(t *testing.T, presenter *recordingPresenter, want string) {
	t.Helper()
	select {
	case got := <-presenter.ticks:
		if got != want {
			t.Fatalf("tick = %q, want %q", got, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for tick %q", want)
	}
}

func expectNoTick(t *testing.T, presenter *recordingPresenter) {
	t.Helper()
	select {
	case got := <-presenter.ticks:
		t.Fatalf("unexpected tick %q after timer was cancelled", got)
	case <-time.After(100 * time.Millisecond):
	}
}
