package terminal

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shovanNITS/Quiz-Generator-App/internal/app"
	"github.com/shovanNITS/Quiz-Generator-App/internal/auth"
	"github.com/shovanNITS/Quiz-Generator-App/internal/domain"
	"github.com/sirupsen/logrus"
)

// errExit ends the session when the player types exit or input runs out.
var errExit = errors.New("exit")

// Player runs one quiz session against a line-oriented terminal.
type Player struct {
	source         app.QuestionSource
	tokens         *auth.TokenService
	log            logrus.FieldLogger
	controllerOpts []app.Option
}

// PlayerOption configures a Player.
type PlayerOption func(*Player)

func WithLogger(log logrus.FieldLogger) PlayerOption {
	return func(p *Player) {
		if log != nil {
			p.log = log
		}
	}
}

func WithControllerOptions(opts ...app.Option) PlayerOption {
	return func(p *Player) { p.controllerOpts = append(p.controllerOpts, opts...) }
}

func NewPlayer(source app.QuestionSource, tokens *auth.TokenService, opts ...PlayerOption) *Player {
	p := &Player{source: source, tokens: tokens, log: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Play signs in with token and loops through config, quiz and results until
// the player exits or in is exhausted.
func (p *Player) Play(ctx context.Context, in io.Reader, out io.Writer, token string) error {
	view := &presenter{out: out}
	gate := auth.NewGate(auth.NewTokenProvider(p.tokens), view, auth.WithGateLogger(p.log))
	gate.Start()
	defer gate.Stop()

	if err := gate.SignIn(ctx, token); err != nil {
		return err
	}

	controller := app.NewController(uuid.NewString(), p.source, view,
		append(append([]app.Option{}, p.controllerOpts...), app.WithAuth(gate), app.WithLogger(p.log))...)
	defer controller.Close()

	s := &session{ctx: ctx, lines: bufio.NewScanner(in), view: view, controller: controller}
	for {
		var err error
		switch controller.View().Screen {
		case domain.ScreenConfig:
			err = s.configure()
		case domain.ScreenQuiz:
			err = s.answer()
		case domain.ScreenResults:
			err = s.review()
		}
		if errors.Is(err, errExit) {
			view.printf("Bye!\n")
			return nil
		}
		if err != nil {
			return err
		}
	}
}

type session struct {
	ctx        context.Context
	lines      *bufio.Scanner
	view       *presenter
	controller *app.Controller
}

func (s *session) prompt(label string) (string, error) {
	s.view.printf("%s", label)
	if err := s.ctx.Err(); err != nil {
		return "", err
	}
	if !s.lines.Scan() {
		if err := s.lines.Err(); err != nil {
			return "", err
		}
		return "", errExit
	}
	line := strings.TrimSpace(s.lines.Text())
	if strings.EqualFold(line, "exit") {
		return "", errExit
	}
	return line, nil
}

// promptDefault returns fallback when the player just presses enter.
func (s *session) promptDefault(label, fallback string) (string, error) {
	if fallback != "" {
		label += " [" + fallback + "]"
	}
	line, err := s.prompt(label + ": ")
	if err != nil || line != "" {
		return line, err
	}
	return fallback, nil
}

func (s *session) configure() error {
	form := s.controller.View().Form
	s.view.printf("\n== New quiz ==\n")

	topic, err := s.promptDefault("Topic (blank for any)", form.Topic)
	if err != nil {
		return err
	}
	difficulty, err := s.promptDefault("Difficulty (easy/medium/hard/any)", string(form.Difficulty))
	if err != nil {
		return err
	}
	count, err := s.promptDefault("Number of questions", strconv.Itoa(form.QuestionCount))
	if err != nil {
		return err
	}
	kind, err := s.promptDefault("Question type (mcq/truefalse/any)", string(form.QuestionType))
	if err != nil {
		return err
	}

	cfg := domain.QuizConfig{
		Topic:         topic,
		Difficulty:    domain.Difficulty(anyToEmpty(difficulty)),
		QuestionType:  domain.QuestionType(anyToEmpty(kind)),
		QuestionCount: atoiOrZero(count),
	}
	// Failures are already shown by the controller; the form is asked again.
	if err := s.controller.SubmitConfig(s.ctx, cfg); errors.Is(err, domain.ErrUnauthenticated) {
		return err
	}
	return nil
}

func (s *session) answer() error {
	line, err := s.prompt("Choose an option number, n for next, q to quit (" + s.view.currentElapsed() + "): ")
	if err != nil {
		return err
	}

	switch strings.ToLower(line) {
	case "n", "next":
		err = s.controller.Advance()
	case "q", "quit":
		confirm, perr := s.prompt("Quit this quiz? Progress will be lost (y/N): ")
		if perr != nil {
			return perr
		}
		_, err = s.controller.Quit(strings.EqualFold(confirm, "y") || strings.EqualFold(confirm, "yes"))
	default:
		err = s.selectByNumber(line)
	}
	if err != nil {
		s.view.printf("! %s\n", err)
	}
	return nil
}

func (s *session) selectByNumber(line string) error {
	question := s.controller.View().Question
	n, err := strconv.Atoi(line)
	if err != nil || question == nil || n < 1 || n > len(question.Options) {
		return domain.ErrOptionNotFound
	}
	return s.controller.Select(question.Options[n-1])
}

func (s *session) review() error {
	line, err := s.prompt("r to retake, n for a new quiz, x to exit: ")
	if err != nil {
		return err
	}
	switch strings.ToLower(line) {
	case "r", "retake":
		err = s.controller.Retake()
	case "n", "new":
		err = s.controller.NewQuiz()
	case "x":
		return errExit
	default:
		err = domain.ErrInvalidTransition
	}
	if err != nil {
		s.view.printf("! %s\n", err)
	}
	return nil
}

func anyToEmpty(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "any" {
		return ""
	}
	return v
}

func atoiOrZero(v string) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0
	}
	return n
}
