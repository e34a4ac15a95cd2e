package terminal

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/shovanNITS/Quiz-Generator-App/internal/app"
	"github.com/shovanNITS/Quiz-Generator-App/internal/auth"
	"github.com/shovanNITS/Quiz-Generator-App/internal/domain"
)

// presenter draws controller views as plain text.
type presenter struct {
	mu      sync.Mutex
	out     io.Writer
	elapsed string
}

func (p *presenter) Render(view app.View) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.elapsed = view.Elapsed

	switch view.Screen {
	case domain.ScreenConfig:
		if view.Loading {
			fmt.Fprintln(p.out, "Loading questions...")
		}
	case domain.ScreenQuiz:
		if view.Question == nil {
			return
		}
		q := view.Question
		fmt.Fprintf(p.out, "\n%s  Question %d of %d  [%s]\n", view.Title, q.Number, q.Total, view.Elapsed)
		fmt.Fprintln(p.out, q.Prompt)
		for i, option := range q.Options {
			marker := " "
			if option == q.Selected {
				marker = "*"
			}
			fmt.Fprintf(p.out, " %s %d) %s\n", marker, i+1, option)
		}
	case domain.ScreenResults:
		if view.Result != nil {
			writeResult(p.out, view.Title, view.Result)
		}
	}
}

func (p *presenter) Tick(elapsed string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.elapsed = elapsed
}

func (p *presenter) Notify(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "! %s\n", message)
}

func (p *presenter) RenderProfile(profile auth.Profile) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if profile.SignedIn {
		fmt.Fprintf(p.out, "Signed in as %s\n", profile.Name)
		return
	}
	fmt.Fprintf(p.out, "Signed out (%s)\n", profile.Name)
}

func (p *presenter) printf(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, format, args...)
}

func (p *presenter) currentElapsed() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.elapsed
}

func writeResult(out io.Writer, title string, result *app.Result) {
	fmt.Fprintf(out, "\n== %s results ==\n", title)
	fmt.Fprintf(out, "%d%%  %s\n", result.Percentage, result.Summary)
	fmt.Fprintln(out, result.Message)
	fmt.Fprintf(out, "Time: %s  Difficulty: %s\n", result.TimeTaken, result.Difficulty)
	fmt.Fprintln(out, strings.Repeat("-", 32))
	for _, item := range result.Review {
		mark := "x"
		if item.Correct {
			mark = "+"
		}
		fmt.Fprintf(out, "[%s] %d. %s\n", mark, item.Number, item.Prompt)
		fmt.Fprintf(out, "    your answer: %s  correct: %s\n", item.YourAnswer, item.CorrectAnswer)
	}
}
