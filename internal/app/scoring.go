package app

import (
	"fmt"
	"math"
	"strings"

	"github.com/shovanNITS/Quiz-Generator-App/internal/domain"
)

const noAnswer = "No answer"

// Tier is the visual styling class for a score.
type Tier string

const (
	TierExcellent Tier = "excellent"
	TierGood      Tier = "good"
	TierPoor      Tier = "poor"
)

// ReviewItem is one row of the post-quiz review.
type ReviewItem struct {
	Number        int    `json:"number"`
	Prompt        string `json:"prompt"`
	YourAnswer    string `json:"yourAnswer"`
	CorrectAnswer string `json:"correctAnswer"`
	Answered      bool   `json:"answered"`
	Correct       bool   `json:"correct"`
}

// Result is the scored outcome of a finished session.
type Result struct {
	Correct    int          `json:"correct"`
	Total      int          `json:"total"`
	Percentage int          `json:"percentage"`
	Summary    string       `json:"summary"`
	Message    string       `json:"message"`
	Tier       Tier         `json:"tier"`
	TimeTaken  string       `json:"timeTaken"`
	Difficulty string       `json:"difficulty"`
	Review     []ReviewItem `json:"review"`
}

// Score counts correct answers; questions without an answer count as incorrect.
func Score(questions []domain.Question, answers map[int]domain.Answer) (correct, percentage int) {
	for idx := range questions {
		if answer, ok := answers[idx]; ok && answer.IsCorrect {
			correct++
		}
	}
	return correct, Percentage(correct, len(questions))
}

// Percentage is round(100 * correct / total), 0 for an empty quiz.
func Percentage(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}

// ScoreMessage picks the feedback line from the five-band ladder.
func ScoreMessage(percentage int) string {
	switch {
	case percentage >= 90:
		return "Outstanding! 🌟"
	case percentage >= 80:
		return "Excellent work! 👏"
	case percentage >= 70:
		return "Good job! 👍"
	case percentage >= 60:
		return "Not bad! 🙂"
	}
	return "Keep practicing! 💪"
}

// ScoreTier picks the styling class from the three-band ladder. It is
// thresholded independently of ScoreMessage.
func ScoreTier(percentage int) Tier {
	switch {
	case percentage >= 80:
		return TierExcellent
	case percentage >= 60:
		return TierGood
	}
	return TierPoor
}

// FormatClock renders elapsed seconds as zero-padded MM:SS.
func FormatClock(seconds int) string {
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// FormatTimeTaken renders elapsed seconds as "Xm Ys".
func FormatTimeTaken(seconds int) string {
	return fmt.Sprintf("%dm %ds", seconds/60, seconds%60)
}

func difficultyLabel(d domain.Difficulty) string {
	if d == domain.DifficultyAny {
		return "Any"
	}
	s := string(d)
	return strings.ToUpper(s[:1]) + s[1:]
}

func buildResult(cfg domain.QuizConfig, questions []domain.Question, answers map[int]domain.Answer, elapsed int) *Result {
	correct, percentage := Score(questions, answers)

	review := make([]ReviewItem, 0, len(questions))
	for idx, question := range questions {
		item := ReviewItem{
			Number:        idx + 1,
			Prompt:        question.Prompt,
			YourAnswer:    noAnswer,
			CorrectAnswer: question.CorrectAnswer,
		}
		if answer, ok := answers[idx]; ok {
			item.YourAnswer = answer.ChosenOption
			item.Answered = true
			item.Correct = answer.IsCorrect
		}
		review = append(review, item)
	}

	return &Result{
		Correct:    correct,
		Total:      len(questions),
		Percentage: percentage,
		Summary:    fmt.Sprintf("%d out of %d correct", correct, len(questions)),
		Message:    ScoreMessage(percentage),
		Tier:       ScoreTier(percentage),
		TimeTaken:  FormatTimeTaken(elapsed),
		Difficulty: difficultyLabel(cfg.Difficulty),
		Review:     review,
	}
}
