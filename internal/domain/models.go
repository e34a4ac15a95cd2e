package domain

import (
	"fmt"
	"strings"
)

// MaxQuestionCount is the largest amount the question bank serves per request.
const MaxQuestionCount = 50

// Difficulty filters questions by difficulty; empty means any.
type Difficulty string

const (
	DifficultyAny    Difficulty = ""
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// QuestionType is the user-facing question kind.
type QuestionType string

const (
	QuestionTypeAny       QuestionType = ""
	QuestionTypeMCQ       QuestionType = "mcq"
	QuestionTypeTrueFalse QuestionType = "truefalse"
)

// Screen is the state of a quiz session.
type Screen string

const (
	ScreenConfig  Screen = "config"
	ScreenQuiz    Screen = "quiz"
	ScreenResults Screen = "results"
)

// QuizConfig is what the user submits from the configuration form.
type QuizConfig struct {
	Topic         string       `json:"topic"`
	Difficulty    Difficulty   `json:"difficulty"`
	QuestionCount int          `json:"questionCount"`
	QuestionType  QuestionType `json:"questionType"`
}

// DefaultForm returns the configuration form's initial values.
func DefaultForm() QuizConfig {
	return QuizConfig{
		Difficulty:    DifficultyMedium,
		QuestionCount: 5,
		QuestionType:  QuestionTypeMCQ,
	}
}

// Validate checks enum values and the question count.
func (c QuizConfig) Validate() error {
	switch c.Difficulty {
	case DifficultyAny, DifficultyEasy, DifficultyMedium, DifficultyHard:
	default:
		return fmt.Errorf("%w: unknown difficulty %q", ErrInvalidConfig, c.Difficulty)
	}
	switch c.QuestionType {
	case QuestionTypeAny, QuestionTypeMCQ, QuestionTypeTrueFalse:
	default:
		return fmt.Errorf("%w: unknown question type %q", ErrInvalidConfig, c.QuestionType)
	}
	if c.QuestionCount <= 0 || c.QuestionCount > MaxQuestionCount {
		return fmt.Errorf("%w: question count must be between 1 and %d", ErrInvalidConfig, MaxQuestionCount)
	}
	return nil
}

// NormalizedTopic is the lowercased, trimmed topic used for vocabulary lookups.
func (c QuizConfig) NormalizedTopic() string {
	return strings.ToLower(strings.TrimSpace(c.Topic))
}

// Question is a session-ready question.
type Question struct {
	ID            int          `json:"id"`
	Kind          QuestionType `json:"kind"`
	Prompt        string       `json:"prompt"`
	Options       []string     `json:"options"`
	CorrectAnswer string       `json:"correctAnswer"`
}

// HasOption reports whether option is one of the question's options.
func (q Question) HasOption(option string) bool {
	for _, candidate := range q.Options {
		if candidate == option {
			return true
		}
	}
	return false
}

// Answer records the user's choice for a question.
type Answer struct {
	QuestionID   int    `json:"questionId"`
	ChosenOption string `json:"chosenOption"`
	IsCorrect    bool   `json:"isCorrect"`
}

// User is the identity provider's profile for the signed-in user.
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoUrl"`
}
