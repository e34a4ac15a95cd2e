package app

import (
	"html"

	"github.com/shovanNITS/Quiz-Generator-App/internal/domain"
	"github.com/shovanNITS/Quiz-Generator-App/internal/opentdb"
)

// Shuffler permutes n elements. *rand.Rand satisfies it.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

var booleanOptions = []string{"True", "False"}

// Normalize turns a raw question into a session question with ID index+1.
// Multiple-choice options are shuffled; boolean options keep their fixed order.
func Normalize(raw opentdb.RawQuestion, index int, shuffler Shuffler) domain.Question {
	question := domain.Question{
		ID:            index + 1,
		Prompt:        html.UnescapeString(raw.Question),
		CorrectAnswer: html.UnescapeString(raw.CorrectAnswer),
	}

	if raw.Type != opentdb.TypeMultiple {
		question.Kind = domain.QuestionTypeTrueFalse
		question.Options = append([]string(nil), booleanOptions...)
		return question
	}

	question.Kind = domain.QuestionTypeMCQ
	options := make([]string, 0, len(raw.IncorrectAnswers)+1)
	for _, incorrect := range raw.IncorrectAnswers {
		options = append(options, html.UnescapeString(incorrect))
	}
	options = append(options, question.CorrectAnswer)

	shuffler.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
	question.Options = options
	return question
}

// NormalizeAll normalizes a fetched batch, assigning IDs 1..N in order.
func NormalizeAll(raw []opentdb.RawQuestion, shuffler Shuffler) []domain.Question {
	questions := make([]domain.Question, 0, len(raw))
	for idx, item := range raw {
		questions = append(questions, Normalize(item, idx, shuffler))
	}
	return questions
}
