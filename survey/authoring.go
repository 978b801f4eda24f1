// Package survey holds the rules for authoring surveys, accepting answers
// and summarising results. It does no I/O.
package survey

import (
	"errors"
	"strings"

	"github.com/mbolis/survey-desk/model"
)

const (
	MinQuestions     = 1
	MaxQuestions     = 20
	DefaultQuestions = 3
)

// DefaultChoiceOptions prefills the options of a new multiple-choice question.
const DefaultChoiceOptions = "Excellent, Good, Average, Poor"

var ErrEmptyTitle = errors.New("survey title is required")

// QuestionInput is one question slot as filled in by an admin.
type QuestionInput struct {
	Text    string             `json:"text" form:"text"`
	Type    model.QuestionType `json:"type" form:"type" validate:"omitempty,oneof=text mcq rating"`
	Options string             `json:"options" form:"options"`
}

// NewSurvey builds a survey from an authoring form. Slots whose text is blank
// are left out; their count is returned so callers can tell the admin.
func NewSurvey(title, description string, inputs []QuestionInput) (sv model.Survey, skipped int, err error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return sv, 0, ErrEmptyTitle
	}

	sv.Title = title
	sv.Description = strings.TrimSpace(description)
	sv.Questions = []model.Question{}

	for _, in := range inputs {
		text := strings.TrimSpace(in.Text)
		if text == "" {
			skipped++
			continue
		}

		q := model.Question{Text: text, Type: in.Type}
		if !q.Type.Valid() {
			q.Type = model.TypeText
		}
		if q.Type == model.TypeChoice {
			q.Options = strings.Join(ParseOptions(in.Options), ", ")
		}
		sv.Questions = append(sv.Questions, q)
	}

	return sv, skipped, nil
}

// ClampQuestionCount bounds the number of authoring slots shown to an admin.
func ClampQuestionCount(n int) int {
	switch {
	case n < MinQuestions:
		return MinQuestions
	case n > MaxQuestions:
		return MaxQuestions
	}
	return n
}

// ParseOptions splits a comma-separated option list, dropping blanks. An
// empty list falls back to two placeholder options.
func ParseOptions(options string) []string {
	opts := []string{}
	for _, o := range strings.Split(options, ",") {
		if o = strings.TrimSpace(o); o != "" {
			opts = append(opts, o)
		}
	}
	if len(opts) == 0 {
		opts = []string{"Option 1", "Option 2"}
	}
	return opts
}
