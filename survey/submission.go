package survey

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/mbolis/survey-desk/model"
)

var (
	ErrNoQuestions = errors.New("survey has no questions")
	ErrEmptyAnswer = errors.New("answer is empty")
)

// Browsers post textarea line breaks as CRLF; answers are stored with LF only.
var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// NormalizeLineBreaks turns CRLF and lone CR into LF.
func NormalizeLineBreaks(s string) string {
	return lineBreaks.Replace(s)
}

// IncompleteMessage is shown to a respondent whose submission was rejected.
const IncompleteMessage = "Please answer all questions before submitting."

// PrepareSubmission checks that every question of sv has a non-blank answer
// and turns the answers into response rows. When any answer is missing the
// returned error lists every offending question and wraps ErrEmptyAnswer.
func PrepareSubmission(sv model.Survey, respondent string, answers map[int64]string) (model.Submission, error) {
	sub := model.Submission{
		SurveyID:   sv.ID,
		Respondent: strings.TrimSpace(respondent),
	}
	if len(sv.Questions) == 0 {
		return sub, ErrNoQuestions
	}

	var merr *multierror.Error
	for _, q := range sv.Questions {
		answer := NormalizeLineBreaks(strings.TrimSpace(answers[q.ID]))
		if answer == "" {
			merr = multierror.Append(merr, fmt.Errorf("question %d %q: %w", q.ID, q.Text, ErrEmptyAnswer))
			continue
		}
		sub.Responses = append(sub.Responses, model.Response{
			SurveyID:   sv.ID,
			QuestionID: q.ID,
			Answer:     answer,
		})
	}

	if err := merr.ErrorOrNil(); err != nil {
		sub.Responses = nil
		return sub, err
	}
	return sub, nil
}

// MissingAnswers lists the individual failures inside an error returned by
// PrepareSubmission.
func MissingAnswers(err error) []string {
	var merr *multierror.Error
	if !errors.As(err, &merr) {
		return nil
	}
	msgs := make([]string, len(merr.Errors))
	for i, e := range merr.Errors {
		msgs[i] = e.Error()
	}
	return msgs
}
