package survey

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbolis/survey-desk/model"
)

func TestNewSurvey_RequiresTitle(t *testing.T) {
	for _, title := range []string{"", "   ", "\t\n"} {
		_, _, err := NewSurvey(title, "desc", []QuestionInput{{Text: "Q", Type: model.TypeText}})
		assert.ErrorIs(t, err, ErrEmptyTitle, "title %q", title)
	}
}

func TestNewSurvey_SkipsBlankQuestionsInOrder(t *testing.T) {
	sv, skipped, err := NewSurvey("  Course feedback ", " about the course ", []QuestionInput{
		{Text: " First ", Type: model.TypeText},
		{Text: "   ", Type: model.TypeRating},
		{Text: "Second", Type: model.TypeChoice, Options: DefaultChoiceOptions},
		{Text: "", Type: model.TypeText},
		{Text: "Third", Type: model.TypeRating, Options: "ignored"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Course feedback", sv.Title)
	assert.Equal(t, "about the course", sv.Description)
	assert.Equal(t, 2, skipped)
	require.Len(t, sv.Questions, 3)
	assert.Equal(t, "First", sv.Questions[0].Text)
	assert.Equal(t, "Second", sv.Questions[1].Text)
	assert.Equal(t, "Excellent, Good, Average, Poor", sv.Questions[1].Options)
	assert.Equal(t, "Third", sv.Questions[2].Text)
	assert.Empty(t, sv.Questions[2].Options)
}

func TestNewSurvey_UnknownTypeFallsBackToText(t *testing.T) {
	sv, _, err := NewSurvey("T", "", []QuestionInput{{Text: "Q"}})
	require.NoError(t, err)
	assert.Equal(t, model.TypeText, sv.Questions[0].Type)
}

func TestParseOptions(t *testing.T) {
	assert.Equal(t, []string{"Good", "Poor"}, ParseOptions(" Good, ,Poor ,"))
	assert.Equal(t, []string{"Option 1", "Option 2"}, ParseOptions(" , "))
}

func TestClampQuestionCount(t *testing.T) {
	assert.Equal(t, 1, ClampQuestionCount(0))
	assert.Equal(t, 7, ClampQuestionCount(7))
	assert.Equal(t, 20, ClampQuestionCount(21))
}

func testSurvey() model.Survey {
	return model.Survey{
		ID:    1,
		Title: "S",
		Questions: []model.Question{
			{ID: 10, Text: "Comments", Type: model.TypeText},
			{ID: 11, Text: "Overall", Type: model.TypeChoice, Options: "Good, Poor"},
			{ID: 12, Text: "Rate", Type: model.TypeRating},
		},
	}
}

func TestPrepareSubmission_AllAnswered(t *testing.T) {
	sub, err := PrepareSubmission(testSurvey(), "  Ada ", map[int64]string{10: " ok ", 11: "Good", 12: "4", 99: "ignored"})
	require.NoError(t, err)

	assert.Equal(t, "Ada", sub.Respondent)
	require.Len(t, sub.Responses, 3)
	assert.Equal(t, int64(10), sub.Responses[0].QuestionID)
	assert.Equal(t, "ok", sub.Responses[0].Answer)
	assert.Equal(t, int64(12), sub.Responses[2].QuestionID)
}

func TestPrepareSubmission_NormalizesLineBreaks(t *testing.T) {
	sub, err := PrepareSubmission(testSurvey(), "", map[int64]string{10: "line one\r\nline two\rthree", 11: "Good", 12: "4"})
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two\nthree", sub.Responses[0].Answer)
}

func TestPrepareSubmission_EmptyTextRejectsEverything(t *testing.T) {
	sub, err := PrepareSubmission(testSurvey(), "", map[int64]string{10: "   ", 11: "Good", 12: "4"})
	assert.ErrorIs(t, err, ErrEmptyAnswer)
	assert.Empty(t, sub.Responses)

	missing := MissingAnswers(err)
	require.Len(t, missing, 1)
	assert.Contains(t, missing[0], "Comments")
}

func TestPrepareSubmission_ReportsEveryMissingAnswer(t *testing.T) {
	_, err := PrepareSubmission(testSurvey(), "", map[int64]string{})
	assert.Len(t, MissingAnswers(err), 3)
}

func TestPrepareSubmission_NoQuestions(t *testing.T) {
	_, err := PrepareSubmission(model.Survey{ID: 2}, "", nil)
	assert.ErrorIs(t, err, ErrNoQuestions)
}

func TestRatings(t *testing.T) {
	r := Ratings([]string{"3", "5", "x", "1"})

	assert.Equal(t, 3, r.Count)
	assert.Equal(t, 3.00, r.Mean)
	assert.Equal(t, []Bucket{{"1", 1}, {"3", 1}, {"5", 1}}, r.Breakdown)
}

func TestRatings_RoundsMeanAndDropsNonFinite(t *testing.T) {
	r := Ratings([]string{"4", "4", "5", "NaN", "Inf", ""})

	assert.Equal(t, 3, r.Count)
	assert.Equal(t, 4.33, r.Mean)
	assert.Equal(t, []Bucket{{"4", 2}, {"5", 1}}, r.Breakdown)
}

func TestRatings_NoValidValues(t *testing.T) {
	r := Ratings([]string{"x"})
	assert.Zero(t, r.Count)
	assert.Zero(t, r.Mean)
	assert.Empty(t, r.Breakdown)
}

func TestChoices(t *testing.T) {
	assert.Equal(t, []Bucket{{"Good", 2}, {"Poor", 1}}, Choices([]string{"Good", "Good", "Poor"}))
	assert.Equal(t, []Bucket{{"A", 1}, {"B", 1}}, Choices([]string{"B", "A"}))
}

func TestSummarize_MatchesByQuestionID(t *testing.T) {
	sv := testSurvey()
	// two questions sharing a text must not share answers
	sv.Questions = append(sv.Questions, model.Question{ID: 13, Text: "Comments", Type: model.TypeText})

	newer := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)
	older := newer.Add(-time.Hour)
	rows := []model.ResponseRow{
		{QuestionID: 10, SubmissionID: "b", Respondent: "Bo", Answer: "newer", SubmittedAt: newer},
		{QuestionID: 11, SubmissionID: "b", Answer: "Good", SubmittedAt: newer},
		{QuestionID: 12, SubmissionID: "b", Answer: "5", SubmittedAt: newer},
		{QuestionID: 13, SubmissionID: "b", Answer: "other", SubmittedAt: newer},
		{QuestionID: 10, SubmissionID: "a", Respondent: "Al", Answer: "older", SubmittedAt: older},
		{QuestionID: 11, SubmissionID: "a", Answer: "Good", SubmittedAt: older},
		{QuestionID: 12, SubmissionID: "a", Answer: "x", SubmittedAt: older},
	}

	report := Summarize(sv, rows)

	assert.Equal(t, 7, report.TotalAnswers)
	assert.Equal(t, 4, report.TotalQuestions)
	assert.Equal(t, 2, report.Submissions)
	require.Len(t, report.Questions, 4)

	texts := report.Questions[0]
	require.Len(t, texts.Texts, 2)
	assert.Equal(t, "newer", texts.Texts[0].Answer)
	assert.Equal(t, "Bo", texts.Texts[0].Respondent)
	assert.Equal(t, "older", texts.Texts[1].Answer)

	assert.Equal(t, []Bucket{{"Good", 2}}, report.Questions[1].Choices)

	rating := report.Questions[2].Rating
	require.NotNil(t, rating)
	assert.Equal(t, 1, rating.Count)
	assert.Equal(t, 5.0, rating.Mean)
	assert.Equal(t, 2, report.Questions[2].Answers)

	require.Len(t, report.Questions[3].Texts, 1)
	assert.Equal(t, "other", report.Questions[3].Texts[0].Answer)
}
