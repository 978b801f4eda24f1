package model

import "time"

type QuestionType string

const (
	TypeText   QuestionType = "text"
	TypeChoice QuestionType = "mcq"
	TypeRating QuestionType = "rating"
)

var QuestionTypes = []QuestionType{TypeText, TypeChoice, TypeRating}

func (t QuestionType) Valid() bool {
	switch t {
	case TypeText, TypeChoice, TypeRating:
		return true
	}
	return false
}

func (t QuestionType) Label() string {
	switch t {
	case TypeChoice:
		return "Multiple choice"
	case TypeRating:
		return "Rating (1-5)"
	default:
		return "Free text"
	}
}

type Survey struct {
	ID          int64      `json:"id,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"created_at"`
	Questions   []Question `json:"questions,omitempty"`
}

type Question struct {
	ID       int64        `json:"id,omitempty"`
	SurveyID int64        `json:"survey_id,omitempty"`
	Text     string       `json:"text"`
	Type     QuestionType `json:"type"`
	Options  string       `json:"options,omitempty"`
}

// Response is one answer to one question within one submission.
type Response struct {
	ID           int64     `json:"id,omitempty"`
	SurveyID     int64     `json:"survey_id"`
	QuestionID   int64     `json:"question_id"`
	SubmissionID string    `json:"submission_id"`
	Respondent   string    `json:"respondent_name"`
	Answer       string    `json:"answer"`
	SubmittedAt  time.Time `json:"submitted_at"`
}

// ResponseRow is a Response joined with its question, as listed to admins
// and exported.
type ResponseRow struct {
	ID           int64        `json:"id"`
	QuestionID   int64        `json:"question_id"`
	SubmissionID string       `json:"submission_id"`
	Respondent   string       `json:"respondent_name"`
	Answer       string       `json:"answer"`
	SubmittedAt  time.Time    `json:"submitted_at"`
	QuestionText string       `json:"question_text"`
	QuestionType QuestionType `json:"qtype"`
}

// Submission groups the response rows written by a single respondent action.
type Submission struct {
	ID          string     `json:"id"`
	SurveyID    int64      `json:"survey_id"`
	Respondent  string     `json:"respondent_name"`
	SubmittedAt time.Time  `json:"submitted_at"`
	Responses   []Response `json:"responses"`
}
