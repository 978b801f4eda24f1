package store

import (
	"context"
	"database/sql"

	"github.com/gofrs/uuid"
	"github.com/pkg/errors"

	"github.com/mbolis/survey-desk/model"
)

// InsertResponse writes a single answer row. SubmissionID and SubmittedAt
// are filled in when left empty.
func (s *Store) InsertResponse(ctx context.Context, r model.Response) (int64, error) {
	if r.SubmissionID == "" {
		id, err := uuid.NewV4()
		if err != nil {
			return 0, errors.Wrap(err, "db.insert_response.uuid")
		}
		r.SubmissionID = id.String()
	}
	if r.SubmittedAt.IsZero() {
		r.SubmittedAt = s.timestamp()
	}
	return insertResponse(ctx, s.db, r)
}

// Submit writes every response of sub in one transaction, so that either all
// answers of a submission are stored or none is. It assigns the submission id
// and timestamp shared by all rows.
func (s *Store) Submit(ctx context.Context, sub *model.Submission) error {
	id, err := uuid.NewV4()
	if err != nil {
		return errors.Wrap(err, "db.submit.uuid")
	}
	sub.ID = id.String()
	sub.SubmittedAt = s.timestamp()

	return s.withTx(ctx, "db.submit", func(tx *sql.Tx) error {
		for i := range sub.Responses {
			r := &sub.Responses[i]
			r.SurveyID = sub.SurveyID
			r.SubmissionID = sub.ID
			r.Respondent = sub.Respondent
			r.SubmittedAt = sub.SubmittedAt

			r.ID, err = insertResponse(ctx, tx, *r)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func insertResponse(ctx context.Context, db querier, r model.Response) (id int64, err error) {
	err = db.QueryRowContext(ctx, `
		INSERT INTO response (survey_id, question_id, submission_id, respondent_name, answer, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id`,
		r.SurveyID,
		r.QuestionID,
		r.SubmissionID,
		r.Respondent,
		r.Answer,
		r.SubmittedAt,
	).Scan(&id)
	return id, errors.Wrap(err, "db.insert_response")
}

// ListResponses returns the answers given to a survey joined with their
// question, newest submission first.
func (s *Store) ListResponses(ctx context.Context, surveyID int64) ([]model.ResponseRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			r.id, r.question_id, r.submission_id, r.respondent_name, r.answer, r.submitted_at,
			q.text, q.type
		FROM response r
		INNER JOIN question q ON (q.id = r.question_id)
		WHERE r.survey_id = ?
		ORDER BY r.submitted_at DESC, r.id DESC`,
		surveyID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "db.list_responses")
	}
	defer rows.Close()

	responses := []model.ResponseRow{}
	for rows.Next() {
		r := model.ResponseRow{}
		err = rows.Scan(
			&r.ID, &r.QuestionID, &r.SubmissionID, &r.Respondent, &r.Answer, &r.SubmittedAt,
			&r.QuestionText, &r.QuestionType,
		)
		if err != nil {
			return nil, errors.Wrap(err, "db.list_responses.scan")
		}
		responses = append(responses, r)
	}
	return responses, errors.Wrap(rows.Err(), "db.list_responses.rows")
}
