package store

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/mbolis/survey-desk/model"
)

// ListSurveys returns every survey, newest first.
func (s *Store) ListSurveys(ctx context.Context) ([]model.Survey, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, created_at
		FROM survey
		ORDER BY id DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "db.list_surveys")
	}
	defer rows.Close()

	surveys := []model.Survey{}
	for rows.Next() {
		sv := model.Survey{}
		err = rows.Scan(&sv.ID, &sv.Title, &sv.Description, &sv.CreatedAt)
		if err != nil {
			return nil, errors.Wrap(err, "db.list_surveys.scan")
		}
		surveys = append(surveys, sv)
	}
	return surveys, errors.Wrap(rows.Err(), "db.list_surveys.rows")
}

// GetSurvey loads a survey and its questions.
func (s *Store) GetSurvey(ctx context.Context, id int64) (model.Survey, error) {
	sv := model.Survey{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, created_at
		FROM survey
		WHERE id = ?`,
		id,
	).Scan(&sv.ID, &sv.Title, &sv.Description, &sv.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return sv, ErrNotFound
	}
	if err != nil {
		return sv, errors.Wrap(err, "db.get_survey")
	}

	sv.Questions, err = s.ListQuestions(ctx, id)
	return sv, err
}

// ListQuestions returns the questions of a survey in creation order.
func (s *Store) ListQuestions(ctx context.Context, surveyID int64) ([]model.Question, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, survey_id, text, type, options
		FROM question
		WHERE survey_id = ?
		ORDER BY id ASC`,
		surveyID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "db.list_questions")
	}
	defer rows.Close()

	questions := []model.Question{}
	for rows.Next() {
		q := model.Question{}
		err = rows.Scan(&q.ID, &q.SurveyID, &q.Text, &q.Type, &q.Options)
		if err != nil {
			return nil, errors.Wrap(err, "db.list_questions.scan")
		}
		questions = append(questions, q)
	}
	return questions, errors.Wrap(rows.Err(), "db.list_questions.rows")
}

// InsertSurvey writes a survey row and returns its generated id.
func (s *Store) InsertSurvey(ctx context.Context, title, description string) (int64, error) {
	return s.insertSurvey(ctx, s.db, title, description)
}

// InsertQuestion writes one question of an existing survey.
func (s *Store) InsertQuestion(ctx context.Context, q model.Question) (int64, error) {
	return insertQuestion(ctx, s.db, q)
}

// CreateSurvey writes sv and all of its questions in one transaction, filling
// in the generated ids.
func (s *Store) CreateSurvey(ctx context.Context, sv *model.Survey) error {
	return s.withTx(ctx, "db.create_survey", func(tx *sql.Tx) error {
		id, err := s.insertSurvey(ctx, tx, sv.Title, sv.Description)
		if err != nil {
			return err
		}
		sv.ID = id

		for i := range sv.Questions {
			q := &sv.Questions[i]
			q.SurveyID = id
			q.ID, err = insertQuestion(ctx, tx, *q)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) insertSurvey(ctx context.Context, db querier, title, description string) (id int64, err error) {
	err = db.QueryRowContext(ctx, `
		INSERT INTO survey (title, description, created_at) VALUES (?, ?, ?)
		RETURNING id`,
		title,
		description,
		s.timestamp(),
	).Scan(&id)
	return id, errors.Wrap(err, "db.insert_survey")
}

func insertQuestion(ctx context.Context, db querier, q model.Question) (id int64, err error) {
	err = db.QueryRowContext(ctx, `
		INSERT INTO question (survey_id, text, type, options) VALUES (?, ?, ?, ?)
		RETURNING id`,
		q.SurveyID,
		q.Text,
		string(q.Type),
		q.Options,
	).Scan(&id)
	return id, errors.Wrap(err, "db.insert_question")
}
