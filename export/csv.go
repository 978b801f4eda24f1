// Package export renders survey responses as downloadable files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/mbolis/survey-desk/model"
	"github.com/mbolis/survey-desk/survey"
)

// Columns is the header row shared by every export format.
var Columns = []string{"id", "respondent_name", "answer", "submitted_at", "question_text", "qtype"}

const TimeFormat = time.RFC3339

func CSVFilename(surveyID int64) string {
	return fmt.Sprintf("survey_%d_responses.csv", surveyID)
}

// record flattens a row. CR does not survive a CSV read, so line breaks are
// written as LF.
func record(r model.ResponseRow) []string {
	return []string{
		strconv.FormatInt(r.ID, 10),
		r.Respondent,
		survey.NormalizeLineBreaks(r.Answer),
		r.SubmittedAt.UTC().Format(TimeFormat),
		r.QuestionText,
		string(r.QuestionType),
	}
}

// WriteCSV writes a header row followed by one record per response row.
func WriteCSV(w io.Writer, rows []model.ResponseRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return errors.Wrap(err, "export.csv.header")
	}
	for _, r := range rows {
		if err := cw.Write(record(r)); err != nil {
			return errors.Wrapf(err, "export.csv.row %d", r.ID)
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "export.csv.flush")
}

// ReadCSV parses a file produced by WriteCSV. Question ids and submission ids
// are not part of the export and stay empty.
func ReadCSV(r io.Reader) ([]model.ResponseRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Columns)

	header, err := cr.Read()
	if err != nil {
		return nil, errors.Wrap(err, "export.csv.read_header")
	}
	for i, col := range Columns {
		if header[i] != col {
			return nil, errors.Errorf("export.csv.read_header: column %d is %q, want %q", i, header[i], col)
		}
	}

	rows := []model.ResponseRow{}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "export.csv.read")
		}

		id, err := strconv.ParseInt(rec[0], 10, 64)
		if err != nil {
			return nil, errors.Wrap(err, "export.csv.parse_id")
		}
		at, err := time.Parse(TimeFormat, rec[3])
		if err != nil {
			return nil, errors.Wrap(err, "export.csv.parse_time")
		}

		rows = append(rows, model.ResponseRow{
			ID:           id,
			Respondent:   rec[1],
			Answer:       rec[2],
			SubmittedAt:  at,
			QuestionText: rec[4],
			QuestionType: model.QuestionType(rec[5]),
		})
	}
	return rows, nil
}
