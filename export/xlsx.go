package export

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/mbolis/survey-desk/model"
)

const SheetName = "Responses"

func XLSXFilename(surveyID int64) string {
	return fmt.Sprintf("survey_%d_responses.xlsx", surveyID)
}

// WriteXLSX writes the same table as WriteCSV as a single-sheet workbook.
func WriteXLSX(w io.Writer, rows []model.ResponseRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return errors.Wrap(err, "export.xlsx.sheet")
	}

	header := make([]any, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return errors.Wrap(err, "export.xlsx.header")
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.Wrap(err, "export.xlsx.cell")
		}
		values := []any{
			r.ID,
			r.Respondent,
			r.Answer,
			r.SubmittedAt.UTC().Format(TimeFormat),
			r.QuestionText,
			string(r.QuestionType),
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return errors.Wrapf(err, "export.xlsx.row %d", r.ID)
		}
	}

	_, err := f.WriteTo(w)
	return errors.Wrap(err, "export.xlsx.write")
}
