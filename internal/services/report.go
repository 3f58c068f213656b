package services

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"alfredoptarigan/doc-grader/internal/models"
)

const GradeSheet = "Grades"

var gradeHeaders = []string{"File", "Score", "Feedback", "Parse Method", "Graded At", "Error"}

// GradeRecord is one row of a batch grading run. Outcome is nil when Err is set.
type GradeRecord struct {
	File    string
	Outcome *models.AnalyzeOutcome
	Err     string
}

// BuildGradeReport renders records as an XLSX workbook with a single Grades sheet.
func BuildGradeReport(records []GradeRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), GradeSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	for i, h := range gradeHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(GradeSheet, cell, h); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	for i, rec := range records {
		row := []any{rec.File, "", "", "", "", rec.Err}
		if rec.Outcome != nil {
			row[1] = rec.Outcome.Result.Score
			row[2] = rec.Outcome.Result.Feedback
			row[3] = string(rec.Outcome.Metadata.ParseMethod)
			row[4] = rec.Outcome.Metadata.ProcessedAt.Format(time.RFC3339)
		}

		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(GradeSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	_ = f.SetColWidth(GradeSheet, "A", "A", 30)
	_ = f.SetColWidth(GradeSheet, "B", "B", 12)
	_ = f.SetColWidth(GradeSheet, "C", "C", 80)
	_ = f.SetColWidth(GradeSheet, "D", "E", 20)
	_ = f.SetColWidth(GradeSheet, "F", "F", 40)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return bytes.Clone(buf.Bytes()), nil
}
