package report

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"lms-assessment-service/internal/domain"
)

const gradebookSheet = "Results"

// SubmissionLister reads stored submissions for an assessment.
type SubmissionLister interface {
	ListSubmissions(ctx context.Context, assessmentID string) ([]domain.SubmissionRecord, error)
}

var gradebookHeaders = []string{
	"Submission ID", "Learner ID", "Assessment ID", "Session ID", "Submitted At",
	"Score", "Gradable", "Questions", "Percentage", "Passed",
}

// Gradebook loads an assessment's submissions and renders them as xlsx.
func Gradebook(ctx context.Context, lister SubmissionLister, assessmentID string) ([]byte, error) {
	records, err := lister.ListSubmissions(ctx, assessmentID)
	if err != nil {
		return nil, err
	}
	return WriteGradebook(records)
}

// WriteGradebook renders one row per submission below a header row.
func WriteGradebook(records []domain.SubmissionRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(gradebookSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}

	for col, header := range gradebookHeaders {
		if err := setCell(f, col+1, 1, header); err != nil {
			return nil, err
		}
	}

	for i, rec := range records {
		row := []any{
			rec.ID,
			rec.LearnerID,
			rec.AssessmentID,
			rec.SessionID,
			rec.SubmittedAt.UTC().Format("2006-01-02 15:04:05"),
			rec.Result.Score,
			rec.Result.Gradable,
			rec.Result.Total,
			rec.Result.Percent,
			passedLabel(rec.Result.Passed),
		}
		for col, value := range row {
			if err := setCell(f, col+1, i+2, value); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

func setCell(f *excelize.File, col, row int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(gradebookSheet, cell, value)
}

func passedLabel(passed bool) string {
	if passed {
		return "Yes"
	}
	return "No"
}
