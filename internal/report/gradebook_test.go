package report

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"lms-assessment-service/internal/domain"
	"lms-assessment-service/internal/infra/memory"
)

func TestGradebookOneRowPerSubmission(t *testing.T) {
	ctx := context.Background()
	log := memory.NewSubmissionLog()
	at := time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC)
	for _, learner := range []string{"ada", "grace"} {
		_, err := log.Submit(ctx, domain.Submission{
			SessionID:    learner + "-s",
			AssessmentID: "a1",
			LearnerID:    learner,
			Result:       domain.Result{Score: 2, Gradable: 4, Total: 5, Percent: 50},
			SubmittedAt:  at,
		})
		require.NoError(t, err)
	}
	_, err := log.Submit(ctx, domain.Submission{SessionID: "x", AssessmentID: "other"})
	require.NoError(t, err)

	data, err := Gradebook(ctx, log, "a1")
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Results"}, f.GetSheetList())
	rows, err := f.GetRows("Results")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Learner ID", rows[0][1])
	assert.Equal(t, "ada", rows[1][1])
	assert.Equal(t, "grace", rows[2][1])
	assert.Equal(t, "2025-02-03 04:05:06", rows[1][4])
	assert.Equal(t, "50", rows[1][8])
	assert.Equal(t, "No", rows[1][9])
}

func TestGradebookEmpty(t *testing.T) {
	data, err := WriteGradebook(nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Results")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
