package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"

	"lms-assessment-service/internal/domain"
)

// SubmissionStore persists submitted sessions. A resubmitted session id keeps
// its first row.
type SubmissionStore struct {
	pool *pgxpool.Pool
}

func NewSubmissionStore(pool *pgxpool.Pool) *SubmissionStore {
	return &SubmissionStore{pool: pool}
}

func (s *SubmissionStore) Submit(ctx context.Context, sub domain.Submission) (domain.Ack, error) {
	answers, err := json.Marshal(sub.Answers)
	if err != nil {
		return domain.Ack{}, fmt.Errorf("encode answers: %w", err)
	}

	var (
		id       string
		received time.Time
	)
	err = s.pool.QueryRow(ctx, `
		INSERT INTO submissions
			(id, session_id, assessment_id, learner_id, score, gradable, total, total_points, percent, passed, answers, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (session_id) DO UPDATE SET session_id = EXCLUDED.session_id
		RETURNING id::text, received_at`,
		uuid.NewString(), sub.SessionID, sub.AssessmentID, sub.LearnerID,
		sub.Result.Score, sub.Result.Gradable, sub.Result.Total, sub.Result.TotalPoints,
		sub.Result.Percent, sub.Result.Passed, answers, sub.SubmittedAt,
	).Scan(&id, &received)
	if err != nil {
		return domain.Ack{}, fmt.Errorf("insert submission: %w", err)
	}
	return domain.Ack{SubmissionID: id, ReceivedAt: received}, nil
}

// ListSubmissions returns an assessment's submissions, oldest first. An empty
// assessmentID lists every submission.
func (s *SubmissionStore) ListSubmissions(ctx context.Context, assessmentID string) ([]domain.SubmissionRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id::text, session_id, assessment_id, learner_id, score, gradable, total, total_points,
		       percent::float8, passed, answers, submitted_at
		FROM submissions
		WHERE $1 = '' OR assessment_id = $1
		ORDER BY submitted_at, id`, assessmentID)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	var out []domain.SubmissionRecord
	for rows.Next() {
		var (
			rec     domain.SubmissionRecord
			answers []byte
		)
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.AssessmentID, &rec.LearnerID,
			&rec.Result.Score, &rec.Result.Gradable, &rec.Result.Total, &rec.Result.TotalPoints,
			&rec.Result.Percent, &rec.Result.Passed, &answers, &rec.SubmittedAt); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		rec.Answers = answers
		out = append(out, rec)
	}
	return out, rows.Err()
}
