package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"lms-assessment-service/internal/domain"
)

// SubmissionLog keeps submissions in memory. It implements app.SubmissionSink
// and serves the gradebook export when no database is configured. A session is
// stored once; redelivery returns the original acknowledgement.
type SubmissionLog struct {
	now func() time.Time

	mu      sync.RWMutex
	records []domain.SubmissionRecord
	acks    map[string]domain.Ack
}

func NewSubmissionLog() *SubmissionLog {
	return &SubmissionLog{now: time.Now, acks: make(map[string]domain.Ack)}
}

func (l *SubmissionLog) Submit(_ context.Context, s domain.Submission) (domain.Ack, error) {
	answers, err := json.Marshal(s.Answers)
	if err != nil {
		return domain.Ack{}, fmt.Errorf("encode answers: %w", err)
	}
	rec := domain.SubmissionRecord{
		ID:           uuid.NewString(),
		SessionID:    s.SessionID,
		AssessmentID: s.AssessmentID,
		LearnerID:    s.LearnerID,
		Result:       s.Result,
		Answers:      answers,
		SubmittedAt:  s.SubmittedAt,
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for _, existing := range l.records {
		if existing.SessionID == s.SessionID {
			return l.acks[existing.ID], nil
		}
	}
	ack := domain.Ack{SubmissionID: rec.ID, ReceivedAt: l.now()}
	l.records = append(l.records, rec)
	l.acks[rec.ID] = ack
	return ack, nil
}

// ListSubmissions returns submissions for an assessment in arrival order; an
// empty assessmentID lists everything.
func (l *SubmissionLog) ListSubmissions(_ context.Context, assessmentID string) ([]domain.SubmissionRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.SubmissionRecord, 0, len(l.records))
	for _, rec := range l.records {
		if assessmentID == "" || rec.AssessmentID == assessmentID {
			out = append(out, rec)
		}
	}
	return out, nil
}
