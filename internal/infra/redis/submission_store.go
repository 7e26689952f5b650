package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"lms-assessment-service/internal/domain"
)

// SubmissionStore keeps submitted answers in a hash per assessment:
//
//	HSET assessment:{aid}:submissions {submissionID} {record json}
type SubmissionStore struct {
	client *redis.Client
	now    func() time.Time
}

func NewSubmissionStore(client *redis.Client) *SubmissionStore {
	return &SubmissionStore{client: client, now: time.Now}
}

func (s *SubmissionStore) Submit(ctx context.Context, sub domain.Submission) (domain.Ack, error) {
	answers, err := json.Marshal(sub.Answers)
	if err != nil {
		return domain.Ack{}, fmt.Errorf("encode answers: %w", err)
	}
	rec := domain.SubmissionRecord{
		ID:           uuid.NewString(),
		SessionID:    sub.SessionID,
		AssessmentID: sub.AssessmentID,
		LearnerID:    sub.LearnerID,
		Result:       sub.Result,
		Answers:      answers,
		SubmittedAt:  sub.SubmittedAt,
	}
	blob, err := json.Marshal(rec)
	if err != nil {
		return domain.Ack{}, fmt.Errorf("encode submission: %w", err)
	}
	// one field per session keeps redelivery from adding a second row
	key := s.key(sub.AssessmentID)
	stored, err := s.client.HSetNX(ctx, key, sub.SessionID, blob).Result()
	if err != nil {
		return domain.Ack{}, fmt.Errorf("store submission: %w", err)
	}
	if !stored {
		existing, err := s.client.HGet(ctx, key, sub.SessionID).Bytes()
		if err != nil {
			return domain.Ack{}, fmt.Errorf("load submission: %w", err)
		}
		var prev domain.SubmissionRecord
		if err := json.Unmarshal(existing, &prev); err != nil {
			return domain.Ack{}, fmt.Errorf("decode submission: %w", err)
		}
		rec.ID = prev.ID
	}
	return domain.Ack{SubmissionID: rec.ID, ReceivedAt: s.now()}, nil
}

// ListSubmissions returns an assessment's submissions, oldest first.
func (s *SubmissionStore) ListSubmissions(ctx context.Context, assessmentID string) ([]domain.SubmissionRecord, error) {
	entries, err := s.client.HGetAll(ctx, s.key(assessmentID)).Result()
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	out := make([]domain.SubmissionRecord, 0, len(entries))
	for id, blob := range entries {
		var rec domain.SubmissionRecord
		if err := json.Unmarshal([]byte(blob), &rec); err != nil {
			return nil, fmt.Errorf("decode submission %s: %w", id, err)
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].SubmittedAt.Equal(out[j].SubmittedAt) {
			return out[i].SubmittedAt.Before(out[j].SubmittedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *SubmissionStore) key(assessmentID string) string {
	return "assessment:" + assessmentID + ":submissions"
}
