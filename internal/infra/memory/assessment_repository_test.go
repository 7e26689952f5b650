package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"lms-assessment-service/internal/domain"
)

func TestAssessmentRepositoryCaches(t *testing.T) {
	loader := &countingLoader{
		AssessmentLoader: NewStaticLoader(map[string]domain.Assessment{
			"a1": sampleAssessment(t),
		}, nil),
	}
	repo := NewAssessmentRepository(loader, time.Minute)

	if _, err := repo.GetAssessment(context.Background(), "a1"); err != nil {
		t.Fatalf("get assessment: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	a, err := repo.GetAssessment(context.Background(), "a1")
	if err != nil {
		t.Fatalf("get assessment 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
	if a.Questions.Len() != 2 {
		t.Fatalf("expected 2 questions, got %d", a.Questions.Len())
	}
}

func TestAssessmentRepositoryExpires(t *testing.T) {
	loader := &countingLoader{
		AssessmentLoader: NewStaticLoader(map[string]domain.Assessment{"a1": sampleAssessment(t)}, nil),
	}
	repo := NewAssessmentRepository(loader, time.Minute)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.clock = func() time.Time { return now }

	_, _ = repo.GetAssessment(context.Background(), "a1")
	now = now.Add(2 * time.Minute)
	_, _ = repo.GetAssessment(context.Background(), "a1")
	if loader.calls != 2 {
		t.Fatalf("expected reload after ttl, loader calls %d", loader.calls)
	}

	repo.Invalidate("a1")
	_, _ = repo.GetAssessment(context.Background(), "a1")
	if loader.calls != 3 {
		t.Fatalf("expected reload after invalidate, loader calls %d", loader.calls)
	}
}

func TestAssessmentRepositoryNotFound(t *testing.T) {
	repo := NewAssessmentRepository(NewStaticLoader(nil, nil), time.Minute)
	_, err := repo.GetAssessment(context.Background(), "missing")
	if !errors.Is(err, domain.ErrAssessmentNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestStaticLoaderLessons(t *testing.T) {
	loader := NewStaticLoader(nil, map[string]domain.Lesson{"l1": {ID: "l1", Title: "Intro"}})
	lesson, err := loader.GetLesson(context.Background(), "l1")
	if err != nil || lesson.Title != "Intro" {
		t.Fatalf("unexpected lesson %+v, err %v", lesson, err)
	}
	if _, err := loader.GetLesson(context.Background(), "l2"); !errors.Is(err, domain.ErrLessonNotFound) {
		t.Fatalf("expected lesson not found, got %v", err)
	}
}

type countingLoader struct {
	AssessmentLoader
	calls int
}

func (l *countingLoader) LoadAssessment(ctx context.Context, id string) (domain.Assessment, error) {
	l.calls++
	return l.AssessmentLoader.LoadAssessment(ctx, id)
}

func sampleAssessment(t *testing.T) domain.Assessment {
	t.Helper()
	var a domain.Assessment
	err := a.UnmarshalJSON([]byte(`{
		"id": "a1",
		"title": "Basics",
		"questions": [
			{"id": 1, "type": "multiple-choice", "question_text": "2 + 2?", "options": ["3", "4"], "correct_answer": 1},
			{"id": 2, "type": "true-false", "question_text": "Go has generics", "correct_answer": "true"}
		]
	}`))
	if err != nil {
		t.Fatalf("decode assessment: %v", err)
	}
	return a
}
