package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"lms-assessment-service/internal/domain"
)

type assessmentRow struct {
	bun.BaseModel `bun:"table:assessments"`

	ID        string          `bun:"id,pk"`
	Title     string          `bun:"title"`
	Status    string          `bun:"status"`
	Data      json.RawMessage `bun:"data,type:jsonb"`
	UpdatedAt time.Time       `bun:"updated_at"`
}

type lessonRow struct {
	bun.BaseModel `bun:"table:lessons"`

	ID        string          `bun:"id,pk"`
	Title     string          `bun:"title"`
	Data      json.RawMessage `bun:"data,type:jsonb"`
	UpdatedAt time.Time       `bun:"updated_at"`
}

// Seeder upserts authored content. Documents are validated before they are written.
type Seeder struct {
	db  *bun.DB
	now func() time.Time
}

func NewSeeder(db *bun.DB) *Seeder {
	return &Seeder{db: db, now: time.Now}
}

func (s *Seeder) UpsertAssessment(ctx context.Context, a domain.Assessment) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode assessment %s: %w", a.ID, err)
	}
	row := &assessmentRow{ID: a.ID, Title: a.Title, Status: a.Status, Data: data, UpdatedAt: s.now()}
	_, err = s.db.NewInsert().
		Model(row).
		On("CONFLICT (id) DO UPDATE").
		Set("title = EXCLUDED.title").
		Set("status = EXCLUDED.status").
		Set("data = EXCLUDED.data").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("upsert assessment %s: %w", a.ID, err)
	}
	return nil
}

func (s *Seeder) UpsertLesson(ctx context.Context, lesson domain.Lesson) error {
	if err := lesson.Validate(); err != nil {
		return fmt.Errorf("lesson %s: %w", lesson.ID, err)
	}
	data, err := json.Marshal(lesson)
	if err != nil {
		return fmt.Errorf("encode lesson %s: %w", lesson.ID, err)
	}
	row := &lessonRow{ID: lesson.ID, Title: lesson.Title, Data: data, UpdatedAt: s.now()}
	_, err = s.db.NewInsert().
		Model(row).
		On("CONFLICT (id) DO UPDATE").
		Set("title = EXCLUDED.title").
		Set("data = EXCLUDED.data").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("upsert lesson %s: %w", lesson.ID, err)
	}
	return nil
}
