package memory

import (
	"context"

	"lms-assessment-service/internal/domain"
)

// StaticLoader serves assessments and lessons from in-memory maps (useful for tests/demos).
type StaticLoader struct {
	assessments map[string]domain.Assessment
	lessons     map[string]domain.Lesson
}

func NewStaticLoader(assessments map[string]domain.Assessment, lessons map[string]domain.Lesson) *StaticLoader {
	if assessments == nil {
		assessments = map[string]domain.Assessment{}
	}
	if lessons == nil {
		lessons = map[string]domain.Lesson{}
	}
	return &StaticLoader{assessments: assessments, lessons: lessons}
}

func (l *StaticLoader) LoadAssessment(_ context.Context, assessmentID string) (domain.Assessment, error) {
	if a, ok := l.assessments[assessmentID]; ok {
		return a, nil
	}
	return domain.Assessment{}, domain.ErrAssessmentNotFound
}

func (l *StaticLoader) GetLesson(_ context.Context, lessonID string) (domain.Lesson, error) {
	if lesson, ok := l.lessons[lessonID]; ok {
		return lesson, nil
	}
	return domain.Lesson{}, domain.ErrLessonNotFound
}
