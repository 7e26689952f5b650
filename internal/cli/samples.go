package cli

import (
	"encoding/json"
	"fmt"

	"lms-assessment-service/internal/domain"
	"lms-assessment-service/internal/infra/memory"
)

// sampleAssessment exercises every question kind; it is served when no
// database is configured.
const sampleAssessment = `{
	"id": "demo",
	"title": "Platform tour",
	"type": "quiz",
	"description": "One question of every kind.",
	"time_limit": 15,
	"passing_score": 60,
	"status": "published",
	"questions": [
		{"id": 1, "type": "multiple-choice", "question_text": "Which planet is known as the red planet?", "options": ["Venus", "Mars", "Jupiter"], "correct_answer": 1},
		{"id": 2, "type": "true-false", "question_text": "Water boils at 100°C at sea level.", "correct_answer": "true"},
		{"id": 3, "type": "short-answer", "question_text": "Capital of Japan?", "correct_answer": "Tokyo"},
		{"id": 4, "type": "essay", "question_text": "Describe the water cycle.", "points": 5, "model_answer": "Evaporation, condensation, precipitation, collection."},
		{"id": 5, "type": "coding", "question_text": "Return the sum of a and b.", "points": 3, "test_cases": [{"input": "1 2", "expectedOutput": "3"}]},
		{"id": 6, "type": "file-upload", "question_text": "Upload your lab report.", "points": 2},
		{"id": 7, "type": "matching", "question_text": "Match the element to its symbol.", "matching_pairs": [{"left": "Gold", "right": "Au"}, {"left": "Iron", "right": "Fe"}]},
		{"id": 8, "type": "ordering", "question_text": "Order from smallest to largest.", "correct_order": ["atom", "molecule", "cell"]}
	]
}`

const sampleLesson = `{
	"id": "intro",
	"title": "Getting started",
	"objectives": "Find your way around a lesson.",
	"difficulty": "beginner",
	"estimatedDuration": "10 min",
	"tags": "onboarding, basics",
	"contentBlocks": [
		{"id": 1, "type": "text", "title": "Welcome", "content": "Lessons mix material with a short quiz."},
		{"id": 2, "type": "video", "title": "Tour", "content": "https://youtu.be/dQw4w9WgXcQ"}
	],
	"quizQuestions": [
		{"id": 1, "question": "Where is the quiz?", "options": ["At the end", "At the start"], "correctAnswer": 0}
	]
}`

func sampleContent() (*memory.StaticLoader, error) {
	var a domain.Assessment
	if err := json.Unmarshal([]byte(sampleAssessment), &a); err != nil {
		return nil, fmt.Errorf("sample assessment: %w", err)
	}
	var l domain.Lesson
	if err := json.Unmarshal([]byte(sampleLesson), &l); err != nil {
		return nil, fmt.Errorf("sample lesson: %w", err)
	}
	if err := l.Validate(); err != nil {
		return nil, fmt.Errorf("sample lesson: %w", err)
	}
	return memory.NewStaticLoader(
		map[string]domain.Assessment{a.ID: a},
		map[string]domain.Lesson{l.ID: l},
	), nil
}
