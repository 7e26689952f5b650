package app

import (
	"lms-assessment-service/internal/domain"
)

// RenderLesson renders lesson blocks in order, followed by the unanswered quiz.
// Video blocks that point at YouTube carry the embed id.
func RenderLesson(lesson domain.Lesson) (domain.LessonView, error) {
	quiz, err := lesson.QuizQuestions()
	if err != nil {
		return domain.LessonView{}, err
	}

	view := domain.LessonView{
		ID:                lesson.ID,
		Title:             lesson.Title,
		Objectives:        lesson.Objectives,
		Prerequisites:     lesson.Prerequisites,
		EstimatedDuration: lesson.EstimatedDuration,
		Difficulty:        lesson.Difficulty,
		Tags:              lesson.Tags,
		Blocks:            make([]domain.BlockView, 0, len(lesson.Blocks)),
		Quiz:              make([]domain.QuestionView, 0, quiz.Len()),
	}
	if view.Tags == nil {
		view.Tags = domain.Tags{}
	}
	for _, b := range lesson.Blocks {
		bv := domain.BlockView{ID: b.ID, Type: b.Type, Title: b.Title, Content: b.Content}
		if b.Type == domain.BlockVideo && domain.IsYouTubeURL(b.Content) {
			bv.EmbedID = domain.YouTubeID(b.Content)
		}
		view.Blocks = append(view.Blocks, bv)
	}
	for i, q := range quiz.All() {
		view.Quiz = append(view.Quiz, Render(q, nil, RenderState{Position: i}))
	}
	return view, nil
}
