package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionNotFound is returned when an assessment session does not exist or was closed.
	ErrSessionNotFound = errors.New("assessment session not found")
	// ErrAssessmentNotFound indicates the assessment content could not be loaded.
	ErrAssessmentNotFound = errors.New("assessment not found")
	// ErrLessonNotFound indicates the lesson content could not be loaded.
	ErrLessonNotFound = errors.New("lesson not found")
	// ErrQuestionNotFound indicates a submitted question ID is not part of the session.
	ErrQuestionNotFound = errors.New("question not found")

	// ErrInvalidQuestion is returned at ingestion when a question's fields do not fit its kind.
	ErrInvalidQuestion = errors.New("invalid question")
	// ErrDuplicateQuestionID is returned at ingestion when two questions share an id.
	ErrDuplicateQuestionID = errors.New("duplicate question id")

	// ErrInvalidAnswer indicates an answer value whose shape does not fit the question kind.
	ErrInvalidAnswer = errors.New("invalid answer for question kind")
	// ErrAnswerNotCaptured is returned for kinds whose answers are display-only.
	ErrAnswerNotCaptured = errors.New("answers are not captured for this question kind")
	// ErrAlreadySubmitted is returned for any mutation after the session was submitted.
	ErrAlreadySubmitted = errors.New("session already submitted")
	// ErrNotAtLastQuestion is returned when submit is requested before reaching the last question.
	ErrNotAtLastQuestion = errors.New("submit is only allowed from the last question")
	// ErrIncompleteQuiz is returned when a lesson quiz is submitted with unanswered questions.
	ErrIncompleteQuiz = errors.New("all quiz questions must be answered before submitting")
)

// InvalidQuestionError describes why a question record was rejected at ingestion.
type InvalidQuestionError struct {
	Index    int
	ID       QuestionID
	Problems ValidationErrors
}

func (e *InvalidQuestionError) Error() string {
	id := string(e.ID)
	if id == "" {
		id = "?"
	}
	return fmt.Sprintf("question %d (id %s): %s", e.Index+1, id, e.Problems.Error())
}

func (e *InvalidQuestionError) Unwrap() error {
	return ErrInvalidQuestion
}
