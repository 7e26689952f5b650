package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"lms-assessment-service/internal/domain"
)

type errorPayload struct {
	Code    string                   `json:"code"`
	Message string                   `json:"message"`
	Fields  []domain.ValidationError `json:"fields,omitempty"`
}

// classify maps service errors to an HTTP status and a stable code.
func classify(err error) (int, errorPayload) {
	p := errorPayload{Code: "internal", Message: err.Error()}
	status := http.StatusInternalServerError

	var invalid *domain.InvalidQuestionError
	var fields domain.ValidationErrors
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		status, p.Code = http.StatusNotFound, "session_not_found"
	case errors.Is(err, domain.ErrAssessmentNotFound):
		status, p.Code = http.StatusNotFound, "assessment_not_found"
	case errors.Is(err, domain.ErrLessonNotFound):
		status, p.Code = http.StatusNotFound, "lesson_not_found"
	case errors.Is(err, domain.ErrQuestionNotFound):
		status, p.Code = http.StatusNotFound, "question_not_found"
	case errors.Is(err, domain.ErrAlreadySubmitted):
		status, p.Code = http.StatusConflict, "already_submitted"
	case errors.Is(err, domain.ErrNotAtLastQuestion):
		status, p.Code = http.StatusConflict, "not_at_last_question"
	case errors.Is(err, domain.ErrIncompleteQuiz):
		status, p.Code = http.StatusConflict, "incomplete_quiz"
	case errors.Is(err, domain.ErrInvalidAnswer):
		status, p.Code = http.StatusUnprocessableEntity, "invalid_answer"
	case errors.Is(err, domain.ErrAnswerNotCaptured):
		status, p.Code = http.StatusUnprocessableEntity, "answer_not_captured"
	case errors.As(err, &invalid):
		status, p.Code, p.Fields = http.StatusUnprocessableEntity, "invalid_question", invalid.Problems
	case errors.Is(err, domain.ErrInvalidQuestion), errors.Is(err, domain.ErrDuplicateQuestionID):
		status, p.Code = http.StatusUnprocessableEntity, "invalid_question"
	case errors.As(err, &fields):
		status, p.Code, p.Fields = http.StatusUnprocessableEntity, "validation_failed", fields
	}
	return status, p
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status, p := classify(err)
	writeJSON(w, status, p)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorPayload{Code: "bad_request", Message: msg})
}
