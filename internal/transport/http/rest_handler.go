package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"lms-assessment-service/internal/app"
	"lms-assessment-service/internal/domain"
	"lms-assessment-service/internal/report"
)

// RESTHandler exposes session use cases as JSON endpoints.
type RESTHandler struct {
	service   *app.AssessmentService
	gradebook report.SubmissionLister
}

func NewRESTHandler(service *app.AssessmentService, gradebook report.SubmissionLister) *RESTHandler {
	return &RESTHandler{service: service, gradebook: gradebook}
}

type startRequest struct {
	AssessmentID string `json:"assessmentId"`
	LearnerID    string `json:"learnerId"`
}

type answerRequest struct {
	Value json.RawMessage `json:"value"`
}

type submitResponse struct {
	Session domain.SessionView `json:"session"`
	Ack     domain.Ack         `json:"ack"`
}

// Routes mounts the handler under an /api router.
func (h *RESTHandler) Routes(r chi.Router) {
	r.Post("/sessions", h.start)
	r.Route("/sessions/{sessionID}", func(r chi.Router) {
		r.Get("/", h.view)
		r.Delete("/", h.close)
		r.Put("/answers/{questionID}", h.answer)
		r.Post("/next", h.next)
		r.Post("/previous", h.previous)
		r.Post("/submit", h.submit)
	})
	r.Get("/lessons/{lessonID}", h.lesson)
	r.Post("/lessons/{lessonID}/sessions", h.startLessonQuiz)
	if h.gradebook != nil {
		r.Get("/assessments/{assessmentID}/gradebook.xlsx", h.exportGradebook)
	}
}

func (h *RESTHandler) start(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if req.AssessmentID == "" || req.LearnerID == "" {
		badRequest(w, "assessmentId and learnerId are required")
		return
	}
	view, err := h.service.Start(r.Context(), req.AssessmentID, req.LearnerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (h *RESTHandler) startLessonQuiz(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.LearnerID == "" {
		badRequest(w, "learnerId is required")
		return
	}
	view, err := h.service.StartLessonQuiz(r.Context(), chi.URLParam(r, "lessonID"), req.LearnerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (h *RESTHandler) view(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.View(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *RESTHandler) answer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Value) == 0 {
		badRequest(w, "body must be {\"value\": ...}")
		return
	}
	view, err := h.service.Answer(r.Context(),
		chi.URLParam(r, "sessionID"),
		domain.QuestionID(chi.URLParam(r, "questionID")),
		req.Value,
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *RESTHandler) next(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Next(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *RESTHandler) previous(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Previous(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *RESTHandler) submit(w http.ResponseWriter, r *http.Request) {
	view, ack, err := h.service.Submit(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, submitResponse{Session: view, Ack: ack})
}

func (h *RESTHandler) close(w http.ResponseWriter, r *http.Request) {
	h.service.Close(r.Context(), chi.URLParam(r, "sessionID"))
	w.WriteHeader(http.StatusNoContent)
}

func (h *RESTHandler) lesson(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.PreviewLesson(r.Context(), chi.URLParam(r, "lessonID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *RESTHandler) exportGradebook(w http.ResponseWriter, r *http.Request) {
	assessmentID := chi.URLParam(r, "assessmentID")
	data, err := report.Gradebook(r.Context(), h.gradebook, assessmentID)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", assessmentID+"-gradebook.xlsx"))
	_, _ = w.Write(data)
}
