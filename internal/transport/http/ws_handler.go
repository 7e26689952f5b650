package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"lms-assessment-service/internal/app"
	"lms-assessment-service/internal/domain"
)

type WSHandler struct {
	service  *app.AssessmentService
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.AssessmentService, logger *zap.Logger) *WSHandler {
	return &WSHandler{
		service: service,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	QuestionID domain.QuestionID `json:"questionId"`
	Value      json.RawMessage   `json:"value"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

// ServeWS upgrades HTTP requests to websockets and drives one session over
// the connection. Either sessionId attaches to an existing session, or
// learnerId plus assessmentId (or lessonId) starts a new one.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sessionID := q.Get("sessionId")
	learnerID := q.Get("learnerId")
	assessmentID := q.Get("assessmentId")
	lessonID := q.Get("lessonId")
	if sessionID == "" && (learnerID == "" || (assessmentID == "" && lessonID == "")) {
		http.Error(w, "missing sessionId, or learnerId with assessmentId or lessonId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx := r.Context()
	if sessionID == "" {
		sessionID, err = h.start(ctx, assessmentID, lessonID, learnerID)
		if err != nil {
			_ = conn.WriteJSON(errorMessage(err))
			return
		}
	}

	updates, cancel, err := h.service.Subscribe(ctx, sessionID)
	if err != nil {
		_ = conn.WriteJSON(errorMessage(err))
		return
	}
	defer cancel()
	log := h.logger.With(zap.String("session_id", sessionID))

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// only the writer goroutine touches conn for writes
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Debug("ws write error", zap.Error(err))
				// unblock the reader too
				_ = conn.Close()
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case view, ok := <-updates:
				if !ok {
					// session closed elsewhere; unblock the reader
					_ = conn.Close()
					return
				}
				if !forward(send, writerDone, closeSignals, outboundMessage[any]{Type: "state", Payload: view}) {
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		if reply, ok := h.handle(ctx, sessionID, inbound); ok {
			if !forward(send, writerDone, nil, reply) {
				break
			}
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

// forward queues msg for the writer. It reports false once the writer has
// exited or stop is closed, instead of blocking on a full queue.
func forward(send chan<- outboundMessage[any], writerDone, stop <-chan struct{}, msg outboundMessage[any]) bool {
	select {
	case send <- msg:
		return true
	case <-writerDone:
		return false
	case <-stop:
		return false
	}
}

func (h *WSHandler) start(ctx context.Context, assessmentID, lessonID, learnerID string) (string, error) {
	var (
		view domain.SessionView
		err  error
	)
	if lessonID != "" {
		view, err = h.service.StartLessonQuiz(ctx, lessonID, learnerID)
	} else {
		view, err = h.service.Start(ctx, assessmentID, learnerID)
	}
	return view.SessionID, err
}

// handle applies one inbound command. State changes reach the client through
// the subscription; the returned message carries errors and submit acks.
func (h *WSHandler) handle(ctx context.Context, sessionID string, in inboundMessage) (outboundMessage[any], bool) {
	var err error
	switch in.Type {
	case "answer":
		var payload answerPayload
		if err := json.Unmarshal(in.Payload, &payload); err != nil || payload.QuestionID == "" {
			return outboundMessage[any]{Type: "error", Payload: errorPayload{Code: "bad_request", Message: "invalid answer payload"}}, true
		}
		_, err = h.service.Answer(ctx, sessionID, payload.QuestionID, payload.Value)
	case "next":
		_, err = h.service.Next(ctx, sessionID)
	case "previous":
		_, err = h.service.Previous(ctx, sessionID)
	case "submit":
		var ack domain.Ack
		_, ack, err = h.service.Submit(ctx, sessionID)
		if err == nil {
			return outboundMessage[any]{Type: "submitted", Payload: ack}, true
		}
	default:
		return outboundMessage[any]{Type: "error", Payload: errorPayload{Code: "bad_request", Message: "unsupported message type"}}, true
	}
	if err != nil {
		return errorMessage(err), true
	}
	return outboundMessage[any]{}, false
}

func errorMessage(err error) outboundMessage[any] {
	_, p := classify(err)
	return outboundMessage[any]{Type: "error", Payload: p}
}
