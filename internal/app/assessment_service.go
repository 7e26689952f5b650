package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"lms-assessment-service/internal/domain"
)

// SessionRepository abstracts where live sessions are kept (in-memory, Redis, etc).
type SessionRepository interface {
	Save(session *Session)
	Get(sessionID string) (*Session, bool)
	Delete(sessionID string)
}

// AssessmentRepository loads assessment content (from cache/backing store).
type AssessmentRepository interface {
	GetAssessment(ctx context.Context, assessmentID string) (domain.Assessment, error)
}

// LessonRepository loads lesson content.
type LessonRepository interface {
	GetLesson(ctx context.Context, lessonID string) (domain.Lesson, error)
}

// SubmissionSink receives the final answers of a submitted session.
type SubmissionSink interface {
	Submit(ctx context.Context, submission domain.Submission) (domain.Ack, error)
}

// SubmissionSinkFunc adapts a function to SubmissionSink.
type SubmissionSinkFunc func(ctx context.Context, submission domain.Submission) (domain.Ack, error)

func (f SubmissionSinkFunc) Submit(ctx context.Context, submission domain.Submission) (domain.Ack, error) {
	return f(ctx, submission)
}

// discardSink acknowledges submissions without storing them.
var discardSink = SubmissionSinkFunc(func(_ context.Context, s domain.Submission) (domain.Ack, error) {
	return domain.Ack{SubmissionID: s.SessionID, ReceivedAt: s.SubmittedAt}, nil
})

// AssessmentService contains the learner-facing assessment use cases.
type AssessmentService struct {
	sessions    SessionRepository
	assessments AssessmentRepository
	lessons     LessonRepository
	sink        SubmissionSink
	capture     domain.CaptureMode
	logger      *zap.Logger
	now         func() time.Time
	newID       func() string
	seed        func() int64
}

// Option configures an AssessmentService.
type Option func(*AssessmentService)

func WithLessons(lessons LessonRepository) Option {
	return func(s *AssessmentService) { s.lessons = lessons }
}

func WithSubmissionSink(sink SubmissionSink) Option {
	return func(s *AssessmentService) { s.sink = sink }
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *AssessmentService) { s.logger = logger }
}

// WithCaptureMode sets which question kinds sessions accept answers for.
func WithCaptureMode(mode domain.CaptureMode) Option {
	return func(s *AssessmentService) { s.capture = mode }
}

// WithClock is test-only for deterministic timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *AssessmentService) { s.now = now }
}

// WithShuffleSeed fixes the seed used for shuffled question order.
func WithShuffleSeed(seed int64) Option {
	return func(s *AssessmentService) { s.seed = func() int64 { return seed } }
}

func NewAssessmentService(sessions SessionRepository, assessments AssessmentRepository, opts ...Option) *AssessmentService {
	s := &AssessmentService{
		sessions:    sessions,
		assessments: assessments,
		sink:        discardSink,
		logger:      zap.NewNop(),
		now:         time.Now,
		newID:       uuid.NewString,
		seed:        func() int64 { return time.Now().UnixNano() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens a paged session for a learner.
func (s *AssessmentService) Start(ctx context.Context, assessmentID, learnerID string) (domain.SessionView, error) {
	assessment, err := s.assessments.GetAssessment(ctx, assessmentID)
	if err != nil {
		return domain.SessionView{}, err
	}
	session := s.open(assessment, learnerID)
	s.logger.Info("session started",
		zap.String("session_id", session.ID()),
		zap.String("assessment_id", assessmentID),
		zap.String("learner_id", learnerID),
		zap.Int("questions", assessment.Questions.Len()),
	)
	return session.View(), nil
}

// StartLessonQuiz opens a session over a lesson's embedded quiz, with every
// question shown at once.
func (s *AssessmentService) StartLessonQuiz(ctx context.Context, lessonID, learnerID string) (domain.SessionView, error) {
	lesson, err := s.lesson(ctx, lessonID)
	if err != nil {
		return domain.SessionView{}, err
	}
	assessment, err := lesson.QuizAssessment()
	if err != nil {
		return domain.SessionView{}, err
	}
	session := s.open(assessment, learnerID, RevealAll())
	s.logger.Info("lesson quiz started",
		zap.String("session_id", session.ID()),
		zap.String("lesson_id", lessonID),
		zap.String("learner_id", learnerID),
	)
	return session.View(), nil
}

func (s *AssessmentService) open(assessment domain.Assessment, learnerID string, opts ...SessionOption) *Session {
	opts = append(opts,
		WithSessionClock(s.now),
		WithCapture(s.capture),
		WithShuffle(rand.NewSource(s.seed())),
	)
	session := NewSession(s.newID(), assessment, learnerID, opts...)
	s.sessions.Save(session)
	return session
}

// Answer decodes raw for the question's kind and stores it.
func (s *AssessmentService) Answer(_ context.Context, sessionID string, questionID domain.QuestionID, raw json.RawMessage) (domain.SessionView, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return domain.SessionView{}, err
	}
	q, ok := session.Question(questionID)
	if !ok {
		return domain.SessionView{}, fmt.Errorf("%w: %s", domain.ErrQuestionNotFound, questionID)
	}
	answer, err := domain.DecodeAnswer(q, raw)
	if err != nil {
		return domain.SessionView{}, err
	}
	return session.SetAnswer(questionID, answer)
}

func (s *AssessmentService) Next(_ context.Context, sessionID string) (domain.SessionView, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return domain.SessionView{}, err
	}
	return session.Next()
}

func (s *AssessmentService) Previous(_ context.Context, sessionID string) (domain.SessionView, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return domain.SessionView{}, err
	}
	return session.Previous()
}

func (s *AssessmentService) View(_ context.Context, sessionID string) (domain.SessionView, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return domain.SessionView{}, err
	}
	return session.View(), nil
}

// Submit finalises the session and hands its answers to the submission sink.
// A sink failure is returned, but the session stays submitted; submitting
// again retries delivery of the recorded submission until the sink accepts it.
func (s *AssessmentService) Submit(ctx context.Context, sessionID string) (domain.SessionView, domain.Ack, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return domain.SessionView{}, domain.Ack{}, err
	}
	view, err := session.Submit()
	if errors.Is(err, domain.ErrAlreadySubmitted) {
		if _, delivered := session.Delivered(); !delivered {
			s.logger.Info("redelivering submission", zap.String("session_id", sessionID))
			return s.deliver(ctx, session, view)
		}
	}
	if err != nil {
		return view, domain.Ack{}, err
	}
	return s.deliver(ctx, session, view)
}

func (s *AssessmentService) deliver(ctx context.Context, session *Session, view domain.SessionView) (domain.SessionView, domain.Ack, error) {
	sessionID := session.ID()
	submission := session.Submission()
	log := s.logger.With(
		zap.String("session_id", sessionID),
		zap.String("assessment_id", submission.AssessmentID),
	)
	ack, err := s.sink.Submit(ctx, submission)
	if err != nil {
		log.Error("submission sink failed", zap.Error(err))
		return view, domain.Ack{}, fmt.Errorf("deliver submission: %w", err)
	}
	session.recordDelivery(ack)
	log.Info("session submitted",
		zap.Int("score", submission.Result.Score),
		zap.Int("gradable", submission.Result.Gradable),
		zap.String("submission_id", ack.SubmissionID),
	)
	return view, ack, nil
}

// Subscribe returns a channel that receives view updates for a session.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *AssessmentService) Subscribe(_ context.Context, sessionID string) (<-chan domain.SessionView, func(), error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := session.subscribe()
	return ch, cancel, nil
}

// Close discards a session and ends its subscriptions.
func (s *AssessmentService) Close(_ context.Context, sessionID string) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return
	}
	session.Close()
	s.sessions.Delete(sessionID)
	s.logger.Debug("session closed", zap.String("session_id", sessionID))
}

// PreviewLesson renders a lesson with its quiz unanswered.
func (s *AssessmentService) PreviewLesson(ctx context.Context, lessonID string) (domain.LessonView, error) {
	lesson, err := s.lesson(ctx, lessonID)
	if err != nil {
		return domain.LessonView{}, err
	}
	return RenderLesson(lesson)
}

func (s *AssessmentService) session(id string) (*Session, error) {
	session, ok := s.sessions.Get(id)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

func (s *AssessmentService) lesson(ctx context.Context, id string) (domain.Lesson, error) {
	if s.lessons == nil {
		return domain.Lesson{}, domain.ErrLessonNotFound
	}
	lesson, err := s.lessons.GetLesson(ctx, id)
	if err != nil {
		return domain.Lesson{}, err
	}
	if err := lesson.Validate(); err != nil {
		return domain.Lesson{}, fmt.Errorf("lesson %s: %w", id, err)
	}
	return lesson, nil
}
