package app

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"lms-assessment-service/internal/domain"
)

// Session is one learner's pass through an assessment. It moves between
// questions while answering and becomes read-only once submitted; there is no
// way back from submitted short of discarding the session.
type Session struct {
	id         string
	assessment domain.Assessment
	learnerID  string
	capture    domain.CaptureMode
	revealAll  bool
	order      []int
	createdAt  time.Time
	now        func() time.Time

	mu          sync.RWMutex
	current     int
	submitted   bool
	submittedAt time.Time
	result      domain.Result
	ack         *domain.Ack
	answers     *AnswerStore
	subscribers map[chan domain.SessionView]struct{}
}

// SessionOption customises a new session.
type SessionOption func(*Session)

// WithSessionClock allows deterministic timestamps in tests.
func WithSessionClock(now func() time.Time) SessionOption {
	return func(s *Session) { s.now = now }
}

// WithCapture sets which question kinds accept answers.
func WithCapture(mode domain.CaptureMode) SessionOption {
	return func(s *Session) { s.capture = mode }
}

// RevealAll shows every question at once, the way a lesson quiz is laid out.
// Submission then requires every question to be answered instead of reaching
// the last one.
func RevealAll() SessionOption {
	return func(s *Session) { s.revealAll = true }
}

// WithShuffle permutes the question order with src when the assessment asks
// for shuffled questions.
func WithShuffle(src rand.Source) SessionOption {
	return func(s *Session) {
		if !s.assessment.ShuffleQuestions {
			return
		}
		rand.New(src).Shuffle(len(s.order), func(i, j int) {
			s.order[i], s.order[j] = s.order[j], s.order[i]
		})
	}
}

// NewSession starts an unsubmitted session positioned at the first question.
func NewSession(id string, assessment domain.Assessment, learnerID string, opts ...SessionOption) *Session {
	s := &Session{
		id:          id,
		assessment:  assessment,
		learnerID:   learnerID,
		now:         time.Now,
		answers:     NewAnswerStore(),
		subscribers: make(map[chan domain.SessionView]struct{}),
	}
	s.order = make([]int, assessment.Questions.Len())
	for i := range s.order {
		s.order[i] = i
	}
	for _, opt := range opts {
		opt(s)
	}
	s.createdAt = s.now()
	return s
}

func (s *Session) ID() string           { return s.id }
func (s *Session) AssessmentID() string { return s.assessment.ID }
func (s *Session) LearnerID() string    { return s.learnerID }
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// Question looks up a question of this session by id.
func (s *Session) Question(id domain.QuestionID) (domain.Question, bool) {
	q, _, ok := s.assessment.Questions.Lookup(id)
	return q, ok
}

// Answer returns the stored answer for id.
func (s *Session) Answer(id domain.QuestionID) (domain.Answer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.answers.Get(id)
}

// Submitted reports whether the session reached its terminal state.
func (s *Session) Submitted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.submitted
}

// SetAnswer records a for question id, replacing any earlier answer.
func (s *Session) SetAnswer(id domain.QuestionID, a domain.Answer) (domain.SessionView, error) {
	q, ok := s.Question(id)
	if !ok {
		return domain.SessionView{}, fmt.Errorf("%w: %s", domain.ErrQuestionNotFound, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.submitted {
		return s.viewLocked(), domain.ErrAlreadySubmitted
	}
	if err := s.capture.Accepts(q, a); err != nil {
		return domain.SessionView{}, err
	}
	s.answers.Set(id, a)
	return s.broadcastLocked(), nil
}

// Next moves forward one question. At the last question it stays put; only
// Submit moves on from there.
func (s *Session) Next() (domain.SessionView, error) {
	return s.move(1)
}

// Previous moves back one question, stopping at the first.
func (s *Session) Previous() (domain.SessionView, error) {
	return s.move(-1)
}

func (s *Session) move(delta int) (domain.SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.submitted {
		return s.viewLocked(), domain.ErrAlreadySubmitted
	}
	s.current = clamp(s.current+delta, 0, len(s.order)-1)
	return s.broadcastLocked(), nil
}

// Submit freezes the session and scores it.
func (s *Session) Submit() (domain.SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.submitted {
		return s.viewLocked(), domain.ErrAlreadySubmitted
	}
	if err := s.canSubmitLocked(); err != nil {
		return s.viewLocked(), err
	}
	s.submitted = true
	s.submittedAt = s.now()
	s.result = Grade(s.answers, s.assessment)
	return s.broadcastLocked(), nil
}

func (s *Session) canSubmitLocked() error {
	n := len(s.order)
	if s.revealAll {
		if s.answers.Len() < n {
			return domain.ErrIncompleteQuiz
		}
		return nil
	}
	if n > 0 && s.current != n-1 {
		return domain.ErrNotAtLastQuestion
	}
	return nil
}

// Submission packages the final answers and result. It is only meaningful
// after Submit succeeded.
func (s *Session) Submission() domain.Submission {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.Submission{
		SessionID:    s.id,
		AssessmentID: s.assessment.ID,
		LearnerID:    s.learnerID,
		Answers:      s.answers.Snapshot(),
		Result:       s.result,
		SubmittedAt:  s.submittedAt,
	}
}

// Delivered returns the sink acknowledgement once the submission was stored.
func (s *Session) Delivered() (domain.Ack, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.ack == nil {
		return domain.Ack{}, false
	}
	return *s.ack, true
}

func (s *Session) recordDelivery(ack domain.Ack) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ack = &ack
}

// View renders the session as the learner currently sees it.
func (s *Session) View() domain.SessionView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.viewLocked()
}

func (s *Session) viewLocked() domain.SessionView {
	n := len(s.order)
	view := domain.SessionView{
		SessionID:     s.id,
		AssessmentID:  s.assessment.ID,
		LearnerID:     s.learnerID,
		Title:         s.assessment.Title,
		Description:   s.assessment.Description,
		Type:          s.assessment.Type,
		TimeLimit:     s.assessment.TimeLimit,
		QuestionCount: n,
		TotalPoints:   s.assessment.TotalPoints(),
		CurrentIndex:  s.current,
		Submitted:     s.submitted,
		Progress:      domain.Progress{Total: n},
		Questions:     []domain.QuestionView{},
	}
	if n > 0 {
		view.Progress.Current = s.current + 1
		view.Progress.Percent = float64(s.current+1) / float64(n) * 100
		view.AnsweredPercent = int(math.Round(float64(s.answers.Len()) / float64(n) * 100))
	}
	view.Progress.Label = fmt.Sprintf("Question %d of %d", view.Progress.Current, n)
	view.CanSubmit = !s.submitted && s.canSubmitLocked() == nil

	st := RenderState{Submitted: s.submitted, ShowAnswers: s.assessment.ShowAnswers}
	for pos, idx := range s.order {
		if !s.submitted && !s.revealAll && pos != s.current {
			continue
		}
		q := s.assessment.Questions.At(idx)
		a, _ := s.answers.Get(q.Meta().ID)
		st.Position = pos
		view.Questions = append(view.Questions, Render(q, a, st))
	}
	if s.submitted {
		result := s.result
		view.Result = &result
	}
	return view
}

func (s *Session) subscribe() (<-chan domain.SessionView, func()) {
	ch := make(chan domain.SessionView, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	// the buffer is empty, so this cannot block while holding the lock
	ch <- s.viewLocked()
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// Close ends every subscription, e.g. when the session is discarded or expires.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subscribers {
		delete(s.subscribers, ch)
		close(ch)
	}
}

func (s *Session) broadcastLocked() domain.SessionView {
	view := s.viewLocked()
	for ch := range s.subscribers {
		select {
		case ch <- view:
		default:
			// slow subscriber: drop its oldest pending view so the latest wins
			select {
			case <-ch:
			default:
			}
			ch <- view
		}
	}
	return view
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return max(lo, min(v, hi))
}
