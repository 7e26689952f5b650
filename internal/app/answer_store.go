package app

import "lms-assessment-service/internal/domain"

// AnswerStore maps question ids to the learner's current answer. Writes replace
// any prior value; entries are never removed for the lifetime of a session.
type AnswerStore struct {
	entries map[domain.QuestionID]domain.Answer
}

func NewAnswerStore() *AnswerStore {
	return &AnswerStore{entries: make(map[domain.QuestionID]domain.Answer)}
}

// Set stores a for id, overwriting any earlier answer.
func (s *AnswerStore) Set(id domain.QuestionID, a domain.Answer) {
	s.entries[id] = a
}

func (s *AnswerStore) Get(id domain.QuestionID) (domain.Answer, bool) {
	a, ok := s.entries[id]
	return a, ok
}

func (s *AnswerStore) Len() int {
	return len(s.entries)
}

// Snapshot returns a copy of all entries.
func (s *AnswerStore) Snapshot() map[domain.QuestionID]domain.Answer {
	out := make(map[domain.QuestionID]domain.Answer, len(s.entries))
	for id, a := range s.entries {
		if seq, ok := a.(domain.SequenceAnswer); ok {
			a = append(domain.SequenceAnswer(nil), seq...)
		}
		out[id] = a
	}
	return out
}
