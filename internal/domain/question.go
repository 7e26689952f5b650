package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Kind discriminates question variants.
type Kind string

const (
	KindMultipleChoice Kind = "multiple-choice"
	KindTrueFalse      Kind = "true-false"
	KindShortAnswer    Kind = "short-answer"
	KindEssay          Kind = "essay"
	KindCoding         Kind = "coding"
	KindFileUpload     Kind = "file-upload"
	KindMatching       Kind = "matching"
	KindOrdering       Kind = "ordering"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindMultipleChoice, KindTrueFalse, KindShortAnswer, KindEssay,
		KindCoding, KindFileUpload, KindMatching, KindOrdering:
		return true
	}
	return false
}

// QuestionID identifies a question within a question set. Integer ids from
// the authoring backend are accepted on the wire and kept as their decimal form.
type QuestionID string

func (id *QuestionID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = QuestionID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	if _, err := strconv.ParseInt(n.String(), 10, 64); err != nil {
		return err
	}
	*id = QuestionID(n.String())
	return nil
}

// Question is the sealed union of question variants. Each variant carries only
// the fields that are meaningful for its kind.
type Question interface {
	Meta() Base
	Kind() Kind
	// HasCorrectAnswer reports whether the question can be auto-scored.
	HasCorrectAnswer() bool
	isQuestion()
}

// Base holds the fields every question kind shares.
type Base struct {
	ID          QuestionID
	Prompt      string
	Points      int
	ModelAnswer string
}

func (b Base) Meta() Base { return b }
func (Base) isQuestion() {}

// TestCase is displayed alongside coding questions. It is never executed.
type TestCase struct {
	Input          string `json:"input" yaml:"input"`
	ExpectedOutput string `json:"expectedOutput" yaml:"expectedOutput"`
}

// MatchPair is one row of a matching question. The right column in pair order
// is the correct matching.
type MatchPair struct {
	Left  string `json:"left" yaml:"left"`
	Right string `json:"right" yaml:"right"`
}

type MultipleChoice struct {
	Base
	Options []string
	// Correct is the position of the correct option, nil when unknown.
	Correct *int
}

func (MultipleChoice) Kind() Kind { return KindMultipleChoice }
func (q MultipleChoice) HasCorrectAnswer() bool { return q.Correct != nil }

type TrueFalse struct {
	Base
	Correct *bool
}

func (TrueFalse) Kind() Kind { return KindTrueFalse }
func (q TrueFalse) HasCorrectAnswer() bool { return q.Correct != nil }

type ShortAnswer struct {
	Base
	Correct *string
}

func (ShortAnswer) Kind() Kind { return KindShortAnswer }
func (q ShortAnswer) HasCorrectAnswer() bool { return q.Correct != nil }

type Essay struct {
	Base
}

func (Essay) Kind() Kind { return KindEssay }
func (Essay) HasCorrectAnswer() bool { return false }

type Coding struct {
	Base
	TestCases []TestCase
}

func (Coding) Kind() Kind { return KindCoding }
func (Coding) HasCorrectAnswer() bool { return false }

type FileUpload struct {
	Base
	ReferenceFile string
}

func (FileUpload) Kind() Kind { return KindFileUpload }
func (FileUpload) HasCorrectAnswer() bool { return false }

type Matching struct {
	Base
	Pairs []MatchPair
}

func (Matching) Kind() Kind { return KindMatching }
func (q Matching) HasCorrectAnswer() bool { return len(q.Pairs) > 0 }

// CorrectRights returns the right-hand items in pair order.
func (q Matching) CorrectRights() []string {
	out := make([]string, len(q.Pairs))
	for i, p := range q.Pairs {
		out[i] = p.Right
	}
	return out
}

type Ordering struct {
	Base
	CorrectOrder []string
}

func (Ordering) Kind() Kind { return KindOrdering }
func (q Ordering) HasCorrectAnswer() bool { return len(q.CorrectOrder) > 0 }

// QuestionSet is an ordered, immutable sequence of questions with unique ids.
// Build one with NewQuestionSet or DecodeQuestions.
type QuestionSet struct {
	questions []Question
	index     map[QuestionID]int
}

// NewQuestionSet checks id uniqueness and returns the set.
func NewQuestionSet(questions ...Question) (QuestionSet, error) {
	set := QuestionSet{
		questions: make([]Question, 0, len(questions)),
		index:     make(map[QuestionID]int, len(questions)),
	}
	for i, q := range questions {
		id := q.Meta().ID
		if id == "" {
			problems := ValidationErrors{}
			problems.add("id", "is required")
			return QuestionSet{}, &InvalidQuestionError{Index: i, Problems: problems}
		}
		if _, dup := set.index[id]; dup {
			return QuestionSet{}, fmt.Errorf("%w: %s", ErrDuplicateQuestionID, id)
		}
		set.index[id] = i
		set.questions = append(set.questions, q)
	}
	return set, nil
}

// Len returns the number of questions.
func (s QuestionSet) Len() int { return len(s.questions) }

// At returns the question at position i.
func (s QuestionSet) At(i int) Question { return s.questions[i] }

// Lookup finds a question by id.
func (s QuestionSet) Lookup(id QuestionID) (Question, int, bool) {
	i, ok := s.index[id]
	if !ok {
		return nil, -1, false
	}
	return s.questions[i], i, true
}

// All returns a copy of the ordered questions.
func (s QuestionSet) All() []Question {
	out := make([]Question, len(s.questions))
	copy(out, s.questions)
	return out
}

// Gradable counts questions that carry a known correct answer.
func (s QuestionSet) Gradable() int {
	n := 0
	for _, q := range s.questions {
		if q.HasCorrectAnswer() {
			n++
		}
	}
	return n
}

// TotalPoints sums question points. It is a display figure only; scoring counts
// correct answers.
func (s QuestionSet) TotalPoints() int {
	total := 0
	for _, q := range s.questions {
		total += q.Meta().Points
	}
	return total
}
