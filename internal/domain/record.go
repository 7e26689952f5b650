package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
)

// QuestionRecord is the flat wire/storage shape of a question as the authoring
// backend sends it. DecodeQuestion turns it into the per-kind union.
type QuestionRecord struct {
	ID            QuestionID      `json:"id" validate:"required"`
	Type          Kind            `json:"type" validate:"required,question_kind"`
	QuestionText  string          `json:"question_text"`
	Points        *int            `json:"points,omitempty" validate:"omitempty,min=0"`
	Options       []string        `json:"options,omitempty"`
	CorrectAnswer json.RawMessage `json:"correct_answer,omitempty"`
	ModelAnswer   string          `json:"model_answer,omitempty"`
	TestCases     []TestCase      `json:"test_cases,omitempty"`
	ReferenceFile string          `json:"reference_file,omitempty"`
	MatchingPairs []MatchPair     `json:"matching_pairs,omitempty"`
	CorrectOrder  []string        `json:"correct_order,omitempty"`
}

const defaultPoints = 1

// DecodeQuestion validates r and converts it into the union variant for its kind.
// Fields that belong to another kind are rejected rather than ignored.
func DecodeQuestion(index int, r QuestionRecord) (Question, error) {
	problems := validateStruct(r)
	if len(problems) > 0 {
		return nil, &InvalidQuestionError{Index: index, ID: r.ID, Problems: problems}
	}

	base := Base{ID: r.ID, Prompt: r.QuestionText, Points: defaultPoints, ModelAnswer: r.ModelAnswer}
	if r.Points != nil {
		base.Points = *r.Points
	}

	if len(r.Options) > 0 && r.Type != KindMultipleChoice {
		problems.add("options", "only allowed on multiple-choice questions")
	}
	if len(r.TestCases) > 0 && r.Type != KindCoding {
		problems.add("test_cases", "only allowed on coding questions")
	}
	if len(r.MatchingPairs) > 0 && r.Type != KindMatching {
		problems.add("matching_pairs", "only allowed on matching questions")
	}
	if len(r.CorrectOrder) > 0 && r.Type != KindOrdering {
		problems.add("correct_order", "only allowed on ordering questions")
	}
	if r.ReferenceFile != "" && r.Type != KindFileUpload {
		problems.add("reference_file", "only allowed on file-upload questions")
	}

	correct := r.CorrectAnswer
	if isNullJSON(correct) {
		correct = nil
	}

	var q Question
	switch r.Type {
	case KindMultipleChoice:
		mc := MultipleChoice{Base: base, Options: r.Options}
		if len(r.Options) == 0 {
			problems.add("options", "must have at least 1 option")
		}
		if correct != nil {
			var idx int
			if err := json.Unmarshal(correct, &idx); err != nil {
				problems.add("correct_answer", "must be an option index")
			} else if idx < 0 || idx >= len(r.Options) {
				problems.add("correct_answer", fmt.Sprintf("option index %d out of range", idx))
			} else {
				mc.Correct = &idx
			}
		}
		q = mc
	case KindTrueFalse:
		tf := TrueFalse{Base: base}
		if correct != nil {
			a, err := DecodeAnswer(tf, correct)
			if err != nil {
				problems.add("correct_answer", "must be \"true\" or \"false\"")
			} else {
				v := bool(a.(BoolAnswer))
				tf.Correct = &v
			}
		}
		q = tf
	case KindShortAnswer:
		sa := ShortAnswer{Base: base}
		if correct != nil {
			var s string
			if err := json.Unmarshal(correct, &s); err != nil {
				problems.add("correct_answer", "must be a string")
			} else {
				sa.Correct = &s
			}
		}
		q = sa
	case KindEssay, KindCoding, KindFileUpload:
		if correct != nil {
			problems.add("correct_answer", fmt.Sprintf("not allowed on %s questions", r.Type))
		}
		switch r.Type {
		case KindEssay:
			q = Essay{Base: base}
		case KindCoding:
			q = Coding{Base: base, TestCases: r.TestCases}
		default:
			q = FileUpload{Base: base, ReferenceFile: r.ReferenceFile}
		}
	case KindMatching:
		if correct != nil {
			problems.add("correct_answer", "matching pairs define the correct answer")
		}
		q = Matching{Base: base, Pairs: r.MatchingPairs}
	case KindOrdering:
		order := r.CorrectOrder
		if correct != nil {
			var items []string
			if err := json.Unmarshal(correct, &items); err != nil {
				problems.add("correct_answer", "must be a list of items")
			} else if len(order) > 0 && !slices.Equal(order, items) {
				problems.add("correct_answer", "disagrees with correct_order")
			} else if len(order) == 0 {
				order = items
			}
		}
		q = Ordering{Base: base, CorrectOrder: order}
	}

	if len(problems) > 0 {
		return nil, &InvalidQuestionError{Index: index, ID: r.ID, Problems: problems}
	}
	return q, nil
}

// DecodeQuestions converts a slice of records into a QuestionSet.
func DecodeQuestions(records []QuestionRecord) (QuestionSet, error) {
	questions := make([]Question, 0, len(records))
	for i, r := range records {
		q, err := DecodeQuestion(i, r)
		if err != nil {
			return QuestionSet{}, err
		}
		questions = append(questions, q)
	}
	return NewQuestionSet(questions...)
}

// EncodeQuestion converts a union variant back to its flat record.
func EncodeQuestion(q Question) QuestionRecord {
	meta := q.Meta()
	points := meta.Points
	r := QuestionRecord{
		ID:           meta.ID,
		Type:         q.Kind(),
		QuestionText: meta.Prompt,
		Points:       &points,
		ModelAnswer:  meta.ModelAnswer,
	}
	switch q := q.(type) {
	case MultipleChoice:
		r.Options = q.Options
		if q.Correct != nil {
			r.CorrectAnswer = mustJSON(*q.Correct)
		}
	case TrueFalse:
		if q.Correct != nil {
			r.CorrectAnswer = mustJSON(BoolAnswer(*q.Correct))
		}
	case ShortAnswer:
		if q.Correct != nil {
			r.CorrectAnswer = mustJSON(*q.Correct)
		}
	case Coding:
		r.TestCases = q.TestCases
	case FileUpload:
		r.ReferenceFile = q.ReferenceFile
	case Matching:
		r.MatchingPairs = q.Pairs
	case Ordering:
		r.CorrectOrder = q.CorrectOrder
	}
	return r
}

// Records encodes the whole set in order.
func (s QuestionSet) Records() []QuestionRecord {
	out := make([]QuestionRecord, 0, len(s.questions))
	for _, q := range s.questions {
		out = append(out, EncodeQuestion(q))
	}
	return out
}

func (s QuestionSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Records())
}

func (s *QuestionSet) UnmarshalJSON(data []byte) error {
	var records []QuestionRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return err
	}
	set, err := DecodeQuestions(records)
	if err != nil {
		return err
	}
	*s = set
	return nil
}

func mustJSON(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

func isNullJSON(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
