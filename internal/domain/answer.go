package domain

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Answer is the sealed union of learner answer values.
type Answer interface {
	isAnswer()
}

// OptionAnswer is the position of the selected option.
type OptionAnswer int

// BoolAnswer is a true/false selection. It travels as the literal "true" or "false".
type BoolAnswer bool

// TextAnswer is free text, empty string included.
type TextAnswer string

// SequenceAnswer is an ordered list of items (ordering) or right-hand matches (matching).
type SequenceAnswer []string

func (OptionAnswer) isAnswer()   {}
func (BoolAnswer) isAnswer()     {}
func (TextAnswer) isAnswer()     {}
func (SequenceAnswer) isAnswer() {}

func (b BoolAnswer) String() string {
	if b {
		return "true"
	}
	return "false"
}

func (b BoolAnswer) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

// CaptureMode controls which question kinds accept answers.
type CaptureMode struct {
	// Sequences enables answer capture for matching and ordering questions,
	// which are otherwise display-only.
	Sequences bool
}

// Accepts reports whether a fits q's kind under the given capture mode.
func (m CaptureMode) Accepts(q Question, a Answer) error {
	switch q := q.(type) {
	case MultipleChoice:
		v, ok := a.(OptionAnswer)
		if !ok {
			return fmt.Errorf("%w: %s expects an option index", ErrInvalidAnswer, q.Kind())
		}
		if int(v) < 0 || int(v) >= len(q.Options) {
			return fmt.Errorf("%w: option %d out of range", ErrInvalidAnswer, int(v))
		}
		return nil
	case TrueFalse:
		if _, ok := a.(BoolAnswer); !ok {
			return fmt.Errorf("%w: %s expects \"true\" or \"false\"", ErrInvalidAnswer, q.Kind())
		}
		return nil
	case ShortAnswer, Essay, Coding:
		if _, ok := a.(TextAnswer); !ok {
			return fmt.Errorf("%w: %s expects text", ErrInvalidAnswer, q.Kind())
		}
		return nil
	case FileUpload:
		return fmt.Errorf("%w: %s", ErrAnswerNotCaptured, q.Kind())
	case Matching:
		if !m.Sequences {
			return fmt.Errorf("%w: %s", ErrAnswerNotCaptured, q.Kind())
		}
		return checkSequence(q.Kind(), a, q.CorrectRights())
	case Ordering:
		if !m.Sequences {
			return fmt.Errorf("%w: %s", ErrAnswerNotCaptured, q.Kind())
		}
		return checkSequence(q.Kind(), a, q.CorrectOrder)
	}
	return fmt.Errorf("%w: unknown question type %T", ErrInvalidAnswer, q)
}

// checkSequence requires the answer to be a permutation of the known items.
func checkSequence(kind Kind, a Answer, items []string) error {
	seq, ok := a.(SequenceAnswer)
	if !ok {
		return fmt.Errorf("%w: %s expects a list", ErrInvalidAnswer, kind)
	}
	if len(seq) != len(items) {
		return fmt.Errorf("%w: %s expects %d items, got %d", ErrInvalidAnswer, kind, len(items), len(seq))
	}
	want := slices.Clone(items)
	got := slices.Clone([]string(seq))
	slices.Sort(want)
	slices.Sort(got)
	if !slices.Equal(want, got) {
		return fmt.Errorf("%w: %s items do not match the question", ErrInvalidAnswer, kind)
	}
	return nil
}

// DecodeAnswer parses a raw JSON value into the answer shape q expects.
func DecodeAnswer(q Question, raw json.RawMessage) (Answer, error) {
	switch q.Kind() {
	case KindMultipleChoice:
		var n int
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidAnswer, err)
		}
		return OptionAnswer(n), nil
	case KindTrueFalse:
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			switch s {
			case "true":
				return BoolAnswer(true), nil
			case "false":
				return BoolAnswer(false), nil
			}
			return nil, fmt.Errorf("%w: %q is not true or false", ErrInvalidAnswer, s)
		}
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidAnswer, err)
		}
		return BoolAnswer(b), nil
	case KindShortAnswer, KindEssay, KindCoding:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidAnswer, err)
		}
		return TextAnswer(s), nil
	case KindMatching, KindOrdering:
		var items []string
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidAnswer, err)
		}
		return SequenceAnswer(items), nil
	case KindFileUpload:
		return nil, fmt.Errorf("%w: %s", ErrAnswerNotCaptured, q.Kind())
	}
	return nil, fmt.Errorf("%w: unknown kind %s", ErrInvalidAnswer, q.Kind())
}
