package domain

// InputKind is the input affordance a question is rendered with.
type InputKind string

const (
	InputSingleSelect InputKind = "single-select"
	InputText         InputKind = "text"
	InputTextarea     InputKind = "textarea"
	InputCode         InputKind = "code"
	InputFile         InputKind = "file"
	InputMatching     InputKind = "matching"
	InputOrdering     InputKind = "ordering"
)

// Mark annotates an option after submission.
type Mark string

const (
	MarkNone      Mark = ""
	MarkCorrect   Mark = "correct"
	MarkIncorrect Mark = "incorrect"
)

// Outcome is the per-question correctness after submission.
type Outcome string

const (
	OutcomeCorrect    Outcome = "correct"
	OutcomeIncorrect  Outcome = "incorrect"
	OutcomeUnanswered Outcome = "unanswered"
	OutcomeUngraded   Outcome = "ungraded"
)

// OptionView is one selectable option.
type OptionView struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
	Mark     Mark   `json:"mark,omitempty"`
}

// PairView is one displayed row of a matching question.
type PairView struct {
	Left  string `json:"left"`
	Right string `json:"right"`
}

// ItemView is one numbered row of an ordering question.
type ItemView struct {
	Position int    `json:"position"`
	Text     string `json:"text"`
}

// QuestionView is the UI-neutral rendering of a question.
type QuestionView struct {
	ID          QuestionID   `json:"id"`
	Number      string       `json:"number"`
	Kind        Kind         `json:"kind"`
	Prompt      string       `json:"prompt"`
	Points      int          `json:"points"`
	PointsLabel string       `json:"pointsLabel"`
	Input       InputKind    `json:"input"`
	Placeholder string       `json:"placeholder,omitempty"`
	Disabled    bool         `json:"disabled"`
	Options     []OptionView `json:"options,omitempty"`
	Text        string       `json:"text,omitempty"`
	TestCases   []TestCase   `json:"testCases,omitempty"`
	Pairs       []PairView   `json:"pairs,omitempty"`
	Items       []ItemView   `json:"items,omitempty"`
	EmptyNotice string       `json:"emptyNotice,omitempty"`
	Outcome     Outcome      `json:"outcome,omitempty"`
	ModelAnswer string       `json:"modelAnswer,omitempty"`
}

// Progress describes the position within the question sequence.
type Progress struct {
	Current int     `json:"current"`
	Total   int     `json:"total"`
	Label   string  `json:"label"`
	Percent float64 `json:"percent"`
}

// SessionView is a snapshot of a session as a learner sees it.
type SessionView struct {
	SessionID       string         `json:"sessionId"`
	AssessmentID    string         `json:"assessmentId"`
	LearnerID       string         `json:"learnerId"`
	Title           string         `json:"title"`
	Description     string         `json:"description"`
	Type            string         `json:"type"`
	TimeLimit       int            `json:"timeLimit,omitempty"`
	QuestionCount   int            `json:"questionCount"`
	TotalPoints     int            `json:"totalPoints"`
	CurrentIndex    int            `json:"currentIndex"`
	Submitted       bool           `json:"submitted"`
	CanSubmit       bool           `json:"canSubmit"`
	Progress        Progress       `json:"progress"`
	AnsweredPercent int            `json:"answeredPercent"`
	Questions       []QuestionView `json:"questions"`
	Result          *Result        `json:"result,omitempty"`
}

// BlockView is a rendered lesson content block.
type BlockView struct {
	ID      int       `json:"id"`
	Type    BlockType `json:"type"`
	Title   string    `json:"title"`
	Content string    `json:"content"`
	EmbedID string    `json:"embedId,omitempty"`
}

// LessonView is a rendered lesson with its quiz.
type LessonView struct {
	ID                string         `json:"id"`
	Title             string         `json:"title"`
	Objectives        string         `json:"objectives,omitempty"`
	Prerequisites     string         `json:"prerequisites,omitempty"`
	EstimatedDuration string         `json:"estimatedDuration,omitempty"`
	Difficulty        string         `json:"difficulty,omitempty"`
	Tags              Tags           `json:"tags"`
	Blocks            []BlockView    `json:"blocks"`
	Quiz              []QuestionView `json:"quiz"`
}
