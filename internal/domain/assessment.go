package domain

import (
	"encoding/json"
	"time"
)

// Assessment is a titled question set plus its delivery settings.
type Assessment struct {
	ID               string
	Title            string
	Type             string
	Description      string
	TimeLimit        int // minutes, 0 when untimed
	Attempts         string
	PassingScore     int // percent
	ShuffleQuestions bool
	ShowAnswers      bool
	Status           string
	Questions        QuestionSet
}

// TotalPoints is the display sum of question points.
func (a Assessment) TotalPoints() int {
	return a.Questions.TotalPoints()
}

// AssessmentRecord is the wire/storage shape of an assessment.
type AssessmentRecord struct {
	ID               string           `json:"id" validate:"required"`
	Title            string           `json:"title" validate:"max=200"`
	Type             string           `json:"type,omitempty" validate:"omitempty,oneof=quiz exam test midterm final"`
	Description      string           `json:"description,omitempty"`
	TimeLimit        *int             `json:"time_limit,omitempty" validate:"omitempty,min=0"`
	Attempts         string           `json:"attempts,omitempty"`
	PassingScore     *int             `json:"passing_score,omitempty" validate:"omitempty,min=0,max=100"`
	ShuffleQuestions bool             `json:"shuffle_questions,omitempty"`
	ShowAnswers      *bool            `json:"show_answers,omitempty"`
	Status           string           `json:"status,omitempty" validate:"omitempty,oneof=draft published closed"`
	Questions        []QuestionRecord `json:"questions"`
}

const (
	defaultPassingScore   = 70
	defaultAssessmentType = "quiz"
	defaultStatus         = "draft"
	defaultAttempts       = "1"
)

// DecodeAssessment validates r, applies defaults and decodes its questions.
func DecodeAssessment(r AssessmentRecord) (Assessment, error) {
	if problems := validateStruct(r); len(problems) > 0 {
		return Assessment{}, problems
	}
	questions, err := DecodeQuestions(r.Questions)
	if err != nil {
		return Assessment{}, err
	}
	a := Assessment{
		ID:               r.ID,
		Title:            r.Title,
		Type:             r.Type,
		Description:      r.Description,
		Attempts:         r.Attempts,
		PassingScore:     defaultPassingScore,
		ShuffleQuestions: r.ShuffleQuestions,
		ShowAnswers:      true,
		Status:           r.Status,
		Questions:        questions,
	}
	if a.Type == "" {
		a.Type = defaultAssessmentType
	}
	if a.Status == "" {
		a.Status = defaultStatus
	}
	if a.Attempts == "" {
		a.Attempts = defaultAttempts
	}
	if r.TimeLimit != nil {
		a.TimeLimit = *r.TimeLimit
	}
	if r.PassingScore != nil {
		a.PassingScore = *r.PassingScore
	}
	if r.ShowAnswers != nil {
		a.ShowAnswers = *r.ShowAnswers
	}
	return a, nil
}

// Record encodes the assessment back to its wire shape.
func (a Assessment) Record() AssessmentRecord {
	timeLimit := a.TimeLimit
	passing := a.PassingScore
	show := a.ShowAnswers
	return AssessmentRecord{
		ID:               a.ID,
		Title:            a.Title,
		Type:             a.Type,
		Description:      a.Description,
		TimeLimit:        &timeLimit,
		Attempts:         a.Attempts,
		PassingScore:     &passing,
		ShuffleQuestions: a.ShuffleQuestions,
		ShowAnswers:      &show,
		Status:           a.Status,
		Questions:        a.Questions.Records(),
	}
}

func (a Assessment) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Record())
}

func (a *Assessment) UnmarshalJSON(data []byte) error {
	var r AssessmentRecord
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	decoded, err := DecodeAssessment(r)
	if err != nil {
		return err
	}
	*a = decoded
	return nil
}

// Submission is what a submitted session hands to the submission sink.
type Submission struct {
	SessionID    string                `json:"sessionId"`
	AssessmentID string                `json:"assessmentId"`
	LearnerID    string                `json:"learnerId"`
	Answers      map[QuestionID]Answer `json:"answers"`
	Result       Result                `json:"result"`
	SubmittedAt  time.Time             `json:"submittedAt"`
}

// Ack acknowledges a stored submission.
type Ack struct {
	SubmissionID string    `json:"submissionId"`
	ReceivedAt   time.Time `json:"receivedAt"`
}

// Result is the scored outcome of a submitted session.
type Result struct {
	Score       int     `json:"score"`
	Gradable    int     `json:"gradable"`
	Total       int     `json:"total"`
	Percent     float64 `json:"percent"`
	Passed      bool    `json:"passed"`
	TotalPoints int     `json:"totalPoints"`
}

// SubmissionRecord is a stored submission as read back for reporting.
type SubmissionRecord struct {
	ID           string          `json:"id"`
	SessionID    string          `json:"sessionId"`
	AssessmentID string          `json:"assessmentId"`
	LearnerID    string          `json:"learnerId"`
	Result       Result          `json:"result"`
	Answers      json.RawMessage `json:"answers"`
	SubmittedAt  time.Time       `json:"submittedAt"`
}
