package domain

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// BlockType is the kind of a lesson content block.
type BlockType string

const (
	BlockText  BlockType = "text"
	BlockVideo BlockType = "video"
	BlockImage BlockType = "image"
	BlockPDF   BlockType = "pdf"
	BlockPPT   BlockType = "ppt"
	BlockAudio BlockType = "audio"
	BlockCode  BlockType = "code"
	BlockDoc   BlockType = "doc"
)

// ContentBlock is a non-question unit of lesson material. Blocks are rendered
// without scoring.
type ContentBlock struct {
	ID      int       `json:"id"`
	Type    BlockType `json:"type" validate:"required,oneof=text video image pdf ppt audio code doc"`
	Content string    `json:"content"`
	Title   string    `json:"title,omitempty"`
}

// QuizQuestion is the lesson-embedded multiple-choice question shape.
type QuizQuestion struct {
	ID            int      `json:"id"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
}

// Tags accepts either a list or a comma separated string.
type Tags []string

func (t *Tags) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*t = ParseTags(strings.Join(list, ","))
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*t = ParseTags(raw)
	return nil
}

// ParseTags splits a comma separated list, trimming blanks.
func ParseTags(raw string) Tags {
	out := Tags{}
	for _, part := range strings.Split(raw, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

// Lesson is ordered lesson material followed by an optional quiz.
type Lesson struct {
	ID                string         `json:"id" validate:"required"`
	Title             string         `json:"title"`
	Objectives        string         `json:"objectives,omitempty"`
	Prerequisites     string         `json:"prerequisites,omitempty"`
	EstimatedDuration string         `json:"estimatedDuration,omitempty"`
	Difficulty        string         `json:"difficulty,omitempty"`
	Tags              Tags           `json:"tags,omitempty"`
	Blocks            []ContentBlock `json:"contentBlocks" validate:"dive"`
	Quiz              []QuizQuestion `json:"quizQuestions"`
}

// Validate checks block types and converts the quiz into a question set.
func (l Lesson) Validate() error {
	if problems := validateStruct(l); len(problems) > 0 {
		return problems
	}
	_, err := l.QuizQuestions()
	return err
}

// QuizQuestions converts the embedded quiz to multiple-choice questions.
func (l Lesson) QuizQuestions() (QuestionSet, error) {
	questions := make([]Question, 0, len(l.Quiz))
	for i, qq := range l.Quiz {
		if qq.CorrectAnswer < 0 || qq.CorrectAnswer >= len(qq.Options) {
			problems := ValidationErrors{}
			problems.add("correctAnswer", fmt.Sprintf("option index %d out of range", qq.CorrectAnswer))
			return QuestionSet{}, &InvalidQuestionError{Index: i, ID: quizID(qq.ID), Problems: problems}
		}
		correct := qq.CorrectAnswer
		questions = append(questions, MultipleChoice{
			Base:    Base{ID: quizID(qq.ID), Prompt: qq.Question, Points: defaultPoints},
			Options: qq.Options,
			Correct: &correct,
		})
	}
	return NewQuestionSet(questions...)
}

// QuizAssessment wraps the lesson quiz so it can run as a session.
func (l Lesson) QuizAssessment() (Assessment, error) {
	questions, err := l.QuizQuestions()
	if err != nil {
		return Assessment{}, err
	}
	return Assessment{
		ID:           "lesson:" + l.ID,
		Title:        l.Title,
		Type:         defaultAssessmentType,
		Attempts:     defaultAttempts,
		PassingScore: defaultPassingScore,
		ShowAnswers:  true,
		Status:       "published",
		Questions:    questions,
	}, nil
}

func quizID(id int) QuestionID {
	return QuestionID(strconv.Itoa(id))
}

var youTubePattern = regexp.MustCompile(`^.*(youtu.be/|v/|u/\w/|embed/|watch\?v=|&v=)([^#&?]*).*`)

// IsYouTubeURL reports whether url points at YouTube.
func IsYouTubeURL(url string) bool {
	return strings.Contains(url, "youtube.com") || strings.Contains(url, "youtu.be")
}

// YouTubeID extracts the 11 character video id from a YouTube url, or "".
func YouTubeID(url string) string {
	m := youTubePattern.FindStringSubmatch(url)
	if len(m) < 3 || len(m[2]) != 11 {
		return ""
	}
	return m[2]
}
