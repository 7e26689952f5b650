package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagsAcceptStringOrList(t *testing.T) {
	var l Lesson
	require.NoError(t, json.Unmarshal([]byte(`{"id": "l1", "tags": " maths, ,algebra "}`), &l))
	assert.Equal(t, Tags{"maths", "algebra"}, l.Tags)

	require.NoError(t, json.Unmarshal([]byte(`{"id": "l1", "tags": ["maths", " "]}`), &l))
	assert.Equal(t, Tags{"maths"}, l.Tags)
}

func TestYouTubeID(t *testing.T) {
	assert.Equal(t, "dQw4w9WgXcQ", YouTubeID("https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=10"))
	assert.Equal(t, "dQw4w9WgXcQ", YouTubeID("https://youtu.be/dQw4w9WgXcQ"))
	assert.Equal(t, "dQw4w9WgXcQ", YouTubeID("https://www.youtube.com/embed/dQw4w9WgXcQ"))
	assert.Empty(t, YouTubeID("https://youtu.be/short"))
	assert.False(t, IsYouTubeURL("https://vimeo.com/1"))
}

func TestLessonQuizAssessment(t *testing.T) {
	l := Lesson{
		ID:    "l1",
		Title: "Rivers",
		Quiz: []QuizQuestion{
			{ID: 1, Question: "Longest?", Options: []string{"Nile", "Thames"}, CorrectAnswer: 0},
			{ID: 2, Question: "Shortest?", Options: []string{"Nile", "Thames"}, CorrectAnswer: 1},
		},
	}
	require.NoError(t, l.Validate())

	a, err := l.QuizAssessment()
	require.NoError(t, err)
	assert.Equal(t, "lesson:l1", a.ID)
	assert.Equal(t, 2, a.Questions.Gradable())
	q, _, ok := a.Questions.Lookup("2")
	require.True(t, ok)
	assert.Equal(t, 1, *q.(MultipleChoice).Correct)
}

func TestLessonValidateRejectsBadContent(t *testing.T) {
	bad := Lesson{ID: "l1", Blocks: []ContentBlock{{ID: 1, Type: "hologram"}}}
	assert.Error(t, bad.Validate())

	badQuiz := Lesson{ID: "l1", Quiz: []QuizQuestion{{ID: 1, Options: []string{"a"}, CorrectAnswer: 4}}}
	assert.ErrorIs(t, badQuiz.Validate(), ErrInvalidQuestion)

	dup := Lesson{ID: "l1", Quiz: []QuizQuestion{
		{ID: 1, Options: []string{"a"}},
		{ID: 1, Options: []string{"b"}},
	}}
	assert.ErrorIs(t, dup.Validate(), ErrDuplicateQuestionID)
}
