package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lms-assessment-service/internal/app"
	"lms-assessment-service/internal/domain"
	"lms-assessment-service/internal/infra/memory"
)

const assessmentJSON = `{
	"id": "a1",
	"title": "Geography",
	"passing_score": 60,
	"questions": [
		{"id": 1, "type": "multiple-choice", "question_text": "Capital of France?", "options": ["Berlin", "Paris", "Rome"], "correct_answer": 1},
		{"id": 2, "type": "true-false", "question_text": "The Nile is in Africa", "correct_answer": "true"},
		{"id": 3, "type": "essay", "question_text": "Describe a river delta", "model_answer": "Sediment at a river mouth."}
	]
}`

const lessonJSON = `{
	"id": "l1",
	"title": "Rivers",
	"tags": "geography, water",
	"contentBlocks": [
		{"id": 1, "type": "text", "content": "Rivers flow downhill."},
		{"id": 2, "type": "video", "content": "https://www.youtube.com/watch?v=dQw4w9WgXcQ"}
	],
	"quizQuestions": [
		{"id": 1, "question": "Longest river?", "options": ["Nile", "Thames"], "correctAnswer": 0},
		{"id": 2, "question": "Rivers flow?", "options": ["Uphill", "Downhill"], "correctAnswer": 1}
	]
}`

type fixture struct {
	service *app.AssessmentService
	store   *memory.SessionStore
	log     *memory.SubmissionLog
}

func newFixture(t *testing.T, opts ...app.Option) fixture {
	t.Helper()
	var assessment domain.Assessment
	require.NoError(t, json.Unmarshal([]byte(assessmentJSON), &assessment))
	var lesson domain.Lesson
	require.NoError(t, json.Unmarshal([]byte(lessonJSON), &lesson))

	loader := memory.NewStaticLoader(
		map[string]domain.Assessment{"a1": assessment},
		map[string]domain.Lesson{"l1": lesson},
	)
	store := memory.NewSessionStore()
	log := memory.NewSubmissionLog()
	opts = append([]app.Option{app.WithLessons(loader), app.WithSubmissionSink(log)}, opts...)
	service := app.NewAssessmentService(store, memory.NewAssessmentRepository(loader, 5*time.Minute), opts...)
	return fixture{service: service, store: store, log: log}
}

func TestStartAnswerSubmit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	view, err := f.service.Start(ctx, "a1", "learner-1")
	require.NoError(t, err)
	assert.Equal(t, 3, view.QuestionCount)
	assert.Equal(t, "Question 1 of 3", view.Progress.Label)
	id := view.SessionID

	_, err = f.service.Answer(ctx, id, "1", json.RawMessage(`1`))
	require.NoError(t, err)
	_, err = f.service.Next(ctx, id)
	require.NoError(t, err)
	_, err = f.service.Answer(ctx, id, "2", json.RawMessage(`"false"`))
	require.NoError(t, err)
	_, err = f.service.Next(ctx, id)
	require.NoError(t, err)
	_, err = f.service.Answer(ctx, id, "3", json.RawMessage(`"Mud."`))
	require.NoError(t, err)

	view, ack, err := f.service.Submit(ctx, id)
	require.NoError(t, err)
	assert.NotEmpty(t, ack.SubmissionID)
	require.NotNil(t, view.Result)
	assert.Equal(t, 1, view.Result.Score)
	assert.Equal(t, 2, view.Result.Gradable)
	assert.False(t, view.Result.Passed)
	assert.Equal(t, "Sediment at a river mouth.", view.Questions[2].ModelAnswer)

	recs, err := f.log.ListSubmissions(ctx, "a1")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "learner-1", recs[0].LearnerID)

	_, _, err = f.service.Submit(ctx, id)
	assert.ErrorIs(t, err, domain.ErrAlreadySubmitted)
	recs, _ = f.log.ListSubmissions(ctx, "a1")
	assert.Len(t, recs, 1, "a second submit must not reach the sink")
}

func TestAnswerValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	view, err := f.service.Start(ctx, "a1", "learner-1")
	require.NoError(t, err)

	_, err = f.service.Answer(ctx, view.SessionID, "2", json.RawMessage(`"maybe"`))
	assert.ErrorIs(t, err, domain.ErrInvalidAnswer)
	_, err = f.service.Answer(ctx, view.SessionID, "9", json.RawMessage(`1`))
	assert.ErrorIs(t, err, domain.ErrQuestionNotFound)
	_, err = f.service.Answer(ctx, "nope", "1", json.RawMessage(`1`))
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestStartUnknownAssessment(t *testing.T) {
	f := newFixture(t)
	_, err := f.service.Start(context.Background(), "missing", "learner-1")
	assert.ErrorIs(t, err, domain.ErrAssessmentNotFound)
}

func TestSinkFailureKeepsSessionSubmitted(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("sink down")
	f := newFixture(t, app.WithSubmissionSink(app.SubmissionSinkFunc(
		func(context.Context, domain.Submission) (domain.Ack, error) { return domain.Ack{}, boom },
	)))

	view, err := f.service.Start(ctx, "a1", "learner-1")
	require.NoError(t, err)
	id := view.SessionID
	_, _ = f.service.Next(ctx, id)
	_, _ = f.service.Next(ctx, id)

	_, _, err = f.service.Submit(ctx, id)
	require.ErrorIs(t, err, boom)

	view, err = f.service.View(ctx, id)
	require.NoError(t, err)
	assert.True(t, view.Submitted)
}

func TestSubmitRedeliversAfterSinkRecovers(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSubmissionLog()
	down := true
	calls := 0
	f := newFixture(t, app.WithSubmissionSink(app.SubmissionSinkFunc(
		func(ctx context.Context, sub domain.Submission) (domain.Ack, error) {
			calls++
			if down {
				return domain.Ack{}, errors.New("db down")
			}
			return store.Submit(ctx, sub)
		},
	)))

	view, err := f.service.Start(ctx, "a1", "learner-1")
	require.NoError(t, err)
	id := view.SessionID
	_, _ = f.service.Answer(ctx, id, "1", json.RawMessage(`1`))
	_, _ = f.service.Next(ctx, id)
	_, _ = f.service.Next(ctx, id)

	_, _, err = f.service.Submit(ctx, id)
	require.Error(t, err)

	down = false
	view, ack, err := f.service.Submit(ctx, id)
	require.NoError(t, err)
	assert.NotEmpty(t, ack.SubmissionID)
	require.NotNil(t, view.Result)
	assert.Equal(t, 1, view.Result.Score)

	_, _, err = f.service.Submit(ctx, id)
	assert.ErrorIs(t, err, domain.ErrAlreadySubmitted)
	assert.Equal(t, 2, calls, "a delivered submission is not sent again")

	recs, err := store.ListSubmissions(ctx, "a1")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, ack.SubmissionID, recs[0].ID)
}

func TestSubscribeReceivesUpdates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	view, err := f.service.Start(ctx, "a1", "learner-1")
	require.NoError(t, err)

	ch, cancel, err := f.service.Subscribe(ctx, view.SessionID)
	require.NoError(t, err)
	defer cancel()

	<-ch // initial snapshot

	_, err = f.service.Next(ctx, view.SessionID)
	require.NoError(t, err)
	update := <-ch
	assert.Equal(t, 1, update.CurrentIndex)

	f.service.Close(ctx, view.SessionID)
	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, f.store.Len())

	_, _, err = f.service.Subscribe(ctx, view.SessionID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestLessonQuiz(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	preview, err := f.service.PreviewLesson(ctx, "l1")
	require.NoError(t, err)
	assert.Equal(t, domain.Tags{"geography", "water"}, preview.Tags)
	require.Len(t, preview.Blocks, 2)
	assert.Equal(t, "dQw4w9WgXcQ", preview.Blocks[1].EmbedID)
	assert.Len(t, preview.Quiz, 2)

	view, err := f.service.StartLessonQuiz(ctx, "l1", "learner-2")
	require.NoError(t, err)
	assert.Len(t, view.Questions, 2)
	id := view.SessionID

	_, err = f.service.Answer(ctx, id, "1", json.RawMessage(`0`))
	require.NoError(t, err)
	_, _, err = f.service.Submit(ctx, id)
	require.ErrorIs(t, err, domain.ErrIncompleteQuiz)

	view, err = f.service.Answer(ctx, id, "2", json.RawMessage(`1`))
	require.NoError(t, err)
	assert.Equal(t, 100, view.AnsweredPercent)

	view, _, err = f.service.Submit(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, view.Result.Score)
	assert.True(t, view.Result.Passed)

	_, err = f.service.PreviewLesson(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrLessonNotFound)
}
