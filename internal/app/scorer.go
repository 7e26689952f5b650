package app

import (
	"math"
	"slices"

	"lms-assessment-service/internal/domain"
)

// Answers is read access to an answer store.
type Answers interface {
	Get(id domain.QuestionID) (domain.Answer, bool)
}

// Score counts questions whose stored answer equals the known correct answer.
// Questions without a correct answer never count and points are not weighted.
func Score(answers Answers, questions domain.QuestionSet) int {
	score := 0
	for i := 0; i < questions.Len(); i++ {
		q := questions.At(i)
		a, ok := answers.Get(q.Meta().ID)
		if Correctness(q, a, ok) == domain.OutcomeCorrect {
			score++
		}
	}
	return score
}

// Correctness compares a stored answer against q's correct answer. Sequences
// (matching, ordering) compare element by element.
func Correctness(q domain.Question, a domain.Answer, answered bool) domain.Outcome {
	if !q.HasCorrectAnswer() {
		return domain.OutcomeUngraded
	}
	if !answered || a == nil {
		return domain.OutcomeUnanswered
	}
	if isCorrect(q, a) {
		return domain.OutcomeCorrect
	}
	return domain.OutcomeIncorrect
}

func isCorrect(q domain.Question, a domain.Answer) bool {
	switch q := q.(type) {
	case domain.MultipleChoice:
		v, ok := a.(domain.OptionAnswer)
		return ok && int(v) == *q.Correct
	case domain.TrueFalse:
		v, ok := a.(domain.BoolAnswer)
		return ok && bool(v) == *q.Correct
	case domain.ShortAnswer:
		v, ok := a.(domain.TextAnswer)
		return ok && string(v) == *q.Correct
	case domain.Matching:
		v, ok := a.(domain.SequenceAnswer)
		return ok && slices.Equal([]string(v), q.CorrectRights())
	case domain.Ordering:
		v, ok := a.(domain.SequenceAnswer)
		return ok && slices.Equal([]string(v), q.CorrectOrder)
	}
	return false
}

// Grade scores an assessment and derives the percentage and pass flag.
func Grade(answers Answers, assessment domain.Assessment) domain.Result {
	res := domain.Result{
		Score:       Score(answers, assessment.Questions),
		Gradable:    assessment.Questions.Gradable(),
		Total:       assessment.Questions.Len(),
		TotalPoints: assessment.TotalPoints(),
	}
	if res.Gradable > 0 {
		res.Percent = math.Round(float64(res.Score)/float64(res.Gradable)*10000) / 100
		res.Passed = res.Percent >= float64(assessment.PassingScore)
	}
	return res
}
