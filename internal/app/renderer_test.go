package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lms-assessment-service/internal/domain"
)

func TestRenderTrueFalseMarksAfterSubmit(t *testing.T) {
	q := domain.TrueFalse{Base: domain.Base{ID: "q1", Prompt: "The sky is blue", Points: 1}, Correct: boolPtr(true)}

	v := Render(q, domain.BoolAnswer(false), RenderState{Submitted: true})

	require.Len(t, v.Options, 2)
	assert.Equal(t, domain.OptionView{Value: "true", Label: "True", Mark: domain.MarkCorrect}, v.Options[0])
	assert.Equal(t, domain.OptionView{Value: "false", Label: "False", Selected: true, Mark: domain.MarkIncorrect}, v.Options[1])
	assert.Equal(t, domain.OutcomeIncorrect, v.Outcome)
	assert.True(t, v.Disabled)
}

func TestRenderBeforeSubmitHidesCorrectness(t *testing.T) {
	q := mc("q1", intPtr(1), "Paris", "", "Rome")

	v := Render(q, domain.OptionAnswer(0), RenderState{Position: 2})

	assert.Equal(t, "Question 3", v.Number)
	assert.Equal(t, domain.InputSingleSelect, v.Input)
	assert.False(t, v.Disabled)
	assert.Empty(t, v.Outcome)
	require.Len(t, v.Options, 3)
	assert.True(t, v.Options[0].Selected)
	assert.Equal(t, "Option 2", v.Options[1].Label)
	for _, opt := range v.Options {
		assert.Equal(t, domain.MarkNone, opt.Mark)
	}
}

func TestRenderPlaceholders(t *testing.T) {
	v := Render(domain.Essay{Base: domain.Base{ID: "e"}}, nil, RenderState{})
	assert.Equal(t, "No question text provided", v.Prompt)
	assert.Equal(t, domain.InputTextarea, v.Input)
	assert.Equal(t, "0 points", v.PointsLabel)

	v = Render(domain.Matching{Base: domain.Base{ID: "m", Points: 1}}, nil, RenderState{})
	assert.Equal(t, "No matching pairs added yet", v.EmptyNotice)
	assert.Equal(t, "1 point", v.PointsLabel)

	v = Render(domain.Ordering{Base: domain.Base{ID: "o"}}, nil, RenderState{})
	assert.Equal(t, "No items added yet", v.EmptyNotice)

	v = Render(domain.Matching{
		Base:  domain.Base{ID: "m"},
		Pairs: []domain.MatchPair{{Left: "", Right: ""}},
	}, nil, RenderState{})
	assert.Equal(t, []domain.PairView{{Left: "Item 1", Right: "Match 1"}}, v.Pairs)
}

func TestRenderTextInputsKeepAnswer(t *testing.T) {
	q := domain.Coding{
		Base:      domain.Base{ID: "c", Prompt: "Reverse a string"},
		TestCases: []domain.TestCase{{Input: "abc", ExpectedOutput: "cba"}},
	}

	v := Render(q, domain.TextAnswer("func rev() {}"), RenderState{})

	assert.Equal(t, domain.InputCode, v.Input)
	assert.Equal(t, "func rev() {}", v.Text)
	assert.Equal(t, q.TestCases, v.TestCases)
}

func TestRenderModelAnswerOnlyWhenShown(t *testing.T) {
	q := domain.Essay{Base: domain.Base{ID: "e", Prompt: "Explain", ModelAnswer: "Because."}}

	assert.Empty(t, Render(q, nil, RenderState{}).ModelAnswer)
	assert.Empty(t, Render(q, nil, RenderState{Submitted: true}).ModelAnswer)

	v := Render(q, nil, RenderState{Submitted: true, ShowAnswers: true})
	assert.Equal(t, "Because.", v.ModelAnswer)
	assert.Equal(t, domain.OutcomeUngraded, v.Outcome)
}

func TestRenderOrderingShowsLearnerSequence(t *testing.T) {
	q := domain.Ordering{Base: domain.Base{ID: "o"}, CorrectOrder: []string{"a", "b"}}

	v := Render(q, domain.SequenceAnswer{"b", "a"}, RenderState{Submitted: true})

	assert.Equal(t, []domain.ItemView{{Position: 1, Text: "b"}, {Position: 2, Text: "a"}}, v.Items)
	assert.Equal(t, domain.OutcomeIncorrect, v.Outcome)
}

func TestRenderUnansweredOrderingHidesCorrectOrder(t *testing.T) {
	q := domain.Ordering{Base: domain.Base{ID: "o"}, CorrectOrder: []string{"c", "a", "b"}}

	v := Render(q, nil, RenderState{})
	assert.Equal(t, []domain.ItemView{{Position: 1, Text: "a"}, {Position: 2, Text: "b"}, {Position: 3, Text: "c"}}, v.Items)

	sorted := domain.Ordering{Base: domain.Base{ID: "o"}, CorrectOrder: []string{"a", "b", "c"}}
	v = Render(sorted, nil, RenderState{})
	assert.Equal(t, []domain.ItemView{{Position: 1, Text: "b"}, {Position: 2, Text: "c"}, {Position: 3, Text: "a"}}, v.Items)
	assert.Equal(t, []string{"a", "b", "c"}, sorted.CorrectOrder, "rendering must not reorder the key")

	// revealed once submitted
	v = Render(q, nil, RenderState{Submitted: true})
	assert.Equal(t, "c", v.Items[0].Text)
}

func TestRenderUnansweredMatchingHidesCorrectRights(t *testing.T) {
	q := domain.Matching{
		Base:  domain.Base{ID: "m"},
		Pairs: []domain.MatchPair{{Left: "Go", Right: "gopher"}, {Left: "Rust", Right: "crab"}},
	}

	v := Render(q, nil, RenderState{})

	require.Len(t, v.Pairs, 2)
	assert.Equal(t, domain.PairView{Left: "Go", Right: "crab"}, v.Pairs[0])
	assert.Equal(t, domain.PairView{Left: "Rust", Right: "gopher"}, v.Pairs[1])
	assert.NotEqual(t, q.CorrectRights(), []string{v.Pairs[0].Right, v.Pairs[1].Right})
}
