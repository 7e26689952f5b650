package app

import (
	"fmt"
	"slices"
	"strconv"

	"lms-assessment-service/internal/domain"
)

const (
	noPromptText   = "No question text provided"
	noPairsNotice  = "No matching pairs added yet"
	noItemsNotice  = "No items added yet"
	filePickerHint = "Drag and drop your file here, or click to browse"
)

// RenderState is the session context a question is rendered in.
type RenderState struct {
	Position    int
	Submitted   bool
	ShowAnswers bool
}

// Render maps a question and the learner's current answer (nil when unanswered)
// to its view. Inputs are disabled and correctness is revealed once submitted.
func Render(q domain.Question, answer domain.Answer, st RenderState) domain.QuestionView {
	meta := q.Meta()
	v := domain.QuestionView{
		ID:          meta.ID,
		Number:      fmt.Sprintf("Question %d", st.Position+1),
		Kind:        q.Kind(),
		Prompt:      meta.Prompt,
		Points:      meta.Points,
		PointsLabel: pointsLabel(meta.Points),
		Disabled:    st.Submitted,
	}
	if v.Prompt == "" {
		v.Prompt = noPromptText
	}

	switch q := q.(type) {
	case domain.MultipleChoice:
		v.Input = domain.InputSingleSelect
		selected, answered := answer.(domain.OptionAnswer)
		for i, opt := range q.Options {
			label := opt
			if label == "" {
				label = fmt.Sprintf("Option %d", i+1)
			}
			v.Options = append(v.Options, domain.OptionView{
				Value:    strconv.Itoa(i),
				Label:    label,
				Selected: answered && int(selected) == i,
			})
		}
		if st.Submitted && q.Correct != nil {
			markOptions(v.Options, strconv.Itoa(*q.Correct))
		}
	case domain.TrueFalse:
		v.Input = domain.InputSingleSelect
		selected, answered := answer.(domain.BoolAnswer)
		v.Options = []domain.OptionView{
			{Value: "true", Label: "True", Selected: answered && bool(selected)},
			{Value: "false", Label: "False", Selected: answered && !bool(selected)},
		}
		if st.Submitted && q.Correct != nil {
			markOptions(v.Options, domain.BoolAnswer(*q.Correct).String())
		}
	case domain.ShortAnswer:
		v.Input = domain.InputText
		v.Placeholder = "Type your answer here..."
		v.Text = textOf(answer)
	case domain.Essay:
		v.Input = domain.InputTextarea
		v.Placeholder = "Write your essay response here..."
		v.Text = textOf(answer)
	case domain.Coding:
		v.Input = domain.InputCode
		v.Placeholder = "// Write your code here..."
		v.Text = textOf(answer)
		v.TestCases = q.TestCases
	case domain.FileUpload:
		v.Input = domain.InputFile
		v.Placeholder = filePickerHint
	case domain.Matching:
		v.Input = domain.InputMatching
		rights := q.CorrectRights()
		if seq, ok := answer.(domain.SequenceAnswer); ok && len(seq) == len(rights) {
			rights = seq
		} else if !st.Submitted {
			rights = displayOrder(rights)
		}
		for i, p := range q.Pairs {
			left, right := p.Left, rights[i]
			if left == "" {
				left = fmt.Sprintf("Item %d", i+1)
			}
			if right == "" {
				right = fmt.Sprintf("Match %d", i+1)
			}
			v.Pairs = append(v.Pairs, domain.PairView{Left: left, Right: right})
		}
		if len(q.Pairs) == 0 {
			v.EmptyNotice = noPairsNotice
		}
	case domain.Ordering:
		v.Input = domain.InputOrdering
		items := q.CorrectOrder
		if seq, ok := answer.(domain.SequenceAnswer); ok {
			items = seq
		} else if !st.Submitted {
			items = displayOrder(items)
		}
		for i, item := range items {
			if item == "" {
				item = fmt.Sprintf("Item %d", i+1)
			}
			v.Items = append(v.Items, domain.ItemView{Position: i + 1, Text: item})
		}
		if len(items) == 0 {
			v.EmptyNotice = noItemsNotice
		}
	}

	if st.Submitted {
		v.Outcome = Correctness(q, answer, answer != nil)
		if st.ShowAnswers {
			v.ModelAnswer = meta.ModelAnswer
		}
	}
	return v
}

// displayOrder returns a stable arrangement of correct that does not give the
// answer away: sorted, and rotated by one when sorting restores the key.
func displayOrder(correct []string) []string {
	out := slices.Clone(correct)
	slices.Sort(out)
	if len(out) > 1 && slices.Equal(out, correct) {
		out = append(out[1:], out[0])
	}
	return out
}

// markOptions flags the correct option and any selected wrong option.
func markOptions(options []domain.OptionView, correct string) {
	for i := range options {
		switch {
		case options[i].Value == correct:
			options[i].Mark = domain.MarkCorrect
		case options[i].Selected:
			options[i].Mark = domain.MarkIncorrect
		}
	}
}

func textOf(a domain.Answer) string {
	if t, ok := a.(domain.TextAnswer); ok {
		return string(t)
	}
	return ""
}

func pointsLabel(points int) string {
	if points == 1 {
		return "1 point"
	}
	return fmt.Sprintf("%d points", points)
}
