package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeAnswerByKind(t *testing.T) {
	a, err := DecodeAnswer(TrueFalse{}, json.RawMessage(`"true"`))
	require.NoError(t, err)
	assert.Equal(t, BoolAnswer(true), a)

	a, err = DecodeAnswer(TrueFalse{}, json.RawMessage(`false`))
	require.NoError(t, err)
	assert.Equal(t, BoolAnswer(false), a)

	a, err = DecodeAnswer(MultipleChoice{}, json.RawMessage(`2`))
	require.NoError(t, err)
	assert.Equal(t, OptionAnswer(2), a)

	a, err = DecodeAnswer(Ordering{}, json.RawMessage(`["b", "a"]`))
	require.NoError(t, err)
	assert.Equal(t, SequenceAnswer{"b", "a"}, a)

	_, err = DecodeAnswer(TrueFalse{}, json.RawMessage(`"maybe"`))
	assert.ErrorIs(t, err, ErrInvalidAnswer)
	_, err = DecodeAnswer(Essay{}, json.RawMessage(`3`))
	assert.ErrorIs(t, err, ErrInvalidAnswer)
	_, err = DecodeAnswer(FileUpload{}, json.RawMessage(`"report.pdf"`))
	assert.ErrorIs(t, err, ErrAnswerNotCaptured)
}

func TestBoolAnswerEncodesAsString(t *testing.T) {
	data, err := json.Marshal(BoolAnswer(true))
	require.NoError(t, err)
	assert.Equal(t, `"true"`, string(data))
}

func TestCaptureModeSequences(t *testing.T) {
	m := Matching{Base: Base{ID: "m"}, Pairs: []MatchPair{{Left: "a", Right: "1"}, {Left: "b", Right: "2"}}}

	assert.ErrorIs(t, CaptureMode{}.Accepts(m, SequenceAnswer{"2", "1"}), ErrAnswerNotCaptured)

	on := CaptureMode{Sequences: true}
	assert.NoError(t, on.Accepts(m, SequenceAnswer{"2", "1"}))
	assert.ErrorIs(t, on.Accepts(m, SequenceAnswer{"1"}), ErrInvalidAnswer)
	assert.ErrorIs(t, on.Accepts(m, SequenceAnswer{"1", "3"}), ErrInvalidAnswer)
	assert.ErrorIs(t, on.Accepts(m, TextAnswer("1,2")), ErrInvalidAnswer)
}
