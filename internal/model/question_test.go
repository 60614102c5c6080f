package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOptionsList(t *testing.T) {
	opts, err := ParseOptions(json.RawMessage(`["dois", "três", "quatro"]`))
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B", "C"}, opts.Keys)
	assert.Equal(t, "três", opts.Texts["B"])
	assert.True(t, opts.Has("C"))
	assert.False(t, opts.Has("D"))
	assert.False(t, opts.Has("dois"))
}

func TestParseOptionsMap(t *testing.T) {
	opts, err := ParseOptions(json.RawMessage(` {"b": "y", "a": "x"}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, opts.Keys)
	assert.True(t, opts.Has("a"))
	assert.False(t, opts.Has("A"))
}

func TestParseOptionsRejects(t *testing.T) {
	for _, raw := range []string{``, `[]`, `{}`, `"A"`, `[1, 2]`, `{"a": 1}`, `null`} {
		_, err := ParseOptions(json.RawMessage(raw))
		assert.ErrorIs(t, err, ErrInvalidOptions, raw)
	}
}

func TestCheckAnswerKey(t *testing.T) {
	req := CreateQuestionRequest{Options: json.RawMessage(`{"A": "1", "B": "2"}`), CorrectAnswer: "B"}
	assert.Nil(t, req.CheckAnswerKey())

	req.CorrectAnswer = "C"
	assert.Contains(t, req.CheckAnswerKey(), "correct_answer")

	req.Options = json.RawMessage(`42`)
	assert.Contains(t, req.CheckAnswerKey(), "options")
}

func TestQuestionViewHidesAnswer(t *testing.T) {
	q := &Question{ID: 7, Subject: "Física", Text: "?", Options: json.RawMessage(`["a"]`), CorrectAnswer: "A"}

	raw, err := json.Marshal(q.View())
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "correct_answer")

	text, ok := q.OptionText("A")
	assert.True(t, ok)
	assert.Equal(t, "a", text)
}
