package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"sort"
	"time"
)

// Question is a stored multiple-choice question.
// Options is either a JSON array of texts or an object of label -> text.
type Question struct {
	ID            int             `json:"id"`
	Subject       string          `json:"subject"`
	Text          string          `json:"text"`
	Options       json.RawMessage `json:"options"`
	CorrectAnswer string          `json:"correct_answer"`
	Source        *string         `json:"source"`
	Year          *int            `json:"year"`
	CreatedAt     time.Time       `json:"created_at"`
}

// QuestionView is the public shape of a question; it never carries the answer.
type QuestionView struct {
	ID      int             `json:"id"`
	Subject string          `json:"subject"`
	Text    string          `json:"text"`
	Options json.RawMessage `json:"options"`
	Source  *string         `json:"source"`
	Year    *int            `json:"year"`
}

// View strips the correct answer.
func (q *Question) View() QuestionView {
	return QuestionView{
		ID:      q.ID,
		Subject: q.Subject,
		Text:    q.Text,
		Options: q.Options,
		Source:  q.Source,
		Year:    q.Year,
	}
}

// Check compares a submitted key with the stored one. Exact match only.
func (q *Question) Check(answer string) VerifyAnswerResult {
	return VerifyAnswerResult{
		IsCorrect:     answer == q.CorrectAnswer,
		CorrectAnswer: q.CorrectAnswer,
		QuestionID:    q.ID,
	}
}

// OptionText resolves the text of an option key, if present.
func (q *Question) OptionText(key string) (string, bool) {
	opts, err := ParseOptions(q.Options)
	if err != nil {
		return "", false
	}
	text, ok := opts.Texts[key]
	return text, ok
}

var ErrInvalidOptions = errors.New("options must be a non-empty list or object of strings")

// Options is the decoded form of a question's options.
// List options are keyed by positional labels A, B, C, ...
type Options struct {
	Keys  []string
	Texts map[string]string
}

// Has reports whether key is a valid answer key.
func (o Options) Has(key string) bool {
	_, ok := o.Texts[key]
	return ok
}

// ParseOptions decodes raw options in either supported shape.
func ParseOptions(raw json.RawMessage) (Options, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return Options{}, ErrInvalidOptions
	}

	switch trimmed[0] {
	case '[':
		var list []string
		if err := json.Unmarshal(trimmed, &list); err != nil || len(list) == 0 {
			return Options{}, ErrInvalidOptions
		}
		if len(list) > 26 {
			return Options{}, ErrInvalidOptions
		}
		opts := Options{Keys: make([]string, len(list)), Texts: make(map[string]string, len(list))}
		for i, text := range list {
			label := string(rune('A' + i))
			opts.Keys[i] = label
			opts.Texts[label] = text
		}
		return opts, nil
	case '{':
		var m map[string]string
		if err := json.Unmarshal(trimmed, &m); err != nil || len(m) == 0 {
			return Options{}, ErrInvalidOptions
		}
		opts := Options{Keys: make([]string, 0, len(m)), Texts: m}
		for k := range m {
			opts.Keys = append(opts.Keys, k)
		}
		sort.Strings(opts.Keys)
		return opts, nil
	default:
		return Options{}, ErrInvalidOptions
	}
}

// CreateQuestionRequest is the payload for creating a question, also used
// for each row of a bulk import file.
type CreateQuestionRequest struct {
	Subject       string          `json:"subject" binding:"required,min=1,max=100"`
	Text          string          `json:"text" binding:"required,min=1,max=10000"`
	Options       json.RawMessage `json:"options" binding:"required"`
	CorrectAnswer string          `json:"correct_answer" binding:"required,max=100"`
	Source        *string         `json:"source" binding:"omitempty,max=100"`
	Year          *int            `json:"year" binding:"omitempty,min=1900,max=2100"`
}

// CheckAnswerKey validates options and that the correct answer is one of its keys.
// Returns field -> message, or nil when valid.
func (r *CreateQuestionRequest) CheckAnswerKey() map[string]string {
	opts, err := ParseOptions(r.Options)
	if err != nil {
		return map[string]string{"options": err.Error()}
	}
	if !opts.Has(r.CorrectAnswer) {
		return map[string]string{"correct_answer": "correct_answer must be one of the option keys"}
	}
	return nil
}

// ToQuestion builds the record to persist.
func (r *CreateQuestionRequest) ToQuestion() *Question {
	return &Question{
		Subject:       r.Subject,
		Text:          r.Text,
		Options:       r.Options,
		CorrectAnswer: r.CorrectAnswer,
		Source:        r.Source,
		Year:          r.Year,
	}
}

// QuestionQuery holds the optional filters of a random sample request.
// Count above the sampling cap is clamped by the service, not rejected.
type QuestionQuery struct {
	Count  int    `form:"count" binding:"omitempty,min=1"`
	Source string `form:"source" binding:"omitempty,max=100"`
	Year   *int   `form:"year" binding:"omitempty,min=1900,max=2100"`
}

// QuestionFilter is the resolved sampling filter passed to storage.
type QuestionFilter struct {
	Subject string
	Source  *string
	Year    *int
	Limit   int
}

// VerifyAnswerRequest is the payload for checking an answer.
type VerifyAnswerRequest struct {
	QuestionID int    `json:"question_id" binding:"required,min=1"`
	UserAnswer string `json:"user_answer" binding:"required,max=100"`
}

// VerifyAnswerResult reports whether the submitted key was correct.
type VerifyAnswerResult struct {
	IsCorrect     bool   `json:"is_correct"`
	CorrectAnswer string `json:"correct_answer"`
	QuestionID    int    `json:"question_id"`
}

// HintResponse carries an advisory hint for a question.
type HintResponse struct {
	QuestionID int    `json:"question_id"`
	Dica       string `json:"dica"`
}
