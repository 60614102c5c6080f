package importer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seshat-edu/seshat-backend/internal/model"
)

type memStore struct {
	texts     map[string]bool
	created   []*model.Question
	failOn    string
	existsErr error
}

func newMemStore(existing ...string) *memStore {
	s := &memStore{texts: map[string]bool{}}
	for _, t := range existing {
		s.texts[t] = true
	}
	return s
}

func (s *memStore) ExistsByText(_ context.Context, text string) (bool, error) {
	if s.existsErr != nil {
		return false, s.existsErr
	}
	return s.texts[text], nil
}

func (s *memStore) Create(_ context.Context, q *model.Question) error {
	if q.Text == s.failOn {
		return errors.New("insert failed")
	}
	q.ID = len(s.created) + 1
	s.created = append(s.created, q)
	s.texts[q.Text] = true
	return nil
}

const file = `[
  {"subject":"Matemática","text":"2+2?","options":["3","4"],"correct_answer":"B","source":"ENEM","year":2020},
  {"subject":"Física","text":"sem opções","correct_answer":"A"},
  {"subject":"Física","text":"resposta fora","options":{"A":"x","B":"y"},"correct_answer":"E"},
  {"subject":"História","text":"já existe","options":["a","b"],"correct_answer":"A"},
  {"subject":"História","text":"2+2?","options":["3","4"],"correct_answer":"B"},
  "not an object",
  {"subject":"Redação","text":"falha","options":["a"],"correct_answer":"A"},
  {"subject":"Português","text":"Crase?","options":{"A":"sim","B":"não"},"correct_answer":"A"}
]`

func TestImportSkipsBadRowsAndContinues(t *testing.T) {
	store := newMemStore("já existe")
	store.failOn = "falha"

	res, err := New(store, zerolog.Nop()).Import(context.Background(), strings.NewReader(file))
	require.NoError(t, err)

	assert.Equal(t, &Result{
		Total:      8,
		Added:      2,
		Missing:    1,
		Invalid:    2,
		Duplicates: 2,
		Failed:     1,
	}, res)

	require.Len(t, store.created, 2)
	assert.Equal(t, "2+2?", store.created[0].Text)
	assert.Equal(t, "ENEM", *store.created[0].Source)
	assert.Equal(t, "Crase?", store.created[1].Text)
}

func TestImportRejectsNonArray(t *testing.T) {
	_, err := New(newMemStore(), zerolog.Nop()).Import(context.Background(), strings.NewReader(`{"subject":"x"}`))
	assert.Error(t, err)
}

func TestImportCountsStoreErrors(t *testing.T) {
	store := newMemStore()
	store.existsErr = errors.New("db down")

	res, err := New(store, zerolog.Nop()).Import(context.Background(),
		strings.NewReader(`[{"subject":"s","text":"t","options":["a"],"correct_answer":"A"}]`))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)
	assert.Zero(t, res.Added)
}

func TestImportFileMissing(t *testing.T) {
	_, err := New(newMemStore(), zerolog.Nop()).ImportFile(context.Background(), "does-not-exist.json")
	assert.Error(t, err)
}
