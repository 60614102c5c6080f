// Package importer bulk loads questions from a JSON file.
package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/seshat-edu/seshat-backend/internal/model"
	"github.com/seshat-edu/seshat-backend/internal/validator"
)

var requiredFields = []string{"subject", "text", "options", "correct_answer"}

// Store is the persistence the importer needs.
type Store interface {
	ExistsByText(ctx context.Context, text string) (bool, error)
	Create(ctx context.Context, q *model.Question) error
}

// Result summarizes an import run.
type Result struct {
	Total      int `json:"total"`
	Added      int `json:"added"`
	Missing    int `json:"skipped_missing_fields"`
	Invalid    int `json:"skipped_invalid"`
	Duplicates int `json:"skipped_duplicates"`
	Failed     int `json:"failed"`
}

// Importer inserts questions row by row. A bad row is logged and skipped.
type Importer struct {
	store Store
	log   zerolog.Logger
}

// New creates an Importer.
func New(store Store, log zerolog.Logger) *Importer {
	return &Importer{store: store, log: log.With().Str("component", "importer").Logger()}
}

// ImportFile opens path and imports it.
func (im *Importer) ImportFile(ctx context.Context, path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return im.Import(ctx, f)
}

// Import reads a flat JSON array of question objects from r.
func (im *Importer) Import(ctx context.Context, r io.Reader) (*Result, error) {
	var rows []json.RawMessage
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode question file: %w", err)
	}

	res := &Result{Total: len(rows)}
	im.log.Info().Int("rows", len(rows)).Msg("Importing questions")

	for i, raw := range rows {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		var present map[string]json.RawMessage
		if err := json.Unmarshal(raw, &present); err != nil {
			im.log.Warn().Int("row", i).Err(err).Msg("Skipping row: not a JSON object")
			res.Invalid++
			continue
		}
		if missing := missingField(present); missing != "" {
			im.log.Warn().Int("row", i).Str("field", missing).Msg("Skipping row: missing required field")
			res.Missing++
			continue
		}

		var req model.CreateQuestionRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			im.log.Warn().Int("row", i).Err(err).Msg("Skipping row: wrong field types")
			res.Invalid++
			continue
		}
		fields := validator.Struct(&req)
		if fields == nil {
			fields = req.CheckAnswerKey()
		}
		if fields != nil {
			im.log.Warn().Int("row", i).Interface("fields", fields).Msg("Skipping row: validation failed")
			res.Invalid++
			continue
		}

		exists, err := im.store.ExistsByText(ctx, req.Text)
		if err != nil {
			im.log.Error().Int("row", i).Err(err).Msg("Duplicate check failed")
			res.Failed++
			continue
		}
		if exists {
			im.log.Info().Int("row", i).Str("text", preview(req.Text)).Msg("Skipping row: question already exists")
			res.Duplicates++
			continue
		}

		if err := im.store.Create(ctx, req.ToQuestion()); err != nil {
			im.log.Error().Int("row", i).Err(err).Msg("Insert failed")
			res.Failed++
			continue
		}
		res.Added++
	}

	return res, nil
}

func missingField(row map[string]json.RawMessage) string {
	for _, f := range requiredFields {
		v, ok := row[f]
		if !ok || string(v) == "null" {
			return f
		}
	}
	return ""
}

func preview(s string) string {
	r := []rune(s)
	if len(r) > 50 {
		return string(r[:50]) + "..."
	}
	return s
}
