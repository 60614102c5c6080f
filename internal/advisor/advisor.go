// Package advisor wraps the generative model used for study plans and hints.
// Every call is best effort: failures are logged and degrade to a nil plan
// or the canned hint, never to an error.
package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/seshat-edu/seshat-backend/internal/config"
	"github.com/seshat-edu/seshat-backend/internal/model"
)

// FallbackHint is returned whenever the model cannot produce a hint.
const FallbackHint = "Tente reler o enunciado com calma, focando nas palavras-chave."

var errDisabled = errors.New("advisor disabled: no API key configured")

// generator is the single model call the advisor needs.
type generator interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}

type genaiGenerator struct {
	client *genai.Client
}

func (g *genaiGenerator) Generate(ctx context.Context, model, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

// Advisor drafts study plans and question hints.
type Advisor struct {
	gen       generator
	planModel string
	hintModel string
	timeout   time.Duration
	log       zerolog.Logger
}

// New builds an Advisor from config. Without GEMINI_API_KEY the advisor is
// disabled and every call degrades.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Advisor, error) {
	a := &Advisor{
		planModel: cfg.GeminiPlanModel,
		hintModel: cfg.GeminiHintModel,
		timeout:   cfg.AITimeout,
		log:       log.With().Str("component", "advisor").Logger(),
	}
	if cfg.GeminiAPIKey == "" {
		a.log.Warn().Msg("GEMINI_API_KEY not set, AI features will use fallbacks")
		return a, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	a.gen = &genaiGenerator{client: client}
	return a, nil
}

// Enabled reports whether a model is configured.
func (a *Advisor) Enabled() bool {
	return a.gen != nil
}

func (a *Advisor) generate(ctx context.Context, model, prompt string) (string, error) {
	if a.gen == nil {
		return "", errDisabled
	}
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}
	return a.gen.Generate(ctx, model, prompt)
}

// GeneratePlan asks the model for a plan. Returns nil on any failure.
func (a *Advisor) GeneratePlan(ctx context.Context, months int, focusAreas []string) *model.GeneratedPlan {
	text, err := a.generate(ctx, a.planModel, planPrompt(months, focusAreas))
	if err != nil {
		a.log.Warn().Err(err).Int("months", months).Msg("plan generation failed")
		return nil
	}

	plan, err := parsePlan(text)
	if err != nil {
		a.log.Warn().Err(err).Str("raw", truncate(text, 200)).Msg("plan response is not valid JSON")
		return nil
	}
	return plan
}

// Hint asks the model for a short hint. generated is false when the
// fallback text is returned.
func (a *Advisor) Hint(ctx context.Context, q *model.Question) (string, bool) {
	text, err := a.generate(ctx, a.hintModel, hintPrompt(q))
	if err != nil {
		a.log.Warn().Err(err).Int("question_id", q.ID).Msg("hint generation failed")
		return FallbackHint, false
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return FallbackHint, false
	}
	return text, true
}

// parsePlan decodes the model output, tolerating markdown code fences.
func parsePlan(text string) (*model.GeneratedPlan, error) {
	clean := strings.ReplaceAll(text, "```json", "")
	clean = strings.ReplaceAll(clean, "```", "")
	clean = strings.TrimSpace(clean)

	var plan model.GeneratedPlan
	if err := json.Unmarshal([]byte(clean), &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
