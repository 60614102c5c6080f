package service

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/seshat-edu/seshat-backend/internal/config"
	"github.com/seshat-edu/seshat-backend/internal/model"
)

// Sampling bounds for GET /perguntas/{subject}.
const (
	DefaultQuestionCount = 10
	MaxQuestionCount     = 50
)

// QuestionService handles question storage, sampling, answer checks and hints.
type QuestionService struct {
	questions QuestionStore
	advisor   HintAdvisor
	rdb       *redis.Client
	hintTTL   time.Duration
	log       zerolog.Logger
}

// NewQuestionService creates a new QuestionService.
func NewQuestionService(
	questions QuestionStore,
	advisor HintAdvisor,
	rdb *redis.Client,
	hintTTL time.Duration,
	log zerolog.Logger,
) *QuestionService {
	return &QuestionService{
		questions: questions,
		advisor:   advisor,
		rdb:       rdb,
		hintTTL:   hintTTL,
		log:       log.With().Str("component", "question_service").Logger(),
	}
}

// Create stores a question. The request must already have passed CheckAnswerKey.
func (s *QuestionService) Create(ctx context.Context, req *model.CreateQuestionRequest) (*model.Question, error) {
	q := req.ToQuestion()
	if err := s.questions.Create(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

// Sample returns randomly ordered questions of a subject.
// Returns ErrNoQuestions when nothing matches.
func (s *QuestionService) Sample(ctx context.Context, subject string, query model.QuestionQuery) ([]model.QuestionView, error) {
	f := model.QuestionFilter{Subject: subject, Year: query.Year, Limit: query.Count}
	if f.Limit <= 0 {
		f.Limit = DefaultQuestionCount
	}
	if f.Limit > MaxQuestionCount {
		f.Limit = MaxQuestionCount
	}
	if query.Source != "" {
		src := query.Source
		f.Source = &src
	}

	questions, err := s.questions.Sample(ctx, f)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}

	views := make([]model.QuestionView, len(questions))
	for i := range questions {
		views[i] = questions[i].View()
	}
	return views, nil
}

// SampleFull is Sample without stripping answers; used by the practice stream.
func (s *QuestionService) SampleFull(ctx context.Context, subject string, count int) ([]model.Question, error) {
	if count <= 0 {
		count = DefaultQuestionCount
	}
	if count > MaxQuestionCount {
		count = MaxQuestionCount
	}
	questions, err := s.questions.Sample(ctx, model.QuestionFilter{Subject: subject, Limit: count})
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	return questions, nil
}

// Verify compares the submitted key with the stored one. Exact match only.
func (s *QuestionService) Verify(ctx context.Context, questionID int, answer string) (*model.VerifyAnswerResult, error) {
	q, err := s.questions.GetByID(ctx, questionID)
	if err != nil {
		return nil, err
	}
	res := q.Check(answer)
	return &res, nil
}

// Hint returns a pedagogical hint, cached per question when the advisor produced one.
func (s *QuestionService) Hint(ctx context.Context, questionID int) (*model.HintResponse, error) {
	q, err := s.questions.GetByID(ctx, questionID)
	if err != nil {
		return nil, err
	}

	key := config.CacheKey.QuestionHintKey(q.ID)
	cached, err := s.rdb.Get(ctx, key).Result()
	switch {
	case err == nil:
		return &model.HintResponse{QuestionID: q.ID, Dica: cached}, nil
	case !errors.Is(err, redis.Nil):
		s.log.Warn().Err(err).Int("question_id", q.ID).Msg("hint cache read failed")
	}

	text, generated := s.advisor.Hint(ctx, q)
	if generated {
		if err := s.rdb.Set(ctx, key, text, s.hintTTL).Err(); err != nil {
			s.log.Warn().Err(err).Int("question_id", q.ID).Msg("hint cache write failed")
		}
	}
	return &model.HintResponse{QuestionID: q.ID, Dica: text}, nil
}
