package service

import (
	"context"

	"github.com/seshat-edu/seshat-backend/internal/model"
	"github.com/seshat-edu/seshat-backend/internal/repository"
)

// UserStore is the persistence needed by UserService.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id int) (*model.User, error)
}

// QuestionStore is the persistence needed by QuestionService.
type QuestionStore interface {
	Create(ctx context.Context, q *model.Question) error
	GetByID(ctx context.Context, id int) (*model.Question, error)
	Sample(ctx context.Context, f model.QuestionFilter) ([]model.Question, error)
}

// CronogramaStore is the persistence needed by CronogramaService.
type CronogramaStore interface {
	GetOrCreateByOwner(ctx context.Context, ownerID int) (*model.Cronograma, error)
	AddMateria(ctx context.Context, ownerID int, nome string, limit int) (*model.MateriaCronograma, error)
	AddTopico(ctx context.Context, ownerID, materiaID int, nome string, limit int) (*model.TopicoCronograma, error)
	SetTopicoConcluido(ctx context.Context, ownerID, topicoID int, concluido bool) (*model.TopicoCronograma, error)
	DeleteMateria(ctx context.Context, ownerID, materiaID int) error
	DeleteTopico(ctx context.Context, ownerID, topicoID int) error
	ReplacePlan(ctx context.Context, ownerID int, plan *model.GeneratedPlan) (*model.Cronograma, error)
}

// PlanAdvisor drafts study plans. A nil plan means the advisor could not help.
type PlanAdvisor interface {
	GeneratePlan(ctx context.Context, months int, focusAreas []string) *model.GeneratedPlan
}

// HintAdvisor writes hints. generated is false when text is the canned fallback.
type HintAdvisor interface {
	Hint(ctx context.Context, q *model.Question) (text string, generated bool)
}

var (
	_ UserStore       = (*repository.UserRepository)(nil)
	_ QuestionStore   = (*repository.QuestionRepository)(nil)
	_ CronogramaStore = (*repository.CronogramaRepository)(nil)
)
