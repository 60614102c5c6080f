package service

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/seshat-edu/seshat-backend/internal/model"
	"github.com/seshat-edu/seshat-backend/internal/schedule"
)

// WeeklySchedule is the response of the weekly planner.
type WeeklySchedule struct {
	Status   schedule.Status   `json:"status"`
	Mensagem string            `json:"mensagem,omitempty"`
	Semana   map[string]string `json:"semana,omitempty"`
	Ordem    []string          `json:"ordem,omitempty"`
}

// CronogramaService handles the study plan tree and the weekly planner.
type CronogramaService struct {
	store   CronogramaStore
	advisor PlanAdvisor
	log     zerolog.Logger
}

// NewCronogramaService creates a new CronogramaService.
func NewCronogramaService(store CronogramaStore, advisor PlanAdvisor, log zerolog.Logger) *CronogramaService {
	return &CronogramaService{
		store:   store,
		advisor: advisor,
		log:     log.With().Str("component", "cronograma_service").Logger(),
	}
}

// GetMine returns the caller's plan, creating an empty one if needed.
func (s *CronogramaService) GetMine(ctx context.Context, ownerID int) (*model.Cronograma, error) {
	return s.store.GetOrCreateByOwner(ctx, ownerID)
}

// Weekly distributes the caller's pending tópicos over the week.
func (s *CronogramaService) Weekly(ctx context.Context, ownerID int) (*WeeklySchedule, error) {
	c, err := s.store.GetOrCreateByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	subjects := make([]schedule.Subject, 0, len(c.Materias))
	for i := range c.Materias {
		subjects = append(subjects, schedule.Subject{
			Name:    c.Materias[i].Nome,
			Pending: c.Materias[i].PendingTopicos(),
		})
	}

	week := schedule.Distribute(subjects)
	switch week.Status {
	case schedule.StatusNoSubjects:
		return &WeeklySchedule{
			Status:   week.Status,
			Mensagem: "Adicione matérias ao seu cronograma para gerar a semana.",
		}, nil
	case schedule.StatusAllComplete:
		return &WeeklySchedule{
			Status:   week.Status,
			Mensagem: "Parabéns! Todos os tópicos foram concluídos.",
		}, nil
	}

	return &WeeklySchedule{
		Status: week.Status,
		Semana: week.Map(),
		Ordem:  schedule.Weekdays[:],
	}, nil
}

// AddMateria adds a matéria to the caller's plan. Returns ErrLimitReached at the cap.
func (s *CronogramaService) AddMateria(ctx context.Context, ownerID int, nome string) (*model.MateriaCronograma, error) {
	return s.store.AddMateria(ctx, ownerID, nome, model.MaxMateriasPerCronograma)
}

// AddTopico adds a tópico to one of the caller's matérias.
// Returns ErrNotFound, ErrForbidden or ErrLimitReached.
func (s *CronogramaService) AddTopico(ctx context.Context, ownerID, materiaID int, nome string) (*model.TopicoCronograma, error) {
	return s.store.AddTopico(ctx, ownerID, materiaID, nome, model.MaxTopicosPerMateria)
}

// SetTopicoConcluido marks a tópico done or pending.
func (s *CronogramaService) SetTopicoConcluido(ctx context.Context, ownerID, topicoID int, concluido bool) (*model.TopicoCronograma, error) {
	return s.store.SetTopicoConcluido(ctx, ownerID, topicoID, concluido)
}

// DeleteMateria removes one of the caller's matérias.
func (s *CronogramaService) DeleteMateria(ctx context.Context, ownerID, materiaID int) error {
	return s.store.DeleteMateria(ctx, ownerID, materiaID)
}

// DeleteTopico removes one of the caller's tópicos.
func (s *CronogramaService) DeleteTopico(ctx context.Context, ownerID, topicoID int) error {
	return s.store.DeleteTopico(ctx, ownerID, topicoID)
}

// Generate asks the advisor for a plan and, if it answers, replaces the
// caller's matérias with it. When the advisor fails the plan is left as is
// and Gerado is false.
func (s *CronogramaService) Generate(ctx context.Context, ownerID int, req *model.GeneratePlanRequest) (*model.GeneratePlanResponse, error) {
	plan := s.advisor.GeneratePlan(ctx, req.Meses, req.AreasFoco)
	if plan != nil {
		plan.Clamp()
	}
	if plan == nil || len(plan.Materias) == 0 {
		s.log.Info().Int("owner_id", ownerID).Msg("advisor returned no plan, keeping current cronograma")
		c, err := s.store.GetOrCreateByOwner(ctx, ownerID)
		if err != nil {
			return nil, err
		}
		return &model.GeneratePlanResponse{Gerado: false, Cronograma: c}, nil
	}

	c, err := s.store.ReplacePlan(ctx, ownerID, plan)
	if err != nil {
		return nil, err
	}
	return &model.GeneratePlanResponse{Gerado: true, Cronograma: c}, nil
}
