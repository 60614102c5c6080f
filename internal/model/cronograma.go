package model

import "time"

// Plan cardinality limits.
const (
	MaxMateriasPerCronograma = 3
	MaxTopicosPerMateria     = 3
)

// DefaultCronogramaNome names auto-created plans.
const DefaultCronogramaNome = "Meu Cronograma"

// Cronograma is a user's study plan.
type Cronograma struct {
	ID        int                 `json:"id"`
	OwnerID   int                 `json:"owner_id"`
	Nome      string              `json:"nome"`
	Materias  []MateriaCronograma `json:"materias"`
	CreatedAt time.Time           `json:"created_at"`
}

// MateriaCronograma is a subject inside a plan.
type MateriaCronograma struct {
	ID           int                `json:"id"`
	CronogramaID int                `json:"cronograma_id"`
	Nome         string             `json:"nome"`
	Topicos      []TopicoCronograma `json:"topicos"`
}

// TopicoCronograma is a topic inside a subject.
type TopicoCronograma struct {
	ID        int    `json:"id"`
	MateriaID int    `json:"materia_id"`
	Nome      string `json:"nome"`
	Concluido bool   `json:"concluido"`
}

// PendingTopicos returns the names of topics not yet completed, in order.
func (m *MateriaCronograma) PendingTopicos() []string {
	var out []string
	for _, t := range m.Topicos {
		if !t.Concluido {
			out = append(out, t.Nome)
		}
	}
	return out
}

// CreateMateriaRequest is the payload for adding a subject to the caller's plan.
type CreateMateriaRequest struct {
	Nome string `json:"nome" binding:"required,min=1,max=100"`
}

// CreateTopicoRequest is the payload for adding a topic to a subject.
type CreateTopicoRequest struct {
	Nome string `json:"nome" binding:"required,min=1,max=200"`
}

// UpdateTopicoRequest toggles completion.
type UpdateTopicoRequest struct {
	Concluido *bool `json:"concluido" binding:"required"`
}

// GeneratePlanRequest asks the advisor for a plan.
type GeneratePlanRequest struct {
	Meses     int      `json:"meses" binding:"required,min=1,max=24"`
	AreasFoco []string `json:"areas_foco" binding:"required,min=1,max=5,dive,required,max=100"`
}

// GeneratedPlan is the structure the advisor returns.
type GeneratedPlan struct {
	NomePlano string             `json:"nome_plano"`
	Materias  []GeneratedMateria `json:"materias"`
}

// GeneratedMateria is one subject of a generated plan.
type GeneratedMateria struct {
	Nome    string   `json:"nome"`
	Topicos []string `json:"topicos"`
}

// Clamp trims blank names and enforces the plan cardinality limits.
func (p *GeneratedPlan) Clamp() {
	materias := make([]GeneratedMateria, 0, MaxMateriasPerCronograma)
	for _, m := range p.Materias {
		if len(materias) == MaxMateriasPerCronograma {
			break
		}
		if m.Nome == "" {
			continue
		}
		topicos := make([]string, 0, MaxTopicosPerMateria)
		for _, t := range m.Topicos {
			if len(topicos) == MaxTopicosPerMateria {
				break
			}
			if t != "" {
				topicos = append(topicos, t)
			}
		}
		materias = append(materias, GeneratedMateria{Nome: m.Nome, Topicos: topicos})
	}
	p.Materias = materias
	if p.NomePlano == "" {
		p.NomePlano = DefaultCronogramaNome
	}
}

// GeneratePlanResponse reports whether the advisor produced a plan.
type GeneratePlanResponse struct {
	Gerado     bool        `json:"gerado"`
	Cronograma *Cronograma `json:"cronograma"`
}
