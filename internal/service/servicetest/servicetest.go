// Package servicetest provides in-memory stores and advisors that follow
// the same rules as the Postgres repositories, for tests of services and
// handlers.
package servicetest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/seshat-edu/seshat-backend/internal/config"
	"github.com/seshat-edu/seshat-backend/internal/model"
	"github.com/seshat-edu/seshat-backend/internal/repository"
)

// Config returns a config with a cheap bcrypt cost and a one hour token expiry.
func Config() *config.Config {
	return &config.Config{
		JWTSecret:    "test-secret",
		JWTExpiry:    time.Hour,
		BcryptCost:   4,
		HintCacheTTL: time.Hour,
	}
}

// NewRedis starts a miniredis server that lives for the duration of t.
func NewRedis(t testing.TB) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

// UserStore is an in-memory service.UserStore.
type UserStore struct {
	mu    sync.Mutex
	users []*model.User
}

func (f *UserStore) Create(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return repository.ErrDuplicateEmail
		}
	}
	u.ID = len(f.users) + 1
	u.CreatedAt = time.Now()
	cp := *u
	f.users = append(f.users, &cp)
	return nil
}

func (f *UserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *UserStore) GetByID(_ context.Context, id int) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

// QuestionStore is an in-memory service.QuestionStore. Sample returns
// matches in insertion order.
type QuestionStore struct {
	Questions   []model.Question
	LastFilter  model.QuestionFilter
	SampleCalls int
}

func (f *QuestionStore) Create(_ context.Context, q *model.Question) error {
	q.ID = len(f.Questions) + 1
	f.Questions = append(f.Questions, *q)
	return nil
}

func (f *QuestionStore) GetByID(_ context.Context, id int) (*model.Question, error) {
	for i := range f.Questions {
		if f.Questions[i].ID == id {
			q := f.Questions[i]
			return &q, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *QuestionStore) Sample(_ context.Context, filter model.QuestionFilter) ([]model.Question, error) {
	f.LastFilter = filter
	f.SampleCalls++
	var out []model.Question
	for _, q := range f.Questions {
		if q.Subject != filter.Subject {
			continue
		}
		if filter.Source != nil && (q.Source == nil || *q.Source != *filter.Source) {
			continue
		}
		if filter.Year != nil && (q.Year == nil || *q.Year != *filter.Year) {
			continue
		}
		out = append(out, q)
		if len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

// CronogramaStore keeps one plan per owner with the same ownership and
// limit rules as the Postgres repository.
type CronogramaStore struct {
	mu       sync.Mutex
	nextID   int
	plans    map[int]*model.Cronograma
	Replaced int
}

func NewCronogramaStore() *CronogramaStore {
	return &CronogramaStore{plans: map[int]*model.Cronograma{}}
}

func (f *CronogramaStore) id() int {
	f.nextID++
	return f.nextID
}

func (f *CronogramaStore) ensure(ownerID int) *model.Cronograma {
	c, ok := f.plans[ownerID]
	if !ok {
		c = &model.Cronograma{ID: f.id(), OwnerID: ownerID, Nome: model.DefaultCronogramaNome, Materias: []model.MateriaCronograma{}}
		f.plans[ownerID] = c
	}
	return c
}

func (f *CronogramaStore) findMateria(materiaID int) (*model.Cronograma, int) {
	for _, c := range f.plans {
		for i := range c.Materias {
			if c.Materias[i].ID == materiaID {
				return c, i
			}
		}
	}
	return nil, -1
}

func (f *CronogramaStore) findTopico(topicoID int) (*model.Cronograma, int, int) {
	for _, c := range f.plans {
		for i := range c.Materias {
			for j := range c.Materias[i].Topicos {
				if c.Materias[i].Topicos[j].ID == topicoID {
					return c, i, j
				}
			}
		}
	}
	return nil, -1, -1
}

func (f *CronogramaStore) GetOrCreateByOwner(_ context.Context, ownerID int) (*model.Cronograma, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *f.ensure(ownerID)
	return &cp, nil
}

func (f *CronogramaStore) AddMateria(_ context.Context, ownerID int, nome string, limit int) (*model.MateriaCronograma, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := f.ensure(ownerID)
	if len(c.Materias) >= limit {
		return nil, repository.ErrLimitReached
	}
	m := model.MateriaCronograma{ID: f.id(), CronogramaID: c.ID, Nome: nome, Topicos: []model.TopicoCronograma{}}
	c.Materias = append(c.Materias, m)
	return &m, nil
}

func (f *CronogramaStore) AddTopico(_ context.Context, ownerID, materiaID int, nome string, limit int) (*model.TopicoCronograma, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, i := f.findMateria(materiaID)
	if c == nil {
		return nil, repository.ErrNotFound
	}
	if c.OwnerID != ownerID {
		return nil, repository.ErrNotOwner
	}
	if len(c.Materias[i].Topicos) >= limit {
		return nil, repository.ErrLimitReached
	}
	t := model.TopicoCronograma{ID: f.id(), MateriaID: materiaID, Nome: nome}
	c.Materias[i].Topicos = append(c.Materias[i].Topicos, t)
	return &t, nil
}

func (f *CronogramaStore) SetTopicoConcluido(_ context.Context, ownerID, topicoID int, concluido bool) (*model.TopicoCronograma, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, i, j := f.findTopico(topicoID)
	if c == nil {
		return nil, repository.ErrNotFound
	}
	if c.OwnerID != ownerID {
		return nil, repository.ErrNotOwner
	}
	c.Materias[i].Topicos[j].Concluido = concluido
	t := c.Materias[i].Topicos[j]
	return &t, nil
}

func (f *CronogramaStore) DeleteMateria(_ context.Context, ownerID, materiaID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, i := f.findMateria(materiaID)
	if c == nil {
		return repository.ErrNotFound
	}
	if c.OwnerID != ownerID {
		return repository.ErrNotOwner
	}
	c.Materias = append(c.Materias[:i], c.Materias[i+1:]...)
	return nil
}

func (f *CronogramaStore) DeleteTopico(_ context.Context, ownerID, topicoID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, i, j := f.findTopico(topicoID)
	if c == nil {
		return repository.ErrNotFound
	}
	if c.OwnerID != ownerID {
		return repository.ErrNotOwner
	}
	m := &c.Materias[i]
	m.Topicos = append(m.Topicos[:j], m.Topicos[j+1:]...)
	return nil
}

func (f *CronogramaStore) ReplacePlan(_ context.Context, ownerID int, plan *model.GeneratedPlan) (*model.Cronograma, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Replaced++
	c := f.ensure(ownerID)
	c.Nome = plan.NomePlano
	c.Materias = []model.MateriaCronograma{}
	for _, gm := range plan.Materias {
		m := model.MateriaCronograma{ID: f.id(), CronogramaID: c.ID, Nome: gm.Nome, Topicos: []model.TopicoCronograma{}}
		for _, nome := range gm.Topicos {
			m.Topicos = append(m.Topicos, model.TopicoCronograma{ID: f.id(), MateriaID: m.ID, Nome: nome})
		}
		c.Materias = append(c.Materias, m)
	}
	cp := *c
	return &cp, nil
}

// Advisor returns canned plans and hints.
type Advisor struct {
	Plan      *model.GeneratedPlan
	HintText  string
	Generated bool
	HintCalls int
}

func (f *Advisor) GeneratePlan(context.Context, int, []string) *model.GeneratedPlan {
	return f.Plan
}

func (f *Advisor) Hint(context.Context, *model.Question) (string, bool) {
	f.HintCalls++
	return f.HintText, f.Generated
}
