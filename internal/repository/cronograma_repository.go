package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/seshat-edu/seshat-backend/internal/model"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// CronogramaRepository handles study plans and their matérias and tópicos.
// Every limit check runs in the same transaction as the insert it guards,
// with the parent row locked.
type CronogramaRepository struct {
	pool *pgxpool.Pool
}

// NewCronogramaRepository creates a new CronogramaRepository.
func NewCronogramaRepository(pool *pgxpool.Pool) *CronogramaRepository {
	return &CronogramaRepository{pool: pool}
}

// GetOrCreateByOwner returns the owner's plan with its full tree, creating
// an empty one on first access.
func (r *CronogramaRepository) GetOrCreateByOwner(ctx context.Context, ownerID int) (*model.Cronograma, error) {
	if _, err := r.pool.Exec(ctx,
		`INSERT INTO cronogramas (owner_id, nome) VALUES ($1, $2)
		 ON CONFLICT (owner_id) DO NOTHING`,
		ownerID, model.DefaultCronogramaNome,
	); err != nil {
		return nil, fmt.Errorf("ensure cronograma: %w", err)
	}
	return loadTree(ctx, r.pool, ownerID)
}

// AddMateria appends a matéria to the owner's plan unless it already holds limit entries.
func (r *CronogramaRepository) AddMateria(ctx context.Context, ownerID int, nome string, limit int) (*model.MateriaCronograma, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	cronogramaID, err := lockCronograma(ctx, tx, ownerID)
	if err != nil {
		return nil, err
	}

	var count int
	if err := tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM materias_cronograma WHERE cronograma_id = $1`, cronogramaID,
	).Scan(&count); err != nil {
		return nil, err
	}
	if count >= limit {
		return nil, ErrLimitReached
	}

	m := &model.MateriaCronograma{CronogramaID: cronogramaID, Nome: nome, Topicos: []model.TopicoCronograma{}}
	if err := tx.QueryRow(ctx,
		`INSERT INTO materias_cronograma (nome, cronograma_id) VALUES ($1, $2) RETURNING id`,
		nome, cronogramaID,
	).Scan(&m.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

// AddTopico appends a tópico to a matéria owned by ownerID unless it already holds limit entries.
func (r *CronogramaRepository) AddTopico(ctx context.Context, ownerID, materiaID int, nome string, limit int) (*model.TopicoCronograma, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var owner int
	err = tx.QueryRow(ctx,
		`SELECT c.owner_id
		 FROM materias_cronograma m
		 JOIN cronogramas c ON c.id = m.cronograma_id
		 WHERE m.id = $1
		 FOR UPDATE OF m`, materiaID,
	).Scan(&owner)
	if err != nil {
		return nil, notFound(err)
	}
	if owner != ownerID {
		return nil, ErrNotOwner
	}

	var count int
	if err := tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM topicos_cronograma WHERE materia_id = $1`, materiaID,
	).Scan(&count); err != nil {
		return nil, err
	}
	if count >= limit {
		return nil, ErrLimitReached
	}

	t := &model.TopicoCronograma{MateriaID: materiaID, Nome: nome}
	if err := tx.QueryRow(ctx,
		`INSERT INTO topicos_cronograma (nome, materia_id) VALUES ($1, $2) RETURNING id, concluido`,
		nome, materiaID,
	).Scan(&t.ID, &t.Concluido); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return t, nil
}

// SetTopicoConcluido updates the completion flag of a tópico owned by ownerID.
func (r *CronogramaRepository) SetTopicoConcluido(ctx context.Context, ownerID, topicoID int, concluido bool) (*model.TopicoCronograma, error) {
	var (
		owner int
		t     model.TopicoCronograma
	)
	err := r.pool.QueryRow(ctx,
		`SELECT c.owner_id, t.id, t.materia_id, t.nome
		 FROM topicos_cronograma t
		 JOIN materias_cronograma m ON m.id = t.materia_id
		 JOIN cronogramas c ON c.id = m.cronograma_id
		 WHERE t.id = $1`, topicoID,
	).Scan(&owner, &t.ID, &t.MateriaID, &t.Nome)
	if err != nil {
		return nil, notFound(err)
	}
	if owner != ownerID {
		return nil, ErrNotOwner
	}

	if _, err := r.pool.Exec(ctx,
		`UPDATE topicos_cronograma SET concluido = $1 WHERE id = $2`, concluido, topicoID,
	); err != nil {
		return nil, err
	}
	t.Concluido = concluido
	return &t, nil
}

// DeleteMateria removes a matéria (and its tópicos) owned by ownerID.
func (r *CronogramaRepository) DeleteMateria(ctx context.Context, ownerID, materiaID int) error {
	var owner int
	err := r.pool.QueryRow(ctx,
		`SELECT c.owner_id
		 FROM materias_cronograma m
		 JOIN cronogramas c ON c.id = m.cronograma_id
		 WHERE m.id = $1`, materiaID,
	).Scan(&owner)
	if err != nil {
		return notFound(err)
	}
	if owner != ownerID {
		return ErrNotOwner
	}

	_, err = r.pool.Exec(ctx, `DELETE FROM materias_cronograma WHERE id = $1`, materiaID)
	return err
}

// DeleteTopico removes a tópico owned by ownerID.
func (r *CronogramaRepository) DeleteTopico(ctx context.Context, ownerID, topicoID int) error {
	var owner int
	err := r.pool.QueryRow(ctx,
		`SELECT c.owner_id
		 FROM topicos_cronograma t
		 JOIN materias_cronograma m ON m.id = t.materia_id
		 JOIN cronogramas c ON c.id = m.cronograma_id
		 WHERE t.id = $1`, topicoID,
	).Scan(&owner)
	if err != nil {
		return notFound(err)
	}
	if owner != ownerID {
		return ErrNotOwner
	}

	_, err = r.pool.Exec(ctx, `DELETE FROM topicos_cronograma WHERE id = $1`, topicoID)
	return err
}

// ReplacePlan swaps the owner's matérias for the given plan in one transaction.
// The plan must already respect the cardinality limits.
func (r *CronogramaRepository) ReplacePlan(ctx context.Context, ownerID int, plan *model.GeneratedPlan) (*model.Cronograma, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	cronogramaID, err := lockCronograma(ctx, tx, ownerID)
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `UPDATE cronogramas SET nome = $1 WHERE id = $2`, plan.NomePlano, cronogramaID); err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM materias_cronograma WHERE cronograma_id = $1`, cronogramaID); err != nil {
		return nil, err
	}

	for _, m := range plan.Materias {
		var materiaID int
		if err := tx.QueryRow(ctx,
			`INSERT INTO materias_cronograma (nome, cronograma_id) VALUES ($1, $2) RETURNING id`,
			m.Nome, cronogramaID,
		).Scan(&materiaID); err != nil {
			return nil, err
		}

		batch := &pgx.Batch{}
		for _, nome := range m.Topicos {
			batch.Queue(`INSERT INTO topicos_cronograma (nome, materia_id) VALUES ($1, $2)`, nome, materiaID)
		}
		if batch.Len() > 0 {
			if err := tx.SendBatch(ctx, batch).Close(); err != nil {
				return nil, err
			}
		}
	}

	c, err := loadTree(ctx, tx, ownerID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// lockCronograma ensures the owner's plan exists and locks its row.
func lockCronograma(ctx context.Context, tx pgx.Tx, ownerID int) (int, error) {
	if _, err := tx.Exec(ctx,
		`INSERT INTO cronogramas (owner_id, nome) VALUES ($1, $2)
		 ON CONFLICT (owner_id) DO NOTHING`,
		ownerID, model.DefaultCronogramaNome,
	); err != nil {
		return 0, fmt.Errorf("ensure cronograma: %w", err)
	}

	var id int
	if err := tx.QueryRow(ctx,
		`SELECT id FROM cronogramas WHERE owner_id = $1 FOR UPDATE`, ownerID,
	).Scan(&id); err != nil {
		return 0, notFound(err)
	}
	return id, nil
}

// loadTree reads the plan, its matérias and their tópicos, all ordered by id.
func loadTree(ctx context.Context, q querier, ownerID int) (*model.Cronograma, error) {
	c := &model.Cronograma{Materias: []model.MateriaCronograma{}}
	err := q.QueryRow(ctx,
		`SELECT id, owner_id, nome, created_at FROM cronogramas WHERE owner_id = $1`, ownerID,
	).Scan(&c.ID, &c.OwnerID, &c.Nome, &c.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}

	rows, err := q.Query(ctx,
		`SELECT id, nome FROM materias_cronograma WHERE cronograma_id = $1 ORDER BY id`, c.ID,
	)
	if err != nil {
		return nil, err
	}
	index := map[int]int{}
	for rows.Next() {
		m := model.MateriaCronograma{CronogramaID: c.ID, Topicos: []model.TopicoCronograma{}}
		if err := rows.Scan(&m.ID, &m.Nome); err != nil {
			rows.Close()
			return nil, err
		}
		index[m.ID] = len(c.Materias)
		c.Materias = append(c.Materias, m)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(c.Materias) == 0 {
		return c, nil
	}

	rows, err = q.Query(ctx,
		`SELECT t.id, t.materia_id, t.nome, t.concluido
		 FROM topicos_cronograma t
		 JOIN materias_cronograma m ON m.id = t.materia_id
		 WHERE m.cronograma_id = $1
		 ORDER BY t.id`, c.ID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var t model.TopicoCronograma
		if err := rows.Scan(&t.ID, &t.MateriaID, &t.Nome, &t.Concluido); err != nil {
			return nil, err
		}
		if i, ok := index[t.MateriaID]; ok {
			c.Materias[i].Topicos = append(c.Materias[i].Topicos, t)
		}
	}
	return c, rows.Err()
}
