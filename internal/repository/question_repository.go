package repository

import (
	"context"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/seshat-edu/seshat-backend/internal/model"
)

// QuestionRepository handles question data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

const questionColumns = `id, subject, text, options, correct_answer, source, year, created_at`

// Create inserts a new question.
func (r *QuestionRepository) Create(ctx context.Context, q *model.Question) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO questions (subject, text, options, correct_answer, source, year)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		q.Subject, q.Text, q.Options, q.CorrectAnswer, q.Source, q.Year,
	).Scan(&q.ID, &q.CreatedAt)
}

// GetByID retrieves a question including its correct answer.
func (r *QuestionRepository) GetByID(ctx context.Context, id int) (*model.Question, error) {
	q := &model.Question{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE id = $1`, id,
	).Scan(&q.ID, &q.Subject, &q.Text, &q.Options, &q.CorrectAnswer, &q.Source, &q.Year, &q.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return q, nil
}

// ExistsByText reports whether a question with exactly this text is stored.
func (r *QuestionRepository) ExistsByText(ctx context.Context, text string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM questions WHERE md5(text) = md5($1) AND text = $1)`, text,
	).Scan(&exists)
	return exists, err
}

// Sample returns up to f.Limit random questions matching the filter.
func (r *QuestionRepository) Sample(ctx context.Context, f model.QuestionFilter) ([]model.Question, error) {
	conds := []string{`subject = $1`}
	args := []interface{}{f.Subject}

	if f.Source != nil {
		args = append(args, *f.Source)
		conds = append(conds, `source = $`+strconv.Itoa(len(args)))
	}
	if f.Year != nil {
		args = append(args, *f.Year)
		conds = append(conds, `year = $`+strconv.Itoa(len(args)))
	}
	args = append(args, f.Limit)

	query := `SELECT ` + questionColumns + ` FROM questions WHERE ` + strings.Join(conds, ` AND `) +
		` ORDER BY RANDOM() LIMIT $` + strconv.Itoa(len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.Subject, &q.Text, &q.Options, &q.CorrectAnswer, &q.Source, &q.Year, &q.CreatedAt); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}
