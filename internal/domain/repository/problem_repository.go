package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ocpe/internal/common"
	"ocpe/internal/domain/model"
	"ocpe/internal/platform/database"

	"github.com/jmoiron/sqlx"
)

type ProblemRepository interface {
	// Create inserts p and sets p.ID to the id assigned by the store.
	Create(ctx context.Context, p *model.Problem) error
	FindByID(ctx context.Context, id int64) (*model.Problem, error)
	// List returns every problem ordered by id ascending.
	List(ctx context.Context) ([]model.Problem, error)
}

type sqlProblemRepository struct {
	db *sqlx.DB
}

func NewSQLProblemRepository(db *sqlx.DB) ProblemRepository {
	return &sqlProblemRepository{db: db}
}

const problemColumns = `id, code, name, title, description, test_input, test_output, score, created_at`

func (r *sqlProblemRepository) Create(ctx context.Context, p *model.Problem) error {
	query := `INSERT INTO problems (code, name, title, description, test_input, test_output, score, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING id`
	err := r.db.QueryRowxContext(ctx, query,
		p.Code, p.Name, p.Title, p.Description, p.TestInput, p.TestOutput, p.Score, p.CreatedAt,
	).Scan(&p.ID)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("problem with code %q already exists: %w", p.Code, common.ErrConflict)
		}
		return fmt.Errorf("sqlProblemRepository.Create: %w", err)
	}
	return nil
}

func (r *sqlProblemRepository) FindByID(ctx context.Context, id int64) (*model.Problem, error) {
	p := &model.Problem{}
	err := r.db.GetContext(ctx, p, `SELECT `+problemColumns+` FROM problems WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("sqlProblemRepository.FindByID: %w", err)
	}
	return p, nil
}

func (r *sqlProblemRepository) List(ctx context.Context) ([]model.Problem, error) {
	problems := []model.Problem{}
	if err := r.db.SelectContext(ctx, &problems, `SELECT `+problemColumns+` FROM problems ORDER BY id ASC`); err != nil {
		return nil, fmt.Errorf("sqlProblemRepository.List: %w", err)
	}
	return problems, nil
}
