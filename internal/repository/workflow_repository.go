package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ticketflow/backend/internal/domain"
)

// WorkflowRepository persists workflow automation rules. Conditions and
// actions round-trip as JSONB.
type WorkflowRepository interface {
	Create(ctx context.Context, rule *domain.WorkflowRule) error
	Update(ctx context.Context, rule *domain.WorkflowRule) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.WorkflowRule, error)
	List(ctx context.Context) ([]domain.WorkflowRule, error)
	ListActiveByTrigger(ctx context.Context, trigger domain.WorkflowTrigger) ([]domain.WorkflowRule, error)
}

type workflowRepository struct {
	pool *pgxpool.Pool
}

// NewWorkflowRepository builds the repository.
func NewWorkflowRepository(pool *pgxpool.Pool) WorkflowRepository {
	return &workflowRepository{pool: pool}
}

const workflowColumns = "id, name, description, trigger_type, conditions, actions, active, created_at, updated_at"

func (r *workflowRepository) Create(ctx context.Context, rule *domain.WorkflowRule) error {
	const query = `
        INSERT INTO workflow_rules (name, description, trigger_type, conditions, actions, active)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		rule.Name,
		rule.Description,
		rule.Trigger,
		rule.Conditions,
		rule.Actions,
		rule.Active,
	).Scan(&rule.ID, &rule.CreatedAt, &rule.UpdatedAt)
}

func (r *workflowRepository) Update(ctx context.Context, rule *domain.WorkflowRule) error {
	const query = `
        UPDATE workflow_rules SET name=$1, description=$2, trigger_type=$3, conditions=$4, actions=$5, active=$6, updated_at=NOW()
        WHERE id=$7`
	cmd, err := r.pool.Exec(ctx, query,
		rule.Name,
		rule.Description,
		rule.Trigger,
		rule.Conditions,
		rule.Actions,
		rule.Active,
		rule.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *workflowRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM workflow_rules WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *workflowRepository) GetByID(ctx context.Context, id string) (*domain.WorkflowRule, error) {
	var rule domain.WorkflowRule
	if err := r.pool.QueryRow(ctx,
		`SELECT `+workflowColumns+` FROM workflow_rules WHERE id=$1`, id,
	).Scan(
		&rule.ID,
		&rule.Name,
		&rule.Description,
		&rule.Trigger,
		&rule.Conditions,
		&rule.Actions,
		&rule.Active,
		&rule.CreatedAt,
		&rule.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *workflowRepository) List(ctx context.Context) ([]domain.WorkflowRule, error) {
	return r.list(ctx, `SELECT `+workflowColumns+` FROM workflow_rules ORDER BY created_at ASC`)
}

func (r *workflowRepository) ListActiveByTrigger(ctx context.Context, trigger domain.WorkflowTrigger) ([]domain.WorkflowRule, error) {
	return r.list(ctx,
		`SELECT `+workflowColumns+` FROM workflow_rules WHERE active AND trigger_type=$1 ORDER BY created_at ASC`,
		trigger)
}

func (r *workflowRepository) list(ctx context.Context, query string, args ...any) ([]domain.WorkflowRule, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.WorkflowRule
	for rows.Next() {
		var rule domain.WorkflowRule
		if err := rows.Scan(
			&rule.ID,
			&rule.Name,
			&rule.Description,
			&rule.Trigger,
			&rule.Conditions,
			&rule.Actions,
			&rule.Active,
			&rule.CreatedAt,
			&rule.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, rule)
	}
	return result, rows.Err()
}
