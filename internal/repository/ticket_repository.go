package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ticketflow/backend/internal/domain"
)

// ticketKeyLockID is the advisory lock serializing ticket key allocation.
// Two concurrent creates must never receive the same key.
const ticketKeyLockID = int64(0x7469636b6574)

// TicketFilter captures list query parameters. ReporterID and AccessUserID
// carry the authorization-gate ownership pre-filter.
type TicketFilter struct {
	Status       *domain.TicketStatus
	Priority     *domain.TicketPriority
	Department   *string
	AssigneeID   *string
	ProjectID    *string
	ReporterID   *string
	AccessUserID *string
	Limit        int
	Offset       int
}

// TicketStats aggregates counts for the dashboard.
type TicketStats struct {
	Total        int
	ByStatus     map[domain.TicketStatus]int
	ByPriority   map[domain.TicketPriority]int
	ByDepartment map[string]int
}

// TicketRepository encapsulates ticket persistence. Create and Update apply
// the full mutation (ticket row, assignee set, history entries) in a single
// transaction so readers see either all of it or none of it.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket, created *domain.TicketHistory) error
	Update(ctx context.Context, ticket *domain.Ticket, entries []domain.TicketHistory) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	GetByKey(ctx context.Context, key string) (*domain.Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	Stats(ctx context.Context) (*TicketStats, error)
}

type ticketRepository struct {
	pool      *pgxpool.Pool
	keyPrefix string
	keyBase   int
}

// NewTicketRepository instantiates the repository. keyPrefix and keyBase
// control human-readable key generation (e.g. TSK-1001).
func NewTicketRepository(pool *pgxpool.Pool, keyPrefix string, keyBase int) TicketRepository {
	if keyPrefix == "" {
		keyPrefix = "TSK"
	}
	if keyBase <= 0 {
		keyBase = 1001
	}
	return &ticketRepository{pool: pool, keyPrefix: keyPrefix, keyBase: keyBase}
}

const ticketColumns = "id, key, title, description, status, priority, department, reporter_id, project_id, created_at, updated_at"

// Create allocates the next key and inserts the ticket, its assignee set and
// the "created" history entry atomically. Key allocation takes the highest
// existing numeric suffix plus one, serialized by an advisory lock so numbers
// are never reused even after deletions.
func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket, created *domain.TicketHistory) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, ticketKeyLockID); err != nil {
			return err
		}

		var next int
		err := tx.QueryRow(ctx, `
            SELECT COALESCE(MAX(CAST(SUBSTRING(key FROM '[0-9]+$') AS BIGINT)), $1 - 1) + 1
            FROM tickets WHERE key LIKE $2`,
			r.keyBase, r.keyPrefix+"-%",
		).Scan(&next)
		if err != nil {
			return err
		}
		ticket.Key = fmt.Sprintf("%s-%d", r.keyPrefix, next)

		const insert = `
            INSERT INTO tickets (key, title, description, status, priority, department, reporter_id, project_id)
            VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
            RETURNING id, created_at, updated_at`
		if err := tx.QueryRow(ctx, insert,
			ticket.Key,
			ticket.Title,
			ticket.Description,
			ticket.Status,
			ticket.Priority,
			ticket.Department,
			ticket.ReporterID,
			ticket.ProjectID,
		).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt); err != nil {
			return err
		}

		if err := replaceAssignees(ctx, tx, ticket.ID, ticket.AssigneeIDs); err != nil {
			return err
		}

		if created != nil {
			created.TicketID = ticket.ID
			if err := insertHistory(ctx, tx, created); err != nil {
				return err
			}
		}
		return nil
	})
}

// Update rewrites the mutable ticket fields, replaces the assignee set and
// appends the supplied history entries in one transaction. The reporter
// column is deliberately absent: it is immutable.
func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket, entries []domain.TicketHistory) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		const query = `
            UPDATE tickets SET title=$1, description=$2, status=$3, priority=$4, department=$5, project_id=$6, updated_at=NOW()
            WHERE id=$7
            RETURNING updated_at`
		if err := tx.QueryRow(ctx, query,
			ticket.Title,
			ticket.Description,
			ticket.Status,
			ticket.Priority,
			ticket.Department,
			ticket.ProjectID,
			ticket.ID,
		).Scan(&ticket.UpdatedAt); err != nil {
			return err
		}

		if err := replaceAssignees(ctx, tx, ticket.ID, ticket.AssigneeIDs); err != nil {
			return err
		}

		for i := range entries {
			entries[i].TicketID = ticket.ID
			if err := insertHistory(ctx, tx, &entries[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *ticketRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	return r.fetchSingle(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id=$1`, id)
}

func (r *ticketRepository) GetByKey(ctx context.Context, key string) (*domain.Ticket, error) {
	return r.fetchSingle(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE key=$1`, key)
}

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&ticket.ID,
		&ticket.Key,
		&ticket.Title,
		&ticket.Description,
		&ticket.Status,
		&ticket.Priority,
		&ticket.Department,
		&ticket.ReporterID,
		&ticket.ProjectID,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := r.loadAssignees(ctx, &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	base := `SELECT ` + ticketColumns + ` FROM tickets`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.Priority != nil {
		args = append(args, *filter.Priority)
		clauses = append(clauses, fmt.Sprintf("priority=$%d", len(args)))
	}
	if filter.Department != nil {
		args = append(args, *filter.Department)
		clauses = append(clauses, fmt.Sprintf("department=$%d", len(args)))
	}
	if filter.ProjectID != nil {
		args = append(args, *filter.ProjectID)
		clauses = append(clauses, fmt.Sprintf("project_id=$%d", len(args)))
	}
	if filter.AssigneeID != nil {
		args = append(args, *filter.AssigneeID)
		clauses = append(clauses, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM ticket_assignees ta WHERE ta.ticket_id=tickets.id AND ta.user_id=$%d)", len(args)))
	}
	if filter.ReporterID != nil {
		args = append(args, *filter.ReporterID)
		clauses = append(clauses, fmt.Sprintf("reporter_id=$%d", len(args)))
	}
	if filter.AccessUserID != nil {
		args = append(args, *filter.AccessUserID)
		n := len(args)
		clauses = append(clauses, fmt.Sprintf(
			"(reporter_id=$%d OR EXISTS (SELECT 1 FROM ticket_assignees ta WHERE ta.ticket_id=tickets.id AND ta.user_id=$%d))", n, n))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.Key,
			&ticket.Title,
			&ticket.Description,
			&ticket.Status,
			&ticket.Priority,
			&ticket.Department,
			&ticket.ReporterID,
			&ticket.ProjectID,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range result {
		if err := r.loadAssignees(ctx, &result[i]); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (r *ticketRepository) Stats(ctx context.Context) (*TicketStats, error) {
	stats := &TicketStats{
		ByStatus:     make(map[domain.TicketStatus]int),
		ByPriority:   make(map[domain.TicketPriority]int),
		ByDepartment: make(map[string]int),
	}

	rows, err := r.pool.Query(ctx, `
        SELECT status, priority, COALESCE(NULLIF(department, ''), 'Unassigned'), COUNT(*)
        FROM tickets GROUP BY 1, 2, 3`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			status     domain.TicketStatus
			priority   domain.TicketPriority
			department string
			count      int
		)
		if err := rows.Scan(&status, &priority, &department, &count); err != nil {
			return nil, err
		}
		stats.Total += count
		stats.ByStatus[status] += count
		stats.ByPriority[priority] += count
		stats.ByDepartment[department] += count
	}
	return stats, rows.Err()
}

func (r *ticketRepository) loadAssignees(ctx context.Context, ticket *domain.Ticket) error {
	rows, err := r.pool.Query(ctx,
		`SELECT user_id FROM ticket_assignees WHERE ticket_id=$1 ORDER BY user_id`, ticket.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	ticket.AssigneeIDs = nil
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return err
		}
		ticket.AssigneeIDs = append(ticket.AssigneeIDs, id)
	}
	return rows.Err()
}

func replaceAssignees(ctx context.Context, tx pgx.Tx, ticketID string, assigneeIDs []string) error {
	if _, err := tx.Exec(ctx, `DELETE FROM ticket_assignees WHERE ticket_id=$1`, ticketID); err != nil {
		return err
	}
	for _, userID := range assigneeIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO ticket_assignees (ticket_id, user_id) VALUES ($1,$2) ON CONFLICT DO NOTHING`,
			ticketID, userID); err != nil {
			return err
		}
	}
	return nil
}
