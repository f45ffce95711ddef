package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"kronus_crm_backend/internal/auth"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("lead not found")

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type Lead struct {
	ID           uuid.UUID
	Name         string
	Email        *string
	Phone        string
	Property     *string
	Source       string
	Status       string
	Priority     string
	Value        *float64
	FollowUpDate *time.Time
	CreatedByID  uuid.UUID
	AssignedToID *uuid.UUID
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

const leadColumns = `id, name, email, phone, property, source, status, priority, value,
		follow_up_date, created_by_id, assigned_to_id, created_at, updated_at`

func scanLead(row pgx.Row) (Lead, error) {
	var lead Lead
	err := row.Scan(
		&lead.ID,
		&lead.Name,
		&lead.Email,
		&lead.Phone,
		&lead.Property,
		&lead.Source,
		&lead.Status,
		&lead.Priority,
		&lead.Value,
		&lead.FollowUpDate,
		&lead.CreatedByID,
		&lead.AssignedToID,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	return lead, err
}

type CreateLeadParams struct {
	Name         string
	Email        *string
	Phone        string
	Property     *string
	Source       string
	Status       string
	Priority     string
	Value        *float64
	FollowUpDate *time.Time
	CreatedByID  uuid.UUID
	AssignedToID *uuid.UUID
}

func (r *Repository) Create(ctx context.Context, params CreateLeadParams) (Lead, error) {
	return scanLead(r.pool.QueryRow(ctx, `
		INSERT INTO leads (
			name, email, phone, property, source, status, priority, value,
			follow_up_date, created_by_id, assigned_to_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+leadColumns+`
	`,
		params.Name, params.Email, params.Phone, params.Property, params.Source,
		params.Status, params.Priority, params.Value, params.FollowUpDate,
		params.CreatedByID, params.AssignedToID,
	))
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Lead, error) {
	return scanLead(r.pool.QueryRow(ctx, `
		SELECT `+leadColumns+`
		FROM leads WHERE id = $1
	`, id))
}

// UpdateLeadParams carries a partial update. Nil pointer fields are left
// unchanged; the Clear* flags explicitly null out their column.
type UpdateLeadParams struct {
	Name              *string
	Email             *string
	ClearEmail        bool
	Phone             *string
	Property          *string
	ClearProperty     bool
	Source            *string
	Status            *string
	Priority          *string
	Value             *float64
	ClearValue        bool
	FollowUpDate      *time.Time
	ClearFollowUpDate bool
	AssignedToID      *uuid.UUID
	ClearAssignedTo   bool
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, params UpdateLeadParams) (Lead, error) {
	setClauses := make([]string, 0, 12)
	args := make([]any, 0, 12)
	argIdx := 1

	addSet := func(column string, value any) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argIdx))
		args = append(args, value)
		argIdx++
	}
	addClear := func(column string) {
		setClauses = append(setClauses, column+" = NULL")
	}

	if params.Name != nil {
		addSet("name", *params.Name)
	}
	if params.ClearEmail {
		addClear("email")
	} else if params.Email != nil {
		addSet("email", *params.Email)
	}
	if params.Phone != nil {
		addSet("phone", *params.Phone)
	}
	if params.ClearProperty {
		addClear("property")
	} else if params.Property != nil {
		addSet("property", *params.Property)
	}
	if params.Source != nil {
		addSet("source", *params.Source)
	}
	if params.Status != nil {
		addSet("status", *params.Status)
	}
	if params.Priority != nil {
		addSet("priority", *params.Priority)
	}
	if params.ClearValue {
		addClear("value")
	} else if params.Value != nil {
		addSet("value", *params.Value)
	}
	if params.ClearFollowUpDate {
		addClear("follow_up_date")
	} else if params.FollowUpDate != nil {
		addSet("follow_up_date", *params.FollowUpDate)
	}
	if params.ClearAssignedTo {
		addClear("assigned_to_id")
	} else if params.AssignedToID != nil {
		addSet("assigned_to_id", *params.AssignedToID)
	}

	if len(setClauses) == 0 {
		return r.GetByID(ctx, id)
	}

	setClauses = append(setClauses, "updated_at = now()")
	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE leads SET %s
		WHERE id = $%d
		RETURNING `+leadColumns+`
	`, strings.Join(setClauses, ", "), argIdx)

	return scanLead(r.pool.QueryRow(ctx, query, args...))
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type ListLeadsParams struct {
	Scope        auth.LeadScope
	Status       *string
	Priority     *string
	Source       *string
	AssignedToID *uuid.UUID
	Search       string
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}

// sortColumns whitelists sortable columns; anything else falls back to created_at.
var sortColumns = map[string]string{
	"createdAt":    "created_at",
	"updatedAt":    "updated_at",
	"name":         "name",
	"status":       "status",
	"priority":     "priority",
	"value":        "value",
	"followUpDate": "follow_up_date",
}

// scopeCondition renders the visibility predicate for a non-elevated caller:
// leads the caller created or is assigned to.
func scopeCondition(scope auth.LeadScope, argIdx *int) (string, []any) {
	if scope.All {
		return "", nil
	}
	cond := fmt.Sprintf("(created_by_id = $%d OR assigned_to_id = $%d)", *argIdx, *argIdx)
	*argIdx++
	return cond, []any{scope.UserID}
}

func buildLeadListWhere(params ListLeadsParams) (string, []any) {
	conditions := make([]string, 0, 6)
	args := make([]any, 0, 6)
	argIdx := 1

	if cond, scopeArgs := scopeCondition(params.Scope, &argIdx); cond != "" {
		conditions = append(conditions, cond)
		args = append(args, scopeArgs...)
	}

	addEq := func(column string, value any) {
		conditions = append(conditions, fmt.Sprintf("%s = $%d", column, argIdx))
		args = append(args, value)
		argIdx++
	}

	if params.Status != nil {
		addEq("status", *params.Status)
	}
	if params.Priority != nil {
		addEq("priority", *params.Priority)
	}
	if params.Source != nil {
		addEq("source", *params.Source)
	}
	if params.AssignedToID != nil {
		addEq("assigned_to_id", *params.AssignedToID)
	}
	if search := strings.TrimSpace(params.Search); search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(name ILIKE $%d OR phone ILIKE $%d OR email ILIKE $%d OR property ILIKE $%d)",
			argIdx, argIdx, argIdx, argIdx,
		))
		args = append(args, "%"+search+"%")
		argIdx++
	}

	if len(conditions) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

func (r *Repository) List(ctx context.Context, params ListLeadsParams) ([]Lead, int, error) {
	where, args := buildLeadListWhere(params)

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT count(*) FROM leads "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sortColumn, ok := sortColumns[params.SortBy]
	if !ok {
		sortColumn = "created_at"
	}
	sortDir := "DESC"
	if strings.EqualFold(params.SortOrder, "asc") {
		sortDir = "ASC"
	}

	offset := (params.Page - 1) * params.PageSize
	listArgs := append(args, params.PageSize, offset)
	query := fmt.Sprintf(`
		SELECT `+leadColumns+`
		FROM leads %s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d
	`, where, sortColumn, sortDir, len(args)+1, len(args)+2)

	rows, err := r.pool.Query(ctx, query, listArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	leads := make([]Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, 0, err
		}
		leads = append(leads, lead)
	}
	if rows.Err() != nil {
		return nil, 0, rows.Err()
	}

	return leads, total, nil
}

// DueLead is the slim projection the follow-up sweep works with.
type DueLead struct {
	ID           uuid.UUID
	Name         string
	Property     *string
	Phone        string
	Status       string
	FollowUpDate time.Time
	AssignedToID uuid.UUID
}

// dueFollowUpsQuery selects leads due in [from, to) that still have an
// assignee and are not closed. Terminal leads never re-enter the sweep.
const dueFollowUpsQuery = `
	SELECT id, name, property, phone, status, follow_up_date, assigned_to_id
	FROM leads
	WHERE follow_up_date >= $1
	  AND follow_up_date < $2
	  AND assigned_to_id IS NOT NULL
	  AND status NOT IN ('WON', 'LOST')
	ORDER BY assigned_to_id, follow_up_date ASC
`

func (r *Repository) ListDueFollowUps(ctx context.Context, from, to time.Time) ([]DueLead, error) {
	rows, err := r.pool.Query(ctx, dueFollowUpsQuery, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leads := make([]DueLead, 0)
	for rows.Next() {
		var lead DueLead
		if err := rows.Scan(
			&lead.ID,
			&lead.Name,
			&lead.Property,
			&lead.Phone,
			&lead.Status,
			&lead.FollowUpDate,
			&lead.AssignedToID,
		); err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return leads, nil
}
