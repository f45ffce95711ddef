package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Activity type and title constants. Every audit entry today shares one type;
// the title discriminates system-generated change logs from user notes so a
// client can filter deterministically.
const (
	ActivityTypeNote = "NOTE"

	ActivityTitleSystemChange    = "System Change"
	ActivityTitleNote            = "Note"
	ActivityTitleLeadCreated     = "Lead Created"
	ActivityTitleLeadAssigned    = "Lead Assigned"
	ActivityTitleDocumentRemoved = "Document Removed"
)

// Activity is an immutable audit entry attached to a lead. Append-only:
// there is no update or delete path.
type Activity struct {
	ID          uuid.UUID
	LeadID      uuid.UUID
	UserID      uuid.UUID
	Type        string
	Title       string
	Description string
	CreatedAt   time.Time
}

type CreateActivityParams struct {
	LeadID      uuid.UUID
	UserID      uuid.UUID
	Type        string
	Title       string
	Description string
}

func (r *Repository) CreateActivity(ctx context.Context, params CreateActivityParams) (Activity, error) {
	var activity Activity
	err := r.pool.QueryRow(ctx, `
		INSERT INTO activities (lead_id, user_id, type, title, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, lead_id, user_id, type, title, description, created_at
	`, params.LeadID, params.UserID, params.Type, params.Title, params.Description).Scan(
		&activity.ID,
		&activity.LeadID,
		&activity.UserID,
		&activity.Type,
		&activity.Title,
		&activity.Description,
		&activity.CreatedAt,
	)
	return activity, err
}

// ListActivities returns the lead's most recent audit entries, newest first.
func (r *Repository) ListActivities(ctx context.Context, leadID uuid.UUID, limit int) ([]Activity, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, user_id, type, title, description, created_at
		FROM activities
		WHERE lead_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, leadID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	activities := make([]Activity, 0)
	for rows.Next() {
		var activity Activity
		if err := rows.Scan(
			&activity.ID,
			&activity.LeadID,
			&activity.UserID,
			&activity.Type,
			&activity.Title,
			&activity.Description,
			&activity.CreatedAt,
		); err != nil {
			return nil, err
		}
		activities = append(activities, activity)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return activities, nil
}
