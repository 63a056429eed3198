package repo

import (
	"context"
	"database/sql"

	"github.com/crucial707/hci-itam/internal/models"
)

// AuditRepo persists audit log entries.
type AuditRepo struct {
	db *sql.DB
}

func NewAuditRepo(db *sql.DB) *AuditRepo {
	return &AuditRepo{db: db}
}

// AuditFilter narrows List. Empty fields match everything.
type AuditFilter struct {
	ResourceID string
	Action     string
	Limit      int
	Offset     int
}

// Log records an audit entry. resourceID is an asset_id, or a category name
// for bulk delete and import.
func (r *AuditRepo) Log(ctx context.Context, userID int, action, resourceID, details string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_log (user_id, action, resource_id, details) VALUES ($1, $2, $3, $4)`,
		userID, action, resourceID, details,
	)
	return err
}

// List returns matching entries newest first, with the acting user's name
// when the user still exists.
func (r *AuditRepo) List(ctx context.Context, f AuditFilter) ([]models.AuditEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT a.id, a.user_id, COALESCE(u.username, ''), a.action, a.resource_id, COALESCE(a.details, ''), a.created_at
		 FROM audit_log a
		 LEFT JOIN users u ON u.id = a.user_id
		 WHERE ($1::text = '' OR a.resource_id = $1) AND ($2::text = '' OR a.action = $2)
		 ORDER BY a.created_at DESC, a.id DESC
		 LIMIT $3 OFFSET $4`,
		f.ResourceID, f.Action, f.Limit, f.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []models.AuditEntry{}
	for rows.Next() {
		var e models.AuditEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Username, &e.Action, &e.ResourceID, &e.Details, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
