package models

import "time"

// Audit actions.
const (
	AuditCreate     = "create"
	AuditUpdate     = "update"
	AuditDelete     = "delete"
	AuditBulkDelete = "bulk_delete"
	AuditImport     = "import"
)

// AuditActions lists every action the store records.
var AuditActions = []string{AuditCreate, AuditUpdate, AuditDelete, AuditBulkDelete, AuditImport}

// AuditEntry represents one audit log row. ResourceID is the asset identifier,
// or the category name for bulk operations.
type AuditEntry struct {
	ID         int       `json:"id"`
	UserID     int       `json:"user_id"`
	Username   string    `json:"username,omitempty"`
	Action     string    `json:"action"`
	ResourceID string    `json:"resource_id"`
	Details    string    `json:"details,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
