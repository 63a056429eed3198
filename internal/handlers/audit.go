package handlers

import (
	"net/http"
	"slices"
	"strconv"

	"github.com/crucial707/hci-itam/internal/models"
	"github.com/crucial707/hci-itam/internal/repo"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 200
)

// AuditHandler serves the mutation history.
type AuditHandler struct {
	Repo *repo.AuditRepo
}

// ListAudit returns audit entries, newest first.
// Query: resource_id (an asset id or category), action, limit (default 50, max 200), offset.
func (h *AuditHandler) ListAudit(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := repo.AuditFilter{
		ResourceID: q.Get("resource_id"),
		Action:     q.Get("action"),
		Limit:      defaultAuditLimit,
	}
	if f.Action != "" && !slices.Contains(models.AuditActions, f.Action) {
		JSONValidationError(w, "validation failed", map[string]string{"action": "unknown"}, http.StatusBadRequest)
		return
	}
	if l := q.Get("limit"); l != "" {
		val, err := strconv.Atoi(l)
		if err != nil || val <= 0 {
			JSONValidationError(w, "validation failed", map[string]string{"limit": "must be a positive integer"}, http.StatusBadRequest)
			return
		}
		f.Limit = min(val, maxAuditLimit)
	}
	if o := q.Get("offset"); o != "" {
		val, err := strconv.Atoi(o)
		if err != nil || val < 0 {
			JSONValidationError(w, "validation failed", map[string]string{"offset": "must be zero or more"}, http.StatusBadRequest)
			return
		}
		f.Offset = val
	}

	entries, err := h.Repo.List(r.Context(), f)
	if err != nil {
		internalError(w, r, "list audit failed", err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
