package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/crucial707/hci-itam/internal/client"
	"github.com/crucial707/hci-itam/internal/csvio"
	"github.com/crucial707/hci-itam/internal/ident"
	"github.com/crucial707/hci-itam/internal/metrics"
	"github.com/crucial707/hci-itam/internal/middleware"
	"github.com/crucial707/hci-itam/internal/models"
	"github.com/crucial707/hci-itam/internal/repo"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// DefaultMaxImportBytes bounds an uploaded CSV when MaxImportBytes is unset.
const DefaultMaxImportBytes = 10 << 20

type AssetHandler struct {
	Repo      *repo.AssetRepo
	AuditRepo *repo.AuditRepo
	// MaxImportBytes limits the multipart body of an import.
	MaxImportBytes int64
}

// categoryParam resolves ?category= and writes a 400 when it is missing or unknown.
func categoryParam(w http.ResponseWriter, r *http.Request) (models.Category, bool) {
	name := r.URL.Query().Get("category")
	if name == "" {
		JSONError(w, "category is required", http.StatusBadRequest)
		return models.Category{}, false
	}
	c, err := models.LookupCategory(name)
	if err != nil {
		JSONError(w, err.Error(), http.StatusBadRequest)
		return models.Category{}, false
	}
	return c, true
}

// checkRecord normalizes rec for its category: default status, known category,
// status allowed for the category, foreign extension columns dropped.
func checkRecord(w http.ResponseWriter, rec *models.Record) (models.Category, bool) {
	if rec.Status == "" {
		rec.Status = models.StatusAvailable
	}
	if !validateStruct(w, rec) {
		return models.Category{}, false
	}
	c, err := models.LookupCategory(rec.Category)
	if err != nil {
		JSONValidationError(w, "validation failed", map[string]string{"category": "unknown"}, http.StatusBadRequest)
		return models.Category{}, false
	}
	if !rec.Status.ValidFor(c) {
		JSONValidationError(w, "validation failed",
			map[string]string{"status": fmt.Sprintf("%s is not valid for %s", rec.Status, c.Name)}, http.StatusBadRequest)
		return models.Category{}, false
	}
	rec.Category = c.Name
	if !c.Has(models.ExtOSName) {
		rec.OSName = ""
	}
	if !c.Has(models.ExtOSVersion) {
		rec.OSVersion = ""
	}
	if !c.Has(models.ExtFirmwareVersion) {
		rec.FirmwareVersion = ""
	}
	if !c.Has(models.ExtIPAddress) {
		rec.IPAddress = ""
	}
	return c, true
}

func (h *AssetHandler) audit(r *http.Request, action, resourceID, details string) {
	metrics.IncMutation(action)
	if h.AuditRepo == nil {
		return
	}
	if err := h.AuditRepo.Log(r.Context(), middleware.UserID(r.Context()), action, resourceID, details); err != nil {
		slog.Warn("audit log failed",
			"request_id", chimw.GetReqID(r.Context()),
			"action", action,
			"resource_id", resourceID,
			"error", err)
	}
}

func internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	slog.Error(msg, "request_id", chimw.GetReqID(r.Context()), "error", err)
	JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
}

//
// ==========================
// List Assets
// ==========================
//

func (h *AssetHandler) ListAssets(w http.ResponseWriter, r *http.Request) {
	c, ok := categoryParam(w, r)
	if !ok {
		return
	}
	recs, err := h.Repo.ListByCategory(r.Context(), c.Name)
	if err != nil {
		internalError(w, r, "list assets failed", err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

//
// ==========================
// Get Asset / Summary
// ==========================
//

func (h *AssetHandler) GetAsset(w http.ResponseWriter, r *http.Request) {
	rec, err := h.Repo.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, repo.ErrAssetNotFound) {
		JSONError(w, "asset not found", http.StatusNotFound)
		return
	}
	if err != nil {
		internalError(w, r, "get asset failed", err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// Summary counts the records of ?category= by status, type and department.
func (h *AssetHandler) Summary(w http.ResponseWriter, r *http.Request) {
	c, ok := categoryParam(w, r)
	if !ok {
		return
	}
	s, err := h.Repo.Summary(r.Context(), c)
	if err != nil {
		internalError(w, r, "asset summary failed", err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

//
// ==========================
// Create Asset
// ==========================
//

func (h *AssetHandler) CreateAsset(w http.ResponseWriter, r *http.Request) {
	var rec models.Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if _, ok := checkRecord(w, &rec); !ok {
		return
	}

	created, err := h.Repo.Create(r.Context(), rec)
	if err != nil {
		if repo.IsUniqueViolation(err) {
			JSONError(w, "asset id already exists", http.StatusConflict)
			return
		}
		internalError(w, r, "create asset failed", err)
		return
	}
	h.audit(r, models.AuditCreate, created.AssetID, "")
	writeJSON(w, http.StatusCreated, created)
}

//
// ==========================
// Update Asset
// ==========================
//

func (h *AssetHandler) UpdateAsset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var rec models.Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	rec.AssetID = id
	if rec.Category == "" {
		existing, err := h.Repo.Get(r.Context(), id)
		if errors.Is(err, repo.ErrAssetNotFound) {
			JSONError(w, "asset not found", http.StatusNotFound)
			return
		}
		if err != nil {
			internalError(w, r, "load asset failed", err)
			return
		}
		rec.Category = existing.Category
	}
	if _, ok := checkRecord(w, &rec); !ok {
		return
	}

	updated, err := h.Repo.Update(r.Context(), id, rec)
	if errors.Is(err, repo.ErrAssetNotFound) {
		JSONError(w, "asset not found", http.StatusNotFound)
		return
	}
	if err != nil {
		internalError(w, r, "update asset failed", err)
		return
	}
	h.audit(r, models.AuditUpdate, id, "")
	writeJSON(w, http.StatusOK, updated)
}

//
// ==========================
// Delete Asset
// ==========================
//

func (h *AssetHandler) DeleteAsset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	err := h.Repo.Delete(r.Context(), id)
	if errors.Is(err, repo.ErrAssetNotFound) {
		JSONError(w, "asset not found", http.StatusNotFound)
		return
	}
	if err != nil {
		internalError(w, r, "delete asset failed", err)
		return
	}
	h.audit(r, models.AuditDelete, id, "")
	w.WriteHeader(http.StatusNoContent)
}

// BulkDeleteAssets removes every record of ?category=.
func (h *AssetHandler) BulkDeleteAssets(w http.ResponseWriter, r *http.Request) {
	c, ok := categoryParam(w, r)
	if !ok {
		return
	}
	n, err := h.Repo.DeleteByCategory(r.Context(), c.Name)
	if err != nil {
		internalError(w, r, "bulk delete failed", err)
		return
	}
	h.audit(r, models.AuditBulkDelete, c.Name, fmt.Sprintf("deleted=%d", n))
	writeJSON(w, http.StatusOK, map[string]int{"deleted_count": n})
}

//
// ==========================
// Import / Template
// ==========================
//

// ImportAssets reads the multipart "file" field as CSV in the category's schema.
// Rows without an Asset ID get the next free identifier; rows whose Asset ID is
// already stored are skipped.
func (h *AssetHandler) ImportAssets(w http.ResponseWriter, r *http.Request) {
	c, ok := categoryParam(w, r)
	if !ok {
		return
	}
	limit := h.MaxImportBytes
	if limit <= 0 {
		limit = DefaultMaxImportBytes
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			JSONError(w, "import file too large", http.StatusRequestEntityTooLarge)
			return
		}
		JSONError(w, "invalid multipart body", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		JSONError(w, "file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()
	if !strings.EqualFold(filepath.Ext(header.Filename), csvio.Extension) {
		JSONError(w, "only .csv files can be imported", http.StatusBadRequest)
		return
	}

	var (
		assets []models.Asset
		lines  []int
	)
	err = csvio.ReadEach(file, c, func(line int, a models.Asset) error {
		assets = append(assets, a)
		lines = append(lines, line)
		return nil
	})
	if err != nil {
		JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	known, err := h.Repo.IDs(r.Context(), c.Name)
	if err != nil {
		internalError(w, r, "load asset ids failed", err)
		return
	}
	for _, a := range assets {
		if a.ID != "" {
			known = append(known, a.ID)
		}
	}
	recs := make([]models.Record, len(assets))
	for i, a := range assets {
		if a.ID == "" {
			a.ID = ident.Allocate(c, known)
			known = append(known, a.ID)
		}
		recs[i] = client.FromAsset(c, a)
		// Rows get the same field rules as POST /assets.
		if err := validate.Struct(recs[i]); err != nil {
			JSONValidationError(w, fmt.Sprintf("line %d: validation failed", lines[i]), validationFields(err), http.StatusBadRequest)
			return
		}
	}

	imported, skipped, err := h.Repo.Import(r.Context(), recs)
	if err != nil {
		internalError(w, r, "import failed", err)
		return
	}
	metrics.AddImportRows(imported, skipped)
	h.audit(r, models.AuditImport, c.Name, fmt.Sprintf("file=%s imported=%d skipped=%d", header.Filename, imported, skipped))
	writeJSON(w, http.StatusOK, map[string]int{"imported_count": imported, "skipped_count": skipped})
}

// Template serves the header-only CSV for ?category=.
func (h *AssetHandler) Template(w http.ResponseWriter, r *http.Request) {
	c, ok := categoryParam(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s_template.csv"`, c.Name))
	w.Write(csvio.Template(c))
}
