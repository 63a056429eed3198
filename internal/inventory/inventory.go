// Package inventory drives one category's list: it fetches from the store,
// reconciles ordering and the update highlight, narrows by filter criteria and
// submits edits.
//
// The store is the only source of truth. Edits are never applied locally; a
// successful mutation is followed by a fresh List, and the displayed list only
// changes when that List completes. Overlapping refreshes are not cancelled:
// whichever completes last is what the inventory holds.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/crucial707/hci-itam/internal/client"
	"github.com/crucial707/hci-itam/internal/csvio"
	"github.com/crucial707/hci-itam/internal/filter"
	"github.com/crucial707/hci-itam/internal/ident"
	"github.com/crucial707/hci-itam/internal/models"
	"github.com/crucial707/hci-itam/internal/reconcile"
)

// ErrUnsupportedFile is returned by Import for files without the .csv extension.
var ErrUnsupportedFile = errors.New("only .csv files can be imported")

// ErrNotFound is returned when an identifier is not in the last fetched list.
var ErrNotFound = errors.New("asset not found")

// Options configures an Inventory.
type Options struct {
	// HighlightWindow defaults to reconcile.DefaultWindow.
	HighlightWindow time.Duration
	Clock           reconcile.Clock
	Logger          *slog.Logger
	// OnHighlightExpired is called when the update highlight times out, so the
	// caller can re-render in canonical order.
	OnHighlightExpired func(id string)
}

// Inventory holds the reconciled list of one category. It is safe for concurrent use.
type Inventory struct {
	store    client.Store
	category models.Category
	rec      *reconcile.Reconciler
	log      *slog.Logger

	mu      sync.Mutex
	fetched []models.Asset
	view    reconcile.View
	loaded  bool
}

// New returns an empty inventory for category; call Refresh to load it.
func New(store client.Store, category models.Category, opts Options) *Inventory {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("category", category.Name)
	return &Inventory{
		store:    store,
		category: category,
		log:      logger,
		rec: reconcile.New(reconcile.Options{
			Window:   opts.HighlightWindow,
			Clock:    opts.Clock,
			Logger:   logger,
			OnExpire: opts.OnHighlightExpired,
		}),
	}
}

// Category returns the inventory's category.
func (inv *Inventory) Category() models.Category {
	return inv.category
}

// Refresh fetches the category from the store and reconciles it. On failure the
// held list is left as it was.
func (inv *Inventory) Refresh(ctx context.Context) (reconcile.View, error) {
	raw, err := inv.store.List(ctx, inv.category.Name)
	if err != nil {
		inv.log.Warn("refresh failed", "error", err)
		return reconcile.View{}, fmt.Errorf("list %s: %w", inv.category.Name, err)
	}
	assets := client.ToAssets(raw)

	inv.mu.Lock()
	defer inv.mu.Unlock()
	inv.fetched = assets
	inv.loaded = true
	inv.view = inv.rec.Reconcile(assets)
	inv.log.Debug("refreshed", "count", len(assets), "highlight", inv.view.Highlight.ID)
	return inv.view, nil
}

// Snapshot returns the list as of the last successful refresh, re-reconciled so
// an expired highlight no longer reorders it.
func (inv *Inventory) Snapshot() reconcile.View {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	inv.view = inv.rec.Reconcile(inv.fetched)
	return inv.view
}

// Loaded reports whether at least one refresh has succeeded.
func (inv *Inventory) Loaded() bool {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	return inv.loaded
}

// Get returns the asset with identifier id from the last refresh.
func (inv *Inventory) Get(id string) (models.Asset, error) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	for _, a := range inv.fetched {
		if a.ID == id {
			return a, nil
		}
	}
	return models.Asset{}, ErrNotFound
}

// View returns the reconciled list narrowed by c.
func (inv *Inventory) View(c filter.Criteria) []models.Asset {
	return filter.Apply(inv.Snapshot().Assets, c)
}

// Export writes exactly the rows View(c) returns, in the same order.
func (inv *Inventory) Export(w io.Writer, c filter.Criteria) (int, error) {
	rows := inv.View(c)
	if err := csvio.Write(w, inv.category, rows); err != nil {
		return 0, fmt.Errorf("export %s: %w", inv.category.Name, err)
	}
	return len(rows), nil
}

// Highlight returns the live update highlight.
func (inv *Inventory) Highlight() reconcile.Highlight {
	return inv.rec.Current()
}

// NextID returns the identifier Create would mint right now.
func (inv *Inventory) NextID() string {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	return ident.Allocate(inv.category, models.AssetIDs(inv.fetched))
}

// Create mints an identifier from the last fetched list, submits draft and
// re-fetches. draft.ID is ignored.
//
// Allocation is not coordinated with the store: two clients creating from the
// same snapshot compute the same identifier and the second insert is rejected
// by the store.
func (inv *Inventory) Create(ctx context.Context, draft models.Asset) (models.Asset, error) {
	if err := inv.validate(draft); err != nil {
		return models.Asset{}, err
	}
	draft.ID = inv.NextID()

	out, err := inv.store.Create(ctx, client.FromAsset(inv.category, draft))
	if err != nil {
		inv.log.Warn("create failed", "asset_id", draft.ID, "error", err)
		return models.Asset{}, fmt.Errorf("create %s: %w", draft.ID, err)
	}
	created := client.ToAsset(out)
	inv.log.Info("asset created", "asset_id", created.ID)
	inv.refreshAfter(ctx, "create")
	return created, nil
}

// Update submits a for identifier id. On success the record is highlighted and
// the list re-fetched; on failure neither the list nor the highlight changes.
func (inv *Inventory) Update(ctx context.Context, id string, a models.Asset) (models.Asset, error) {
	if err := inv.validate(a); err != nil {
		return models.Asset{}, err
	}
	a.ID = id

	out, err := inv.store.Update(ctx, id, client.FromAsset(inv.category, a))
	if err != nil {
		inv.log.Warn("update failed", "asset_id", id, "error", err)
		return models.Asset{}, fmt.Errorf("update %s: %w", id, err)
	}
	updated := client.ToAsset(out)
	inv.rec.Highlight(updated.ID)
	inv.log.Info("asset updated", "asset_id", updated.ID)
	inv.refreshAfter(ctx, "update")
	return updated, nil
}

// Delete removes id. A highlight on id is cancelled.
func (inv *Inventory) Delete(ctx context.Context, id string) error {
	if err := inv.store.Delete(ctx, id); err != nil {
		inv.log.Warn("delete failed", "asset_id", id, "error", err)
		return fmt.Errorf("delete %s: %w", id, err)
	}
	inv.rec.Forget(id)
	inv.log.Info("asset deleted", "asset_id", id)
	inv.refreshAfter(ctx, "delete")
	return nil
}

// BulkDelete removes every record of the category.
func (inv *Inventory) BulkDelete(ctx context.Context) (client.BulkDeleteResult, error) {
	res, err := inv.store.BulkDelete(ctx, inv.category.Name)
	if err != nil {
		inv.log.Warn("bulk delete failed", "error", err)
		return client.BulkDeleteResult{}, fmt.Errorf("bulk delete %s: %w", inv.category.Name, err)
	}
	inv.rec.Clear()
	inv.log.Info("category cleared", "deleted", res.DeletedCount)
	inv.refreshAfter(ctx, "bulk delete")
	return res, nil
}

// Import uploads the CSV file at path. Files without the .csv extension are
// rejected before any request is made.
func (inv *Inventory) Import(ctx context.Context, path string) (client.ImportResult, error) {
	if !strings.EqualFold(filepath.Ext(path), csvio.Extension) {
		return client.ImportResult{}, fmt.Errorf("%s: %w", filepath.Base(path), ErrUnsupportedFile)
	}
	f, err := os.Open(path)
	if err != nil {
		return client.ImportResult{}, err
	}
	defer f.Close()
	return inv.ImportReader(ctx, filepath.Base(path), f)
}

// ImportReader uploads r under filename, which must end in .csv.
func (inv *Inventory) ImportReader(ctx context.Context, filename string, r io.Reader) (client.ImportResult, error) {
	if !strings.EqualFold(filepath.Ext(filename), csvio.Extension) {
		return client.ImportResult{}, fmt.Errorf("%s: %w", filename, ErrUnsupportedFile)
	}
	res, err := inv.store.ImportRows(ctx, inv.category.Name, filename, r)
	if err != nil {
		inv.log.Warn("import failed", "file", filename, "error", err)
		return client.ImportResult{}, fmt.Errorf("import %s: %w", filename, err)
	}
	inv.log.Info("import finished", "file", filename, "imported", res.ImportedCount, "skipped", res.SkippedCount)
	inv.refreshAfter(ctx, "import")
	return res, nil
}

// Template downloads the CSV import template.
func (inv *Inventory) Template(ctx context.Context) ([]byte, error) {
	data, err := inv.store.DownloadTemplate(ctx, inv.category.Name)
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", inv.category.Name, err)
	}
	return data, nil
}

// Close stops the highlight timer.
func (inv *Inventory) Close() {
	inv.rec.Close()
}

// refreshAfter re-fetches after a successful mutation. A failed refresh does not
// turn the mutation into a failure; the next refresh catches up.
func (inv *Inventory) refreshAfter(ctx context.Context, op string) {
	if _, err := inv.Refresh(ctx); err != nil {
		inv.log.Warn("refresh after "+op+" failed", "error", err)
	}
}

func (inv *Inventory) validate(a models.Asset) error {
	if a.Status == "" {
		return nil
	}
	if !a.Status.ValidFor(inv.category) {
		return fmt.Errorf("status %q is not valid for %s", a.Status, inv.category.Name)
	}
	return nil
}
