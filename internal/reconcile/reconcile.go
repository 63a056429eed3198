// Package reconcile orders a freshly fetched asset list and keeps the short-lived
// "just updated" highlight.
//
// A re-fetch after an edit comes back in canonical identifier order, which would
// make the edited row jump. For a fixed window after a successful update the
// edited record is listed first; afterwards ordering reverts to canonical.
package reconcile

import (
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/crucial707/hci-itam/internal/models"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// DefaultWindow is how long a highlight lasts.
const DefaultWindow = 3 * time.Second

// Highlight is the state to render. The zero value means idle.
type Highlight struct {
	ID        string    `json:"id,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// Active reports whether h names an entity.
func (h Highlight) Active() bool {
	return h.ID != ""
}

// View is the result of a reconcile.
type View struct {
	Assets    []models.Asset
	Highlight Highlight
}

// Options configures a Reconciler.
type Options struct {
	Window time.Duration
	Clock  Clock
	Logger *slog.Logger
	// OnExpire, when set, is called after a highlight times out.
	OnExpire func(id string)
}

// Reconciler owns a single highlight and its expiry timer. It is safe for
// concurrent use.
type Reconciler struct {
	window   time.Duration
	clock    Clock
	log      *slog.Logger
	onExpire func(string)

	mu    sync.Mutex
	state Highlight
	timer Timer
	// gen invalidates timer callbacks that lost a race with Stop.
	gen uint64
}

// New returns an idle Reconciler.
func New(opts Options) *Reconciler {
	if opts.Window <= 0 {
		opts.Window = DefaultWindow
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Reconciler{
		window:   opts.Window,
		clock:    opts.Clock,
		log:      opts.Logger,
		onExpire: opts.OnExpire,
	}
}

// Highlight marks id as just updated, replacing any earlier highlight and its timer.
func (r *Reconciler) Highlight(id string) Highlight {
	if id == "" {
		return r.Current()
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stopLocked()
	r.gen++
	gen := r.gen
	r.state = Highlight{ID: id, ExpiresAt: r.clock.Now().Add(r.window)}
	r.timer = r.clock.AfterFunc(r.window, func() { r.expire(gen) })
	r.log.Debug("highlight set", "asset_id", id, "expires_at", r.state.ExpiresAt)
	return r.state
}

// Forget clears the highlight if it names id, e.g. because the entity was deleted.
func (r *Reconciler) Forget(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state.ID != id || id == "" {
		return
	}
	r.clearLocked()
	r.log.Debug("highlight cleared", "asset_id", id, "reason", "deleted")
}

// Clear drops any highlight.
func (r *Reconciler) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clearLocked()
}

// Current returns the live highlight, or the zero value when idle.
func (r *Reconciler) Current() Highlight {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.expireIfDueLocked()
	return r.state
}

// Reconcile orders fetched and applies the current highlight. A highlight whose
// entity is absent from fetched is cleared.
func (r *Reconciler) Reconcile(fetched []models.Asset) View {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.expireIfDueLocked()
	if r.state.Active() && indexOf(fetched, r.state.ID) < 0 {
		r.log.Debug("highlight cleared", "asset_id", r.state.ID, "reason", "not in list")
		r.clearLocked()
	}
	return View{
		Assets:    Order(fetched, r.state.ID),
		Highlight: r.state,
	}
}

// Close stops the timer. The Reconciler stays usable.
func (r *Reconciler) Close() {
	r.Clear()
}

func (r *Reconciler) expire(gen uint64) {
	r.mu.Lock()
	if gen != r.gen || !r.state.Active() {
		r.mu.Unlock()
		return
	}
	id := r.state.ID
	r.state = Highlight{}
	r.timer = nil
	r.mu.Unlock()

	r.log.Debug("highlight expired", "asset_id", id)
	if r.onExpire != nil {
		r.onExpire(id)
	}
}

func (r *Reconciler) expireIfDueLocked() {
	if r.state.Active() && !r.clock.Now().Before(r.state.ExpiresAt) {
		r.clearLocked()
	}
}

func (r *Reconciler) clearLocked() {
	r.stopLocked()
	r.gen++
	r.state = Highlight{}
}

func (r *Reconciler) stopLocked() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}

// Order returns a copy of list stably sorted by identifier, with the entity
// named highlightID (if present) moved to the front. Identifiers compare as a
// locale-aware string compare does: case only breaks ties between otherwise
// equal identifiers.
func Order(list []models.Asset, highlightID string) []models.Asset {
	out := slices.Clone(list)
	col := collate.New(language.Und)
	slices.SortStableFunc(out, func(a, b models.Asset) int {
		return col.CompareString(a.ID, b.ID)
	})
	if highlightID == "" {
		return out
	}
	i := indexOf(out, highlightID)
	if i <= 0 {
		return out
	}
	h := out[i]
	copy(out[1:i+1], out[:i])
	out[0] = h
	return out
}

func indexOf(list []models.Asset, id string) int {
	return slices.IndexFunc(list, func(a models.Asset) bool { return a.ID == id })
}
