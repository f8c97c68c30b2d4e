// Package session binds the live draft to saved sessions and tracks whether
// the draft has drifted from what was last saved.
//
// A controller is in one of three states. New has no binding. Clean is bound
// to a saved session whose snapshot matches the draft exactly after
// canonical serialization. Dirty is bound with a differing draft. Every
// observable change is autosaved to the draft slot before the call returns.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/mesh-intelligence/costbook/internal/costing"
	"github.com/mesh-intelligence/costbook/internal/draft"
	"github.com/mesh-intelligence/costbook/pkg/types"
)

// State is the lifecycle state of the draft.
type State int

const (
	StateNew State = iota
	StateClean
	StateDirty
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateClean:
		return "clean"
	case StateDirty:
		return "dirty"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// DraftSlot is the best-effort store for the autosaved draft and its
// lifecycle metadata. Implementations swallow their own failures.
type DraftSlot interface {
	LoadDraft() (types.Snapshot, bool)
	StoreDraft(types.Snapshot)
	LoadMeta() (types.SessionMeta, bool)
	StoreMeta(types.SessionMeta)
}

// Controller owns the draft's binding to the durable store.
type Controller struct {
	mu     sync.Mutex
	draft  *draft.Store
	store  types.SessionStore
	slot   DraftSlot
	logger *slog.Logger

	boundID     string
	displayName string
	baseline    string
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger used for lifecycle transitions.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewController returns a controller over d, restoring any draft and
// metadata found in slot. A restored draft with no rows gets the default
// blank rows.
func NewController(d *draft.Store, store types.SessionStore, slot DraftSlot, opts ...Option) *Controller {
	c := &Controller{
		draft:       d,
		store:       store,
		slot:        slot,
		logger:      slog.Default(),
		displayName: types.DefaultDisplayName,
	}
	for _, opt := range opts {
		opt(c)
	}

	if snap, ok := slot.LoadDraft(); ok {
		d.Restore(snap)
		if len(snap.Rows) == 0 {
			d.ClearRows()
		}
	}
	if meta, ok := slot.LoadMeta(); ok {
		c.boundID = meta.BoundSessionID
		c.displayName = meta.DisplayName
		c.baseline = meta.LastSyncedSnapshot
		if c.boundID == "" {
			c.baseline = ""
		}
	}
	c.logger.Debug("session hydrated", "state", c.stateLocked(), "bound_id", c.boundID)
	return c
}

// State reports the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Controller) stateLocked() State {
	if c.boundID == "" {
		return StateNew
	}
	if c.baseline != "" && c.draft.Snapshot().Canonical() == c.baseline {
		return StateClean
	}
	return StateDirty
}

// CanSave reports whether Save would write anything.
func (c *Controller) CanSave() bool {
	return c.State() == StateDirty
}

// BoundID returns the id of the saved session the draft is bound to, or ""
// when New.
func (c *Controller) BoundID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.boundID
}

// DisplayName returns the bound session's name, or DefaultDisplayName.
func (c *Controller) DisplayName() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.displayName
}

// Rows returns the draft rows.
func (c *Controller) Rows() []types.IngredientRow { return c.draft.Rows() }

// Parameters returns the draft parameters.
func (c *Controller) Parameters() types.CostParameters { return c.draft.Parameters() }

// Snapshot returns the draft rows and parameters.
func (c *Controller) Snapshot() types.Snapshot { return c.draft.Snapshot() }

// Figures computes the derived figures for the current draft.
func (c *Controller) Figures() costing.Figures { return c.draft.Figures() }

// AddRow appends a blank row.
func (c *Controller) AddRow() []types.IngredientRow {
	return edit(c, func() ([]types.IngredientRow, error) { return c.draft.AddRow(), nil })
}

// UpdateRowField sets one field of the row with the given id.
func (c *Controller) UpdateRowField(id, field, value string) ([]types.IngredientRow, error) {
	return editErr(c, func() ([]types.IngredientRow, error) { return c.draft.UpdateRowField(id, field, value) })
}

// DeleteRow removes the row with the given id, if present.
func (c *Controller) DeleteRow(id string) []types.IngredientRow {
	return edit(c, func() ([]types.IngredientRow, error) { return c.draft.DeleteRow(id), nil })
}

// ClearRows resets the rows to the default blank set.
func (c *Controller) ClearRows() []types.IngredientRow {
	return edit(c, func() ([]types.IngredientRow, error) { return c.draft.ClearRows(), nil })
}

// SetParameter sets one cost parameter.
func (c *Controller) SetParameter(name, value string) (types.CostParameters, error) {
	return editErr(c, func() (types.CostParameters, error) { return c.draft.SetParameter(name, value) })
}

// LoadSample replaces the draft with the sample recipe. The binding is kept,
// so a bound draft becomes dirty.
func (c *Controller) LoadSample() types.Snapshot {
	return edit(c, func() (types.Snapshot, error) { return c.draft.Restore(draft.SampleSnapshot()), nil })
}

func edit[T any](c *Controller, fn func() (T, error)) T {
	v, _ := editErr(c, fn)
	return v
}

// editErr runs a draft mutation and autosaves. A failed mutation leaves the
// draft unchanged and is not autosaved.
func editErr[T any](c *Controller, fn func() (T, error)) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	before := c.stateLocked()
	v, err := fn()
	if err != nil {
		return v, err
	}
	c.autosaveLocked()
	if after := c.stateLocked(); after != before {
		c.logger.Debug("session state changed", "from", before, "to", after)
	}
	return v, nil
}

// SaveAs stores the draft as a new saved session named name and binds to it.
// The name is trimmed; an empty name fails with ErrInvalidName. On error the
// state is unchanged.
func (c *Controller) SaveAs(ctx context.Context, name string) (*types.SavedSession, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, types.ErrInvalidName
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	snap := c.draft.Snapshot()
	rec, err := c.store.Create(ctx, name, snap)
	if err != nil {
		return nil, fmt.Errorf("saving session as %q: %w", name, err)
	}
	c.bindLocked(rec.ID, rec.DisplayName, snap)
	c.logger.Debug("session saved as", "id", rec.ID, "name", rec.DisplayName)
	return rec, nil
}

// Save writes the draft over the bound saved session. It only acts when
// Dirty; otherwise it returns false without touching the store. A missing
// bound record surfaces ErrNotFound and leaves the state unchanged.
func (c *Controller) Save(ctx context.Context) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stateLocked() != StateDirty {
		return false, nil
	}
	snap := c.draft.Snapshot()
	rec, err := c.store.Update(ctx, c.boundID, snap, nil)
	if err != nil {
		return false, fmt.Errorf("saving session %s: %w", c.boundID, err)
	}
	c.bindLocked(rec.ID, rec.DisplayName, snap)
	c.logger.Debug("session saved", "id", rec.ID)
	return true, nil
}

// LoadFrom replaces the draft with rec's snapshot and binds to rec.
func (c *Controller) LoadFrom(rec *types.SavedSession) types.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := c.draft.Restore(rec.Snapshot)
	c.bindLocked(rec.ID, rec.DisplayName, snap)
	c.logger.Debug("session loaded", "id", rec.ID, "name", rec.DisplayName)
	return snap
}

// Load fetches the saved session with the given id and loads it.
func (c *Controller) Load(ctx context.Context, id string) (*types.SavedSession, error) {
	rec, err := c.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading session %s: %w", id, err)
	}
	c.LoadFrom(rec)
	return rec, nil
}

// StartNew resets the draft to defaults and drops the binding.
func (c *Controller) StartNew() types.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := c.draft.ResetToDefaults()
	c.unbindLocked()
	c.autosaveLocked()
	c.logger.Debug("session started new")
	return snap
}

// History lists saved sessions, most recently modified first.
func (c *Controller) History(ctx context.Context) ([]*types.SavedSession, error) {
	recs, err := c.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	return recs, nil
}

// Delete removes a saved session. Deleting the bound session unbinds the
// draft and keeps its rows and parameters.
func (c *Controller) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting session %s: %w", id, err)
	}
	if id != "" && id == c.boundID {
		c.unbindLocked()
		c.autosaveLocked()
		c.logger.Debug("bound session deleted", "id", id)
	}
	return nil
}

func (c *Controller) bindLocked(id, name string, snap types.Snapshot) {
	c.boundID = id
	c.displayName = name
	c.baseline = snap.Canonical()
	c.autosaveLocked()
}

func (c *Controller) unbindLocked() {
	c.boundID = ""
	c.displayName = types.DefaultDisplayName
	c.baseline = ""
}

func (c *Controller) autosaveLocked() {
	c.slot.StoreDraft(c.draft.Snapshot())
	c.slot.StoreMeta(types.SessionMeta{
		BoundSessionID:     c.boundID,
		DisplayName:        c.displayName,
		LastSyncedSnapshot: c.baseline,
	})
}
