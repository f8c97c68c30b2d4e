// Package draft holds the live, editable recipe: its ingredient rows and
// cost parameters.
//
// Every mutation builds a new row collection instead of editing the current
// one in place, so a slice handed out by an earlier call never changes under
// the caller. Row ids stay unique across all operations.
package draft

import (
	"sync"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/costbook/internal/costing"
	"github.com/mesh-intelligence/costbook/pkg/types"
)

// DefaultRowCount is the number of blank rows in a fresh or cleared draft.
const DefaultRowCount = 3

// Store owns the draft rows and parameters.
type Store struct {
	mu     sync.RWMutex
	rows   []types.IngredientRow
	params types.CostParameters
	newID  func() string
}

// NewStore returns a store holding the default draft. newID generates row
// ids; nil selects UUID v7.
func NewStore(newID func() string) *Store {
	if newID == nil {
		newID = generateUUID
	}
	s := &Store{newID: newID}
	s.rows = s.defaultRows()
	s.params = types.DefaultParameters()
	return s
}

// generateUUID generates a new UUID v7 for row ids.
func generateUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to UUID v4 if v7 generation fails
		return uuid.New().String()
	}
	return id.String()
}

func (s *Store) defaultRows() []types.IngredientRow {
	rows := make([]types.IngredientRow, DefaultRowCount)
	for i := range rows {
		rows[i] = types.BlankRow(s.newID())
	}
	return rows
}

// Rows returns a copy of the current rows.
func (s *Store) Rows() []types.IngredientRow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneRows(s.rows)
}

// Parameters returns the current cost parameters.
func (s *Store) Parameters() types.CostParameters {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.params
}

// Snapshot returns rows and parameters captured under one lock.
func (s *Store) Snapshot() types.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return types.Snapshot{Rows: cloneRows(s.rows), Parameters: s.params}
}

// Figures computes the derived figures from a single consistent snapshot.
func (s *Store) Figures() costing.Figures {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return costing.Compute(s.rows, s.params)
}

// AddRow appends a blank row with a fresh id.
func (s *Store) AddRow() []types.IngredientRow {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]types.IngredientRow, len(s.rows), len(s.rows)+1)
	copy(next, s.rows)
	next = append(next, types.BlankRow(s.newID()))
	s.rows = next
	return cloneRows(next)
}

// UpdateRowField replaces one field of the row with the given id. Returns
// ErrNotFound when no row has that id and ErrUnknownField for a field that
// is not editable; the draft is unchanged in both cases.
func (s *Store) UpdateRowField(id, field, value string) ([]types.IngredientRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := indexOf(s.rows, id)
	if idx < 0 {
		return cloneRows(s.rows), types.ErrNotFound
	}
	updated, err := s.rows[idx].With(field, value)
	if err != nil {
		return cloneRows(s.rows), err
	}

	next := cloneRows(s.rows)
	next[idx] = updated
	s.rows = next
	return cloneRows(next), nil
}

// DeleteRow removes the row with the given id. Absent ids are ignored.
func (s *Store) DeleteRow(id string) []types.IngredientRow {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]types.IngredientRow, 0, len(s.rows))
	for _, r := range s.rows {
		if r.ID != id {
			next = append(next, r)
		}
	}
	s.rows = next
	return cloneRows(next)
}

// ReplaceAll swaps in a new row collection. Rows with an empty id, or an id
// already used earlier in the collection, are given a fresh one.
func (s *Store) ReplaceAll(rows []types.IngredientRow) []types.IngredientRow {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rows = s.rekey(rows)
	return cloneRows(s.rows)
}

func (s *Store) rekey(rows []types.IngredientRow) []types.IngredientRow {
	next := make([]types.IngredientRow, len(rows))
	seen := make(map[string]bool, len(rows))
	for i, r := range rows {
		for r.ID == "" || seen[r.ID] {
			r.ID = s.newID()
		}
		seen[r.ID] = true
		next[i] = r
	}
	return next
}

// ClearRows resets the rows to the default blank set. Parameters are kept.
func (s *Store) ClearRows() []types.IngredientRow {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rows = s.defaultRows()
	return cloneRows(s.rows)
}

// SetParameter replaces one cost parameter. Returns ErrUnknownParameter for
// an unrecognized name, leaving the parameters unchanged.
func (s *Store) SetParameter(name, value string) (types.CostParameters, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.params.With(name, value)
	if err != nil {
		return s.params, err
	}
	s.params = next
	return next, nil
}

// Restore replaces rows and parameters together, re-keying rows as
// ReplaceAll does.
func (s *Store) Restore(snap types.Snapshot) types.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rows = s.rekey(snap.Rows)
	s.params = snap.Parameters
	return types.Snapshot{Rows: cloneRows(s.rows), Parameters: s.params}
}

// ResetToDefaults restores three blank rows and the default parameters.
func (s *Store) ResetToDefaults() types.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rows = s.defaultRows()
	s.params = types.DefaultParameters()
	return types.Snapshot{Rows: cloneRows(s.rows), Parameters: s.params}
}

func indexOf(rows []types.IngredientRow, id string) int {
	for i, r := range rows {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func cloneRows(rows []types.IngredientRow) []types.IngredientRow {
	out := make([]types.IngredientRow, len(rows))
	copy(out, rows)
	return out
}
