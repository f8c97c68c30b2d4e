package types

import "encoding/json"

// Snapshot is the persisted form of a draft: its rows and parameters.
type Snapshot struct {
	Rows       []IngredientRow `json:"rows"`
	Parameters CostParameters  `json:"parameters"`
}

// Clone returns a deep copy of s. A nil row slice becomes an empty one.
func (s Snapshot) Clone() Snapshot {
	rows := make([]IngredientRow, len(s.Rows))
	copy(rows, s.Rows)
	return Snapshot{Rows: rows, Parameters: s.Parameters}
}

// Canonical returns the canonical JSON serialization of s. Field order is
// fixed by the struct definitions and nil rows serialize as [], so two
// snapshots are equal exactly when their canonical forms are equal.
func (s Snapshot) Canonical() string {
	// Marshal cannot fail for a struct of strings.
	data, _ := json.Marshal(s.Clone())
	return string(data)
}

// Equal reports whether s and other have identical canonical forms.
func (s Snapshot) Equal(other Snapshot) bool {
	return s.Canonical() == other.Canonical()
}
