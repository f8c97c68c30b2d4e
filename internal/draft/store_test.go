package draft

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/costbook/pkg/types"
)

// sequentialIDs returns a generator yielding row-1, row-2, ...
func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("row-%d", n)
	}
}

func TestNewStore_Defaults(t *testing.T) {
	s := NewStore(sequentialIDs())

	rows := s.Rows()
	require.Len(t, rows, DefaultRowCount)
	for i, r := range rows {
		assert.Equal(t, types.BlankRow(fmt.Sprintf("row-%d", i+1)), r)
	}
	assert.Equal(t, types.DefaultParameters(), s.Parameters())
}

func TestNewStore_UUIDByDefault(t *testing.T) {
	s := NewStore(nil)
	rows := s.Rows()
	require.Len(t, rows, DefaultRowCount)
	assert.Len(t, rows[0].ID, 36)
	assert.NotEqual(t, rows[0].ID, rows[1].ID)
}

func TestStore_AddRow(t *testing.T) {
	s := NewStore(sequentialIDs())
	before := s.Rows()

	after := s.AddRow()

	require.Len(t, after, DefaultRowCount+1)
	assert.Equal(t, types.BlankRow("row-4"), after[3])
	assert.Len(t, before, DefaultRowCount, "earlier results are not mutated")
}

func TestStore_UpdateRowField(t *testing.T) {
	s := NewStore(sequentialIDs())
	before := s.Rows()

	rows, err := s.UpdateRowField("row-2", types.FieldPackPrice, "75")
	require.NoError(t, err)

	assert.Equal(t, "row-2", rows[1].ID, "id never changes")
	assert.Equal(t, "75", rows[1].PackPrice)
	assert.Equal(t, before[0], rows[0], "other rows untouched")
	assert.Equal(t, before[2], rows[2], "other rows untouched")
	assert.Equal(t, "0", before[1].PackPrice, "earlier results are not mutated")
}

func TestStore_UpdateRowField_Errors(t *testing.T) {
	s := NewStore(sequentialIDs())
	before := s.Snapshot()

	_, err := s.UpdateRowField("nope", types.FieldName, "salt")
	assert.ErrorIs(t, err, types.ErrNotFound)

	_, err = s.UpdateRowField("row-1", "id", "row-9")
	assert.ErrorIs(t, err, types.ErrUnknownField)

	assert.True(t, before.Equal(s.Snapshot()))
}

func TestStore_DeleteRow(t *testing.T) {
	s := NewStore(sequentialIDs())

	rows := s.DeleteRow("row-2")
	require.Len(t, rows, 2)
	assert.Equal(t, "row-1", rows[0].ID)
	assert.Equal(t, "row-3", rows[1].ID)

	again := s.DeleteRow("row-2")
	assert.Equal(t, rows, again, "deleting an absent id is a no-op")
}

func TestStore_ReplaceAll_Rekeys(t *testing.T) {
	s := NewStore(sequentialIDs())

	rows := s.ReplaceAll([]types.IngredientRow{
		{ID: "keep", Name: "a"},
		{ID: "", Name: "b"},
		{ID: "keep", Name: "c"},
		{ID: "row-4", Name: "d"},
	})

	require.Len(t, rows, 4)
	ids := map[string]bool{}
	for _, r := range rows {
		assert.NotEmpty(t, r.ID)
		assert.False(t, ids[r.ID], "duplicate id %s", r.ID)
		ids[r.ID] = true
	}
	assert.Equal(t, "keep", rows[0].ID)
	assert.Equal(t, "c", rows[2].Name)
	assert.NotEqual(t, "keep", rows[2].ID)
}

func TestStore_ReplaceAll_Empty(t *testing.T) {
	s := NewStore(sequentialIDs())
	assert.Empty(t, s.ReplaceAll(nil))
	assert.Empty(t, s.Figures().Rows)
}

func TestStore_ClearRowsKeepsParameters(t *testing.T) {
	s := NewStore(sequentialIDs())
	_, err := s.SetParameter(types.ParamYieldCount, "24")
	require.NoError(t, err)
	s.AddRow()

	rows := s.ClearRows()

	assert.Len(t, rows, DefaultRowCount)
	assert.Equal(t, "24", s.Parameters().YieldCount)
}

func TestStore_SetParameter(t *testing.T) {
	s := NewStore(sequentialIDs())

	p, err := s.SetParameter(types.ParamTargetMarginPercent, "35")
	require.NoError(t, err)
	assert.Equal(t, "35", p.TargetMarginPercent)
	assert.Equal(t, types.DefaultOverheadPercent, p.OverheadPercent)

	_, err = s.SetParameter("discount", "5")
	assert.ErrorIs(t, err, types.ErrUnknownParameter)
	assert.Equal(t, p, s.Parameters())
}

func TestStore_RestoreAndReset(t *testing.T) {
	s := NewStore(sequentialIDs())

	restored := s.Restore(SampleSnapshot())
	assert.Len(t, restored.Rows, len(SampleSnapshot().Rows))
	for _, r := range restored.Rows {
		assert.NotEmpty(t, r.ID)
	}
	assert.Equal(t, "24", s.Parameters().YieldCount)
	assert.Greater(t, s.Figures().Total, 0.0)

	reset := s.ResetToDefaults()
	assert.Len(t, reset.Rows, DefaultRowCount)
	assert.Equal(t, types.DefaultParameters(), reset.Parameters)
}

func TestStore_FiguresFollowEdits(t *testing.T) {
	s := NewStore(sequentialIDs())
	_, err := s.UpdateRowField("row-1", types.FieldPackPrice, "75")
	require.NoError(t, err)
	_, err = s.UpdateRowField("row-1", types.FieldPackQuantity, "1000")
	require.NoError(t, err)
	_, err = s.UpdateRowField("row-1", types.FieldAmountNeeded, "420")
	require.NoError(t, err)

	f := s.Figures()
	rf, ok := f.Row("row-1")
	require.True(t, ok)
	assert.InDelta(t, 31.5, rf.LineCost, 1e-9)
	assert.InDelta(t, 31.5, f.IngredientsTotal, 1e-9)
}
