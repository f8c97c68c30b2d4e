package sqlite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/costbook/pkg/types"
)

// stepClock returns a clock that starts at a fixed instant and advances one
// second per call.
func stepClock() func() time.Time {
	t := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("session-%d", n)
	}
}

func newTestBackend(t *testing.T, dir string) *Backend {
	t.Helper()
	b := NewBackend(WithClock(stepClock()), WithIDGenerator(sequentialIDs()))
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dir}))
	t.Cleanup(func() { b.Detach() })
	return b
}

func sampleSnapshot(name string) types.Snapshot {
	return types.Snapshot{
		Rows: []types.IngredientRow{
			{ID: "r1", Name: name, PackPrice: "75", PackQuantity: "1000", AmountNeeded: "420"},
		},
		Parameters: types.DefaultParameters(),
	}
}

func TestBackend_Attach(t *testing.T) {
	tmpDir := t.TempDir()

	b := NewBackend()
	config := types.Config{Backend: types.BackendSQLite, DataDir: tmpDir}
	require.NoError(t, b.Attach(config))
	defer b.Detach()

	_, err := os.Stat(filepath.Join(tmpDir, DatabaseFile))
	assert.NoError(t, err, "database file created")

	assert.ErrorIs(t, b.Attach(config), types.ErrAlreadyAttached)
	assert.Equal(t, tmpDir, b.DataDir())
}

func TestBackend_AttachInvalidConfig(t *testing.T) {
	b := NewBackend()
	assert.ErrorIs(t, b.Attach(types.Config{DataDir: t.TempDir()}), types.ErrBackendEmpty)
	assert.ErrorIs(t, b.Attach(types.Config{Backend: "indexeddb"}), types.ErrBackendUnknown)
}

func TestBackend_AttachUnavailable(t *testing.T) {
	// A regular file where the data directory should be.
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	b := NewBackend()
	err := b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: filepath.Join(blocker, "data")})
	assert.ErrorIs(t, err, types.ErrStorageUnavailable)
}

func TestBackend_DetachedOperationsFail(t *testing.T) {
	ctx := context.Background()
	b := NewBackend()
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}))
	require.NoError(t, b.Detach())
	require.NoError(t, b.Detach(), "Detach is idempotent")

	_, err := b.Create(ctx, "x", sampleSnapshot("flour"))
	assert.ErrorIs(t, err, types.ErrStorageUnavailable)
	_, err = b.List(ctx)
	assert.ErrorIs(t, err, types.ErrStorageUnavailable)
	_, err = b.Get(ctx, "id")
	assert.ErrorIs(t, err, types.ErrStorageUnavailable)
	_, err = b.Update(ctx, "id", sampleSnapshot("flour"), nil)
	assert.ErrorIs(t, err, types.ErrStorageUnavailable)
	assert.ErrorIs(t, b.Delete(ctx, "id"), types.ErrStorageUnavailable)
}

func TestBackend_CreateGet(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t, t.TempDir())

	created, err := b.Create(ctx, "Cookies", sampleSnapshot("flour"))
	require.NoError(t, err)
	assert.Equal(t, "session-1", created.ID)
	assert.Equal(t, "Cookies", created.DisplayName)
	assert.Nil(t, created.UpdatedAt)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := b.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestBackend_GetMissing(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t, t.TempDir())

	_, err := b.Get(ctx, "nope")
	assert.ErrorIs(t, err, types.ErrNotFound)
	_, err = b.Get(ctx, "")
	assert.ErrorIs(t, err, types.ErrInvalidID)
}

func TestBackend_Update(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t, t.TempDir())

	created, err := b.Create(ctx, "Cookies", sampleSnapshot("flour"))
	require.NoError(t, err)

	updated, err := b.Update(ctx, created.ID, sampleSnapshot("rye"), nil)
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Cookies", updated.DisplayName, "nil name keeps the stored one")
	assert.Equal(t, created.CreatedAt, updated.CreatedAt, "createdAt never changes")
	require.NotNil(t, updated.UpdatedAt)
	assert.True(t, updated.UpdatedAt.After(created.CreatedAt))
	assert.Equal(t, "rye", updated.Snapshot.Rows[0].Name)

	name := "Rye cookies"
	renamed, err := b.Update(ctx, created.ID, sampleSnapshot("rye"), &name)
	require.NoError(t, err)
	assert.Equal(t, name, renamed.DisplayName)
	assert.True(t, renamed.UpdatedAt.After(*updated.UpdatedAt))

	got, err := b.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, renamed, got)
}

func TestBackend_UpdateMissingFails(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t, t.TempDir())

	_, err := b.Update(ctx, "ghost", sampleSnapshot("flour"), nil)
	assert.ErrorIs(t, err, types.ErrNotFound)

	list, err := b.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list, "update never creates")
}

func TestBackend_ListOrdering(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t, t.TempDir())

	a, err := b.Create(ctx, "A", sampleSnapshot("a"))
	require.NoError(t, err)
	bb, err := b.Create(ctx, "B", sampleSnapshot("b"))
	require.NoError(t, err)

	list, err := b.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, []string{bb.ID, a.ID}, []string{list[0].ID, list[1].ID})

	_, err = b.Update(ctx, a.ID, sampleSnapshot("a2"), nil)
	require.NoError(t, err)

	list, err = b.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID, bb.ID}, []string{list[0].ID, list[1].ID})
}

func TestBackend_ListOrderingWallClock(t *testing.T) {
	ctx := context.Background()
	b := NewBackend()
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}))
	t.Cleanup(func() { b.Detach() })

	for i := 0; i < 50; i++ {
		a, err := b.Create(ctx, "A", sampleSnapshot("a"))
		require.NoError(t, err)
		bb, err := b.Create(ctx, "B", sampleSnapshot("b"))
		require.NoError(t, err)
		_, err = b.Update(ctx, a.ID, sampleSnapshot("a2"), nil)
		require.NoError(t, err)

		list, err := b.List(ctx)
		require.NoError(t, err)
		require.GreaterOrEqual(t, len(list), 2)
		require.Equal(t, []string{a.ID, bb.ID}, []string{list[0].ID, list[1].ID}, "round %d", i)
	}
}

func TestBackend_TimestampsStrictlyIncrease(t *testing.T) {
	ctx := context.Background()
	frozen := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	b := NewBackend(WithClock(func() time.Time { return frozen }))
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}))
	t.Cleanup(func() { b.Detach() })

	a, err := b.Create(ctx, "A", sampleSnapshot("a"))
	require.NoError(t, err)
	bb, err := b.Create(ctx, "B", sampleSnapshot("b"))
	require.NoError(t, err)
	updated, err := b.Update(ctx, a.ID, sampleSnapshot("a2"), nil)
	require.NoError(t, err)

	assert.True(t, bb.CreatedAt.After(a.CreatedAt))
	assert.True(t, updated.UpdatedAt.After(bb.CreatedAt))
}

func TestBackend_ClockResumesPastStoredRecords(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	late := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	first := NewBackend(WithClock(func() time.Time { return late }))
	require.NoError(t, first.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dir}))
	a, err := first.Create(ctx, "A", sampleSnapshot("a"))
	require.NoError(t, err)
	require.NoError(t, first.Detach())

	// A clock behind the stored records still stamps newer writes.
	second := newTestBackend(t, dir)
	bb, err := second.Create(ctx, "B", sampleSnapshot("b"))
	require.NoError(t, err)
	assert.True(t, bb.CreatedAt.After(a.CreatedAt))

	list, err := second.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{bb.ID, a.ID}, []string{list[0].ID, list[1].ID})
}

func TestBackend_DetachTwice(t *testing.T) {
	b := NewBackend()
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}))

	require.NoError(t, b.Detach())
	require.NoError(t, b.Detach())
	_, err := b.List(context.Background())
	assert.ErrorIs(t, err, types.ErrStorageUnavailable)
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}), "reattach after detach")
	require.NoError(t, b.Detach())
}

func TestBackend_ListEmpty(t *testing.T) {
	b := newTestBackend(t, t.TempDir())
	list, err := b.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestBackend_DeleteIdempotent(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t, t.TempDir())

	rec, err := b.Create(ctx, "A", sampleSnapshot("a"))
	require.NoError(t, err)

	require.NoError(t, b.Delete(ctx, rec.ID))
	require.NoError(t, b.Delete(ctx, rec.ID))

	_, err = b.Get(ctx, rec.ID)
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.ErrorIs(t, b.Delete(ctx, ""), types.ErrInvalidID)
}

func TestBackend_PersistsAcrossAttach(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	first := NewBackend()
	require.NoError(t, first.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dir}))
	rec, err := first.Create(ctx, "Kept", sampleSnapshot("flour"))
	require.NoError(t, err)
	require.NoError(t, first.Detach())

	second := NewBackend()
	require.NoError(t, second.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dir}))
	defer second.Detach()

	got, err := second.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.Snapshot.Canonical(), got.Snapshot.Canonical())
	assert.Equal(t, rec.CreatedAt, got.CreatedAt)
}

func TestBackend_CanceledContext(t *testing.T) {
	b := newTestBackend(t, t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := b.Create(ctx, "A", sampleSnapshot("a"))
	assert.ErrorIs(t, err, types.ErrTransactionFailed)
}
