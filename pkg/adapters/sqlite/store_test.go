package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/mentor/pkg/adapters/sqlite"
	"github.com/aretw0/mentor/pkg/domain"
	"github.com/aretw0/mentor/pkg/ports"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_Contract(t *testing.T) {
	ports.RunSnapshotStoreContract(t, newStore(t))
}

func TestSQLiteStore_InMemory(t *testing.T) {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ports.RunSnapshotStoreContract(t, store)
}

func TestSQLiteStore_ListBySection(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	save := func(id, section string, at time.Time) {
		snap := domain.NewSnapshot(id, section)
		snap.UpdatedAt = at
		require.NoError(t, store.Save(ctx, id, snap))
	}
	save("old", "go", base)
	save("new", "go", base.Add(time.Hour))
	save("other", "rust", base.Add(2*time.Hour))

	ids, err := store.ListBySection(ctx, "go")
	require.NoError(t, err)
	assert.Equal(t, []string{"new", "old"}, ids)

	all, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"other", "new", "old"}, all)
}

func TestSQLiteStore_Persists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sessions.db")

	store, err := sqlite.New(path)
	require.NoError(t, err)
	snap := domain.NewSnapshot("s1", "sec")
	snap.Solution.Set("a", "kept")
	require.NoError(t, store.Save(ctx, "s1", snap))
	require.NoError(t, store.Close())

	reopened, err := sqlite.New(path)
	require.NoError(t, err)
	defer reopened.Close()

	loaded, err := reopened.Load(ctx, "s1")
	require.NoError(t, err)
	got, _ := loaded.Solution.Get("a")
	assert.Equal(t, "kept", got)
}
