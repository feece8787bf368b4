package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aretw0/cadence/internal/adapters/sqlite"
	"github.com/aretw0/cadence/pkg/domain"
	"github.com/aretw0/cadence/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T, path string) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_Contract(t *testing.T) {
	store := openStore(t, filepath.Join(t.TempDir(), "attrs.db"))
	ports.RunAttributeStoreContract(t, store)
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "attrs.db")
	ctx := context.Background()

	first, err := sqlite.Open(path)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "u1", domain.Attributes{"fsm": map[string]any{"state": "in-progress"}}))
	require.NoError(t, first.Close())

	second := openStore(t, path)
	doc, err := second.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"state": "in-progress"}, doc["fsm"])

	keys, err := second.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, keys)
}

func TestSQLiteStore_EmptyKey(t *testing.T) {
	store := openStore(t, filepath.Join(t.TempDir(), "attrs.db"))
	assert.Error(t, store.Set(context.Background(), "", domain.Attributes{}))
}
