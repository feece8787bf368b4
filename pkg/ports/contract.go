package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/cadence/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunAttributeStoreContract runs a suite of tests to verify that an AttributeStore
// implementation adheres to the defined interface contract.
func RunAttributeStoreContract(t *testing.T, store AttributeStore) {
	ctx := context.Background()
	key := "contract-test-user-" + time.Now().Format("20060102150405")

	t.Run("Set and Get", func(t *testing.T) {
		doc := domain.Attributes{
			"game": map[string]any{"level": 3, "state": "in-progress"},
			"user": map[string]any{"name": "ada"},
		}

		require.NoError(t, store.Set(ctx, key, doc), "Set should not return error")

		loaded, err := store.Get(ctx, key)
		require.NoError(t, err, "Get should not return error")
		game, ok := loaded["game"].(map[string]any)
		require.True(t, ok, "group documents should load as objects")
		assert.Equal(t, "in-progress", game["state"])
		// JSON backends return float64; only existence is part of the contract.
		assert.NotNil(t, game["level"])
		assert.Equal(t, map[string]any{"name": "ada"}, loaded["user"])
	})

	t.Run("Set replaces the whole document", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, key, domain.Attributes{"a": map[string]any{"x": "1"}}))
		require.NoError(t, store.Set(ctx, key, domain.Attributes{"b": map[string]any{"y": "2"}}))

		loaded, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.NotContains(t, loaded, "a")
		assert.Contains(t, loaded, "b")
	})

	t.Run("Get Non-Existent", func(t *testing.T) {
		_, err := store.Get(ctx, "non-existent-"+key)
		assert.ErrorIs(t, err, domain.ErrAttributesNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, key, domain.Attributes{}))

		require.NoError(t, store.Delete(ctx, key), "Delete should not return error")

		_, err := store.Get(ctx, key)
		assert.ErrorIs(t, err, domain.ErrAttributesNotFound, "Get after Delete should return ErrAttributesNotFound")

		assert.NoError(t, store.Delete(ctx, key), "Deleting twice should not fail")
	})

	t.Run("Isolation", func(t *testing.T) {
		doc := domain.Attributes{"game": map[string]any{"level": "1"}}
		require.NoError(t, store.Set(ctx, key, doc))

		// Mutating the caller's copy after Set must not change what is stored.
		doc["game"] = map[string]any{"level": "2"}

		loaded, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"level": "1"}, loaded["game"])

		_ = store.Delete(ctx, key)
	})
}
