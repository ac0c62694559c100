// Package storetest holds the behaviour every canvas.SettingsStore must share.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/meikuraledutech/canvas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSettingsStoreContract verifies that store adheres to the canvas.SettingsStore contract.
func RunSettingsStoreContract(t *testing.T, store canvas.SettingsStore) {
	t.Helper()
	ctx := context.Background()
	scope := "contract-" + time.Now().Format("20060102150405.000000000")

	t.Run("Load Missing", func(t *testing.T) {
		_, err := store.Load(ctx, scope+"-missing")
		assert.ErrorIs(t, err, canvas.ErrSettingsNotFound)
	})

	t.Run("Save and Load", func(t *testing.T) {
		want := canvas.Credentials{AnthropicKey: "sk-ant-test", StabilityKey: "sk-stab"}
		require.NoError(t, store.Save(ctx, scope, want))

		got, err := store.Load(ctx, scope)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("Save Overwrites", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, scope, canvas.Credentials{AnthropicKey: "first"}))
		require.NoError(t, store.Save(ctx, scope, canvas.Credentials{AnthropicKey: "second"}))

		got, err := store.Load(ctx, scope)
		require.NoError(t, err)
		assert.Equal(t, "second", got.AnthropicKey)
		assert.Empty(t, got.StabilityKey)
	})

	t.Run("Scopes Are Isolated", func(t *testing.T) {
		other := scope + "-other"
		require.NoError(t, store.Save(ctx, other, canvas.Credentials{AnthropicKey: "other"}))
		defer func() { _ = store.Delete(ctx, other) }()

		got, err := store.Load(ctx, scope)
		require.NoError(t, err)
		assert.NotEqual(t, "other", got.AnthropicKey)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, scope, canvas.Credentials{AnthropicKey: "gone"}))
		require.NoError(t, store.Delete(ctx, scope))

		_, err := store.Load(ctx, scope)
		assert.ErrorIs(t, err, canvas.ErrSettingsNotFound)

		assert.NoError(t, store.Delete(ctx, scope), "Delete of a missing scope should not fail")
	})
}
