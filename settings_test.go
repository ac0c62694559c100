package canvas_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/meikuraledutech/canvas"
	"github.com/meikuraledutech/canvas/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettings_Empty(t *testing.T) {
	s, err := canvas.LoadSettings(context.Background(), memory.New(), "")
	require.NoError(t, err)

	assert.Equal(t, canvas.DefaultScope, s.Scope())
	assert.False(t, s.HasCredential())
	assert.True(t, s.IsOpen(), "panel opens when no credential is saved")
}

func TestSettings_SaveAndReload(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	s, err := canvas.LoadSettings(ctx, store, "http://localhost:3000")
	require.NoError(t, err)
	require.NoError(t, s.SetAnthropicKey(ctx, "sk-ant"))
	require.NoError(t, s.SetStabilityKey(ctx, "sk-stab"))
	assert.True(t, s.HasCredential())

	reloaded, err := canvas.LoadSettings(ctx, store, "http://localhost:3000")
	require.NoError(t, err)
	assert.Equal(t, canvas.Credentials{AnthropicKey: "sk-ant", StabilityKey: "sk-stab"}, reloaded.Credentials())
	assert.False(t, reloaded.IsOpen())

	other, err := canvas.LoadSettings(ctx, store, "http://example.com")
	require.NoError(t, err)
	assert.False(t, other.HasCredential())
}

func TestSettings_OpenFlagIsSessionOnly(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, store.Save(ctx, canvas.DefaultScope, canvas.Credentials{AnthropicKey: "k"}))

	s, err := canvas.LoadSettings(ctx, store, "")
	require.NoError(t, err)
	s.SetOpen(true)
	assert.True(t, s.IsOpen())

	again, err := canvas.LoadSettings(ctx, store, "")
	require.NoError(t, err)
	assert.False(t, again.IsOpen())
}

func TestSettings_ClearingKeyDisablesGeneration(t *testing.T) {
	ctx := context.Background()
	s, err := canvas.LoadSettings(ctx, memory.New(), "")
	require.NoError(t, err)

	require.NoError(t, s.SetAnthropicKey(ctx, "k"))
	require.NoError(t, s.SetAnthropicKey(ctx, ""))
	assert.False(t, s.HasCredential())
}

type brokenStore struct{ err error }

func (b brokenStore) Load(context.Context, string) (canvas.Credentials, error) {
	return canvas.Credentials{}, b.err
}

func (b brokenStore) Save(context.Context, string, canvas.Credentials) error { return b.err }

func (b brokenStore) Delete(context.Context, string) error { return b.err }

func TestSettings_StoreErrors(t *testing.T) {
	boom := errors.New("disk full")

	_, err := canvas.LoadSettings(context.Background(), brokenStore{err: boom}, "")
	assert.ErrorIs(t, err, boom)

	// A store that has never been written to still loads.
	s, err := canvas.LoadSettings(context.Background(), brokenStore{err: canvas.ErrSettingsNotFound}, "")
	require.NoError(t, err)

	err = s.SetAnthropicKey(context.Background(), "k")
	assert.ErrorIs(t, err, canvas.ErrSettingsNotFound)
	assert.False(t, s.HasCredential(), "failed save leaves credentials unchanged")
}

// slowStore blocks Save until released.
type slowStore struct {
	*memory.Store
	entered chan struct{}
	release chan struct{}
}

func (s slowStore) Save(ctx context.Context, scope string, c canvas.Credentials) error {
	s.entered <- struct{}{}
	<-s.release
	return s.Store.Save(ctx, scope, c)
}

func TestSettings_ReadsDoNotWaitForSlowSave(t *testing.T) {
	ctx := context.Background()
	store := slowStore{Store: memory.New(), entered: make(chan struct{}), release: make(chan struct{})}
	s, err := canvas.LoadSettings(ctx, store, "")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- s.SetAnthropicKey(ctx, "k") }()
	<-store.entered

	read := make(chan bool, 1)
	go func() { read <- s.HasCredential() }()
	select {
	case has := <-read:
		assert.False(t, has, "credentials change only after the store accepts them")
	case <-time.After(time.Second):
		t.Fatal("HasCredential blocked behind an in-flight save")
	}

	close(store.release)
	require.NoError(t, <-done)
	assert.True(t, s.HasCredential())
}

func TestSettings_ConcurrentFieldUpdates(t *testing.T) {
	ctx := context.Background()
	s, err := canvas.LoadSettings(ctx, memory.New(), "")
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); assert.NoError(t, s.SetAnthropicKey(ctx, "a")) }()
	go func() { defer wg.Done(); assert.NoError(t, s.SetStabilityKey(ctx, "b")) }()
	wg.Wait()

	assert.Equal(t, canvas.Credentials{AnthropicKey: "a", StabilityKey: "b"}, s.Credentials())
}
