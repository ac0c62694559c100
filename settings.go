package canvas

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// DefaultScope is the settings scope used when the caller has no origin of its own.
const DefaultScope = "rhizome-settings"

// Settings holds the credentials and the settings-panel flag.
// Credentials are persisted through a SettingsStore; the open flag lives only
// for the session.
type Settings struct {
	mu    sync.RWMutex
	save  sync.Mutex // serialises writers across store I/O; readers only take mu
	store SettingsStore
	scope string
	creds Credentials
	open  bool
}

// LoadSettings reads the credentials saved under scope.
// A scope with nothing saved yields empty credentials. The panel starts open
// when no credential is present so the user is asked for one straight away.
func LoadSettings(ctx context.Context, store SettingsStore, scope string) (*Settings, error) {
	if scope == "" {
		scope = DefaultScope
	}
	s := &Settings{store: store, scope: scope}

	creds, err := store.Load(ctx, scope)
	switch {
	case errors.Is(err, ErrSettingsNotFound):
	case err != nil:
		return nil, fmt.Errorf("canvas: load settings: %w", err)
	default:
		s.creds = creds
	}
	s.open = !s.HasCredential()
	return s, nil
}

// HasCredential reports whether the generation credential is set.
func (s *Settings) HasCredential() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds.AnthropicKey != ""
}

// Credentials returns the current credentials.
func (s *Settings) Credentials() Credentials {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds
}

// Save replaces both credentials and persists them.
func (s *Settings) Save(ctx context.Context, c Credentials) error {
	return s.update(ctx, func(cur *Credentials) { *cur = c })
}

// SetAnthropicKey replaces the generation credential and persists it.
func (s *Settings) SetAnthropicKey(ctx context.Context, key string) error {
	return s.update(ctx, func(c *Credentials) { c.AnthropicKey = key })
}

// SetStabilityKey replaces the secondary credential and persists it.
func (s *Settings) SetStabilityKey(ctx context.Context, key string) error {
	return s.update(ctx, func(c *Credentials) { c.StabilityKey = key })
}

// update applies fn to the current credentials and persists the result.
// Concurrent updates of different fields do not lose each other.
func (s *Settings) update(ctx context.Context, fn func(*Credentials)) error {
	s.save.Lock()
	defer s.save.Unlock()

	c := s.Credentials()
	fn(&c)
	if err := s.store.Save(ctx, s.scope, c); err != nil {
		return fmt.Errorf("canvas: save settings: %w", err)
	}

	s.mu.Lock()
	s.creds = c
	s.mu.Unlock()
	return nil
}

// SetOpen shows or hides the settings panel. Not persisted.
func (s *Settings) SetOpen(open bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = open
}

// IsOpen reports whether the settings panel is shown.
func (s *Settings) IsOpen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.open
}

// Scope returns the scope the credentials are stored under.
func (s *Settings) Scope() string {
	return s.scope
}
