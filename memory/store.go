package memory

import (
	"context"
	"sync"

	"github.com/meikuraledutech/canvas"
)

// Store implements canvas.SettingsStore in memory.
// Safe for concurrent use. Values are copied in and out.
type Store struct {
	data map[string]canvas.Credentials
	mu   sync.RWMutex
}

// New creates an empty store.
func New() *Store {
	return &Store{data: make(map[string]canvas.Credentials)}
}

// Load returns the credentials for scope.
func (s *Store) Load(ctx context.Context, scope string) (canvas.Credentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.data[scope]
	if !ok {
		return canvas.Credentials{}, canvas.ErrSettingsNotFound
	}
	return c, nil
}

// Save replaces the credentials for scope.
func (s *Store) Save(ctx context.Context, scope string, c canvas.Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[scope] = c
	return nil
}

// Delete removes scope.
func (s *Store) Delete(ctx context.Context, scope string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, scope)
	return nil
}
