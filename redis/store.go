// Package redis persists canvas settings in Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/meikuraledutech/canvas"
	backend "github.com/redis/go-redis/v9"
)

// Store implements canvas.SettingsStore using Redis.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithTTL expires saved settings after ttl. Zero keeps them forever.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New connects to the Redis server at address.
func New(address, password string, db int, opts ...Option) *Store {
	return NewFromClient(backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	}), opts...)
}

// NewFromClient wraps an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	s := &Store{
		client: client,
		prefix: "canvas:settings:",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) key(scope string) string {
	return s.prefix + scope
}

// Load returns the credentials for scope.
func (s *Store) Load(ctx context.Context, scope string) (canvas.Credentials, error) {
	val, err := s.client.Get(ctx, s.key(scope)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return canvas.Credentials{}, canvas.ErrSettingsNotFound
		}
		return canvas.Credentials{}, fmt.Errorf("redis: get settings: %w", err)
	}

	var c canvas.Credentials
	if err := json.Unmarshal(val, &c); err != nil {
		return canvas.Credentials{}, fmt.Errorf("redis: unmarshal settings: %w", err)
	}
	return c, nil
}

// Save replaces the credentials for scope.
func (s *Store) Save(ctx context.Context, scope string, c canvas.Credentials) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("redis: marshal settings: %w", err)
	}
	if err := s.client.Set(ctx, s.key(scope), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set settings: %w", err)
	}
	return nil
}

// Delete removes scope.
func (s *Store) Delete(ctx context.Context, scope string) error {
	if err := s.client.Del(ctx, s.key(scope)).Err(); err != nil {
		return fmt.Errorf("redis: delete settings: %w", err)
	}
	return nil
}

// Close closes the client.
func (s *Store) Close() error {
	return s.client.Close()
}
