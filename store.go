package canvas

import (
	"context"
	"errors"
)

var (
	ErrNodeNotFound      = errors.New("canvas: node not found")
	ErrCredentialMissing = errors.New("canvas: credential missing")
	ErrEmptyPrompt       = errors.New("canvas: prompt is empty")
	ErrUnknownPersona    = errors.New("canvas: unknown persona")
	ErrSettingsNotFound  = errors.New("canvas: settings not found")
)

// Credentials are the secrets the settings panel collects.
// AnthropicKey gates every generation call; StabilityKey is stored but unused by the core.
type Credentials struct {
	AnthropicKey string `json:"anthropicKey"`
	StabilityKey string `json:"stabilityKey"`
}

// SettingsStore persists credentials per scope (the origin the canvas is served from).
type SettingsStore interface {
	// Load returns the credentials saved under scope.
	// Returns ErrSettingsNotFound if nothing was saved.
	Load(ctx context.Context, scope string) (Credentials, error)

	// Save replaces the credentials saved under scope.
	Save(ctx context.Context, scope string, c Credentials) error

	// Delete removes the credentials for scope.
	// No error if the scope doesn't exist.
	Delete(ctx context.Context, scope string) error
}

// Generator is the text-generation backend.
// Both calls are a single request/response; any error is treated uniformly by the Expander.
type Generator interface {
	// Expand returns exactly four concepts in slot order.
	Expand(ctx context.Context, prompt, credential string) ([]Concept, error)

	// Persona returns one reply written in the voice of the given persona.
	Persona(ctx context.Context, prompt, credential string, p Persona) (Reply, error)
}
