// Package translate provides a unified interface to comment-translation
// backends. Whether translation is available at all is an explicit
// configuration input; nothing in this package reads process environment.
package translate

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Config selects and configures a translation backend. Enabled is the
// capability switch: when false (or when the chosen backend has no API key)
// the noop translator is used and comments pass through unchanged.
type Config struct {
	Enabled    bool
	Provider   string // "azure" or "none"
	APIKey     string
	Region     string
	TargetLang string
	Endpoint   string // override for tests; empty means the provider default

	// ChunkSize and Delay bound request size and pace long batch runs.
	ChunkSize int
	Delay     time.Duration
}

// Translator translates a batch of texts. Implementations must return a
// slice of the same length and order as the input. Returning the input
// unchanged is a valid outcome, not an error.
type Translator interface {
	TranslateBatch(ctx context.Context, texts []string) ([]string, error)
	Name() string
}

// New builds the translator selected by cfg. A disabled or keyless
// configuration yields the noop translator rather than an error.
func New(cfg Config) (Translator, error) {
	if !cfg.Enabled || cfg.APIKey == "" {
		return Noop{}, nil
	}
	switch strings.ToLower(cfg.Provider) {
	case "", "azure":
		return NewAzure(cfg), nil
	case "none":
		return Noop{}, nil
	default:
		return nil, fmt.Errorf("unknown translation provider %q — supported providers: azure, none", cfg.Provider)
	}
}

// Noop passes texts through untouched. Used when translation is disabled or
// unconfigured.
type Noop struct{}

// TranslateBatch returns the input unchanged.
func (Noop) TranslateBatch(_ context.Context, texts []string) ([]string, error) {
	out := make([]string, len(texts))
	copy(out, texts)
	return out, nil
}

// Name returns the provider identifier.
func (Noop) Name() string { return "none" }
