// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

// Package embedding provides the vector sources records and queries are
// drawn from.
package embedding

import (
	"context"
	"strings"

	sigilerr "github.com/sigil-dev/redvec/pkg/errors"
)

// Source produces fixed-dimension float32 vectors for texts.
type Source interface {
	Name() string
	Dimension() int
	// Embed returns one vector per text, in order, each of length Dimension().
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Config selects and configures a Source.
type Config struct {
	Type      string // "random" (default), "openai" or "google"
	Dimension int
	Seed      uint64 // random only; 0 seeds from the clock
	Model     string
	APIKey    string
	BaseURL   string
}

// New builds the Source named by cfg.Type.
func New(cfg Config) (Source, error) {
	if cfg.Dimension <= 0 {
		return nil, sigilerr.Errorf(sigilerr.CodeEmbedRequestInvalid, "embedding dimension must be positive, got %d", cfg.Dimension)
	}

	switch strings.ToLower(cfg.Type) {
	case "", RandomName:
		return NewRandom(cfg.Dimension, cfg.Seed), nil
	case OpenAIName:
		return NewOpenAI(cfg)
	case GoogleName:
		return NewGoogle(cfg)
	default:
		return nil, sigilerr.New(sigilerr.CodeEmbedSourceNotFound, "unknown embedder type: "+cfg.Type,
			sigilerr.FieldSource(cfg.Type))
	}
}

// checkShape verifies a provider response has one vector of the declared
// dimension per input text.
func checkShape(source string, want, dim int, got [][]float32) error {
	if len(got) != want {
		return sigilerr.Errorf(sigilerr.CodeEmbedResponseInvalid,
			"%s: expected %d embeddings, got %d", source, want, len(got))
	}
	for i, v := range got {
		if len(v) != dim {
			return sigilerr.Errorf(sigilerr.CodeEmbedResponseInvalid,
				"%s: embedding %d has %d dimensions, expected %d", source, i, len(v), dim)
		}
	}
	return nil
}
