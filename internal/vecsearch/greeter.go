// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package vecsearch

import (
	"context"

	"github.com/sigil-dev/redvec/internal/store"
	sigilerr "github.com/sigil-dev/redvec/pkg/errors"
)

const (
	DefaultGreetingKey     = "msg:greeting"
	DefaultGreetingMessage = "Hello World!"
)

// Greeter performs the SET-then-GET round trip.
type Greeter struct {
	kv store.KVStore
}

func NewGreeter(kv store.KVStore) *Greeter {
	return &Greeter{kv: kv}
}

// Greet writes message under key and returns what reading key yields.
func (g *Greeter) Greet(ctx context.Context, key, message string) (string, error) {
	if key == "" {
		return "", sigilerr.New(sigilerr.CodeCLIInputInvalid, "greeting key must not be empty")
	}
	if err := g.kv.Set(ctx, key, message); err != nil {
		return "", err
	}
	return g.kv.Get(ctx, key)
}
