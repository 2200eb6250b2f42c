// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package store

import "context"

// KVStore is the plain string key space used by the greeting flow.
type KVStore interface {
	Set(ctx context.Context, key, value string) error
	// Get returns an error classified as NotFound when key is absent.
	Get(ctx context.Context, key string) (string, error)
}

// Backend is everything a storage backend provides. One Backend is opened
// per CLI command and shared by all handlers when serving HTTP.
type Backend interface {
	IndexStore
	KVStore

	// Name is the registry name the backend was opened under.
	Name() string
	Ping(ctx context.Context) error
	Close() error
}
