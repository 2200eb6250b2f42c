// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package store

import (
	"slices"
	"sync"

	sigilerr "github.com/sigil-dev/redvec/pkg/errors"
)

// DefaultBackend is used when StorageConfig.Backend is empty.
const DefaultBackend = "redis"

// BackendFactory opens a Backend from configuration.
type BackendFactory func(cfg *StorageConfig) (Backend, error)

var (
	factories   = map[string]BackendFactory{}
	factoriesMu sync.RWMutex
)

// RegisterBackend registers a factory for a named storage backend.
// Backend packages call this from init(). This function is goroutine-safe.
func RegisterBackend(name string, factory BackendFactory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[name] = factory
}

// Backends lists the registered backend names in sorted order.
func Backends() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// resolveBackend returns the effective backend name, defaulting to "redis".
func resolveBackend(cfg *StorageConfig) string {
	if cfg.Backend == "" {
		return DefaultBackend
	}
	return cfg.Backend
}

// Open creates the configured backend. The caller owns the returned
// Backend and must Close it.
func Open(cfg *StorageConfig) (Backend, error) {
	if cfg == nil {
		cfg = &StorageConfig{}
	}
	backend := resolveBackend(cfg)

	factoriesMu.RLock()
	factory, ok := factories[backend]
	factoriesMu.RUnlock()
	if !ok {
		return nil, sigilerr.Errorf(sigilerr.CodeStoreBackendUnsupported,
			"unsupported storage backend: %q (registered: %v)", backend, Backends())
	}

	b, err := factory(cfg)
	if err != nil {
		return nil, sigilerr.With(err, sigilerr.FieldBackend(backend))
	}
	return b, nil
}
