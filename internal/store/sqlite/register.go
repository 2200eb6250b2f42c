// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package sqlite

import (
	"os"
	"path/filepath"

	"github.com/sigil-dev/redvec/internal/store"
	sigilerr "github.com/sigil-dev/redvec/pkg/errors"
)

func init() {
	store.RegisterBackend(BackendName, newBackend)
}

func newBackend(cfg *store.StorageConfig) (store.Backend, error) {
	if cfg.SQLitePath != "" && cfg.SQLitePath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o700); err != nil {
			return nil, sigilerr.Wrap(err, sigilerr.CodeStoreConnectionFailure, "creating sqlite data directory")
		}
	}
	return New(cfg.SQLitePath)
}
