// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package redis

import (
	"github.com/sigil-dev/redvec/internal/store"
)

func init() {
	store.RegisterBackend(BackendName, func(cfg *store.StorageConfig) (store.Backend, error) {
		return New(cfg.Redis)
	})
}
