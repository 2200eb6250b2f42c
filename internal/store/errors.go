// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package store

import (
	sigilerr "github.com/sigil-dev/redvec/pkg/errors"
)

// IndexNotFound returns the error backends report from IndexInfo when the
// named index is absent.
func IndexNotFound(name string) error {
	return sigilerr.New(sigilerr.CodeStoreIndexNotFound, "index not found: "+name, sigilerr.FieldIndex(name))
}

// IndexConflict returns the error backends report from CreateIndex when
// the named index already exists.
func IndexConflict(name string) error {
	return sigilerr.New(sigilerr.CodeStoreIndexConflict, "index already exists: "+name, sigilerr.FieldIndex(name))
}

// KeyNotFound returns the error backends report when a key is absent.
func KeyNotFound(key string) error {
	return sigilerr.New(sigilerr.CodeStoreKeyNotFound, "key not found: "+key, sigilerr.FieldKey(key))
}
