// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package store

import (
	"context"

	"github.com/sigil-dev/redvec/internal/vector"
)

// IndexStore manages a secondary search index over hash records and the
// records themselves.
type IndexStore interface {
	// IndexInfo returns an error classified as NotFound when the index does
	// not exist. Any other error means existence could not be determined.
	IndexInfo(ctx context.Context, name string) (*IndexInfo, error)

	// CreateIndex registers a hash index over keys starting with spec.Prefix.
	// An index that already exists yields a Conflict error.
	CreateIndex(ctx context.Context, spec IndexSpec) error

	// DropIndex removes the index, and its documents when deleteDocs is set.
	DropIndex(ctx context.Context, name string, deleteDocs bool) error

	// WriteRecords stages one hash write per record and submits them as a
	// single batch. Results are returned in input order. The error is
	// non-nil only when the batch as a whole could not be delivered.
	WriteRecords(ctx context.Context, spec IndexSpec, records []vector.Record) ([]WriteResult, error)

	// ReadRecord reads back the record stored under spec.Prefix+name.
	ReadRecord(ctx context.Context, spec IndexSpec, name string) (*vector.Record, error)

	// Search runs a KNN query against the named index.
	Search(ctx context.Context, index string, q KNNQuery) ([]Match, error)
}
