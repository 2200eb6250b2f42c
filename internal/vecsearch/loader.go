// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package vecsearch

import (
	"context"
	"log/slog"

	"github.com/sigil-dev/redvec/internal/store"
	"github.com/sigil-dev/redvec/internal/vector"
	sigilerr "github.com/sigil-dev/redvec/pkg/errors"
)

// Loader writes records under an index's key prefix as one batch.
type Loader struct {
	store store.IndexStore
	spec  store.IndexSpec
}

func NewLoader(s store.IndexStore, spec store.IndexSpec) *Loader {
	return &Loader{store: s, spec: spec}
}

// Load validates every record against the index dimension before writing
// anything, then submits all writes as one batch. Per-record failures are
// reported in the results; the error is reserved for invalid input and for
// a batch that could not be delivered at all.
func (l *Loader) Load(ctx context.Context, records []vector.Record) ([]store.WriteResult, error) {
	if err := l.spec.Validate(); err != nil {
		return nil, err
	}
	for _, r := range records {
		if err := r.Validate(l.spec.Dimension); err != nil {
			return nil, sigilerr.With(err, sigilerr.FieldIndex(l.spec.Name))
		}
	}

	results, err := l.store.WriteRecords(ctx, l.spec, records)
	if err != nil {
		return results, err
	}

	if failed := Failures(results); failed > 0 {
		slog.Warn("batch load finished with failures", "index", l.spec.Name, "records", len(records), "failed", failed)
	} else {
		slog.Info("batch load finished", "index", l.spec.Name, "records", len(records))
	}
	return results, nil
}

// Fetch reads one record back by name.
func (l *Loader) Fetch(ctx context.Context, name string) (*vector.Record, error) {
	if name == "" {
		return nil, sigilerr.New(sigilerr.CodeStoreRecordInvalid, "record name must not be empty")
	}
	return l.store.ReadRecord(ctx, l.spec, name)
}

// Failures counts results carrying an error.
func Failures(results []store.WriteResult) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}
