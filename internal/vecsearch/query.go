// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package vecsearch

import (
	"context"
	"log/slog"

	"github.com/sigil-dev/redvec/internal/store"
	sigilerr "github.com/sigil-dev/redvec/pkg/errors"
)

const (
	DefaultScoreField = "score"
	DefaultDialect    = 2
)

// QueryRunner issues KNN queries against one index.
type QueryRunner struct {
	store      store.IndexStore
	spec       store.IndexSpec
	scoreField string
	dialect    int
}

func NewQueryRunner(s store.IndexStore, spec store.IndexSpec, scoreField string, dialect int) *QueryRunner {
	if scoreField == "" {
		scoreField = DefaultScoreField
	}
	if dialect == 0 {
		dialect = DefaultDialect
	}
	return &QueryRunner{store: s, spec: spec, scoreField: scoreField, dialect: dialect}
}

// QueryOption narrows a KNN query.
type QueryOption func(*store.KNNQuery)

// WithTags restricts candidates to records carrying any of tags.
func WithTags(tags ...string) QueryOption {
	return func(q *store.KNNQuery) {
		q.Tags = append(q.Tags, tags...)
	}
}

// WithFilter sets a raw pre-filter expression. Backends that cannot
// evaluate it reject the query.
func WithFilter(filter string) QueryOption {
	return func(q *store.KNNQuery) {
		q.Filter = filter
	}
}

// KNN returns up to page.Limit of the k nearest records to vec, nearest
// first, skipping page.Offset. A zero page.Limit means k.
func (r *QueryRunner) KNN(ctx context.Context, vec []float32, k int, page store.Page, opts ...QueryOption) ([]store.Match, error) {
	if k <= 0 {
		return nil, sigilerr.Errorf(sigilerr.CodeStoreQueryInvalid, "k must be positive, got %d", k)
	}
	if len(vec) != r.spec.Dimension {
		return nil, sigilerr.Errorf(sigilerr.CodeStoreQueryInvalid,
			"query vector has %d dimensions, index %s declares %d", len(vec), r.spec.Name, r.spec.Dimension)
	}
	if page.Offset < 0 {
		return nil, sigilerr.Errorf(sigilerr.CodeStoreQueryInvalid, "offset must not be negative, got %d", page.Offset)
	}
	if page.Limit < 0 {
		return nil, sigilerr.Errorf(sigilerr.CodeStoreQueryInvalid, "limit must not be negative, got %d", page.Limit)
	}
	if page.Limit == 0 {
		page.Limit = k
	}

	q := store.KNNQuery{
		K:           k,
		TagField:    r.spec.TagField,
		VectorField: r.spec.VectorField,
		ScoreField:  r.scoreField,
		Offset:      page.Offset,
		Limit:       page.Limit,
		Vector:      vec,
		Dialect:     r.dialect,
	}
	for _, opt := range opts {
		opt(&q)
	}

	matches, err := r.store.Search(ctx, r.spec.Name, q)
	if err != nil {
		return nil, err
	}
	slog.Debug("knn query finished", "index", r.spec.Name, "k", k, "offset", page.Offset,
		"limit", page.Limit, "matches", len(matches))
	return matches, nil
}
