// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package vecsearch_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sigil-dev/redvec/internal/store"
	"github.com/sigil-dev/redvec/internal/vecsearch"
	"github.com/sigil-dev/redvec/internal/vector"
	sigilerr "github.com/sigil-dev/redvec/pkg/errors"
)

func seededStore(t *testing.T) *fakeStore {
	t.Helper()
	ctx := context.Background()
	fs := newFakeStore()
	require.NoError(t, vecsearch.NewProvisioner(fs).EnsureIndex(ctx, testSpec(4)))
	_, err := vecsearch.NewLoader(fs, testSpec(4)).Load(ctx, []vector.Record{
		{Name: "a", Tag: "foo", Vector: []float32{1, 0, 0, 0}},
		{Name: "b", Tag: "foo", Vector: []float32{0, 1, 0, 0}},
		{Name: "c", Tag: "bar", Vector: []float32{0.9, 0.1, 0, 0}},
	})
	require.NoError(t, err)
	return fs
}

func TestKNN_AtMostKOrderedByScore(t *testing.T) {
	fs := seededStore(t)
	r := vecsearch.NewQueryRunner(fs, testSpec(4), "", 0)

	matches, err := r.KNN(context.Background(), []float32{1, 0, 0, 0}, 2, store.Page{})
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "doc:a", matches[0].ID)
	assert.Equal(t, "doc:c", matches[1].ID)
	assert.LessOrEqual(t, matches[0].Score, matches[1].Score)
}

func TestKNN_BuildsQuery(t *testing.T) {
	fs := seededStore(t)
	r := vecsearch.NewQueryRunner(fs, testSpec(4), "", 0)

	_, err := r.KNN(context.Background(), []float32{1, 0, 0, 0}, 2, store.Page{Offset: 0, Limit: 2},
		vecsearch.WithTags("foo"))
	require.NoError(t, err)

	q := fs.lastQuery
	assert.Equal(t, 2, q.K)
	assert.Equal(t, "score", q.ScoreField)
	assert.Equal(t, 2, q.Dialect)
	assert.Equal(t, 0, q.Offset)
	assert.Equal(t, 2, q.Limit)
	assert.Equal(t, "(@tag:{foo})=>[KNN 2 @vector $vec AS score]", q.Expression())
}

func TestKNN_LimitDefaultsToK(t *testing.T) {
	fs := seededStore(t)
	r := vecsearch.NewQueryRunner(fs, testSpec(4), "dist", 3)

	_, err := r.KNN(context.Background(), []float32{1, 0, 0, 0}, 3, store.Page{Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, fs.lastQuery.Limit)
	assert.Equal(t, 1, fs.lastQuery.Offset)
	assert.Equal(t, "dist", fs.lastQuery.ScoreField)
	assert.Equal(t, 3, fs.lastQuery.Dialect)
}

func TestKNN_InvalidInput(t *testing.T) {
	fs := seededStore(t)
	r := vecsearch.NewQueryRunner(fs, testSpec(4), "", 0)
	ctx := context.Background()
	vec := []float32{1, 0, 0, 0}

	tests := []struct {
		name string
		run  func() error
	}{
		{"zero k", func() error { _, err := r.KNN(ctx, vec, 0, store.Page{}); return err }},
		{"short vector", func() error { _, err := r.KNN(ctx, vec[:3], 2, store.Page{}); return err }},
		{"negative offset", func() error { _, err := r.KNN(ctx, vec, 2, store.Page{Offset: -1}); return err }},
		{"negative limit", func() error { _, err := r.KNN(ctx, vec, 2, store.Page{Limit: -1}); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			require.Error(t, err)
			assert.True(t, sigilerr.IsInvalidInput(err))
		})
	}
}

func TestKNN_EmptyIndexReturnsNoMatches(t *testing.T) {
	ctx := context.Background()
	fs := newFakeStore()
	require.NoError(t, vecsearch.NewProvisioner(fs).EnsureIndex(ctx, testSpec(4)))

	matches, err := vecsearch.NewQueryRunner(fs, testSpec(4), "", 0).KNN(ctx, []float32{1, 0, 0, 0}, 2, store.Page{})
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestKNN_MissingIndexIsNotFound(t *testing.T) {
	_, err := vecsearch.NewQueryRunner(newFakeStore(), testSpec(4), "", 0).
		KNN(context.Background(), []float32{1, 0, 0, 0}, 2, store.Page{})
	require.Error(t, err)
	assert.True(t, sigilerr.HasCode(err, sigilerr.CodeStoreIndexNotFound))
}
