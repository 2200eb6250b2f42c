// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package sqlite_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sigil-dev/redvec/internal/vector"
	sigilerr "github.com/sigil-dev/redvec/pkg/errors"
)

var threeRecords = []vector.Record{
	{Name: "a", Tag: "foo", Vector: []float32{1, 0, 0, 0}},
	{Name: "b", Tag: "foo", Vector: []float32{0, 1, 0, 0}},
	{Name: "c", Tag: "bar", Vector: []float32{0.9, 0.1, 0, 0}},
}

func TestIndex_CreateInfoConflict(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.IndexInfo(ctx, "index")
	require.Error(t, err)
	assert.True(t, sigilerr.IsNotFound(err))

	require.NoError(t, s.CreateIndex(ctx, testSpec(4)))

	info, err := s.IndexInfo(ctx, "index")
	require.NoError(t, err)
	assert.Equal(t, "index", info.Name)
	assert.Equal(t, []string{"doc:"}, info.Prefixes)
	assert.Equal(t, int64(0), info.NumDocs)
	require.Len(t, info.Fields, 2)
	assert.Equal(t, "TAG", info.Fields[0].Type)
	assert.Equal(t, "VECTOR", info.Fields[1].Type)

	err = s.CreateIndex(ctx, testSpec(4))
	require.Error(t, err)
	assert.True(t, sigilerr.IsConflict(err))
}

func TestIndex_RejectsInnerProduct(t *testing.T) {
	spec := testSpec(4)
	spec.Metric = vector.MetricIP

	err := newTestStore(t).CreateIndex(context.Background(), spec)
	require.Error(t, err)
	assert.True(t, sigilerr.IsInvalidInput(err))
}

func TestIndex_CountsOnlyPrefixedMatchingDimension(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	spec := testSpec(4)

	// Written before the index exists: picked up on creation.
	_, err := s.WriteRecords(ctx, spec, threeRecords[:2])
	require.NoError(t, err)
	require.NoError(t, s.CreateIndex(ctx, spec))

	// Written after: picked up on write.
	_, err = s.WriteRecords(ctx, spec, threeRecords[2:])
	require.NoError(t, err)

	// Outside the prefix, and wrong size: neither is indexed.
	other := spec
	other.Prefix = "other:"
	_, err = s.WriteRecords(ctx, other, threeRecords[:1])
	require.NoError(t, err)
	_, err = s.WriteRecords(ctx, spec, []vector.Record{{Name: "short", Tag: "foo", Vector: []float32{1, 2}}})
	require.NoError(t, err)

	info, err := s.IndexInfo(ctx, "index")
	require.NoError(t, err)
	assert.Equal(t, int64(3), info.NumDocs)
}

func TestSearch_KNNOrderedByDistance(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	spec := testSpec(4)
	require.NoError(t, s.CreateIndex(ctx, spec))
	_, err := s.WriteRecords(ctx, spec, threeRecords)
	require.NoError(t, err)

	matches, err := s.Search(ctx, "index", knn(2, []float32{1, 0, 0, 0}))
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "doc:a", matches[0].ID)
	assert.Equal(t, "doc:c", matches[1].ID)
	assert.InDelta(t, 0.0, matches[0].Score, 1e-6)
	assert.LessOrEqual(t, matches[0].Score, matches[1].Score)
	for _, m := range matches {
		assert.True(t, strings.HasPrefix(m.ID, spec.Prefix))
	}
}

func TestSearch_PageWithinK(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	spec := testSpec(4)
	require.NoError(t, s.CreateIndex(ctx, spec))
	_, err := s.WriteRecords(ctx, spec, threeRecords)
	require.NoError(t, err)

	q := knn(3, []float32{1, 0, 0, 0})
	q.Offset, q.Limit = 1, 5
	matches, err := s.Search(ctx, "index", q)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "doc:c", matches[0].ID)
	assert.Equal(t, "doc:b", matches[1].ID)

	// The page is cut from the k nearest, never beyond them.
	q = knn(1, []float32{1, 0, 0, 0})
	q.Limit = 10
	matches, err = s.Search(ctx, "index", q)
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestSearch_TagFilter(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	spec := testSpec(4)
	require.NoError(t, s.CreateIndex(ctx, spec))
	_, err := s.WriteRecords(ctx, spec, threeRecords)
	require.NoError(t, err)

	q := knn(2, []float32{1, 0, 0, 0})
	q.TagField, q.Tags = "tag", []string{"foo"}
	matches, err := s.Search(ctx, "index", q)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "doc:a", matches[0].ID)
	assert.Equal(t, "doc:b", matches[1].ID)

	q.Filter = "@year:[2020 2024]"
	_, err = s.Search(ctx, "index", q)
	require.Error(t, err)
	assert.True(t, sigilerr.IsInvalidInput(err))
}

func TestSearch_L2(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	spec := testSpec(4)
	spec.Metric = vector.MetricL2
	require.NoError(t, s.CreateIndex(ctx, spec))
	_, err := s.WriteRecords(ctx, spec, threeRecords)
	require.NoError(t, err)

	matches, err := s.Search(ctx, "index", knn(3, []float32{0, 1, 0, 0}))
	require.NoError(t, err)
	require.Len(t, matches, 3)
	assert.Equal(t, "doc:b", matches[0].ID)
	assert.InDelta(t, 0.0, matches[0].Score, 1e-6)
}

func TestSearch_EmptyIndex(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.CreateIndex(ctx, testSpec(4)))

	matches, err := s.Search(ctx, "index", knn(2, []float32{1, 0, 0, 0}))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestSearch_Errors(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Search(ctx, "index", knn(2, []float32{1, 0, 0, 0}))
	require.Error(t, err)
	assert.True(t, sigilerr.IsNotFound(err))

	require.NoError(t, s.CreateIndex(ctx, testSpec(4)))
	_, err = s.Search(ctx, "index", knn(2, []float32{1, 0}))
	require.Error(t, err)
	assert.True(t, sigilerr.IsInvalidInput(err))

	_, err = s.Search(ctx, "index", knn(0, []float32{1, 0, 0, 0}))
	require.Error(t, err)
	assert.True(t, sigilerr.IsInvalidInput(err))
}

func TestDropIndex(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	spec := testSpec(4)
	require.NoError(t, s.CreateIndex(ctx, spec))
	_, err := s.WriteRecords(ctx, spec, threeRecords)
	require.NoError(t, err)

	require.NoError(t, s.DropIndex(ctx, "index", false))
	_, err = s.IndexInfo(ctx, "index")
	assert.True(t, sigilerr.IsNotFound(err))
	_, err = s.ReadRecord(ctx, spec, "a")
	require.NoError(t, err, "documents survive a drop without deleteDocs")

	require.NoError(t, s.CreateIndex(ctx, spec))
	require.NoError(t, s.DropIndex(ctx, "index", true))
	_, err = s.ReadRecord(ctx, spec, "a")
	assert.True(t, sigilerr.IsNotFound(err))

	err = s.DropIndex(ctx, "index", true)
	assert.True(t, sigilerr.IsNotFound(err))
}
