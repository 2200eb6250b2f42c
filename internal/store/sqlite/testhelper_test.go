// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package sqlite_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sigil-dev/redvec/internal/store"
	"github.com/sigil-dev/redvec/internal/store/sqlite"
	"github.com/sigil-dev/redvec/internal/vector"
)

// testDir creates a temp directory for a test and returns cleanup func.
func testDir(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "redvec-test-*")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	return dir
}

// testDBPath returns a temp SQLite database path.
func testDBPath(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join(testDir(t), name+".db")
}

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.New(testDBPath(t, "redvec"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testSpec(dim int) store.IndexSpec {
	return store.IndexSpec{
		Name:        "index",
		Prefix:      "doc:",
		TagField:    "tag",
		VectorField: "vector",
		Dimension:   dim,
		Metric:      vector.MetricCosine,
		Algorithm:   vector.AlgorithmFlat,
		ElementType: vector.ElementFloat32,
	}
}

func knn(k int, vec []float32) store.KNNQuery {
	return store.KNNQuery{K: k, VectorField: "vector", ScoreField: "score", Limit: k, Vector: vec, Dialect: 2}
}
