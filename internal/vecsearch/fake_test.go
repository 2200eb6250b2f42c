// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package vecsearch_test

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/sigil-dev/redvec/internal/store"
	"github.com/sigil-dev/redvec/internal/vector"
	sigilerr "github.com/sigil-dev/redvec/pkg/errors"
)

// fakeStore is an in-memory IndexStore and KVStore with call counters and
// injectable failures.
type fakeStore struct {
	mu      sync.Mutex
	indexes map[string]store.IndexSpec
	hashes  map[string]vector.Record
	kv      map[string]string

	infoCalls   atomic.Int32
	createCalls atomic.Int32
	writeCalls  atomic.Int32

	infoErr   error // returned by IndexInfo instead of looking up
	createErr error // returned by CreateIndex instead of creating
	writeErr  error
	lastQuery store.KNNQuery
}

var _ store.IndexStore = (*fakeStore)(nil)
var _ store.KVStore = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{
		indexes: map[string]store.IndexSpec{},
		hashes:  map[string]vector.Record{},
		kv:      map[string]string{},
	}
}

func (f *fakeStore) IndexInfo(_ context.Context, name string) (*store.IndexInfo, error) {
	f.infoCalls.Add(1)
	if f.infoErr != nil {
		return nil, f.infoErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	spec, ok := f.indexes[name]
	if !ok {
		return nil, store.IndexNotFound(name)
	}
	return &store.IndexInfo{Name: name, Prefixes: []string{spec.Prefix}, NumDocs: int64(len(f.hashes))}, nil
}

func (f *fakeStore) CreateIndex(_ context.Context, spec store.IndexSpec) error {
	f.createCalls.Add(1)
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.indexes[spec.Name]; ok {
		return store.IndexConflict(spec.Name)
	}
	f.indexes[spec.Name] = spec
	return nil
}

func (f *fakeStore) DropIndex(_ context.Context, name string, _ bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.indexes[name]; !ok {
		return store.IndexNotFound(name)
	}
	delete(f.indexes, name)
	return nil
}

func (f *fakeStore) WriteRecords(_ context.Context, spec store.IndexSpec, records []vector.Record) ([]store.WriteResult, error) {
	f.writeCalls.Add(1)
	results := make([]store.WriteResult, len(records))
	for i, r := range records {
		results[i].Key = r.Key(spec.Prefix)
	}
	if f.writeErr != nil {
		return results, f.writeErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, r := range records {
		f.hashes[results[i].Key] = r
	}
	return results, nil
}

func (f *fakeStore) ReadRecord(_ context.Context, spec store.IndexSpec, name string) (*vector.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.hashes[spec.Prefix+name]
	if !ok {
		return nil, store.KeyNotFound(spec.Prefix + name)
	}
	return &r, nil
}

func (f *fakeStore) Search(_ context.Context, index string, q store.KNNQuery) ([]store.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastQuery = q
	spec, ok := f.indexes[index]
	if !ok {
		return nil, store.IndexNotFound(index)
	}

	var matches []store.Match
	for key, r := range f.hashes {
		if !strings.HasPrefix(key, spec.Prefix) || len(r.Vector) != spec.Dimension {
			continue
		}
		matches = append(matches, store.Match{ID: key, Score: cosineDistance(q.Vector, r.Vector)})
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score < matches[j].Score
		}
		return matches[i].ID < matches[j].ID
	})
	if len(matches) > q.K {
		matches = matches[:q.K]
	}
	if q.Offset >= len(matches) {
		return []store.Match{}, nil
	}
	matches = matches[q.Offset:]
	if len(matches) > q.Limit {
		matches = matches[:q.Limit]
	}
	return matches, nil
}

func (f *fakeStore) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.kv[key] = value
	return nil
}

func (f *fakeStore) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.kv[key]
	if !ok {
		return "", store.KeyNotFound(key)
	}
	return v, nil
}

func cosineDistance(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
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

// errConnRefused mimics an unreachable server.
var errConnRefused = sigilerr.New(sigilerr.CodeStoreConnectionFailure, "dial tcp 127.0.0.1:6379: connect: connection refused")
