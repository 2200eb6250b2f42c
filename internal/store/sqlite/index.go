// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"

	"github.com/sigil-dev/redvec/internal/store"
	"github.com/sigil-dev/redvec/internal/vector"
	sigilerr "github.com/sigil-dev/redvec/pkg/errors"
)

// distanceFuncs maps a metric onto the sqlite-vec scalar distance function.
// Both report a distance, so ascending order is nearest first.
var distanceFuncs = map[vector.Metric]string{
	vector.MetricCosine: "vec_distance_cosine",
	vector.MetricL2:     "vec_distance_l2",
}

func (s *Store) loadSpec(ctx context.Context, name string) (store.IndexSpec, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT spec FROM search_indexes WHERE name = ?`, name).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return store.IndexSpec{}, store.IndexNotFound(name)
	}
	if err != nil {
		return store.IndexSpec{}, sigilerr.Wrap(err, sigilerr.CodeStoreDatabaseFailure, "reading index", sigilerr.FieldIndex(name))
	}

	var spec store.IndexSpec
	if err := json.Unmarshal([]byte(raw), &spec); err != nil {
		return store.IndexSpec{}, sigilerr.Wrap(err, sigilerr.CodeStoreDatabaseFailure, "decoding index spec", sigilerr.FieldIndex(name))
	}
	return spec, nil
}

// IndexInfo reports the registration and the number of hashes under the
// prefix whose vector field has the declared size.
func (s *Store) IndexInfo(ctx context.Context, name string) (*store.IndexInfo, error) {
	spec, err := s.loadSpec(ctx, name)
	if err != nil {
		return nil, err
	}

	const q = `SELECT count(*) FROM hashes
WHERE field = ? AND substr(key, 1, length(?)) = ? AND length(value) = ?`
	var n int64
	if err := s.db.QueryRowContext(ctx, q, spec.VectorField, spec.Prefix, spec.Prefix, spec.Dimension*4).Scan(&n); err != nil {
		return nil, sigilerr.Wrap(err, sigilerr.CodeStoreDatabaseFailure, "counting indexed documents", sigilerr.FieldIndex(name))
	}

	return &store.IndexInfo{
		Name:     spec.Name,
		Prefixes: []string{spec.Prefix},
		NumDocs:  n,
		Fields: []store.FieldInfo{
			{Identifier: spec.TagField, Attribute: spec.TagField, Type: "TAG"},
			{Identifier: spec.VectorField, Attribute: spec.VectorField, Type: "VECTOR"},
		},
	}, nil
}

// CreateIndex registers spec. Hashes already under the prefix become
// searchable immediately, as do later writes.
func (s *Store) CreateIndex(ctx context.Context, spec store.IndexSpec) error {
	if err := spec.Validate(); err != nil {
		return err
	}
	if _, ok := distanceFuncs[spec.Metric]; !ok {
		return sigilerr.Errorf(sigilerr.CodeStoreIndexInvalid,
			"metric %s is not supported by the sqlite backend", spec.Metric)
	}

	raw, err := json.Marshal(spec)
	if err != nil {
		return sigilerr.Wrap(err, sigilerr.CodeStoreIndexCreateFailure, "encoding index spec", sigilerr.FieldIndex(spec.Name))
	}

	const q = `INSERT INTO search_indexes(name, prefix, spec) VALUES (?, ?, ?)
ON CONFLICT(name) DO NOTHING`
	res, err := s.db.ExecContext(ctx, q, spec.Name, spec.Prefix, string(raw))
	if err != nil {
		return sigilerr.Wrap(err, sigilerr.CodeStoreIndexCreateFailure, "creating index", sigilerr.FieldIndex(spec.Name))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return sigilerr.Wrap(err, sigilerr.CodeStoreIndexCreateFailure, "creating index", sigilerr.FieldIndex(spec.Name))
	}
	if n == 0 {
		return store.IndexConflict(spec.Name)
	}

	slog.Info("index created", "index", spec.Name, "prefix", spec.Prefix,
		"dimension", spec.Dimension, "metric", spec.Metric, "backend", BackendName)
	return nil
}

// DropIndex removes the registration, and every hash under its prefix
// when deleteDocs is set.
func (s *Store) DropIndex(ctx context.Context, name string, deleteDocs bool) error {
	spec, err := s.loadSpec(ctx, name)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return sigilerr.Wrap(err, sigilerr.CodeStoreDatabaseFailure, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM search_indexes WHERE name = ?`, name); err != nil {
		return sigilerr.Wrap(err, sigilerr.CodeStoreDatabaseFailure, "dropping index", sigilerr.FieldIndex(name))
	}
	if deleteDocs {
		const q = `DELETE FROM hashes WHERE substr(key, 1, length(?)) = ?`
		if _, err := tx.ExecContext(ctx, q, spec.Prefix, spec.Prefix); err != nil {
			return sigilerr.Wrap(err, sigilerr.CodeStoreDatabaseFailure, "deleting index documents", sigilerr.FieldIndex(name))
		}
	}

	if err := tx.Commit(); err != nil {
		return sigilerr.Wrap(err, sigilerr.CodeStoreDatabaseFailure, "committing index drop", sigilerr.FieldIndex(name))
	}
	return nil
}

// Search runs an exact KNN scan: the k nearest hashes are selected first
// and the page is cut from those k.
func (s *Store) Search(ctx context.Context, index string, q store.KNNQuery) ([]store.Match, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	if f := strings.TrimSpace(q.Filter); f != "" && f != "*" {
		return nil, sigilerr.Errorf(sigilerr.CodeStoreQueryInvalid,
			"free-form filter %q is not supported by the sqlite backend; use tags", q.Filter)
	}

	spec, err := s.loadSpec(ctx, index)
	if err != nil {
		return nil, err
	}
	if q.VectorField != spec.VectorField {
		return nil, sigilerr.Errorf(sigilerr.CodeStoreQueryInvalid,
			"index %s has no vector field %q", index, q.VectorField)
	}
	if len(q.Vector) != spec.Dimension {
		return nil, sigilerr.Errorf(sigilerr.CodeStoreQueryInvalid,
			"query vector has %d dimensions, index %s declares %d", len(q.Vector), index, spec.Dimension)
	}
	distance, ok := distanceFuncs[spec.Metric]
	if !ok {
		return nil, sigilerr.Errorf(sigilerr.CodeStoreQueryInvalid, "metric %s is not supported by the sqlite backend", spec.Metric)
	}

	blob, err := sqlite_vec.SerializeFloat32(q.Vector)
	if err != nil {
		return nil, sigilerr.Wrap(err, sigilerr.CodeStoreQueryInvalid, "serializing query vector")
	}

	args := []any{blob, spec.TagField, spec.VectorField, spec.Prefix, spec.Prefix, spec.Dimension * 4}
	var tagFilter string
	if len(q.Tags) > 0 {
		tagFilter = " AND t.value IN (" + strings.TrimSuffix(strings.Repeat("?,", len(q.Tags)), ",") + ")"
		for _, tag := range q.Tags {
			args = append(args, tag)
		}
	}
	args = append(args, q.K, q.Limit, q.Offset)

	query := fmt.Sprintf(`SELECT key, score FROM (
	SELECT v.key AS key, %s(v.value, ?) AS score
	FROM hashes v
	LEFT JOIN hashes t ON t.key = v.key AND t.field = ?
	WHERE v.field = ? AND substr(v.key, 1, length(?)) = ? AND length(v.value) = ?%s
	ORDER BY score, v.key
	LIMIT ?
)
ORDER BY score, key
LIMIT ? OFFSET ?`, distance, tagFilter)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, sigilerr.Wrap(err, sigilerr.CodeStoreQueryFailure, "searching index", sigilerr.FieldIndex(index))
	}
	defer func() { _ = rows.Close() }()

	matches := []store.Match{}
	for rows.Next() {
		var m store.Match
		if err := rows.Scan(&m.ID, &m.Score); err != nil {
			return nil, sigilerr.Wrap(err, sigilerr.CodeStoreQueryResponseInvalid, "scanning search result")
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, sigilerr.Wrap(err, sigilerr.CodeStoreQueryFailure, "iterating search results")
	}
	return matches, nil
}
