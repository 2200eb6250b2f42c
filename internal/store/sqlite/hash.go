// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package sqlite

import (
	"context"

	"github.com/sigil-dev/redvec/internal/store"
	"github.com/sigil-dev/redvec/internal/vector"
	sigilerr "github.com/sigil-dev/redvec/pkg/errors"
)

const upsertField = `INSERT INTO hashes(key, field, value) VALUES (?, ?, ?)
ON CONFLICT(key, field) DO UPDATE SET value = excluded.value`

// WriteRecords writes every record's hash inside one transaction. Each
// record is written under its own savepoint, so a failed record leaves no
// fields behind; it is reported in its WriteResult and does not undo the
// others.
func (s *Store) WriteRecords(ctx context.Context, spec store.IndexSpec, records []vector.Record) ([]store.WriteResult, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	results := make([]store.WriteResult, len(records))
	if len(records) == 0 {
		return results, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return results, sigilerr.Wrap(err, sigilerr.CodeStoreConnectionFailure, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, upsertField)
	if err != nil {
		return results, sigilerr.Wrap(err, sigilerr.CodeStoreDatabaseFailure, "preparing hash write")
	}
	defer func() { _ = stmt.Close() }()

	for i, r := range records {
		key := r.Key(spec.Prefix)
		results[i].Key = key

		if _, err := tx.ExecContext(ctx, `SAVEPOINT record`); err != nil {
			return results, sigilerr.Wrap(err, sigilerr.CodeStoreDatabaseFailure, "opening record savepoint", sigilerr.FieldKey(key))
		}

		fields := [][2]any{
			{store.NameField, r.Name},
			{spec.TagField, r.Tag},
			{spec.VectorField, vector.Encode(r.Vector)},
		}
		for _, f := range fields {
			if _, err := stmt.ExecContext(ctx, key, f[0], f[1]); err != nil {
				results[i].Err = sigilerr.Wrap(err, sigilerr.CodeStoreWriteFailure, "writing hash field", sigilerr.FieldKey(key))
				break
			}
		}

		if results[i].Err != nil {
			if _, err := tx.ExecContext(ctx, `ROLLBACK TO record`); err != nil {
				return results, sigilerr.Wrap(err, sigilerr.CodeStoreDatabaseFailure, "rolling back record", sigilerr.FieldKey(key))
			}
		}
		if _, err := tx.ExecContext(ctx, `RELEASE record`); err != nil {
			return results, sigilerr.Wrap(err, sigilerr.CodeStoreDatabaseFailure, "releasing record savepoint", sigilerr.FieldKey(key))
		}
	}

	if err := tx.Commit(); err != nil {
		return results, sigilerr.Wrap(err, sigilerr.CodeStoreConnectionFailure, "committing batch",
			sigilerr.Field("records", len(records)))
	}
	return results, nil
}

// ReadRecord reads every field of the hash at spec.Prefix+name.
func (s *Store) ReadRecord(ctx context.Context, spec store.IndexSpec, name string) (*vector.Record, error) {
	key := spec.Prefix + name
	rows, err := s.db.QueryContext(ctx, `SELECT field, value FROM hashes WHERE key = ?`, key)
	if err != nil {
		return nil, sigilerr.Wrap(err, sigilerr.CodeStoreDatabaseFailure, "reading hash", sigilerr.FieldKey(key))
	}
	defer func() { _ = rows.Close() }()

	fields := map[string][]byte{}
	for rows.Next() {
		var field string
		var value []byte
		if err := rows.Scan(&field, &value); err != nil {
			return nil, sigilerr.Wrap(err, sigilerr.CodeStoreDatabaseFailure, "scanning hash field", sigilerr.FieldKey(key))
		}
		fields[field] = value
	}
	if err := rows.Err(); err != nil {
		return nil, sigilerr.Wrap(err, sigilerr.CodeStoreDatabaseFailure, "iterating hash fields", sigilerr.FieldKey(key))
	}
	if len(fields) == 0 {
		return nil, store.KeyNotFound(key)
	}

	raw, ok := fields[spec.VectorField]
	if !ok {
		return nil, sigilerr.New(sigilerr.CodeStoreRecordDecodeInvalid,
			"hash has no vector field "+spec.VectorField, sigilerr.FieldKey(key))
	}
	vec, err := vector.Decode(raw)
	if err != nil {
		return nil, sigilerr.With(err, sigilerr.FieldKey(key))
	}

	rec := &vector.Record{Name: string(fields[store.NameField]), Tag: string(fields[spec.TagField]), Vector: vec}
	if rec.Name == "" {
		rec.Name = name
	}
	return rec, nil
}
