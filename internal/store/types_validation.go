// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package store

import (
	"github.com/sigil-dev/redvec/internal/vector"
	sigilerr "github.com/sigil-dev/redvec/pkg/errors"
)

// Validate checks that the IndexSpec can be turned into a schema.
func (s IndexSpec) Validate() error {
	if s.Name == "" {
		return sigilerr.New(sigilerr.CodeStoreIndexInvalid, "index: Name is required")
	}
	if s.TagField == "" || s.VectorField == "" {
		return sigilerr.New(sigilerr.CodeStoreIndexInvalid, "index: TagField and VectorField are required",
			sigilerr.FieldIndex(s.Name))
	}
	if s.TagField == s.VectorField {
		return sigilerr.Errorf(sigilerr.CodeStoreIndexInvalid, "index: TagField and VectorField must differ, both are %q", s.TagField)
	}
	if s.TagField == NameField || s.VectorField == NameField {
		return sigilerr.Errorf(sigilerr.CodeStoreIndexInvalid, "index: field name %q is reserved for the record name", NameField)
	}
	if s.Dimension <= 0 {
		return sigilerr.Errorf(sigilerr.CodeStoreIndexInvalid, "index: Dimension must be positive, got %d", s.Dimension)
	}
	if !s.Metric.Valid() {
		return sigilerr.Errorf(sigilerr.CodeStoreIndexInvalid, "index: invalid metric %q", s.Metric)
	}
	if !s.Algorithm.Valid() {
		return sigilerr.Errorf(sigilerr.CodeStoreIndexInvalid, "index: invalid algorithm %q", s.Algorithm)
	}
	if s.ElementType != vector.ElementFloat32 {
		return sigilerr.Errorf(sigilerr.CodeStoreIndexInvalid, "index: unsupported element type %q", s.ElementType)
	}
	return nil
}

// Validate checks the query before it reaches a backend.
func (q KNNQuery) Validate() error {
	if q.K <= 0 {
		return sigilerr.Errorf(sigilerr.CodeStoreQueryInvalid, "query: k must be positive, got %d", q.K)
	}
	if len(q.Vector) == 0 {
		return sigilerr.New(sigilerr.CodeStoreQueryInvalid, "query: vector is required")
	}
	if q.VectorField == "" || q.ScoreField == "" {
		return sigilerr.New(sigilerr.CodeStoreQueryInvalid, "query: VectorField and ScoreField are required")
	}
	if len(q.Tags) > 0 && q.TagField == "" {
		return sigilerr.New(sigilerr.CodeStoreQueryInvalid, "query: TagField is required when filtering by tag")
	}
	if q.Offset < 0 {
		return sigilerr.Errorf(sigilerr.CodeStoreQueryInvalid, "query: offset must not be negative, got %d", q.Offset)
	}
	if q.Limit <= 0 {
		return sigilerr.Errorf(sigilerr.CodeStoreQueryInvalid, "query: limit must be positive, got %d", q.Limit)
	}
	return nil
}
