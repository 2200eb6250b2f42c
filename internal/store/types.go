// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package store

import (
	"fmt"
	"strings"

	"github.com/sigil-dev/redvec/internal/vector"
)

// NameField is the hash field every record stores its name under. Tag and
// vector fields must not reuse it.
const NameField = "name"

// IndexSpec declares a hash index with one tag field and one vector field.
type IndexSpec struct {
	Name        string
	Prefix      string
	TagField    string
	VectorField string
	Dimension   int
	Metric      vector.Metric
	Algorithm   vector.Algorithm
	ElementType vector.ElementType
}

// FieldInfo describes one schema attribute reported by the backend.
type FieldInfo struct {
	Identifier string
	Attribute  string
	Type       string
}

// IndexInfo is what the backend reports about an existing index.
type IndexInfo struct {
	Name     string
	Prefixes []string
	NumDocs  int64
	Fields   []FieldInfo
}

// Match is one KNN hit. Score is a distance: lower is closer.
type Match struct {
	ID    string
	Score float64
}

// WriteResult is the outcome of one staged write in a batch.
type WriteResult struct {
	Key string
	Err error
}

// Page selects a window of results.
type Page struct {
	Offset int
	Limit  int
}

// KNNQuery is a k-nearest-neighbor query over a vector field.
type KNNQuery struct {
	K           int
	TagField    string
	Tags        []string
	Filter      string
	VectorField string
	ScoreField  string
	Offset      int
	Limit       int
	Vector      []float32
	Dialect     int
}

// VectorParam is the query parameter name bound to the encoded vector.
const VectorParam = "vec"

// Expression renders the search query string, e.g.
//
//	*=>[KNN 2 @vector $vec AS score]
//	(@tag:{foo})=>[KNN 2 @vector $vec AS score]
func (q KNNQuery) Expression() string {
	return fmt.Sprintf("%s=>[KNN %d @%s $%s AS %s]", q.prefilter(), q.K, q.VectorField, VectorParam, q.ScoreField)
}

func (q KNNQuery) prefilter() string {
	var parts []string
	if f := strings.TrimSpace(q.Filter); f != "" && f != "*" {
		parts = append(parts, f)
	}
	if len(q.Tags) > 0 {
		escaped := make([]string, len(q.Tags))
		for i, t := range q.Tags {
			escaped[i] = EscapeTag(t)
		}
		parts = append(parts, fmt.Sprintf("@%s:{%s}", q.TagField, strings.Join(escaped, "|")))
	}
	if len(parts) == 0 {
		return "*"
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// EscapeTag backslash-escapes every character of a tag value that is not
// a letter, digit or underscore.
func EscapeTag(s string) string {
	var b strings.Builder
	for _, r := range s {
		if !(r == '_' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r > 127) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
