// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package vecsearch

import (
	"context"
	"strings"

	"github.com/sigil-dev/redvec/internal/embedding"
	"github.com/sigil-dev/redvec/internal/vector"
	sigilerr "github.com/sigil-dev/redvec/pkg/errors"
)

// Seed names a record and its tag before a vector is attached.
type Seed struct {
	Name string
	Tag  string
}

// DefaultSeeds are the three demo records.
var DefaultSeeds = []Seed{
	{Name: "a", Tag: "foo"},
	{Name: "b", Tag: "foo"},
	{Name: "c", Tag: "bar"},
}

// Text is what an embedding source is given for the seed.
func (s Seed) Text() string {
	return s.Name + " " + s.Tag
}

// ParseSeeds reads "name/tag" pairs.
func ParseSeeds(specs []string) ([]Seed, error) {
	seeds := make([]Seed, 0, len(specs))
	for _, raw := range specs {
		name, tag, ok := strings.Cut(raw, "/")
		if !ok || name == "" {
			return nil, sigilerr.Errorf(sigilerr.CodeStoreRecordInvalid, "record %q: want name/tag", raw)
		}
		seeds = append(seeds, Seed{Name: name, Tag: tag})
	}
	return seeds, nil
}

// SyntheticRecords attaches a vector from source to every seed. A nil or
// empty seeds uses DefaultSeeds.
func SyntheticRecords(ctx context.Context, source embedding.Source, seeds []Seed) ([]vector.Record, error) {
	if len(seeds) == 0 {
		seeds = DefaultSeeds
	}

	texts := make([]string, len(seeds))
	for i, s := range seeds {
		texts[i] = s.Text()
	}
	vecs, err := source.Embed(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(seeds) {
		return nil, sigilerr.Errorf(sigilerr.CodeEmbedResponseInvalid,
			"%s returned %d vectors for %d records", source.Name(), len(vecs), len(seeds))
	}

	records := make([]vector.Record, len(seeds))
	for i, s := range seeds {
		records[i] = vector.Record{Name: s.Name, Tag: s.Tag, Vector: vecs[i]}
	}
	return records, nil
}

// QueryVector embeds a single query text.
func QueryVector(ctx context.Context, source embedding.Source, text string) ([]float32, error) {
	vecs, err := source.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vecs) != 1 {
		return nil, sigilerr.Errorf(sigilerr.CodeEmbedResponseInvalid,
			"%s returned %d vectors for one query", source.Name(), len(vecs))
	}
	return vecs[0], nil
}
