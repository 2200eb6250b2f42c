// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package vecsearch

import (
	"context"
	"log/slog"

	"github.com/sigil-dev/redvec/internal/embedding"
	"github.com/sigil-dev/redvec/internal/store"
	sigilerr "github.com/sigil-dev/redvec/pkg/errors"
)

// Workflow runs provision, load and query strictly in that order.
type Workflow struct {
	Provisioner *Provisioner
	Loader      *Loader
	Runner      *QueryRunner
	Spec        store.IndexSpec
}

// NewWorkflow wires the three stages over one backend.
func NewWorkflow(s store.IndexStore, spec store.IndexSpec, scoreField string, dialect int) *Workflow {
	return &Workflow{
		Provisioner: NewProvisioner(s),
		Loader:      NewLoader(s, spec),
		Runner:      NewQueryRunner(s, spec, scoreField, dialect),
		Spec:        spec,
	}
}

// RunResult reports what one workflow run did.
type RunResult struct {
	Written []store.WriteResult
	Matches []store.Match
}

// Run provisions the index, loads records built from seeds, and queries
// with a fresh vector from source. Any per-record write failure stops the
// run before the query.
func (w *Workflow) Run(ctx context.Context, source embedding.Source, seeds []Seed, k int, page store.Page) (*RunResult, error) {
	if source.Dimension() != w.Spec.Dimension {
		return nil, sigilerr.Errorf(sigilerr.CodeEmbedRequestInvalid,
			"%s source produces %d dimensions, index %s declares %d",
			source.Name(), source.Dimension(), w.Spec.Name, w.Spec.Dimension)
	}

	if err := w.Provisioner.EnsureIndex(ctx, w.Spec); err != nil {
		return nil, err
	}

	records, err := SyntheticRecords(ctx, source, seeds)
	if err != nil {
		return nil, err
	}
	written, err := w.Loader.Load(ctx, records)
	if err != nil {
		return &RunResult{Written: written}, err
	}
	for _, r := range written {
		if r.Err != nil {
			return &RunResult{Written: written}, r.Err
		}
	}

	vec, err := QueryVector(ctx, source, "query")
	if err != nil {
		return &RunResult{Written: written}, err
	}
	matches, err := w.Runner.KNN(ctx, vec, k, page)
	if err != nil {
		return &RunResult{Written: written}, err
	}

	slog.Info("workflow finished", "index", w.Spec.Name, "records", len(written), "matches", len(matches))
	return &RunResult{Written: written, Matches: matches}, nil
}
