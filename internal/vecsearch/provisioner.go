// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package vecsearch

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"golang.org/x/sync/singleflight"

	"github.com/sigil-dev/redvec/internal/store"
	sigilerr "github.com/sigil-dev/redvec/pkg/errors"
)

// Provisioner creates an index only when it does not already exist.
type Provisioner struct {
	store store.IndexStore
	group singleflight.Group
}

func NewProvisioner(s store.IndexStore) *Provisioner {
	return &Provisioner{store: s}
}

// EnsureIndex makes sure the index described by spec exists. Only a
// NotFound answer from the existence check leads to creation; any other
// failure is returned without attempting a create. Concurrent calls with
// an identical spec share one check; a call that differs in any field
// runs its own.
func (p *Provisioner) EnsureIndex(ctx context.Context, spec store.IndexSpec) error {
	if err := spec.Validate(); err != nil {
		return err
	}

	_, err, shared := p.group.Do(fmt.Sprintf("%+v", spec), func() (any, error) {
		return nil, p.ensure(ctx, spec)
	})
	if shared {
		slog.Debug("index ensure shared with concurrent caller", "index", spec.Name)
	}
	return err
}

func (p *Provisioner) ensure(ctx context.Context, spec store.IndexSpec) error {
	info, err := p.store.IndexInfo(ctx, spec.Name)
	if err == nil {
		slog.Info("index already exists", "index", spec.Name, "num_docs", info.NumDocs)
		if spec.Prefix != "" && len(info.Prefixes) > 0 && !slices.Contains(info.Prefixes, spec.Prefix) {
			slog.Warn("existing index covers a different key prefix",
				"index", spec.Name, "want", spec.Prefix, "have", info.Prefixes)
		}
		return nil
	}
	if !sigilerr.IsNotFound(err) {
		return sigilerr.Wrap(err, sigilerr.CodeStoreIndexEnsureFailure, "checking index existence",
			sigilerr.FieldIndex(spec.Name))
	}

	err = p.store.CreateIndex(ctx, spec)
	if err == nil {
		return nil
	}
	if !sigilerr.IsConflict(err) {
		return sigilerr.Wrap(err, sigilerr.CodeStoreIndexEnsureFailure, "creating index",
			sigilerr.FieldIndex(spec.Name))
	}

	// Another client created it between our check and create.
	if _, infoErr := p.store.IndexInfo(ctx, spec.Name); infoErr != nil {
		return sigilerr.Wrap(infoErr, sigilerr.CodeStoreIndexEnsureFailure, "confirming concurrently created index",
			sigilerr.FieldIndex(spec.Name))
	}
	slog.Info("index created concurrently by another client", "index", spec.Name)
	return nil
}
