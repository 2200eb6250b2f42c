// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package server

import (
	"github.com/sigil-dev/redvec/internal/embedding"
	"github.com/sigil-dev/redvec/internal/store"
	"github.com/sigil-dev/redvec/internal/vecsearch"
	sigilerr "github.com/sigil-dev/redvec/pkg/errors"
)

// Services holds dependencies injected into route handlers.
// Use NewServices to ensure all required services are provided.
type Services struct {
	backend  store.Backend
	workflow *vecsearch.Workflow
	source   embedding.Source
	defaults QueryDefaults
}

// QueryDefaults fill in search request fields the client leaves out.
type QueryDefaults struct {
	K    int
	Page store.Page
}

// NewServices creates a Services instance with validation.
// The workflow must be built over backend.
func NewServices(backend store.Backend, wf *vecsearch.Workflow, source embedding.Source, defaults QueryDefaults) (*Services, error) {
	if backend == nil {
		return nil, sigilerr.New(sigilerr.CodeServerConfigInvalid, "storage backend is required")
	}
	if wf == nil {
		return nil, sigilerr.New(sigilerr.CodeServerConfigInvalid, "workflow is required")
	}
	if source == nil {
		return nil, sigilerr.New(sigilerr.CodeServerConfigInvalid, "embedding source is required")
	}
	if source.Dimension() != wf.Spec.Dimension {
		return nil, sigilerr.Errorf(sigilerr.CodeServerConfigInvalid,
			"embedding source produces %d dimensions, index %s declares %d",
			source.Dimension(), wf.Spec.Name, wf.Spec.Dimension)
	}
	if defaults.K <= 0 {
		defaults.K = 2
	}
	return &Services{backend: backend, workflow: wf, source: source, defaults: defaults}, nil
}
