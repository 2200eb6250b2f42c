// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/sigil-dev/redvec/internal/store"
	"github.com/sigil-dev/redvec/internal/vecsearch"
	"github.com/sigil-dev/redvec/internal/vector"
	sigilerr "github.com/sigil-dev/redvec/pkg/errors"
)

// RegisterServices sets the service dependencies and registers REST routes.
func (s *Server) RegisterServices(svc *Services) {
	s.services = svc
	s.registerRoutes()
}

func (s *Server) registerHealthRoute() {
	huma.Register(s.api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Tags:        []string{"system"},
	}, s.handleHealth)
}

func (s *Server) registerRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-index",
		Method:      http.MethodGet,
		Path:        "/api/v1/index",
		Summary:     "Describe the configured index",
		Tags:        []string{"index"},
	}, s.handleGetIndex)

	huma.Register(s.api, huma.Operation{
		OperationID: "ensure-index",
		Method:      http.MethodPut,
		Path:        "/api/v1/index",
		Summary:     "Create the configured index if it does not exist",
		Tags:        []string{"index"},
	}, s.handleEnsureIndex)

	huma.Register(s.api, huma.Operation{
		OperationID: "load-records",
		Method:      http.MethodPost,
		Path:        "/api/v1/records",
		Summary:     "Write a batch of records",
		Tags:        []string{"records"},
	}, s.handleLoadRecords)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-record",
		Method:      http.MethodGet,
		Path:        "/api/v1/records/{name}",
		Summary:     "Read one record",
		Tags:        []string{"records"},
	}, s.handleGetRecord)

	huma.Register(s.api, huma.Operation{
		OperationID: "search",
		Method:      http.MethodPost,
		Path:        "/api/v1/search",
		Summary:     "K-nearest-neighbor search",
		Tags:        []string{"search"},
	}, s.handleSearch)
}

// --- Request/Response types for huma ---

type healthOutput struct {
	Body struct {
		Status  string `json:"status" example:"ok" doc:"Health status"`
		Backend string `json:"backend,omitempty" example:"redis" doc:"Storage backend"`
	}
}

// IndexBody describes an index as the backend reports it.
type IndexBody struct {
	Name     string      `json:"name" example:"index"`
	Prefixes []string    `json:"prefixes"`
	NumDocs  int64       `json:"num_docs"`
	Fields   []FieldBody `json:"fields"`
}

// FieldBody is one schema attribute of an index.
type FieldBody struct {
	Identifier string `json:"identifier" example:"vector"`
	Attribute  string `json:"attribute" example:"vector"`
	Type       string `json:"type" example:"VECTOR"`
}

type indexOutput struct {
	Body IndexBody
}

// RecordBody is one record on the wire. Vector may be omitted on write, in
// which case it is embedded from "name tag".
type RecordBody struct {
	Name   string    `json:"name" minLength:"1" example:"a"`
	Tag    string    `json:"tag,omitempty" example:"foo"`
	Vector []float32 `json:"vector,omitempty"`
}

type loadRecordsInput struct {
	Body struct {
		Records []RecordBody `json:"records" minItems:"1"`
	}
}

// WriteResultBody reports one record of a batch.
type WriteResultBody struct {
	Key   string `json:"key" example:"doc:a"`
	Error string `json:"error,omitempty"`
}

type loadRecordsOutput struct {
	Body struct {
		Written int               `json:"written"`
		Failed  int               `json:"failed"`
		Results []WriteResultBody `json:"results"`
	}
}

type getRecordInput struct {
	Name string `path:"name"`
}

type getRecordOutput struct {
	Body RecordBody
}

type searchInput struct {
	Body struct {
		Vector []float32 `json:"vector,omitempty" doc:"Query vector; embedded from text when omitted"`
		Text   string    `json:"text,omitempty" example:"query"`
		K      int       `json:"k,omitempty" minimum:"0" example:"2"`
		Offset int       `json:"offset,omitempty" minimum:"0"`
		Limit  int       `json:"limit,omitempty" minimum:"0" example:"2"`
		Tags   []string  `json:"tags,omitempty"`
		Filter string    `json:"filter,omitempty"`
	}
}

// MatchBody is one search hit.
type MatchBody struct {
	ID    string  `json:"id" example:"doc:a"`
	Score float64 `json:"score"`
}

type searchOutput struct {
	Body struct {
		Matches []MatchBody `json:"matches"`
	}
}

// --- Handlers ---

func (s *Server) handleHealth(ctx context.Context, _ *struct{}) (*healthOutput, error) {
	out := &healthOutput{}
	out.Body.Status = "ok"
	if s.services == nil {
		return out, nil
	}
	out.Body.Backend = s.services.backend.Name()
	if err := s.services.backend.Ping(ctx); err != nil {
		return nil, httpError("pinging backend", err)
	}
	return out, nil
}

func (s *Server) handleGetIndex(ctx context.Context, _ *struct{}) (*indexOutput, error) {
	info, err := s.services.backend.IndexInfo(ctx, s.services.workflow.Spec.Name)
	if err != nil {
		return nil, httpError("describing index", err)
	}
	return &indexOutput{Body: indexBody(info)}, nil
}

func (s *Server) handleEnsureIndex(ctx context.Context, _ *struct{}) (*indexOutput, error) {
	spec := s.services.workflow.Spec
	if err := s.services.workflow.Provisioner.EnsureIndex(ctx, spec); err != nil {
		return nil, httpError("ensuring index", err)
	}
	info, err := s.services.backend.IndexInfo(ctx, spec.Name)
	if err != nil {
		return nil, httpError("describing index", err)
	}
	return &indexOutput{Body: indexBody(info)}, nil
}

func (s *Server) handleLoadRecords(ctx context.Context, input *loadRecordsInput) (*loadRecordsOutput, error) {
	records := make([]vector.Record, len(input.Body.Records))
	var missing []vecsearch.Seed
	var missingIdx []int
	for i, r := range input.Body.Records {
		records[i] = vector.Record{Name: r.Name, Tag: r.Tag, Vector: r.Vector}
		if len(r.Vector) == 0 {
			missing = append(missing, vecsearch.Seed{Name: r.Name, Tag: r.Tag})
			missingIdx = append(missingIdx, i)
		}
	}
	if len(missing) > 0 {
		embedded, err := vecsearch.SyntheticRecords(ctx, s.services.source, missing)
		if err != nil {
			return nil, httpError("embedding records", err)
		}
		for j, i := range missingIdx {
			records[i].Vector = embedded[j].Vector
		}
	}

	results, err := s.services.workflow.Loader.Load(ctx, records)
	if err != nil {
		return nil, httpError("loading records", err)
	}

	out := &loadRecordsOutput{}
	out.Body.Results = make([]WriteResultBody, len(results))
	for i, r := range results {
		out.Body.Results[i] = WriteResultBody{Key: r.Key}
		if r.Err != nil {
			out.Body.Results[i].Error = r.Err.Error()
			out.Body.Failed++
			continue
		}
		out.Body.Written++
	}
	return out, nil
}

func (s *Server) handleGetRecord(ctx context.Context, input *getRecordInput) (*getRecordOutput, error) {
	rec, err := s.services.workflow.Loader.Fetch(ctx, input.Name)
	if err != nil {
		return nil, httpError("reading record", err)
	}
	return &getRecordOutput{Body: RecordBody{Name: rec.Name, Tag: rec.Tag, Vector: rec.Vector}}, nil
}

func (s *Server) handleSearch(ctx context.Context, input *searchInput) (*searchOutput, error) {
	body := input.Body

	vec := body.Vector
	if len(vec) == 0 {
		text := body.Text
		if text == "" {
			text = "query"
		}
		var err error
		if vec, err = vecsearch.QueryVector(ctx, s.services.source, text); err != nil {
			return nil, httpError("embedding query", err)
		}
	}

	k := body.K
	if k == 0 {
		k = s.services.defaults.K
	}
	page := store.Page{Offset: body.Offset, Limit: body.Limit}
	if body.Offset == 0 && body.Limit == 0 {
		page = s.services.defaults.Page
	}

	var opts []vecsearch.QueryOption
	if len(body.Tags) > 0 {
		opts = append(opts, vecsearch.WithTags(body.Tags...))
	}
	if body.Filter != "" {
		opts = append(opts, vecsearch.WithFilter(body.Filter))
	}

	matches, err := s.services.workflow.Runner.KNN(ctx, vec, k, page, opts...)
	if err != nil {
		return nil, httpError("searching", err)
	}

	out := &searchOutput{}
	out.Body.Matches = make([]MatchBody, len(matches))
	for i, m := range matches {
		out.Body.Matches[i] = MatchBody{ID: m.ID, Score: m.Score}
	}
	return out, nil
}

func indexBody(info *store.IndexInfo) IndexBody {
	body := IndexBody{
		Name:     info.Name,
		Prefixes: info.Prefixes,
		NumDocs:  info.NumDocs,
		Fields:   make([]FieldBody, len(info.Fields)),
	}
	for i, f := range info.Fields {
		body.Fields[i] = FieldBody{Identifier: f.Identifier, Attribute: f.Attribute, Type: f.Type}
	}
	return body
}

// httpError maps a coded error onto the matching HTTP status. Details of
// internal failures are logged, not returned.
func httpError(op string, err error) error {
	status := sigilerr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "op", op, "code", sigilerr.CodeOf(err), "error", err)
		if status == http.StatusInternalServerError {
			return huma.NewError(status, op+" failed")
		}
	}
	return huma.NewError(status, op+": "+err.Error())
}
