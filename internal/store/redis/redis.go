// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package redis

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"syscall"

	goredis "github.com/redis/go-redis/v9"

	"github.com/sigil-dev/redvec/internal/store"
	"github.com/sigil-dev/redvec/internal/vector"
	sigilerr "github.com/sigil-dev/redvec/pkg/errors"
)

// BackendName is the registry name of this backend.
const BackendName = "redis"

// Compile-time interface check.
var _ store.Backend = (*Store)(nil)

// Store implements store.Backend on a Redis server with the search module.
type Store struct {
	client goredis.UniversalClient
}

// New creates a Store for cfg. The connection is established lazily on
// the first command.
func New(cfg store.RedisConfig) (*Store, error) {
	if cfg.Protocol == 0 {
		cfg.Protocol = 2
	}
	if cfg.Protocol != 2 {
		return nil, sigilerr.Errorf(sigilerr.CodeConfigValidateInvalidValue,
			"redis protocol %d is not supported: search replies are parsed as RESP2", cfg.Protocol)
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
		Protocol: cfg.Protocol,
	})
	slog.Debug("redis client created", "addr", cfg.Addr(), "db", cfg.DB, "protocol", cfg.Protocol)
	return NewWithClient(client), nil
}

// NewWithClient wraps an existing client. Close closes the client.
func NewWithClient(client goredis.UniversalClient) *Store {
	return &Store{client: client}
}

func (s *Store) Name() string { return BackendName }

func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return classify(err, sigilerr.CodeStoreDatabaseFailure, "pinging redis")
	}
	return nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

// Set stores value under key with no expiry.
func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		return classify(err, sigilerr.CodeStoreWriteFailure, "setting key "+key)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	v, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", store.KeyNotFound(key)
	}
	if err != nil {
		return "", classify(err, sigilerr.CodeStoreDatabaseFailure, "getting key "+key)
	}
	return v, nil
}

// IndexInfo issues FT.INFO.
func (s *Store) IndexInfo(ctx context.Context, name string) (*store.IndexInfo, error) {
	res, err := s.client.FTInfo(ctx, name).Result()
	if err != nil {
		if isUnknownIndex(err) {
			return nil, store.IndexNotFound(name)
		}
		return nil, classify(err, sigilerr.CodeStoreDatabaseFailure, "reading index info for "+name)
	}

	info := &store.IndexInfo{
		Name:     res.IndexName,
		Prefixes: res.IndexDefinition.Prefixes,
		NumDocs:  int64(res.NumDocs),
	}
	if info.Name == "" {
		info.Name = name
	}
	for _, a := range res.Attributes {
		info.Fields = append(info.Fields, store.FieldInfo{
			Identifier: a.Identifier,
			Attribute:  a.Attribute,
			Type:       a.Type,
		})
	}
	return info, nil
}

// CreateIndex issues FT.CREATE ... ON HASH PREFIX 1 <prefix> SCHEMA
// <tag> TAG <vector> VECTOR <algorithm> ...
func (s *Store) CreateIndex(ctx context.Context, spec store.IndexSpec) error {
	if err := spec.Validate(); err != nil {
		return err
	}

	opts := &goredis.FTCreateOptions{OnHash: true}
	if spec.Prefix != "" {
		opts.Prefix = []interface{}{spec.Prefix}
	}

	err := s.client.FTCreate(ctx, spec.Name, opts,
		&goredis.FieldSchema{FieldName: spec.TagField, FieldType: goredis.SearchFieldTypeTag},
		&goredis.FieldSchema{FieldName: spec.VectorField, FieldType: goredis.SearchFieldTypeVector, VectorArgs: vectorArgs(spec)},
	).Err()
	if err != nil {
		if isIndexExists(err) {
			return store.IndexConflict(spec.Name)
		}
		return classify(err, sigilerr.CodeStoreIndexCreateFailure, "creating index "+spec.Name)
	}
	slog.Info("index created", "index", spec.Name, "prefix", spec.Prefix,
		"dimension", spec.Dimension, "metric", spec.Metric, "algorithm", spec.Algorithm)
	return nil
}

func vectorArgs(spec store.IndexSpec) *goredis.FTVectorArgs {
	if spec.Algorithm == vector.AlgorithmHNSW {
		return &goredis.FTVectorArgs{HNSWOptions: &goredis.FTHNSWOptions{
			Type:           string(spec.ElementType),
			Dim:            spec.Dimension,
			DistanceMetric: string(spec.Metric),
		}}
	}
	return &goredis.FTVectorArgs{FlatOptions: &goredis.FTFlatOptions{
		Type:           string(spec.ElementType),
		Dim:            spec.Dimension,
		DistanceMetric: string(spec.Metric),
	}}
}

// DropIndex issues FT.DROPINDEX, with DD when deleteDocs is set.
func (s *Store) DropIndex(ctx context.Context, name string, deleteDocs bool) error {
	err := s.client.FTDropIndexWithArgs(ctx, name, &goredis.FTDropIndexOptions{DeleteDocs: deleteDocs}).Err()
	if err != nil {
		if isUnknownIndex(err) {
			return store.IndexNotFound(name)
		}
		return classify(err, sigilerr.CodeStoreDatabaseFailure, "dropping index "+name)
	}
	return nil
}

// WriteRecords pipelines one HSET per record.
func (s *Store) WriteRecords(ctx context.Context, spec store.IndexSpec, records []vector.Record) ([]store.WriteResult, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	results := make([]store.WriteResult, len(records))
	if len(records) == 0 {
		return results, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*goredis.IntCmd, len(records))
	for i, r := range records {
		key := r.Key(spec.Prefix)
		results[i].Key = key
		cmds[i] = pipe.HSet(ctx, key, map[string]interface{}{
			store.NameField:  r.Name,
			spec.TagField:    r.Tag,
			spec.VectorField: vector.Encode(r.Vector),
		})
	}

	_, execErr := pipe.Exec(ctx)
	for i, cmd := range cmds {
		if err := cmd.Err(); err != nil {
			results[i].Err = classify(err, sigilerr.CodeStoreWriteFailure, "writing "+results[i].Key)
		}
	}

	if execErr != nil && isTransportError(execErr) {
		return results, sigilerr.Wrap(execErr, sigilerr.CodeStoreConnectionFailure,
			"submitting pipeline", sigilerr.Field("records", len(records)))
	}
	return results, nil
}

// ReadRecord issues HGETALL on spec.Prefix+name.
func (s *Store) ReadRecord(ctx context.Context, spec store.IndexSpec, name string) (*vector.Record, error) {
	key := spec.Prefix + name
	fields, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, classify(err, sigilerr.CodeStoreDatabaseFailure, "reading "+key)
	}
	if len(fields) == 0 {
		return nil, store.KeyNotFound(key)
	}

	raw, ok := fields[spec.VectorField]
	if !ok {
		return nil, sigilerr.New(sigilerr.CodeStoreRecordDecodeInvalid,
			"hash has no vector field "+spec.VectorField, sigilerr.FieldKey(key))
	}
	vec, err := vector.Decode([]byte(raw))
	if err != nil {
		return nil, sigilerr.With(err, sigilerr.FieldKey(key))
	}

	rec := &vector.Record{Name: fields[store.NameField], Tag: fields[spec.TagField], Vector: vec}
	if rec.Name == "" {
		rec.Name = name
	}
	return rec, nil
}

// Search issues FT.SEARCH with the KNN expression, sorting by the score
// field ascending and returning only that field.
func (s *Store) Search(ctx context.Context, index string, q store.KNNQuery) ([]store.Match, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	dialect := q.Dialect
	if dialect == 0 {
		dialect = 2
	}
	opts := &goredis.FTSearchOptions{
		Return:         []goredis.FTSearchReturn{{FieldName: q.ScoreField}},
		SortBy:         []goredis.FTSearchSortBy{{FieldName: q.ScoreField, Asc: true}},
		LimitOffset:    q.Offset,
		Limit:          q.Limit,
		DialectVersion: dialect,
		Params:         map[string]interface{}{store.VectorParam: vector.Encode(q.Vector)},
	}

	expr := q.Expression()
	slog.Debug("ft.search", "index", index, "query", expr, "offset", q.Offset, "limit", q.Limit)

	res, err := s.client.FTSearchWithArgs(ctx, index, expr, opts).Result()
	if err != nil {
		if isUnknownIndex(err) {
			return nil, store.IndexNotFound(index)
		}
		return nil, classify(err, sigilerr.CodeStoreQueryFailure, "searching index "+index)
	}

	matches := make([]store.Match, 0, len(res.Docs))
	for _, doc := range res.Docs {
		raw, ok := doc.Fields[q.ScoreField]
		if !ok {
			return nil, sigilerr.Errorf(sigilerr.CodeStoreQueryResponseInvalid,
				"document %q has no %q field", doc.ID, q.ScoreField)
		}
		score, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, sigilerr.Wrapf(err, sigilerr.CodeStoreQueryResponseInvalid,
				"parsing score of document %q", doc.ID)
		}
		matches = append(matches, store.Match{ID: doc.ID, Score: score})
	}
	return matches, nil
}

// classify maps a client error onto a coded error. Transport failures
// become connection failures regardless of fallback.
func classify(err error, fallback sigilerr.Code, msg string) error {
	if isTransportError(err) {
		return sigilerr.Wrap(err, sigilerr.CodeStoreConnectionFailure, msg)
	}
	return sigilerr.Wrap(err, fallback, msg)
}

func isTransportError(err error) bool {
	var rerr goredis.Error
	if errors.As(err, &rerr) {
		return false
	}
	var nerr net.Error
	return errors.As(err, &nerr) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, goredis.ErrClosed)
}

// The server reports a missing index as "Unknown Index name" on older
// module versions and "<name>: no such index" on newer ones.
func isUnknownIndex(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unknown index name") || strings.Contains(msg, "no such index")
}

func isIndexExists(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "index already exists")
}
