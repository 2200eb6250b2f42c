// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package embedding_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sigil-dev/redvec/internal/embedding"
	sigilerr "github.com/sigil-dev/redvec/pkg/errors"
)

func TestNew_SelectsSource(t *testing.T) {
	tests := []struct {
		typ  string
		name string
	}{
		{"", "random"},
		{"random", "random"},
		{"OpenAI", "openai"},
		{"google", "google"},
	}

	for _, tt := range tests {
		t.Run(tt.name+"/"+tt.typ, func(t *testing.T) {
			src, err := embedding.New(embedding.Config{Type: tt.typ, Dimension: 8, APIKey: "test-key"})
			require.NoError(t, err)
			assert.Equal(t, tt.name, src.Name())
			assert.Equal(t, 8, src.Dimension())
		})
	}
}

func TestNew_Errors(t *testing.T) {
	_, err := embedding.New(embedding.Config{Type: "random", Dimension: 0})
	require.Error(t, err)
	assert.True(t, sigilerr.IsInvalidInput(err))

	_, err = embedding.New(embedding.Config{Type: "cohere", Dimension: 4})
	require.Error(t, err)
	assert.True(t, sigilerr.IsNotFound(err))

	_, err = embedding.New(embedding.Config{Type: "openai", Dimension: 4})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api_key")

	_, err = embedding.New(embedding.Config{Type: "google", Dimension: 4})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api_key")
}

func TestRandom_ShapeAndRange(t *testing.T) {
	src := embedding.NewRandom(1536, 42)

	vecs, err := src.Embed(context.Background(), []string{"a foo", "b foo", "c bar"})
	require.NoError(t, err)
	require.Len(t, vecs, 3)
	for _, v := range vecs {
		require.Len(t, v, 1536)
		for _, x := range v {
			assert.GreaterOrEqual(t, x, float32(0))
			assert.Less(t, x, float32(1))
		}
	}
	assert.NotEqual(t, vecs[0], vecs[1])
}

func TestRandom_DeterministicForSeed(t *testing.T) {
	ctx := context.Background()
	a, err := embedding.NewRandom(16, 7).Embed(ctx, []string{"x", "y"})
	require.NoError(t, err)
	b, err := embedding.NewRandom(16, 7).Embed(ctx, []string{"x", "y"})
	require.NoError(t, err)
	c, err := embedding.NewRandom(16, 8).Embed(ctx, []string{"x", "y"})
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestRandom_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := embedding.NewRandom(4, 1).Embed(ctx, []string{"x"})
	assert.ErrorIs(t, err, context.Canceled)
}

func openAIServer(t *testing.T, dim int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req struct {
			Input      []string `json:"input"`
			Model      string   `json:"model"`
			Dimensions int      `json:"dimensions"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 4, req.Dimensions)

		data := make([]map[string]any, len(req.Input))
		for i := range req.Input {
			vec := make([]float64, dim)
			vec[0] = float64(i)
			data[i] = map[string]any{"object": "embedding", "index": i, "embedding": vec}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   data,
			"model":  req.Model,
			"usage":  map[string]any{"prompt_tokens": 1, "total_tokens": 1},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAI_Embed(t *testing.T) {
	srv := openAIServer(t, 4)
	src, err := embedding.NewOpenAI(embedding.Config{Dimension: 4, APIKey: "test-key", BaseURL: srv.URL + "/"})
	require.NoError(t, err)

	vecs, err := src.Embed(context.Background(), []string{"a foo", "b foo"})
	require.NoError(t, err)
	require.Len(t, vecs, 2)
	assert.Equal(t, []float32{0, 0, 0, 0}, vecs[0])
	assert.Equal(t, []float32{1, 0, 0, 0}, vecs[1])
}

func TestOpenAI_WrongDimensionRejected(t *testing.T) {
	srv := openAIServer(t, 3)
	src, err := embedding.NewOpenAI(embedding.Config{Dimension: 4, APIKey: "test-key", BaseURL: srv.URL + "/"})
	require.NoError(t, err)

	_, err = src.Embed(context.Background(), []string{"a foo"})
	require.Error(t, err)
	assert.True(t, sigilerr.HasCode(err, sigilerr.CodeEmbedResponseInvalid))
}

func TestOpenAI_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"bad model","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	src, err := embedding.NewOpenAI(embedding.Config{Dimension: 4, APIKey: "test-key", BaseURL: srv.URL + "/"})
	require.NoError(t, err)

	_, err = src.Embed(context.Background(), []string{"a foo"})
	require.Error(t, err)
	assert.True(t, sigilerr.IsUpstreamFailure(err))
}

func TestOpenAI_EmptyInput(t *testing.T) {
	src, err := embedding.NewOpenAI(embedding.Config{Dimension: 4, APIKey: "test-key", BaseURL: "http://127.0.0.1:1/"})
	require.NoError(t, err)

	vecs, err := src.Embed(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vecs)
}

func TestGoogle_Embed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)

		var req struct {
			Requests []json.RawMessage `json:"requests"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		n := len(req.Requests)
		if n == 0 {
			n = 1
		}

		embeddings := make([]map[string]any, n)
		for i := range embeddings {
			embeddings[i] = map[string]any{"values": []float32{float32(i), 0.5, 0.25}}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"embeddings": embeddings})
	}))
	defer srv.Close()

	src, err := embedding.NewGoogle(embedding.Config{Dimension: 3, APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)

	vecs, err := src.Embed(context.Background(), []string{"a foo", "b foo"})
	require.NoError(t, err)
	require.Len(t, vecs, 2)
	assert.Equal(t, []float32{1, 0.5, 0.25}, vecs[1])
}
