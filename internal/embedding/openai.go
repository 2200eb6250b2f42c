// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package embedding

import (
	"context"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	sigilerr "github.com/sigil-dev/redvec/pkg/errors"
)

const (
	// OpenAIName is the config name of the OpenAI source.
	OpenAIName = "openai"

	defaultOpenAIModel = "text-embedding-3-small"
)

// OpenAI embeds texts with the OpenAI embeddings API, asking for vectors
// of the index dimension.
type OpenAI struct {
	client openaisdk.Client
	model  string
	dim    int
}

// NewOpenAI creates an OpenAI source. Returns an error if the API key is missing.
func NewOpenAI(cfg Config) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, sigilerr.New(sigilerr.CodeEmbedRequestInvalid, "openai: missing api_key in config",
			sigilerr.FieldSource(OpenAIName))
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	model := cfg.Model
	if model == "" {
		model = defaultOpenAIModel
	}

	return &OpenAI{client: openaisdk.NewClient(opts...), model: model, dim: cfg.Dimension}, nil
}

func (o *OpenAI) Name() string   { return OpenAIName }
func (o *OpenAI) Dimension() int { return o.dim }

func (o *OpenAI) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := o.client.Embeddings.New(ctx, openaisdk.EmbeddingNewParams{
		Input:          openaisdk.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Model:          openaisdk.EmbeddingModel(o.model),
		Dimensions:     openaisdk.Int(int64(o.dim)),
		EncodingFormat: openaisdk.EmbeddingNewParamsEncodingFormatFloat,
	})
	if err != nil {
		return nil, sigilerr.Wrap(err, sigilerr.CodeEmbedUpstreamFailure, "openai: creating embeddings",
			sigilerr.FieldSource(OpenAIName), sigilerr.Field("model", o.model))
	}

	out := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		idx := int(d.Index)
		if idx < 0 || idx >= len(out) {
			idx = i
		}
		v := make([]float32, len(d.Embedding))
		for j, x := range d.Embedding {
			v[j] = float32(x)
		}
		out[idx] = v
	}

	if err := checkShape(OpenAIName, len(texts), o.dim, out); err != nil {
		return nil, err
	}
	return out, nil
}
