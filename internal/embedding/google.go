// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package embedding

import (
	"context"

	"google.golang.org/genai"

	sigilerr "github.com/sigil-dev/redvec/pkg/errors"
)

const (
	// GoogleName is the config name of the Gemini source.
	GoogleName = "google"

	defaultGoogleModel = "gemini-embedding-001"
)

// Google embeds texts with the Gemini API, truncating output to the index
// dimension via OutputDimensionality.
type Google struct {
	client *genai.Client
	model  string
	dim    int
}

// NewGoogle creates a Google source. Returns an error if the API key is missing.
func NewGoogle(cfg Config) (*Google, error) {
	if cfg.APIKey == "" {
		return nil, sigilerr.New(sigilerr.CodeEmbedRequestInvalid, "google: missing api_key in config",
			sigilerr.FieldSource(GoogleName))
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(context.Background(), cc)
	if err != nil {
		return nil, sigilerr.Wrapf(err, sigilerr.CodeEmbedUpstreamFailure, "google: creating client")
	}

	model := cfg.Model
	if model == "" {
		model = defaultGoogleModel
	}
	return &Google{client: client, model: model, dim: cfg.Dimension}, nil
}

func (g *Google) Name() string   { return GoogleName }
func (g *Google) Dimension() int { return g.dim }

func (g *Google) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	contents := make([]*genai.Content, len(texts))
	for i, t := range texts {
		contents[i] = genai.NewContentFromText(t, genai.RoleUser)
	}

	dim := int32(g.dim)
	resp, err := g.client.Models.EmbedContent(ctx, g.model, contents, &genai.EmbedContentConfig{
		OutputDimensionality: &dim,
	})
	if err != nil {
		return nil, sigilerr.Wrap(err, sigilerr.CodeEmbedUpstreamFailure, "google: embedding content",
			sigilerr.FieldSource(GoogleName), sigilerr.Field("model", g.model))
	}

	out := make([][]float32, len(resp.Embeddings))
	for i, e := range resp.Embeddings {
		if e != nil {
			out[i] = e.Values
		}
	}

	if err := checkShape(GoogleName, len(texts), g.dim, out); err != nil {
		return nil, err
	}
	return out, nil
}
