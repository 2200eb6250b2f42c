// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package config

import (
	"gopkg.in/yaml.v3"

	"github.com/sigil-dev/redvec/internal/secrets"
	sigilerr "github.com/sigil-dev/redvec/pkg/errors"
)

const masked = "********"

// Render returns cfg as YAML with secret values masked. Unresolved
// keyring:// URIs are shown as-is.
func Render(cfg *Config) ([]byte, error) {
	out := *cfg
	out.Redis.Password = mask(out.Redis.Password)
	out.Embedder.APIKey = mask(out.Embedder.APIKey)

	data, err := yaml.Marshal(&out)
	if err != nil {
		return nil, sigilerr.Wrap(err, sigilerr.CodeConfigParseInvalidFormat, "encoding config")
	}
	return data, nil
}

func mask(v string) string {
	if v == "" || secrets.IsKeyringURI(v) {
		return v
	}
	return masked
}
