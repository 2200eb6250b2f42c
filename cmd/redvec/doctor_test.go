// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDoctor_SQLite(t *testing.T) {
	cfg := writeTestConfig(t, "")

	out := mustExecute(t, "doctor", "--config", cfg)
	assert.Contains(t, out, "Config:")
	assert.Contains(t, out, cfg)
	assert.Contains(t, out, "sqlite ok")
	assert.Contains(t, out, "index missing (run 'redvec index ensure')")
	assert.Contains(t, out, "sqlite-vec v")
	assert.Contains(t, out, "available")

	mustExecute(t, "index", "ensure", "--config", cfg)
	mustExecute(t, "load", "--config", cfg)

	out = mustExecute(t, "doctor", "--config", cfg)
	assert.Contains(t, out, "index with 3 document(s)")
}

func TestDoctor_UnreachableRedis(t *testing.T) {
	// Port 1 is reserved and nothing listens on it.
	cfg := writeTestConfig(t, "redis:\n  port: 1\n")

	out := mustExecute(t, "doctor", "--config", cfg, "--backend", "redis", "--timeout", "2s")
	assert.Contains(t, out, "Vector Extension:")
	assert.Contains(t, out, "not applicable")
	assert.NotContains(t, out, "redis ok")
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   uint64
		want string
	}{
		{0, "0 bytes"},
		{512, "512 bytes"},
		{5 * 1024 * 1024, "5.0 MB"},
		{3 * 1024 * 1024 * 1024 / 2, "1.5 GB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatBytes(tt.in))
	}
}
