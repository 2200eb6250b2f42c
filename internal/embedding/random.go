// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package embedding

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"
)

// RandomName is the config name of the random source.
const RandomName = "random"

// Random draws every component uniformly from [0, 1). It ignores the
// texts and is deterministic for a non-zero seed.
type Random struct {
	mu  sync.Mutex
	rng *rand.Rand
	dim int
}

// NewRandom creates a Random source. A zero seed uses the current time.
func NewRandom(dim int, seed uint64) *Random {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Random{
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		dim: dim,
	}
}

func (r *Random) Name() string   { return RandomName }
func (r *Random) Dimension() int { return r.dim }

func (r *Random) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([][]float32, len(texts))
	for i := range out {
		v := make([]float32, r.dim)
		for j := range v {
			v[j] = r.rng.Float32()
		}
		out[i] = v
	}
	return out, nil
}
