// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package vector

import (
	"encoding/binary"
	"math"

	sigilerr "github.com/sigil-dev/redvec/pkg/errors"
)

// Encode returns the little-endian IEEE 754 float32 encoding of vec
// without a length prefix. The result is always len(vec)*4 bytes.
func Encode(vec []float32) []byte {
	b := make([]byte, len(vec)*4)
	for i, v := range vec {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(v))
	}
	return b
}

// Decode reverses Encode. The dimension is derived from the blob size.
func Decode(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, sigilerr.Errorf(sigilerr.CodeStoreRecordDecodeInvalid,
			"vector blob length %d is not a multiple of 4", len(b))
	}
	vec := make([]float32, len(b)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return vec, nil
}
