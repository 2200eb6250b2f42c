// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package vector

import (
	"strings"

	sigilerr "github.com/sigil-dev/redvec/pkg/errors"
)

// Metric is the distance metric declared on a vector field.
type Metric string

const (
	MetricCosine Metric = "COSINE"
	MetricL2     Metric = "L2"
	MetricIP     Metric = "IP"
)

// Algorithm is the index structure used for a vector field.
type Algorithm string

const (
	AlgorithmFlat Algorithm = "FLAT"
	AlgorithmHNSW Algorithm = "HNSW"
)

// ElementType is the numeric type of each vector component.
type ElementType string

// ElementFloat32 is the only element type records are encoded with.
const ElementFloat32 ElementType = "FLOAT32"

// ParseMetric accepts a metric name in any case. "inner_product" and
// "euclidean" are accepted as aliases.
func ParseMetric(s string) (Metric, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "COSINE":
		return MetricCosine, nil
	case "L2", "EUCLIDEAN":
		return MetricL2, nil
	case "IP", "INNER_PRODUCT":
		return MetricIP, nil
	default:
		return "", sigilerr.Errorf(sigilerr.CodeStoreIndexInvalid,
			"unknown distance metric %q: must be one of [COSINE, L2, IP]", s)
	}
}

// ParseAlgorithm accepts an algorithm name in any case.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "FLAT":
		return AlgorithmFlat, nil
	case "HNSW":
		return AlgorithmHNSW, nil
	default:
		return "", sigilerr.Errorf(sigilerr.CodeStoreIndexInvalid,
			"unknown vector algorithm %q: must be one of [FLAT, HNSW]", s)
	}
}

// Valid reports whether m is one of the declared metrics.
func (m Metric) Valid() bool {
	return m == MetricCosine || m == MetricL2 || m == MetricIP
}

// Valid reports whether a is one of the declared algorithms.
func (a Algorithm) Valid() bool {
	return a == AlgorithmFlat || a == AlgorithmHNSW
}

// Record is a single named, tagged vector. Its storage key is the index
// prefix followed by Name.
type Record struct {
	Name   string
	Tag    string
	Vector []float32
}

// Key returns the storage key of r under prefix.
func (r Record) Key(prefix string) string {
	return prefix + r.Name
}

// Validate checks r against the declared index dimension. A length
// mismatch is rejected rather than truncated or padded.
func (r Record) Validate(dimension int) error {
	if r.Name == "" {
		return sigilerr.New(sigilerr.CodeStoreRecordInvalid, "record name must not be empty")
	}
	if len(r.Vector) != dimension {
		return sigilerr.Errorf(sigilerr.CodeStoreRecordInvalid,
			"record %q: vector has %d dimensions, index declares %d", r.Name, len(r.Vector), dimension)
	}
	return nil
}
