// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

// Package vector defines the records loaded into a vector index, the
// schema enums used to declare the index, and the raw float32 encoding
// shared by every backend.
package vector
