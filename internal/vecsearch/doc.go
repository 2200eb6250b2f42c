// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

// Package vecsearch implements the greeting round trip and the vector
// workflow: provision an index, load records into it, and run KNN queries
// against it. Storage is reached only through the store contracts.
package vecsearch
