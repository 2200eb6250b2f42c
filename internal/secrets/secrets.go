// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

// Package secrets keeps credentials such as the redis password and embedder
// API keys out of config files. Values are stored in the OS keyring and
// referenced from config as keyring://service/key.
package secrets

// Service is the keyring service redvec stores its own secrets under.
const Service = "redvec"

// Store provides secure secret storage operations.
type Store interface {
	// Store saves a secret value under the given service and key.
	Store(service, key, value string) error

	// Retrieve fetches the secret value for the given service and key.
	// Returns CodeSecretNotFound if the key does not exist.
	Retrieve(service, key string) (string, error)

	// Delete removes the secret for the given service and key.
	// Returns CodeSecretNotFound if the key does not exist.
	Delete(service, key string) error

	// List returns all key names stored under the given service, sorted.
	List(service string) ([]string, error)
}

// URI returns the keyring:// reference for key under Service.
func URI(key string) string {
	return keyringScheme + Service + "/" + key
}
