// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package store

import (
	"net"
	"strconv"
)

// StorageConfig controls which backend Open returns and how it connects.
type StorageConfig struct {
	Backend    string // "redis" (default) or "sqlite".
	SQLitePath string // Database file for the sqlite backend.
	Redis      RedisConfig
}

// RedisConfig holds connection settings for the redis backend.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	// Protocol is the RESP version. Search replies are only parsed
	// reliably with RESP2.
	Protocol int
}

// Addr returns host:port.
func (c RedisConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
