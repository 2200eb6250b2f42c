// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	"github.com/sigil-dev/redvec/internal/store"
	sigilerr "github.com/sigil-dev/redvec/pkg/errors"
)

// vecVersioner is implemented by backends that load a vector extension.
type vecVersioner interface {
	VecVersion(ctx context.Context) (string, error)
}

func (c *cli) newDoctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Run diagnostics",
		Long:  "Check the binary, config file, backend connectivity, the configured index and free disk space.",
		Args:  cobra.NoArgs,
		RunE:  c.runDoctor,
	}
	cmd.Flags().Duration("timeout", 5*time.Second, "timeout for backend checks")
	return cmd
}

func (c *cli) runDoctor(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()
	timeout, _ := cmd.Flags().GetDuration("timeout")
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	backend, openErr := c.openBackend()
	if openErr == nil {
		defer func() { _ = backend.Close() }()
	}

	checks := []struct {
		name string
		fn   func() string
	}{
		{"Binary", checkBinary},
		{"Platform", checkPlatform},
		{"Config", c.checkConfig},
		{"Backend", func() string { return c.checkBackend(ctx, backend, openErr) }},
		{"Index", func() string { return c.checkIndex(ctx, backend, openErr) }},
		{"Vector Extension", func() string { return checkVecExtension(ctx, backend) }},
		{"Disk Space", func() string { return checkDiskSpace(c.dataDir()) }},
	}

	for _, ch := range checks {
		if _, err := fmt.Fprintf(w, "%-20s %s\n", ch.name+":", ch.fn()); err != nil {
			return err
		}
	}

	return nil
}

func checkBinary() string {
	return fmt.Sprintf("redvec %s (%s/%s)", version, runtime.GOOS, runtime.GOARCH)
}

func checkPlatform() string {
	return fmt.Sprintf("%s/%s, Go %s", runtime.GOOS, runtime.GOARCH, runtime.Version())
}

func (c *cli) checkConfig() string {
	if cfgFile := c.v.ConfigFileUsed(); cfgFile != "" {
		return fmt.Sprintf("loaded from %s", cfgFile)
	}
	return "using defaults (no config file found)"
}

func (c *cli) checkBackend(ctx context.Context, backend store.Backend, openErr error) string {
	if openErr != nil {
		return fmt.Sprintf("error: %s", openErr)
	}
	if err := backend.Ping(ctx); err != nil {
		if sigilerr.IsConnectionFailure(err) && backend.Name() == "redis" {
			return fmt.Sprintf("unreachable at %s", c.cfg.StorageConfig().Redis.Addr())
		}
		return fmt.Sprintf("error: %s", err)
	}
	return fmt.Sprintf("%s ok", backend.Name())
}

func (c *cli) checkIndex(ctx context.Context, backend store.Backend, openErr error) string {
	if openErr != nil {
		return "skipped"
	}
	info, err := backend.IndexInfo(ctx, c.cfg.Index.Name)
	if err != nil {
		if sigilerr.IsNotFound(err) {
			return fmt.Sprintf("%s missing (run 'redvec index ensure')", c.cfg.Index.Name)
		}
		return fmt.Sprintf("error: %s", err)
	}
	return fmt.Sprintf("%s with %d document(s)", info.Name, info.NumDocs)
}

func checkVecExtension(ctx context.Context, backend store.Backend) string {
	vv, ok := backend.(vecVersioner)
	if !ok {
		return "not applicable"
	}
	v, err := vv.VecVersion(ctx)
	if err != nil {
		return fmt.Sprintf("error: %s", err)
	}
	return "sqlite-vec " + v
}

// dataDir is where local state lives: the sqlite file's directory, or the
// working directory for remote backends.
func (c *cli) dataDir() string {
	if c.cfg.Storage.Backend == "sqlite" {
		return filepath.Dir(c.cfg.Storage.SQLitePath)
	}
	wd, _ := os.Getwd()
	return wd
}

func checkDiskSpace(dataDir string) string {
	path := dataDir
	if _, err := os.Stat(path); os.IsNotExist(err) {
		// Fall back to home directory if data dir doesn't exist yet.
		path, _ = os.UserHomeDir()
	}

	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return fmt.Sprintf("unable to check: %s", err)
	}

	availBytes := stat.Bavail * uint64(stat.Bsize)
	return formatBytes(availBytes) + " available"
}

// formatBytes formats a byte count as a human-readable string.
func formatBytes(b uint64) string {
	const (
		gb = 1024 * 1024 * 1024
		mb = 1024 * 1024
	)
	switch {
	case b >= gb:
		return fmt.Sprintf("%.1f GB", float64(b)/float64(gb))
	case b >= mb:
		return fmt.Sprintf("%.1f MB", float64(b)/float64(mb))
	default:
		return fmt.Sprintf("%d bytes", b)
	}
}
