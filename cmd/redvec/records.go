// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sigil-dev/redvec/internal/embedding"
	"github.com/sigil-dev/redvec/internal/store"
	"github.com/sigil-dev/redvec/internal/vecsearch"
	sigilerr "github.com/sigil-dev/redvec/pkg/errors"
)

func (c *cli) workflow(backend store.Backend) *vecsearch.Workflow {
	return vecsearch.NewWorkflow(backend, c.cfg.IndexSpec(), c.cfg.Query.ScoreField, c.cfg.Query.Dialect)
}

func (c *cli) source() (embedding.Source, error) {
	return embedding.New(c.cfg.EmbeddingConfig())
}

func (c *cli) newLoadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Write a batch of records under the index prefix",
		Long: "Attach a vector from the configured embedder to each name/tag pair and write\n" +
			"all records in one pipelined batch. Defaults to a/foo, b/foo and c/bar.",
		Args: cobra.NoArgs,
		RunE: c.runLoad,
	}
	cmd.Flags().StringSlice("records", nil, "records as name/tag pairs, e.g. a/foo,b/foo")
	return cmd
}

func (c *cli) runLoad(cmd *cobra.Command, _ []string) error {
	raw, _ := cmd.Flags().GetStringSlice("records")
	seeds, err := vecsearch.ParseSeeds(raw)
	if err != nil {
		return err
	}

	src, err := c.source()
	if err != nil {
		return err
	}
	records, err := vecsearch.SyntheticRecords(cmd.Context(), src, seeds)
	if err != nil {
		return err
	}

	backend, err := c.openBackend()
	if err != nil {
		return err
	}
	defer func() { _ = backend.Close() }()

	results, err := c.workflow(backend).Loader.Load(cmd.Context(), records)
	if err != nil {
		return err
	}
	if err := printWriteResults(cmd.OutOrStdout(), results); err != nil {
		return err
	}
	if failed := vecsearch.Failures(results); failed > 0 {
		return sigilerr.Errorf(sigilerr.CodeStoreWriteFailure, "%d of %d records failed to write", failed, len(results))
	}
	return nil
}

func (c *cli) newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <name>",
		Short: "Read one record back",
		Args:  cobra.ExactArgs(1),
		RunE:  c.runGet,
	}
}

func (c *cli) runGet(cmd *cobra.Command, args []string) error {
	backend, err := c.openBackend()
	if err != nil {
		return err
	}
	defer func() { _ = backend.Close() }()

	rec, err := c.workflow(backend).Loader.Fetch(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%-12s %s\n%-12s %s\n%-12s %s\n%-12s %d\n%-12s %s\n",
		"Key:", rec.Key(c.cfg.Index.Prefix),
		"Name:", rec.Name,
		"Tag:", rec.Tag,
		"Dimension:", len(rec.Vector),
		"Vector:", previewVector(rec.Vector, 4))
	return err
}

// previewVector formats the first n components.
func previewVector(v []float32, n int) string {
	parts := make([]string, 0, n+1)
	for i, x := range v {
		if i == n {
			parts = append(parts, "...")
			break
		}
		parts = append(parts, strconv.FormatFloat(float64(x), 'f', 4, 32))
	}
	return "[" + strings.Join(parts, " ") + "]"
}
