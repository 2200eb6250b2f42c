// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/sigil-dev/redvec/internal/vecsearch"
)

func (c *cli) newQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Run a KNN query against the index",
		Long:  "Embed the query text with the configured embedder and print the k nearest records, nearest first.",
		Args:  cobra.NoArgs,
		RunE:  c.runQuery,
	}
	cmd.Flags().String("text", "query", "text the query vector is embedded from")
	cmd.Flags().Int("k", 0, "number of neighbors (default from query.k)")
	cmd.Flags().Int("offset", 0, "result offset (default from query.offset)")
	cmd.Flags().Int("limit", 0, "result limit (default from query.limit)")
	cmd.Flags().StringSlice("tag", nil, "only consider records with one of these tags")
	cmd.Flags().String("filter", "", "raw pre-filter expression (redis backend only)")
	return cmd
}

func (c *cli) runQuery(cmd *cobra.Command, _ []string) error {
	text, _ := cmd.Flags().GetString("text")
	k := c.cfg.Query.K
	if cmd.Flags().Changed("k") {
		k, _ = cmd.Flags().GetInt("k")
	}
	page := c.cfg.Page()
	if cmd.Flags().Changed("offset") {
		page.Offset, _ = cmd.Flags().GetInt("offset")
	}
	if cmd.Flags().Changed("limit") {
		page.Limit, _ = cmd.Flags().GetInt("limit")
	}

	var opts []vecsearch.QueryOption
	if tags, _ := cmd.Flags().GetStringSlice("tag"); len(tags) > 0 {
		opts = append(opts, vecsearch.WithTags(tags...))
	}
	if filter, _ := cmd.Flags().GetString("filter"); filter != "" {
		opts = append(opts, vecsearch.WithFilter(filter))
	}

	src, err := c.source()
	if err != nil {
		return err
	}
	vec, err := vecsearch.QueryVector(cmd.Context(), src, text)
	if err != nil {
		return err
	}

	backend, err := c.openBackend()
	if err != nil {
		return err
	}
	defer func() { _ = backend.Close() }()

	matches, err := c.workflow(backend).Runner.KNN(cmd.Context(), vec, k, page, opts...)
	if err != nil {
		return err
	}
	return printMatches(cmd.OutOrStdout(), matches)
}
