// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sigil-dev/redvec/internal/vecsearch"
)

func (c *cli) newDemoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Run the greeting and the full vector workflow",
		Long: "Print the greeting round trip, then ensure the index, load a/foo, b/foo and\n" +
			"c/bar with vectors from the embedder, and print the KNN results for a fresh query vector.",
		Args: cobra.NoArgs,
		RunE: c.runDemo,
	}
}

func (c *cli) runDemo(cmd *cobra.Command, _ []string) error {
	src, err := c.source()
	if err != nil {
		return err
	}

	backend, err := c.openBackend()
	if err != nil {
		return err
	}
	defer func() { _ = backend.Close() }()

	got, err := vecsearch.NewGreeter(backend).Greet(cmd.Context(), c.cfg.Greeting.Key, c.cfg.Greeting.Message)
	if err != nil {
		return err
	}
	if err := printGreeting(cmd, got, c.cfg.Redis.DecodeResponses); err != nil {
		return err
	}

	res, err := c.workflow(backend).Run(cmd.Context(), src, vecsearch.DefaultSeeds, c.cfg.Query.K, c.cfg.Page())
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if _, err := fmt.Fprintf(w, "Loaded %d records into %s\n", len(res.Written), c.cfg.Index.Name); err != nil {
		return err
	}
	return printMatches(w, res.Matches)
}
