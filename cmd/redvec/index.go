// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sigil-dev/redvec/internal/store"
	"github.com/sigil-dev/redvec/internal/vecsearch"
)

func (c *cli) newIndexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Manage the vector index",
	}

	drop := &cobra.Command{
		Use:   "drop",
		Short: "Drop the index",
		Args:  cobra.NoArgs,
		RunE:  c.runIndexDrop,
	}
	drop.Flags().Bool("delete-docs", false, "also delete the hashes under the index prefix")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "ensure",
			Short: "Create the index if it does not exist",
			Args:  cobra.NoArgs,
			RunE:  c.runIndexEnsure,
		},
		&cobra.Command{
			Use:   "info",
			Short: "Describe the index",
			Args:  cobra.NoArgs,
			RunE:  c.runIndexInfo,
		},
		drop,
	)
	return cmd
}

func (c *cli) runIndexEnsure(cmd *cobra.Command, _ []string) error {
	backend, err := c.openBackend()
	if err != nil {
		return err
	}
	defer func() { _ = backend.Close() }()

	spec := c.cfg.IndexSpec()
	if err := vecsearch.NewProvisioner(backend).EnsureIndex(cmd.Context(), spec); err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Index %s ready (prefix %s, dim %d, %s, %s)\n",
		spec.Name, spec.Prefix, spec.Dimension, spec.Metric, spec.Algorithm)
	return err
}

func (c *cli) runIndexInfo(cmd *cobra.Command, _ []string) error {
	backend, err := c.openBackend()
	if err != nil {
		return err
	}
	defer func() { _ = backend.Close() }()

	info, err := backend.IndexInfo(cmd.Context(), c.cfg.Index.Name)
	if err != nil {
		return err
	}
	return printIndexInfo(cmd, info)
}

func printIndexInfo(cmd *cobra.Command, info *store.IndexInfo) error {
	w := cmd.OutOrStdout()
	if _, err := fmt.Fprintf(w, "%-12s %s\n%-12s %s\n%-12s %d\n",
		"Name:", info.Name,
		"Prefixes:", strings.Join(info.Prefixes, ", "),
		"Documents:", info.NumDocs); err != nil {
		return err
	}

	rows := make([][]string, len(info.Fields))
	for i, f := range info.Fields {
		rows[i] = []string{f.Identifier, f.Attribute, f.Type}
	}
	return renderTable(w, []string{"IDENTIFIER", "ATTRIBUTE", "TYPE"}, rows)
}

func (c *cli) runIndexDrop(cmd *cobra.Command, _ []string) error {
	deleteDocs, _ := cmd.Flags().GetBool("delete-docs")

	backend, err := c.openBackend()
	if err != nil {
		return err
	}
	defer func() { _ = backend.Close() }()

	if err := backend.DropIndex(cmd.Context(), c.cfg.Index.Name, deleteDocs); err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Dropped index %s\n", c.cfg.Index.Name)
	return err
}
