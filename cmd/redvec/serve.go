// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sigil-dev/redvec/internal/server"
)

func (c *cli) newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long:  "Expose index provisioning, record loading and KNN search over HTTP until interrupted.",
		Args:  cobra.NoArgs,
		RunE:  c.runServe,
	}
	cmd.Flags().String("listen", "", "listen address (default from server.listen)")
	cmd.Flags().Bool("ensure-index", true, "provision the index before serving")
	return cmd
}

func (c *cli) runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	listen := c.cfg.Server.Listen
	if cmd.Flags().Changed("listen") {
		listen, _ = cmd.Flags().GetString("listen")
	}

	src, err := c.source()
	if err != nil {
		return err
	}

	backend, err := c.openBackend()
	if err != nil {
		return err
	}
	defer func() { _ = backend.Close() }()

	wf := c.workflow(backend)
	if ensure, _ := cmd.Flags().GetBool("ensure-index"); ensure {
		if err := wf.Provisioner.EnsureIndex(ctx, wf.Spec); err != nil {
			return err
		}
	}

	svc, err := server.NewServices(backend, wf, src, server.QueryDefaults{K: c.cfg.Query.K, Page: c.cfg.Page()})
	if err != nil {
		return err
	}

	srv, err := server.New(server.Config{
		ListenAddr:  listen,
		CORSOrigins: c.cfg.Server.CORSOrigins,
		Version:     version,
	})
	if err != nil {
		return err
	}
	srv.RegisterServices(svc)

	return srv.Start(ctx)
}
