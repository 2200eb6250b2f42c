// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package main

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sigil-dev/redvec/internal/vecsearch"
)

func (c *cli) newHelloCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hello",
		Short: "Write the greeting and read it back",
		Long:  "SET the greeting message under its key, GET it back and print what was read.",
		Args:  cobra.NoArgs,
		RunE:  c.runHello,
	}
	cmd.Flags().String("key", "", "greeting key (default from greeting.key)")
	cmd.Flags().String("message", "", "greeting message (default from greeting.message)")
	return cmd
}

func (c *cli) runHello(cmd *cobra.Command, _ []string) error {
	key := c.cfg.Greeting.Key
	if cmd.Flags().Changed("key") {
		key, _ = cmd.Flags().GetString("key")
	}
	message := c.cfg.Greeting.Message
	if cmd.Flags().Changed("message") {
		message, _ = cmd.Flags().GetString("message")
	}

	backend, err := c.openBackend()
	if err != nil {
		return err
	}
	defer func() { _ = backend.Close() }()

	got, err := vecsearch.NewGreeter(backend).Greet(cmd.Context(), key, message)
	if err != nil {
		return err
	}
	return printGreeting(cmd, got, c.cfg.Redis.DecodeResponses)
}

// printGreeting prints text, or its raw byte form when responses are not
// decoded.
func printGreeting(cmd *cobra.Command, value string, decode bool) error {
	if !decode {
		value = bytesLiteral([]byte(value))
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), value)
	return err
}

// bytesLiteral renders b the way Python prints a bytes object: single
// quotes unless b holds a single quote and no double quote, printable ASCII
// kept, everything else escaped.
func bytesLiteral(b []byte) string {
	quote := byte('\'')
	if bytes.IndexByte(b, '\'') >= 0 && bytes.IndexByte(b, '"') < 0 {
		quote = '"'
	}

	var sb strings.Builder
	sb.WriteByte('b')
	sb.WriteByte(quote)
	for _, c := range b {
		switch {
		case c == quote || c == '\\':
			sb.WriteByte('\\')
			sb.WriteByte(c)
		case c == '\t':
			sb.WriteString(`\t`)
		case c == '\n':
			sb.WriteString(`\n`)
		case c == '\r':
			sb.WriteString(`\r`)
		case c < 0x20 || c >= 0x7f:
			fmt.Fprintf(&sb, `\x%02x`, c)
		default:
			sb.WriteByte(c)
		}
	}
	sb.WriteByte(quote)
	return sb.String()
}
