// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/sigil-dev/redvec/internal/store"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

func renderTable(w io.Writer, headers []string, rows [][]string) error {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("62"))).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...)
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func printMatches(w io.Writer, matches []store.Match) error {
	if len(matches) == 0 {
		_, err := fmt.Fprintln(w, "No matches.")
		return err
	}
	rows := make([][]string, len(matches))
	for i, m := range matches {
		rows[i] = []string{strconv.Itoa(i + 1), m.ID, strconv.FormatFloat(m.Score, 'f', 6, 64)}
	}
	return renderTable(w, []string{"#", "ID", "SCORE"}, rows)
}

func printWriteResults(w io.Writer, results []store.WriteResult) error {
	rows := make([][]string, len(results))
	for i, r := range results {
		status := okStyle.Render("ok")
		if r.Err != nil {
			status = errorStyle.Render(r.Err.Error())
		}
		rows[i] = []string{r.Key, status}
	}
	return renderTable(w, []string{"KEY", "STATUS"}, rows)
}
