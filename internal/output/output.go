// Copyright (c) 2025 Arc Engineering
// SPDX-License-Identifier: MIT

// Package output provides the JSON and table rendering helpers shared
// by the CLI commands.
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// Format names a supported output format.
type Format string

const (
	OutputTable Format = "table"
	OutputJSON  Format = "json"
)

// OutputOptions carries the --output flag for a command.
type OutputOptions struct {
	Format string

	def Format
}

// AddOutputFlags registers the --output flag with the given default.
func (o *OutputOptions) AddOutputFlags(cmd *cobra.Command, def Format) {
	o.def = def
	cmd.Flags().StringVarP(&o.Format, "output", "o", string(def), "Output format: table, json")
}

// Resolve validates the selected format.
func (o *OutputOptions) Resolve() error {
	if o.Format == "" {
		o.Format = string(o.def)
	}
	switch Format(o.Format) {
	case OutputTable, OutputJSON:
		return nil
	}
	return fmt.Errorf("unknown output format %q (choose table or json)", o.Format)
}

// Is reports whether the resolved format matches f.
func (o *OutputOptions) Is(f Format) bool {
	return Format(o.Format) == f
}

// JSON writes v to stdout as indented JSON.
func JSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Table accumulates rows and renders them aligned in columns.
type Table struct {
	headers []string
	rows    [][]string
}

// NewTable creates a table with the given column headers.
func NewTable(headers ...string) *Table {
	return &Table{headers: headers}
}

// AddRow appends a row of cells.
func (t *Table) AddRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

// Render writes the table to stdout.
func (t *Table) Render() {
	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(t.headers, "\t"))
	for _, row := range t.rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	w.Flush()
}
