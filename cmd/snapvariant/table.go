package main

import (
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
)

func newTable(cmd *cobra.Command) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.Style().Options.SeparateColumns = true
	return t
}

func defaultThemesDir(variantsFile string) string {
	return filepath.Join(filepath.Dir(variantsFile), "themes")
}

// truncate shortens s to at most n display cells for table cells
func truncate(s string, n int) string {
	return runewidth.Truncate(s, n, "…")
}
