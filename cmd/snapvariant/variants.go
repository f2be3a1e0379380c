package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/ajramos/snapvariant/internal/variant"
)

// sampleNumber shows how a variant's locale formats numbers
const sampleNumber = 1234567.5

func newVariantsCmd(a *app) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "variants",
		Short: "List the variant set tests run under",
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := a.variantSet(file)
			if err != nil {
				return err
			}

			t := newTable(cmd)
			t.SetTitle("VARIANTS")
			t.AppendHeader(table.Row{"ID", "NAME", "MODE", "LOCALE", "SAMPLE", "BACKGROUND", "FOREGROUND", "ACCENT"})
			for _, v := range set.All() {
				mode := "light"
				if v.Dark {
					mode = "dark"
				}
				t.AppendRow(table.Row{
					v.ID(),
					v.Name,
					mode,
					v.Locale.String(),
					v.Printer().Sprintf("%.1f", sampleNumber),
					v.Palette.Background.String(),
					v.Palette.Foreground.String(),
					v.Palette.Accent.String(),
				})
			}
			t.Render()
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "variants file (default: variants_file from config, else built-in light/dark)")
	return cmd
}

// variantSet resolves the variant set from file, the config, or the defaults.
// A --file override looks for themes next to that file.
func (a *app) variantSet(file string) (variant.Set, error) {
	themesDir := defaultThemesDir(file)
	if file == "" {
		file, themesDir = a.cfg.VariantsFile, a.cfg.ThemesDir
	}
	if file == "" {
		return variant.Defaults().Variants()
	}
	return variant.NewFileProvider(file, themesDir).Variants()
}
