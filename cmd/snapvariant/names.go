package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ajramos/snapvariant/internal/harness"
)

func newNamesCmd(a *app) *cobra.Command {
	var (
		suite string
		cases []string
		file  string
		check bool
	)

	cmd := &cobra.Command{
		Use:   "names [Suite.Case ...]",
		Short: "Print the artifact names tests will produce",
		Long: `Print the artifact names a set of tests will produce, one per line, in
{Suite}_{Case}_{variant} form. Tests are given as --suite with one or more
--case flags, or as Suite.Case arguments. With --check, invalid identities
and names claimed by two different tests fail the command.`,
		Example: `  snapvariant names --suite TypographyTest --case label --case paragraph
  snapvariant names --check TypographyTest.label ButtonTest.label`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIdentities(suite, cases, args)
			if err != nil {
				return err
			}
			set, err := a.variantSet(file)
			if err != nil {
				return err
			}

			names, planErr := harness.Plan(ids, set)
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			if planErr != nil {
				if check {
					return planErr
				}
				a.logger.Warn().Err(planErr).Msg("artifact names are not unique")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&suite, "suite", "", "suite name for --case")
	cmd.Flags().StringArrayVar(&cases, "case", nil, "case name (repeatable)")
	cmd.Flags().StringVar(&file, "file", "", "variants file (default: variants_file from config, else built-in light/dark)")
	cmd.Flags().BoolVar(&check, "check", false, "fail on invalid identities and name collisions")
	return cmd
}

func parseIdentities(suite string, cases, args []string) ([]harness.Identity, error) {
	if len(cases) > 0 && suite == "" {
		return nil, fmt.Errorf("--case requires --suite")
	}

	ids := make([]harness.Identity, 0, len(cases)+len(args))
	for _, c := range cases {
		ids = append(ids, harness.Identity{Suite: suite, Case: c})
	}
	for _, arg := range args {
		s, c, ok := strings.Cut(arg, ".")
		if !ok {
			return nil, fmt.Errorf("argument %q is not of the form Suite.Case", arg)
		}
		ids = append(ids, harness.Identity{Suite: s, Case: c})
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no tests given: use --suite/--case or Suite.Case arguments")
	}
	return ids, nil
}
