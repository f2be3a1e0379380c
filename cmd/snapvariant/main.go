package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ajramos/snapvariant/internal/config"
	"github.com/ajramos/snapvariant/internal/logging"
)

// app carries what every subcommand needs once the root has loaded config
type app struct {
	configPath string
	logLevel   string

	cfg       *config.Config
	logger    zerolog.Logger
	logCloser io.Closer
}

func newRootCmd() *cobra.Command {
	a := &app{logger: zerolog.Nop()}

	root := &cobra.Command{
		Use:   "snapvariant",
		Short: "Inspect visual regression variants, artifact names and results",
		Long: `snapvariant works alongside visual tests written with the harness package.
It lists the variants a test expands over, previews the artifact names a test
will produce, and reports results recorded in the results ledger.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return fmt.Errorf("error loading configuration: %w", err)
			}
			// flags override config due to highest precedence
			if a.logLevel != "" {
				cfg.LogLevel = a.logLevel
			}

			logger, closer, err := logging.New(cfg)
			if err != nil {
				return err
			}
			a.cfg, a.logger, a.logCloser = cfg, logger, closer

			if a.configPath != "" || os.Getenv(config.ConfigPathEnvVar) != "" {
				a.logger.Debug().Str("path", a.configPath).Msg("using config file")
			} else {
				a.logger.Debug().Msg("using default configuration")
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.logCloser != nil {
				return a.logCloser.Close()
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to config file (default: snapvariant.yaml in current directory)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(
		newVariantsCmd(a),
		newNamesCmd(a),
		newReportCmd(a),
		newRunsCmd(a),
		newVersionCmd(),
	)
	return root
}

func main() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
