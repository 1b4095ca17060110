package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/flatback/internal/version"
	"github.com/arthur-debert/flatback/pkg/config"
	"github.com/arthur-debert/flatback/pkg/logging"
	"github.com/arthur-debert/flatback/pkg/output"
	"github.com/arthur-debert/flatback/pkg/pipeline"
)

var (
	verbosity int
	configDir string

	rootCmd = &cobra.Command{
		Use:   "flatback",
		Short: "Incremental flat-file backup with change logging",
		Long: `flatback copies new or changed files of configured types from a source
folder into a mirrored backup folder, records line-level diffs for text files
in a change log, keeps timestamped zip archives of the backup tree, and
prunes archives beyond the retention count.

Configuration is read from config.yaml (or config.json) in the config
directory; missing settings fall back to built-in defaults.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBackup()
		},
	}
)

// Execute runs the root command. This is called by main.main().
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	rootCmd.Flags().StringVar(&configDir, "config-dir", ".", "Directory containing config.yaml or config.json")

	rootCmd.AddCommand(versionCmd)
}

// runBackup loads the configuration and runs one full backup pipeline.
// Only the fatal configuration error propagates; everything else is
// reported to stdout and the run finishes with a zero status.
func runBackup() error {
	reporter := output.NewConsole()

	cfg, err := config.Load(configDir)
	if err != nil {
		// A broken config file is not the fatal source==backup case: report
		// it and fall back to defaults, matching the fail-soft contract.
		reporter.Error("Error loading config: %v", err)
		log.Warn().Err(err).Msg("Falling back to default configuration")
		cfg = config.Default()
	}

	p := pipeline.New(afero.NewOsFs(), cfg, reporter)
	if err := p.Run(); err != nil {
		reporter.Error("%v", err)
		return err
	}
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("flatback version %s\n", version.Version)
		fmt.Printf("  commit: %s\n", version.Commit)
		fmt.Printf("  built:  %s\n", version.Date)
	},
}
