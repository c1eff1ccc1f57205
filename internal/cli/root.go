package cli

import (
	"github.com/spf13/cobra"

	"github.com/tfgql-io/tfgql/internal/config"
	"github.com/tfgql-io/tfgql/internal/logging"
)

var (
	cfgFile  string
	logLevel string
	noColor  bool

	// cfg is loaded once before any subcommand runs.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "tfgql",
	Short: "State tooling for the Terraform GraphQL provider",
	Long: `tfgql inspects and migrates Terraform state files that contain
graphql_mutation resources.

Older provider versions stored mutation variables as JSON-encoded strings;
current versions store them as native structured values. tfgql rewrites
existing states to the new format, checks whether a state still needs
migration, and diffs two state files semantically.`,
	// Usage is shown for argument mistakes; runtime failures silence it per
	// command. Errors print once, from main.
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		cfg = loaded

		level := cfg.Log.Level
		if cmd.Flags().Changed("log-level") {
			level = logLevel
		}
		logging.Init(level)
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to config file (default: ./tfgql.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(versionCmd)
}
