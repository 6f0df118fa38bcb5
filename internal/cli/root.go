package cli

import (
	"github.com/spf13/cobra"

	"github.com/eren/chronotrace/internal/config"
	"github.com/eren/chronotrace/internal/logger"
)

const version = "0.1.0"

var (
	cfgFile  string
	logLevel string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "chronotrace",
	Short: "Chronotrace - scope profiler and trace tooling",
	Long: `Chronotrace records scope timings into Chrome trace event files and
provides the tooling around them: inspection, validation, repair of traces
cut short by a crash, a live web viewer, and a searchable archive.`,
	Version: version,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.chronotrace/config.json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	// Version template
	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s" .Version}}
`)
}

// GetRootCmd returns the root command for testing
func GetRootCmd() *cobra.Command {
	resetTransientFlagState(rootCmd)
	return rootCmd
}

// resetTransientFlagState clears the cobra-managed --help and --version flag
// state left behind by a previous Execute on the shared command tree, so the
// root command can be executed again from a clean slate.
func resetTransientFlagState(cmd *cobra.Command) {
	for _, name := range []string{"help", "version"} {
		if f := cmd.Flags().Lookup(name); f != nil {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		}
	}
	for _, sub := range cmd.Commands() {
		resetTransientFlagState(sub)
	}
}

// GetVersion returns the current version
func GetVersion() string {
	return version
}

// newCommandLogger builds the logger for long-running commands. An
// explicit --log-level wins over the configured level.
func newCommandLogger(cfg *config.Config) (*logger.Logger, error) {
	logCfg := logger.Config{
		Level:   cfg.Logging.Level,
		File:    cfg.Logging.File,
		Console: cfg.Logging.Console,
		Pretty:  cfg.Logging.Pretty,
	}
	if rootCmd.PersistentFlags().Changed("log-level") {
		logCfg.Level = logLevel
	}
	return logger.New(logCfg)
}
