package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

// ErrSilentExit makes the process exit with status 1 without printing an
// error message.
var ErrSilentExit = errors.New("exit status 1")

// GlobalOptions are the persistent flags shared by all commands.
type GlobalOptions struct {
	ConfigFile string
	LogLevel   string
}

var globalOpts GlobalOptions

// initializer builds the services before a command runs. It is set by main.
var initializer func(opts GlobalOptions) error

// SetInitializer registers the function that wires the services once flags
// have been parsed.
func SetInitializer(fn func(opts GlobalOptions) error) {
	initializer = fn
}

var rootCmd = &cobra.Command{
	Use:   "perfmetrics",
	Short: "Convert and cross-check perf metric definitions",
	Long: `perfmetrics works on the metric definition files used by the perfspect
tooling.

It translates perfmon metric files (alias based formulas) into perfspect metric
files (bracketed event names), reconciles an existing perfspect file with a
fresh translation, and checks that the events used by metric formulas match an
events file.`,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Arguments are valid by now; runtime failures do not need usage.
		cmd.SilenceUsage = true
		if initializer == nil {
			return nil
		}
		if err := initializer(globalOpts); err != nil {
			return fmt.Errorf("initializing: %w", err)
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "perfmetrics %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&globalOpts.ConfigFile, "config", "", "Path to a configuration file (default .perfmetrics.yaml)")
	rootCmd.PersistentFlags().StringVar(&globalOpts.LogLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	rootCmd.AddCommand(versionCmd)
	registerCompletions()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
