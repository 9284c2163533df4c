package cli

import "github.com/spf13/cobra"

// completeFiles returns a positional argument completion function that
// offers files with the given extensions for the first maxArgs arguments.
func completeFiles(maxArgs int, extensions ...string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
		if len(args) >= maxArgs {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return extensions, cobra.ShellCompDirectiveFilterFileExt
	}
}

// completeFormats lists the check-events output formats.
func completeFormats(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return []string{
		formatText + "\tMissing/Unused summary lines",
		formatJSON + "\tJSON report",
		formatYAML + "\tYAML report",
	}, cobra.ShellCompDirectiveNoFileComp
}

// completeSince offers common history windows.
func completeSince(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return []string{"24h", "7d", "30d", "90d"}, cobra.ShellCompDirectiveNoFileComp
}

func registerCompletions() {
	checkEventsCmd.ValidArgsFunction = func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) == 0 {
			return completeFiles(1, "json")(cmd, args, toComplete)
		}
		return completeFiles(2, "txt")(cmd, args, toComplete)
	}
	translateCmd.ValidArgsFunction = completeFiles(4, "json")
	reconcileCmd.ValidArgsFunction = completeFiles(3, "json")

	_ = checkEventsCmd.RegisterFlagCompletionFunc("format", completeFormats)
	_ = historyCmd.RegisterFlagCompletionFunc("since", completeSince)
	_ = rootCmd.RegisterFlagCompletionFunc("log-level", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"debug", "info", "warn", "error"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("config", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"yaml", "yml"}, cobra.ShellCompDirectiveFilterFileExt
	})
}
