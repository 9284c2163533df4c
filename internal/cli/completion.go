package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var completionInstall bool

var completionCmd = &cobra.Command{
	Use:   "completion <shell>",
	Short: "Set up shell completions for perfmetrics",
	Long: `Set up shell tab-completions for perfmetrics commands, flags and file
arguments.

Supported shells: bash, zsh, fish, powershell

Quick install (adds completions to your shell profile):

  perfmetrics completion bash --install
  perfmetrics completion zsh --install
  perfmetrics completion fish --install

Or print the completion script to stdout (for manual setup):

  perfmetrics completion bash
  perfmetrics completion powershell`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MaximumNArgs(1),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	RunE: runCompletion,
}

func init() {
	completionCmd.Flags().BoolVar(&completionInstall, "install", false,
		"Install completions into your shell profile")

	// Replace Cobra's default completion command.
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.AddCommand(completionCmd)
}

func runCompletion(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}
	shell := args[0]

	if completionInstall {
		return installCompletion(cmd.OutOrStdout(), shell)
	}

	// Hints go to stderr so the script can be piped from stdout.
	out := cmd.OutOrStdout()
	switch shell {
	case "bash":
		printHints(cmd, `# Load in the current session: eval "$(perfmetrics completion bash)"`)
		return rootCmd.GenBashCompletionV2(out, true)
	case "zsh":
		printHints(cmd, `# Load in the current session: eval "$(perfmetrics completion zsh)"`)
		return rootCmd.GenZshCompletion(out)
	case "fish":
		printHints(cmd, "# Load in the current session: perfmetrics completion fish | source")
		return rootCmd.GenFishCompletion(out, true)
	case "powershell":
		printHints(cmd, "# Load in the current session: perfmetrics completion powershell | Out-String | Invoke-Expression")
		return rootCmd.GenPowerShellCompletionWithDesc(out)
	default:
		return fmt.Errorf("unsupported shell %q (supported: bash, zsh, fish, powershell)", shell)
	}
}

func printHints(cmd *cobra.Command, lines ...string) {
	w := cmd.ErrOrStderr()
	for _, line := range lines {
		_, _ = fmt.Fprintln(w, line)
	}
}

// completionTarget returns where the completion script for shell is
// installed below home.
func completionTarget(home, shell string) (string, error) {
	switch shell {
	case "bash":
		return filepath.Join(home, ".local", "share", "bash-completion", "completions", "perfmetrics"), nil
	case "zsh":
		return filepath.Join(home, ".local", "share", "zsh", "site-functions", "_perfmetrics"), nil
	case "fish":
		return filepath.Join(home, ".config", "fish", "completions", "perfmetrics.fish"), nil
	case "powershell":
		return "", fmt.Errorf("automatic install is not supported for PowerShell; run 'perfmetrics completion powershell' and add the output to your profile")
	default:
		return "", fmt.Errorf("unsupported shell %q", shell)
	}
}

func installCompletion(out io.Writer, shell string) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("detecting home directory: %w", err)
	}
	target, err := completionTarget(home, shell)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return fmt.Errorf("creating completion directory: %w", err)
	}

	err = writeCompletionFile(target, func(f *os.File) error {
		switch shell {
		case "zsh":
			return rootCmd.GenZshCompletion(f)
		case "fish":
			return rootCmd.GenFishCompletion(f, true)
		default:
			return rootCmd.GenBashCompletionV2(f, true)
		}
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s completions installed to %s\n", shell, target)
	if shell == "zsh" {
		fmt.Fprintf(out, "Ensure %s is in your fpath.\n", filepath.Dir(target))
	}
	return nil
}

// writeCompletionFile creates target and lets genFn write the script into it.
func writeCompletionFile(target string, genFn func(*os.File) error) error {
	f, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("creating completion file %s: %w", target, err)
	}

	writeErr := genFn(f)
	closeErr := f.Close()

	if writeErr != nil {
		return writeErr
	}
	if closeErr != nil {
		return fmt.Errorf("closing completion file %s: %w", target, closeErr)
	}
	return nil
}
