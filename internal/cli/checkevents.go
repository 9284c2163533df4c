package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var (
	checkFormat      string
	checkInteractive bool
)

var checkEventsCmd = &cobra.Command{
	Use:   "check-events <metrics.json> <events.txt>",
	Short: "Compare the events used by metric formulas with an events file",
	Long: `Read a perfspect metrics file and an events file and report:

  Missing events: events used in metric formulas but not declared in the
                  events file, in the order they are first used.
  Unused events:  events declared in the events file but not used by any
                  metric, in declaration order.

Formula events are written as [EVENT] or [EVENT:modifier]; the modifier is
ignored and events starting with const_ are constants, not counters.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Checker == nil {
			return fmt.Errorf("event checker not initialized")
		}

		if checkInteractive {
			p := tea.NewProgram(newCheckModel(args[0], args[1]), tea.WithAltScreen())
			_, err := p.Run()
			return err
		}

		report, err := Checker.Check(args[0], args[1])
		if err != nil {
			return fmt.Errorf("checking events: %w", err)
		}
		return writeReport(cmd.OutOrStdout(), report, checkFormat)
	},
}

func init() {
	checkEventsCmd.Flags().StringVar(&checkFormat, "format", formatText, "Output format: text, json or yaml")
	checkEventsCmd.Flags().BoolVarP(&checkInteractive, "interactive", "i", false, "Browse the result in an interactive view")
	rootCmd.AddCommand(checkEventsCmd)
}
