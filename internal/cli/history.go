package cli

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/intel/svr-info/internal/observability"
	"github.com/spf13/cobra"
)

var (
	historyJSON  bool
	historySince string
	historyRuns  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Summarize past check, translate and reconcile runs",
	Long: `Display statistics derived from the run history event log.

Runs are only recorded when log.events in the configuration file names a
log file, for example:

  log:
    events: .perfmetrics_events.jsonl

Use --runs to list the individual runs.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if MetricsCalc == nil {
			return fmt.Errorf("run history not available (set log.events in the configuration file)")
		}

		sinceTime, err := parseSinceDuration(historySince)
		if err != nil {
			return fmt.Errorf("parsing --since: %w", err)
		}

		metrics, err := MetricsCalc.Calculate(sinceTime)
		if err != nil {
			return fmt.Errorf("calculating history: %w", err)
		}

		out := cmd.OutOrStdout()
		if historyJSON {
			data, err := json.MarshalIndent(metrics, "", "  ")
			if err != nil {
				return fmt.Errorf("formatting history as JSON: %w", err)
			}
			fmt.Fprintln(out, string(data))
			return nil
		}

		fmt.Fprintf(out, "Runs (since %s)\n\n", sinceTime.Format("2006-01-02"))
		fmt.Fprintf(out, "  %-24s %d\n", "Events recorded:", metrics.EventCount)
		fmt.Fprintf(out, "  %-24s %d\n", "Event checks:", metrics.Checks)
		fmt.Fprintf(out, "  %-24s %d\n", "Checks with missing:", metrics.ChecksWithMissing)
		fmt.Fprintf(out, "  %-24s %d\n", "Translations:", metrics.Translations)
		fmt.Fprintf(out, "  %-24s %d\n", "Failed translations:", metrics.TranslationFailures)
		fmt.Fprintf(out, "  %-24s %d\n", "Metrics generated:", metrics.MetricsGenerated)
		fmt.Fprintf(out, "  %-24s %d\n", "Reconciliations:", metrics.Reconciliations)
		fmt.Fprintf(out, "  %-24s %d\n", "Metrics carried over:", metrics.MetricsCarriedOver)

		if len(metrics.TranslationsBySource) > 0 {
			fmt.Fprintln(out, "\n  Translations by source:")
			sources := make([]string, 0, len(metrics.TranslationsBySource))
			for source := range metrics.TranslationsBySource {
				sources = append(sources, source)
			}
			sort.Strings(sources)
			for _, source := range sources {
				fmt.Fprintf(out, "    %-40s %d\n", source+":", metrics.TranslationsBySource[source])
			}
		}

		if metrics.OldestEvent != nil {
			fmt.Fprintf(out, "\n  %-24s %s\n", "Oldest event:", metrics.OldestEvent.Format(time.RFC3339))
		}
		if metrics.NewestEvent != nil {
			fmt.Fprintf(out, "  %-24s %s\n", "Newest event:", metrics.NewestEvent.Format(time.RFC3339))
		}

		if historyRuns && EventLog != nil {
			events, err := EventLog.Read(observability.EventFilter{Since: &sinceTime})
			if err != nil {
				return fmt.Errorf("reading runs: %w", err)
			}
			fmt.Fprintln(out, "\n  Runs:")
			for _, e := range events {
				fmt.Fprintf(out, "    %s  %-6s %-20s %s\n", e.Time.Format(time.RFC3339), e.Level, e.Type, describeRun(e))
			}
		}

		return nil
	},
}

// describeRun picks the file arguments of a recorded run for display.
func describeRun(e observability.Event) string {
	var parts []string
	for _, key := range []string{"source", "metrics_file", "used", "output", "error"} {
		if v, ok := e.Data[key].(string); ok && v != "" {
			parts = append(parts, key+"="+v)
		}
	}
	return strings.Join(parts, " ")
}

// parseSinceDuration parses a human-friendly duration string like "7d", "30d",
// or "24h" and returns the corresponding time in the past.
func parseSinceDuration(s string) (time.Time, error) {
	now := time.Now().UTC()
	s = strings.TrimSpace(s)
	if s == "" {
		return now.AddDate(0, 0, -7), nil
	}

	if strings.HasSuffix(s, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid day duration %q", s)
		}
		return now.AddDate(0, 0, -days), nil
	}

	if strings.HasSuffix(s, "h") {
		hours, err := strconv.Atoi(strings.TrimSuffix(s, "h"))
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid hour duration %q", s)
		}
		return now.Add(-time.Duration(hours) * time.Hour), nil
	}

	return time.Time{}, fmt.Errorf("unsupported duration format %q (use e.g. 7d, 30d, 24h)", s)
}

func init() {
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Output history as JSON")
	historyCmd.Flags().StringVar(&historySince, "since", "7d", "Time window (e.g. 7d, 30d, 24h)")
	historyCmd.Flags().BoolVar(&historyRuns, "runs", false, "List individual runs")
	rootCmd.AddCommand(historyCmd)
}
