package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile <allMetricsFile> <currentPerfspectFile> <finalOutputFile>",
	Short: "Reconcile a perfspect metrics file with translated metrics",
	Long: `Build the final perfspect metrics list from the current perfspect file.

Each current metric is replaced by the first metric of the same name in
allMetricsFile (usually the output of translate). Metrics with no counterpart
are kept unchanged and tagged with "origin": "perfspect". Metrics that only
exist in allMetricsFile are not added.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReconcile(cmd.OutOrStdout(), args[0], args[1], args[2])
	},
}

func runReconcile(out io.Writer, allPath, usedPath, outputPath string) error {
	if Reconciler == nil {
		return fmt.Errorf("metric reconciler not initialized")
	}
	result, err := Reconciler.ReconcileFiles(allPath, usedPath, outputPath)
	if err != nil {
		return fmt.Errorf("reconciling %s: %w", usedPath, err)
	}
	fmt.Fprintf(out, "PerfSpect metrics: %d\n", len(result.Metrics))
	return nil
}

func init() {
	rootCmd.AddCommand(reconcileCmd)
}
