package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/intel/svr-info/internal/storage"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var translateCmd = &cobra.Command{
	Use:     "translate <perfmonMetricsFile> <perfspectOutputFile> [<currentPerfspectFile> <finalOutputFile>]",
	Aliases: []string{"perfmon2perfspect"},
	Short:   "Translate perfmon metrics to perfspect metrics",
	Long: `Translate a perfmon metrics file into a perfspect metrics file.

Formula aliases are replaced with the bracketed event or constant names listed
for the same metric, and a fixed set of perfmon event names is mapped to the
names perfspect uses (for example [INST_RETIRED.ANY] becomes [instructions]).

With four arguments the translated file is then reconciled with the current
perfspect metrics file: every current metric is replaced by its translated
definition when one exists, otherwise it is kept and tagged with
"origin": "perfspect". The result is written to finalOutputFile.

Exits with status 1 and no output when fewer than two arguments are given.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) < 2 {
			return ErrSilentExit
		}
		return nil
	},
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Translator == nil {
			return fmt.Errorf("metric translator not initialized")
		}
		out := cmd.OutOrStdout()

		if err := runTranslate(out, args[0], args[1]); err != nil {
			return err
		}

		if len(args) != 4 {
			if len(args) > 2 {
				log.Debug().Strs("args", args[2:]).Msg("reconciliation needs exactly four arguments, skipping")
			}
			return nil
		}
		return runReconcile(out, args[1], args[2], args[3])
	},
}

func runTranslate(out io.Writer, source, output string) error {
	result, err := Translator.TranslateFile(source, output)
	if err != nil {
		if errors.Is(err, storage.ErrMissingMetricsField) {
			fmt.Fprintf(out, "ERROR: No metrics were found in %s\n", source)
			return ErrSilentExit
		}
		return fmt.Errorf("translating %s: %w", source, err)
	}
	fmt.Fprintf(out, "Metrics in %s: %d\n", source, result.InputCount)
	fmt.Fprintf(out, "Generated metrics: %d\n", len(result.Metrics))
	return nil
}

func init() {
	rootCmd.AddCommand(translateCmd)
}
