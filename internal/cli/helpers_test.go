package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/intel/svr-info/internal/core"
	"github.com/intel/svr-info/internal/observability"
	"github.com/intel/svr-info/internal/storage"
)

// executeCommand runs the root command with args and returns what it wrote.
// Command flags are reset to their defaults first since the command tree is
// shared between tests.
func executeCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	checkFormat = formatText
	checkInteractive = false
	historyJSON = false
	historySince = "7d"
	historyRuns = false
	completionInstall = false
	globalOpts = GlobalOptions{}

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := Execute()
	return stdout.String(), stderr.String(), err
}

// setupServices wires real services backed by a JSONL event log in a temp
// directory and restores the previous services when the test ends.
func setupServices(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	prevChecker, prevTranslator, prevReconciler := Checker, Translator, Reconciler
	prevLog, prevCalc, prevInit := EventLog, MetricsCalc, initializer
	t.Cleanup(func() {
		Checker, Translator, Reconciler = prevChecker, prevTranslator, prevReconciler
		EventLog, MetricsCalc, initializer = prevLog, prevCalc, prevInit
	})

	log, err := observability.NewJSONLEventLog(filepath.Join(dir, "events.jsonl"))
	if err != nil {
		t.Fatalf("creating event log: %v", err)
	}
	t.Cleanup(func() { _ = log.Close() })

	events := &testEventLogger{log: log}
	store := storage.NewDocumentStore(storage.DefaultIndent)
	Checker = core.NewEventChecker(store, core.DefaultConstPrefix, events)
	Translator = core.NewMetricTranslator(store, events)
	Reconciler = core.NewMetricReconciler(store, "", events)
	EventLog = log
	MetricsCalc = observability.NewMetricsCalculator(log)
	initializer = nil
	return dir
}

type testEventLogger struct {
	log observability.EventLog
}

func (l *testEventLogger) LogEvent(eventType string, data map[string]any) error {
	return l.log.Write(observability.Event{Type: eventType, Message: eventType, Data: data})
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}
