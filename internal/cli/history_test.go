package cli

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/intel/svr-info/internal/observability"
)

func TestHistory_AfterRuns(t *testing.T) {
	dir := setupServices(t)
	source := writeFile(t, dir, "perfmon.json", cliPerfmon)
	broken := writeFile(t, dir, "broken.json", `{"Header": {}}`)

	if _, _, err := executeCommand(t, "translate", source, filepath.Join(dir, "out.json")); err != nil {
		t.Fatalf("translate: %v", err)
	}
	_, _, _ = executeCommand(t, "translate", broken, filepath.Join(dir, "out2.json"))

	stdout, _, err := executeCommand(t, "history", "--runs")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	for _, want := range []string{
		"Translations:            1",
		"Failed translations:     1",
		"Metrics generated:       2",
		"Runs:",
		"source=" + source,
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("history output missing %q:\n%s", want, stdout)
		}
	}
}

func TestHistory_JSON(t *testing.T) {
	setupServices(t)
	if err := EventLog.Write(observability.Event{Type: observability.EventCheckCompleted, Data: map[string]any{"missing": 3}}); err != nil {
		t.Fatal(err)
	}

	stdout, _, err := executeCommand(t, "history", "--json")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	var m observability.Metrics
	if err := json.Unmarshal([]byte(stdout), &m); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if m.Checks != 1 || m.ChecksWithMissing != 1 {
		t.Errorf("metrics = %+v", m)
	}
}

func TestHistory_Disabled(t *testing.T) {
	setupServices(t)
	MetricsCalc = nil

	_, _, err := executeCommand(t, "history")
	if err == nil || !strings.Contains(err.Error(), "not available") {
		t.Fatalf("expected disabled history error, got %v", err)
	}
}

func TestHistory_BadSince(t *testing.T) {
	setupServices(t)

	if _, _, err := executeCommand(t, "history", "--since", "soon"); err == nil {
		t.Fatal("expected error for bad --since")
	}
}

func TestParseSinceDuration(t *testing.T) {
	now := time.Now().UTC()
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{in: "", want: now.AddDate(0, 0, -7)},
		{in: "7d", want: now.AddDate(0, 0, -7)},
		{in: "30d", want: now.AddDate(0, 0, -30)},
		{in: "24h", want: now.Add(-24 * time.Hour)},
		{in: " 2d ", want: now.AddDate(0, 0, -2)},
		{in: "xd", wantErr: true},
		{in: "1w", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseSinceDuration(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := got.Sub(tt.want); diff < -time.Minute || diff > time.Minute {
				t.Errorf("parseSinceDuration(%q) = %v, want about %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestDescribeRun(t *testing.T) {
	e := observability.Event{Data: map[string]any{
		"source": "spr.json",
		"output": "out.json",
		"input":  3,
	}}
	if got := describeRun(e); got != "source=spr.json output=out.json" {
		t.Errorf("describeRun = %q", got)
	}
}
