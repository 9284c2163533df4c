package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/intel/svr-info/internal/core"
	"github.com/intel/svr-info/internal/storage"
	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

func newTestServer() *Server {
	store := storage.NewDocumentStore(storage.DefaultIndent)
	return NewServer(
		core.NewEventChecker(store, core.DefaultConstPrefix, nil),
		core.NewMetricTranslator(store, nil),
		core.NewMetricReconciler(store, "", nil),
		"test",
	)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

// connect starts srv on an in-memory transport and returns a client session.
func connect(t *testing.T, srv *Server) *gomcp.ClientSession {
	t.Helper()

	ctx := context.Background()
	client := gomcp.NewClient(&gomcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)

	t1, t2 := gomcp.NewInMemoryTransports()

	// Connect server (non-blocking).
	go func() {
		_ = srv.MCPServer().Run(ctx, t1)
	}()

	session, err := client.Connect(ctx, t2, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { _ = session.Close() })
	return session
}

// callTool is a helper that connects a client to the server and calls a tool.
func callTool(t *testing.T, srv *Server, toolName string, args map[string]any) *gomcp.CallToolResult {
	t.Helper()

	result, err := connect(t, srv).CallTool(context.Background(), &gomcp.CallToolParams{
		Name:      toolName,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("call tool %s: %v", toolName, err)
	}
	return result
}

// callToolAllowError is like callTool but returns nil instead of failing when
// the tool call returns an error (e.g. schema validation failure).
func callToolAllowError(t *testing.T, srv *Server, toolName string, args map[string]any) *gomcp.CallToolResult {
	t.Helper()

	result, err := connect(t, srv).CallTool(context.Background(), &gomcp.CallToolParams{
		Name:      toolName,
		Arguments: args,
	})
	if err != nil {
		// Protocol-level error (e.g. schema validation) -- return nil.
		return nil
	}
	return result
}

// --- Tests ---

func TestListTools(t *testing.T) {
	session := connect(t, newTestServer())

	res, err := session.ListTools(context.Background(), nil)
	if err != nil {
		t.Fatalf("list tools: %v", err)
	}
	names := make(map[string]bool)
	for _, tool := range res.Tools {
		names[tool.Name] = true
	}
	for _, want := range []string{"check_events", "translate_metrics", "reconcile_metrics"} {
		if !names[want] {
			t.Errorf("tool %s not registered", want)
		}
	}
}

func TestCheckEvents(t *testing.T) {
	dir := t.TempDir()
	metrics := writeFile(t, dir, "metrics.json", `[{"name": "m1", "expression": "[A] + [C] - [const_X]"}]`)
	events := writeFile(t, dir, "events.txt", "A,\nD,\n")

	result := callTool(t, newTestServer(), "check_events", map[string]any{
		"metrics_path": metrics,
		"events_path":  events,
	})
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", extractText(result))
	}

	var out checkEventsOutput
	if err := json.Unmarshal([]byte(extractText(result)), &out); err != nil {
		t.Fatalf("decoding output: %v", err)
	}
	if len(out.MissingEvents) != 1 || out.MissingEvents[0] != "C" {
		t.Errorf("MissingEvents = %v, want [C]", out.MissingEvents)
	}
	if len(out.UnusedEvents) != 1 || out.UnusedEvents[0] != "D" {
		t.Errorf("UnusedEvents = %v, want [D]", out.UnusedEvents)
	}
	if out.UsedCount != 2 || out.DeclaredCount != 2 {
		t.Errorf("counts = %d / %d, want 2 / 2", out.UsedCount, out.DeclaredCount)
	}
}

func TestCheckEventsMissingFile(t *testing.T) {
	dir := t.TempDir()

	result := callTool(t, newTestServer(), "check_events", map[string]any{
		"metrics_path": filepath.Join(dir, "absent.json"),
		"events_path":  filepath.Join(dir, "absent.txt"),
	})
	if !result.IsError {
		t.Fatal("expected tool error for missing files")
	}
	if !strings.Contains(extractText(result), "checking events") {
		t.Errorf("unexpected error text: %s", extractText(result))
	}
}

func TestCheckEventsEmptyPaths(t *testing.T) {
	result := callToolAllowError(t, newTestServer(), "check_events", map[string]any{
		"metrics_path": "",
		"events_path":  "",
	})
	if result != nil && !result.IsError {
		t.Error("expected an error for empty paths")
	}
}

func TestTranslateMetrics(t *testing.T) {
	dir := t.TempDir()
	source := writeFile(t, dir, "perfmon.json", `{"Metrics": [
        {"LegacyName": "metric_CPI", "Events": [{"Alias": "a", "Name": "CPU_CLK_UNHALTED.THREAD"}, {"Alias": "b", "Name": "INST_RETIRED.ANY"}], "Constants": [], "Formula": "a / b"}
    ]}`)
	output := filepath.Join(dir, "perfspect.json")

	result := callTool(t, newTestServer(), "translate_metrics", map[string]any{
		"perfmon_path": source,
		"output_path":  output,
	})
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", extractText(result))
	}

	var out translateOutput
	if err := json.Unmarshal([]byte(extractText(result)), &out); err != nil {
		t.Fatalf("decoding output: %v", err)
	}
	if out.InputCount != 1 || out.GeneratedCount != 1 || out.OutputPath != output {
		t.Errorf("output = %+v", out)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if !strings.Contains(string(data), "[cpu-cycles] / [instructions]") {
		t.Errorf("unexpected file content:\n%s", data)
	}
}

func TestTranslateMetricsNoMetrics(t *testing.T) {
	dir := t.TempDir()
	source := writeFile(t, dir, "perfmon.json", `{"Header": {}}`)

	result := callTool(t, newTestServer(), "translate_metrics", map[string]any{
		"perfmon_path": source,
		"output_path":  filepath.Join(dir, "out.json"),
	})
	if !result.IsError {
		t.Fatal("expected tool error")
	}
	if got := extractText(result); got != "no metrics were found in "+source {
		t.Errorf("error text = %q", got)
	}
}

func TestReconcileMetrics(t *testing.T) {
	dir := t.TempDir()
	all := writeFile(t, dir, "all.json", `[{"name": "m1", "expression": "[X]"}]`)
	used := writeFile(t, dir, "used.json", `[{"name": "m1", "expression": "[OLD]"}, {"name": "m2", "expression": "[Y]"}]`)
	output := filepath.Join(dir, "final.json")

	result := callTool(t, newTestServer(), "reconcile_metrics", map[string]any{
		"all_path":    all,
		"used_path":   used,
		"output_path": output,
	})
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", extractText(result))
	}

	var out reconcileOutput
	if err := json.Unmarshal([]byte(extractText(result)), &out); err != nil {
		t.Fatalf("decoding output: %v", err)
	}
	if out.Count != 2 || out.Matched != 1 || out.CarriedOver != 1 {
		t.Errorf("output = %+v", out)
	}
	if _, err := os.Stat(output); err != nil {
		t.Errorf("final file not written: %v", err)
	}
}

func TestReconcileMetricsMalformed(t *testing.T) {
	dir := t.TempDir()
	all := writeFile(t, dir, "all.json", `{"not": "an array"}`)
	used := writeFile(t, dir, "used.json", `[]`)

	result := callTool(t, newTestServer(), "reconcile_metrics", map[string]any{
		"all_path":    all,
		"used_path":   used,
		"output_path": filepath.Join(dir, "final.json"),
	})
	if !result.IsError {
		t.Fatal("expected tool error for malformed input")
	}
}

func TestNewServerDefaultVersion(t *testing.T) {
	store := storage.NewDocumentStore(storage.DefaultIndent)
	srv := NewServer(core.NewEventChecker(store, "", nil), core.NewMetricTranslator(store, nil), core.NewMetricReconciler(store, "", nil), "")
	if srv.MCPServer() == nil {
		t.Fatal("expected underlying server")
	}
}

// extractText extracts the text from the first TextContent in a CallToolResult.
func extractText(result *gomcp.CallToolResult) string {
	for _, c := range result.Content {
		if tc, ok := c.(*gomcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}
