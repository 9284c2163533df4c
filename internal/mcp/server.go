// Package mcp provides an MCP (Model Context Protocol) server that exposes
// the metric tools to AI coding assistants.
package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/intel/svr-info/internal/core"
	"github.com/intel/svr-info/internal/storage"
	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the metric services and exposes them as MCP tools.
type Server struct {
	server     *gomcp.Server
	checker    core.EventChecker
	translator core.MetricTranslator
	reconciler core.MetricReconciler
}

// NewServer creates a new MCP server over the given services.
func NewServer(checker core.EventChecker, translator core.MetricTranslator, reconciler core.MetricReconciler, version string) *Server {
	if version == "" {
		version = "dev"
	}

	s := &Server{
		checker:    checker,
		translator: translator,
		reconciler: reconciler,
	}

	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "perfmetrics", Version: version},
		nil,
	)

	s.registerTools()

	return s
}

// Run serves MCP on stdio until the client disconnects or ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input/output types ---

type checkEventsInput struct {
	MetricsPath string `json:"metrics_path" jsonschema:"required,path to a perfspect metrics JSON file"`
	EventsPath  string `json:"events_path" jsonschema:"required,path to an events text file"`
}

type checkEventsOutput struct {
	MissingEvents []string `json:"missing_events"`
	UnusedEvents  []string `json:"unused_events"`
	UsedCount     int      `json:"used_count"`
	DeclaredCount int      `json:"declared_count"`
}

type translateInput struct {
	PerfmonPath string `json:"perfmon_path" jsonschema:"required,path to a perfmon metrics JSON file"`
	OutputPath  string `json:"output_path" jsonschema:"required,path the perfspect metrics file is written to"`
}

type translateOutput struct {
	InputCount     int    `json:"input_count"`
	GeneratedCount int    `json:"generated_count"`
	OutputPath     string `json:"output_path"`
}

type reconcileInput struct {
	AllPath    string `json:"all_path" jsonschema:"required,path to the translated perfspect metrics"`
	UsedPath   string `json:"used_path" jsonschema:"required,path to the current perfspect metrics"`
	OutputPath string `json:"output_path" jsonschema:"required,path the final metrics file is written to"`
}

type reconcileOutput struct {
	Count       int    `json:"count"`
	Matched     int    `json:"matched"`
	CarriedOver int    `json:"carried_over"`
	OutputPath  string `json:"output_path"`
}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "check_events",
		Description: "Compare the events used by metric formulas with an events file. Returns missing events (used but not declared) and unused events (declared but not used).",
	}, s.handleCheckEvents)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "translate_metrics",
		Description: "Translate a perfmon metrics file into a perfspect metrics file and write it to output_path.",
	}, s.handleTranslate)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "reconcile_metrics",
		Description: "Replace the metrics of a current perfspect file with their translated definitions, tagging metrics without one as origin=perfspect.",
	}, s.handleReconcile)
}

// --- Tool handlers ---

func (s *Server) handleCheckEvents(_ context.Context, _ *gomcp.CallToolRequest, input checkEventsInput) (*gomcp.CallToolResult, checkEventsOutput, error) {
	if input.MetricsPath == "" || input.EventsPath == "" {
		return errorResult("metrics_path and events_path are required"), checkEventsOutput{}, nil
	}

	report, err := s.checker.Check(input.MetricsPath, input.EventsPath)
	if err != nil {
		return errorResult(fmt.Sprintf("checking events: %s", err)), checkEventsOutput{}, nil
	}

	return nil, checkEventsOutput{
		MissingEvents: report.MissingEvents,
		UnusedEvents:  report.UnusedEvents,
		UsedCount:     report.UsedCount,
		DeclaredCount: report.DeclaredCount,
	}, nil
}

func (s *Server) handleTranslate(_ context.Context, _ *gomcp.CallToolRequest, input translateInput) (*gomcp.CallToolResult, translateOutput, error) {
	if input.PerfmonPath == "" || input.OutputPath == "" {
		return errorResult("perfmon_path and output_path are required"), translateOutput{}, nil
	}

	result, err := s.translator.TranslateFile(input.PerfmonPath, input.OutputPath)
	if err != nil {
		if errors.Is(err, storage.ErrMissingMetricsField) {
			return errorResult(fmt.Sprintf("no metrics were found in %s", input.PerfmonPath)), translateOutput{}, nil
		}
		return errorResult(fmt.Sprintf("translating metrics: %s", err)), translateOutput{}, nil
	}

	return nil, translateOutput{
		InputCount:     result.InputCount,
		GeneratedCount: len(result.Metrics),
		OutputPath:     input.OutputPath,
	}, nil
}

func (s *Server) handleReconcile(_ context.Context, _ *gomcp.CallToolRequest, input reconcileInput) (*gomcp.CallToolResult, reconcileOutput, error) {
	if input.AllPath == "" || input.UsedPath == "" || input.OutputPath == "" {
		return errorResult("all_path, used_path and output_path are required"), reconcileOutput{}, nil
	}

	result, err := s.reconciler.ReconcileFiles(input.AllPath, input.UsedPath, input.OutputPath)
	if err != nil {
		return errorResult(fmt.Sprintf("reconciling metrics: %s", err)), reconcileOutput{}, nil
	}

	return nil, reconcileOutput{
		Count:       len(result.Metrics),
		Matched:     result.Matched,
		CarriedOver: result.CarriedOver,
		OutputPath:  input.OutputPath,
	}, nil
}

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}
