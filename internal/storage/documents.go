package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/intel/svr-info/pkg/models"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// DefaultIndent is the number of spaces used when writing metrics files.
const DefaultIndent = 4

// DocumentStore reads and writes the documents the metric tools work on.
type DocumentStore interface {
	// LoadMetrics reads a perfspect metrics file whose records must all carry
	// a name and an expression.
	LoadMetrics(path string) ([]models.MetricDefinition, error)
	// LoadMetricRecords reads a perfspect metrics file whose records only
	// need a name. Other fields are preserved.
	LoadMetricRecords(path string) ([]models.MetricDefinition, error)
	// LoadPerfmon reads a perfmon metrics file.
	LoadPerfmon(path string) (*models.PerfmonDocument, error)
	// LoadEventLines returns the lines of an events file, each still carrying
	// its line terminator. CRLF and CR endings are read as LF.
	LoadEventLines(path string) ([]string, error)
	// SaveMetrics overwrites path with the metrics as indented JSON.
	SaveMetrics(path string, metrics []models.MetricDefinition) error
}

type fileDocumentStore struct {
	indent int
}

// NewDocumentStore creates a DocumentStore backed by the local filesystem.
// indent is the number of spaces per JSON nesting level; 0 writes compact JSON.
func NewDocumentStore(indent int) DocumentStore {
	if indent < 0 {
		indent = DefaultIndent
	}
	return &fileDocumentStore{indent: indent}
}

func (s *fileDocumentStore) LoadMetrics(path string) ([]models.MetricDefinition, error) {
	return loadMetricArray(path, metricListValidator)
}

func (s *fileDocumentStore) LoadMetricRecords(path string) ([]models.MetricDefinition, error) {
	return loadMetricArray(path, metricRecordsValidator)
}

func loadMetricArray(path string, validator *jsonschema.Schema) ([]models.MetricDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading metrics file %s: %w", path, err)
	}
	if err := validateDocument(path, data, validator); err != nil {
		return nil, err
	}

	metrics := []models.MetricDefinition{}
	if err := json.Unmarshal(data, &metrics); err != nil {
		return nil, &MalformedInputError{Path: path, Err: err}
	}
	return metrics, nil
}

func (s *fileDocumentStore) LoadPerfmon(path string) (*models.PerfmonDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading perfmon file %s: %w", path, err)
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &MalformedInputError{Path: path, Err: err}
	}
	top, ok := raw.(map[string]any)
	if !ok {
		return nil, &MalformedInputError{Path: path, Err: fmt.Errorf("top level is not an object")}
	}
	if top["Metrics"] == nil {
		return nil, &MissingMetricsFieldError{Path: path}
	}
	if err := perfmonValidator.Validate(raw); err != nil {
		return nil, &MalformedInputError{Path: path, Err: err}
	}

	var doc models.PerfmonDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &MalformedInputError{Path: path, Err: err}
	}
	return &doc, nil
}

func validateDocument(path string, data []byte, validator *jsonschema.Schema) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return &MalformedInputError{Path: path, Err: err}
	}
	if err := validator.Validate(raw); err != nil {
		return &MalformedInputError{Path: path, Err: err}
	}
	return nil
}

// newlines maps CRLF and bare CR line endings to LF.
var newlines = strings.NewReplacer("\r\n", "\n", "\r", "\n")

func (s *fileDocumentStore) LoadEventLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading events file %s: %w", path, err)
	}
	lines := strings.SplitAfter(newlines.Replace(string(data)), "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines, nil
}

func (s *fileDocumentStore) SaveMetrics(path string, metrics []models.MetricDefinition) error {
	data, err := s.encode(metrics)
	if err != nil {
		return fmt.Errorf("encoding metrics: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory %s: %w", dir, err)
		}
	}

	// Write to a temporary file first, then rename over the target.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

// encode renders metrics the way the perfspect tooling expects: indented,
// without HTML escaping and without a trailing newline.
func (s *fileDocumentStore) encode(metrics []models.MetricDefinition) ([]byte, error) {
	if metrics == nil {
		metrics = []models.MetricDefinition{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if s.indent > 0 {
		enc.SetIndent("", strings.Repeat(" ", s.indent))
	}
	if err := enc.Encode(metrics); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
