package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/intel/svr-info/internal/core"
	"github.com/intel/svr-info/pkg/models"
	"gopkg.in/yaml.v3"
)

// Report output formats.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// writeReport renders a check report to w in the requested format.
func writeReport(w io.Writer, report *models.EventCheckReport, format string) error {
	switch format {
	case "", formatText:
		_, err := io.WriteString(w, core.FormatReport(report))
		return err
	case formatJSON:
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("formatting report as JSON: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("formatting report as YAML: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported format %q (use text, json or yaml)", format)
	}
}
