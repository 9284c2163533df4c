package models

// EventCheckReport is the outcome of cross-checking a metrics file against an
// events file.
type EventCheckReport struct {
	MetricsFile   string   `json:"metrics_file" yaml:"metrics_file"`
	EventsFile    string   `json:"events_file" yaml:"events_file"`
	MissingEvents []string `json:"missing_events" yaml:"missing_events"`
	UnusedEvents  []string `json:"unused_events" yaml:"unused_events"`
	UsedCount     int      `json:"used_count" yaml:"used_count"`
	DeclaredCount int      `json:"declared_count" yaml:"declared_count"`
}

// TranslationResult holds the perfspect metrics generated from a perfmon file.
type TranslationResult struct {
	Source     string             `json:"source"`
	InputCount int                `json:"input_count"`
	Metrics    []MetricDefinition `json:"metrics"`
}

// ReconcileResult holds the final metric list produced by reconciling an
// existing perfspect file against freshly translated metrics.
type ReconcileResult struct {
	Metrics     []MetricDefinition `json:"metrics"`
	Matched     int                `json:"matched"`
	CarriedOver int                `json:"carried_over"`
}
