package observability

import (
	"fmt"
	"time"
)

// Event types written by the metric tools.
const (
	EventCheckCompleted     = "check.completed"
	EventTranslateCompleted = "translate.completed"
	EventTranslateFailed    = "translate.failed"
	EventReconcileCompleted = "reconcile.completed"
)

// Metrics summarizes the runs recorded in the event log.
type Metrics struct {
	EventCount           int            `json:"event_count"`
	Checks               int            `json:"checks"`
	ChecksWithMissing    int            `json:"checks_with_missing"`
	Translations         int            `json:"translations"`
	TranslationFailures  int            `json:"translation_failures"`
	Reconciliations      int            `json:"reconciliations"`
	MetricsGenerated     int            `json:"metrics_generated"`
	MetricsCarriedOver   int            `json:"metrics_carried_over"`
	TranslationsBySource map[string]int `json:"translations_by_source"`
	OldestEvent          *time.Time     `json:"oldest_event,omitempty"`
	NewestEvent          *time.Time     `json:"newest_event,omitempty"`
}

// MetricsCalculator derives run metrics from the event log.
type MetricsCalculator interface {
	Calculate(since time.Time) (*Metrics, error)
}

type metricsCalculator struct {
	eventLog EventLog
}

// NewMetricsCalculator creates a MetricsCalculator reading from eventLog.
func NewMetricsCalculator(eventLog EventLog) MetricsCalculator {
	return &metricsCalculator{eventLog: eventLog}
}

// Calculate aggregates all events recorded at or after since.
func (mc *metricsCalculator) Calculate(since time.Time) (*Metrics, error) {
	events, err := mc.eventLog.Read(EventFilter{Since: &since})
	if err != nil {
		return nil, fmt.Errorf("reading events for metrics: %w", err)
	}

	m := &Metrics{
		EventCount:           len(events),
		TranslationsBySource: make(map[string]int),
	}

	for i, event := range events {
		t := event.Time
		if i == 0 {
			m.OldestEvent = &t
		}
		m.NewestEvent = &t

		switch event.Type {
		case EventCheckCompleted:
			m.Checks++
			if intValue(event.Data["missing"]) > 0 {
				m.ChecksWithMissing++
			}
		case EventTranslateCompleted:
			m.Translations++
			m.MetricsGenerated += intValue(event.Data["generated"])
			if source, ok := event.Data["source"].(string); ok {
				m.TranslationsBySource[source]++
			}
		case EventTranslateFailed:
			m.TranslationFailures++
		case EventReconcileCompleted:
			m.Reconciliations++
			m.MetricsCarriedOver += intValue(event.Data["carried_over"])
		}
	}

	return m, nil
}

// intValue reads a count from event data. Counts come back from JSON as
// float64 and are ints when written in-process.
func intValue(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	default:
		return 0
	}
}
