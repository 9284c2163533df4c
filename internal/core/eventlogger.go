package core

import (
	"github.com/intel/svr-info/internal/observability"
	"github.com/rs/zerolog/log"
)

// Run event types written to the history log.
const (
	EventCheckCompleted     = observability.EventCheckCompleted
	EventTranslateCompleted = observability.EventTranslateCompleted
	EventTranslateFailed    = observability.EventTranslateFailed
	EventReconcileCompleted = observability.EventReconcileCompleted
)

// EventLogger records completed runs. The app wires it to the observability
// event log.
type EventLogger interface {
	LogEvent(eventType string, data map[string]any) error
}

// recordRun writes a run event when a logger is configured. A failed write
// never fails the run itself.
func recordRun(l EventLogger, eventType string, data map[string]any) {
	if l == nil {
		return
	}
	if err := l.LogEvent(eventType, data); err != nil {
		log.Warn().Err(err).Str("event", eventType).Msg("recording run event")
	}
}
