package cli

import (
	"github.com/intel/svr-info/internal/core"
	"github.com/intel/svr-info/internal/observability"
)

// Service instances, set during app initialization in app.go.
var (
	Checker    core.EventChecker
	Translator core.MetricTranslator
	Reconciler core.MetricReconciler
)

// Observability service instances. Both are nil when run history is disabled.
var (
	EventLog    observability.EventLog
	MetricsCalc observability.MetricsCalculator
)
