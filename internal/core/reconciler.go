package core

import (
	"github.com/intel/svr-info/internal/storage"
	"github.com/intel/svr-info/pkg/models"
	"github.com/rs/zerolog/log"
)

// MetricReconciler merges an existing perfspect metrics file with freshly
// translated metrics.
type MetricReconciler interface {
	// Reconcile reads both files and returns the merged list.
	Reconcile(allPath, usedPath string) (*models.ReconcileResult, error)
	// ReconcileFiles reconciles and writes the merged list to outputPath.
	ReconcileFiles(allPath, usedPath, outputPath string) (*models.ReconcileResult, error)
}

type metricReconciler struct {
	store  storage.DocumentStore
	origin string
	events EventLogger
}

// NewMetricReconciler creates a MetricReconciler. Metrics without a translated
// counterpart are tagged with origin. events may be nil.
func NewMetricReconciler(store storage.DocumentStore, origin string, events EventLogger) MetricReconciler {
	if origin == "" {
		origin = models.OriginPerfSpect
	}
	return &metricReconciler{store: store, origin: origin, events: events}
}

func (r *metricReconciler) Reconcile(allPath, usedPath string) (*models.ReconcileResult, error) {
	all, err := r.store.LoadMetricRecords(allPath)
	if err != nil {
		return nil, err
	}
	used, err := r.store.LoadMetricRecords(usedPath)
	if err != nil {
		return nil, err
	}
	result := ReconcileMetrics(all, used, r.origin)
	return &result, nil
}

func (r *metricReconciler) ReconcileFiles(allPath, usedPath, outputPath string) (*models.ReconcileResult, error) {
	result, err := r.Reconcile(allPath, usedPath)
	if err != nil {
		return nil, err
	}
	if err := r.store.SaveMetrics(outputPath, result.Metrics); err != nil {
		return nil, err
	}

	recordRun(r.events, EventReconcileCompleted, map[string]any{
		"all":          allPath,
		"used":         usedPath,
		"output":       outputPath,
		"metrics":      len(result.Metrics),
		"matched":      result.Matched,
		"carried_over": result.CarriedOver,
	})
	return result, nil
}

// ReconcileMetrics walks used in order. A used metric whose name appears in
// all is replaced by the first such entry; any other used metric is kept with
// its origin set. Metrics only present in all are not added.
func ReconcileMetrics(all, used []models.MetricDefinition, origin string) models.ReconcileResult {
	result := models.ReconcileResult{
		Metrics: make([]models.MetricDefinition, 0, len(used)),
	}
	for _, m := range used {
		if found := findMetric(all, m.Name); found != nil {
			result.Metrics = append(result.Metrics, *found)
			result.Matched++
			continue
		}
		log.Debug().Str("metric", m.Name).Msg("no perfmon counterpart, keeping existing definition")
		m.Origin = origin
		result.Metrics = append(result.Metrics, m)
		result.CarriedOver++
	}
	return result
}

func findMetric(metrics []models.MetricDefinition, name string) *models.MetricDefinition {
	for i := range metrics {
		if metrics[i].Name == name {
			return &metrics[i]
		}
	}
	return nil
}
