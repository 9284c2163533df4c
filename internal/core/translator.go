package core

import (
	"strings"
	"unicode"

	"github.com/intel/svr-info/internal/storage"
	"github.com/intel/svr-info/pkg/models"
	"github.com/rs/zerolog/log"
)

// Replacement is one literal substitution applied to translated formulas.
type Replacement struct {
	Old string
	New string
}

// perfspectReplacements maps perfmon spellings to the names perfspect uses.
// Entries are applied in order, each to the output of the previous one.
var perfspectReplacements = []Replacement{
	{"[INST_RETIRED.ANY]", "[instructions]"},
	{"[CPU_CLK_UNHALTED.THREAD]", "[cpu-cycles]"},
	{"[CPU_CLK_UNHALTED.REF]", "[ref-cycles]"},
	{"[CPU_CLK_UNHALTED.REF_TSC]", "[ref-cycles]"},
	{"DURATIONTIMEINSECONDS", "1"},
	{"[DURATIONTIMEINMILLISECONDS]", "1000"},
	{"[TOPDOWN.SLOTS:perf_metrics]", "[TOPDOWN.SLOTS]"},
	{"[OFFCORE_REQUESTS_OUTSTANDING.ALL_DATA_RD:c4]", "[OFFCORE_REQUESTS_OUTSTANDING.DATA_RD:c4]"},
}

// PerfspectReplacements returns a copy of the replacement table used by
// TranslateMetric.
func PerfspectReplacements() []Replacement {
	return append([]Replacement(nil), perfspectReplacements...)
}

// MetricTranslator converts perfmon metric files to perfspect metric files.
type MetricTranslator interface {
	// Translate reads a perfmon file and returns the translated metrics.
	Translate(sourcePath string) (*models.TranslationResult, error)
	// TranslateFile translates sourcePath and writes the result to outputPath.
	// Nothing is written when translation fails.
	TranslateFile(sourcePath, outputPath string) (*models.TranslationResult, error)
}

type metricTranslator struct {
	store  storage.DocumentStore
	events EventLogger
}

// NewMetricTranslator creates a MetricTranslator. events may be nil.
func NewMetricTranslator(store storage.DocumentStore, events EventLogger) MetricTranslator {
	return &metricTranslator{store: store, events: events}
}

func (t *metricTranslator) Translate(sourcePath string) (*models.TranslationResult, error) {
	doc, err := t.store.LoadPerfmon(sourcePath)
	if err != nil {
		recordRun(t.events, EventTranslateFailed, map[string]any{
			"source": sourcePath,
			"error":  err.Error(),
		})
		return nil, err
	}

	result := &models.TranslationResult{
		Source:     sourcePath,
		InputCount: len(doc.Metrics),
		Metrics:    make([]models.MetricDefinition, 0, len(doc.Metrics)),
	}
	for _, pm := range doc.Metrics {
		m := TranslateMetric(pm)
		log.Debug().Str("metric", m.Name).Str("expression", m.Expression).Msg("translated")
		result.Metrics = append(result.Metrics, m)
	}
	return result, nil
}

func (t *metricTranslator) TranslateFile(sourcePath, outputPath string) (*models.TranslationResult, error) {
	result, err := t.Translate(sourcePath)
	if err != nil {
		return nil, err
	}
	if err := t.store.SaveMetrics(outputPath, result.Metrics); err != nil {
		return nil, err
	}

	recordRun(t.events, EventTranslateCompleted, map[string]any{
		"source":    sourcePath,
		"output":    outputPath,
		"input":     result.InputCount,
		"generated": len(result.Metrics),
	})
	return result, nil
}

// TranslateMetric converts one perfmon metric. Aliases resolve against the
// metric's own Events and Constants only; a constant wins over an event with
// the same alias.
func TranslateMetric(pm models.PerfmonMetric) models.MetricDefinition {
	aliases := make(map[string]string, len(pm.Events)+len(pm.Constants))
	for _, e := range pm.Events {
		aliases[e.Alias] = e.Name
	}
	for _, c := range pm.Constants {
		aliases[c.Alias] = c.Name
	}

	formula := RewriteFormula(pm.Formula, aliases)
	return models.MetricDefinition{
		Name:       pm.LegacyName,
		Expression: ApplyReplacements(formula, perfspectReplacements),
	}
}

// RewriteFormula replaces every identifier of formula that is a known alias
// with its bracketed name. Identifiers are maximal runs of letters and
// underscores; unknown identifiers and all other characters are copied as is.
func RewriteFormula(formula string, aliases map[string]string) string {
	var b strings.Builder
	b.Grow(len(formula))

	runes := []rune(formula)
	for i := 0; i < len(runes); {
		if !isIdentRune(runes[i]) {
			b.WriteRune(runes[i])
			i++
			continue
		}
		k := i + 1
		for k < len(runes) && isIdentRune(runes[k]) {
			k++
		}
		token := string(runes[i:k])
		if name, ok := aliases[token]; ok {
			b.WriteString("[" + name + "]")
		} else {
			b.WriteString(token)
		}
		i = k
	}
	return b.String()
}

func isIdentRune(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

// ApplyReplacements applies table to formula entry by entry.
func ApplyReplacements(formula string, table []Replacement) string {
	for _, r := range table {
		formula = strings.ReplaceAll(formula, r.Old, r.New)
	}
	return formula
}
