package core

import (
	"fmt"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/intel/svr-info/internal/storage"
	"github.com/intel/svr-info/pkg/models"
	"github.com/rs/zerolog/log"
)

// DefaultConstPrefix marks formula tokens that are constants, not counters.
const DefaultConstPrefix = "const_"

// EventChecker cross-checks the events referenced by a metrics file against
// the events declared in an events file.
type EventChecker interface {
	Check(metricsPath, eventsPath string) (*models.EventCheckReport, error)
}

type eventChecker struct {
	store       storage.DocumentStore
	constPrefix string
	events      EventLogger
}

// NewEventChecker creates an EventChecker. Tokens starting with constPrefix
// are left out of the used-event accounting. events may be nil.
func NewEventChecker(store storage.DocumentStore, constPrefix string, events EventLogger) EventChecker {
	if constPrefix == "" {
		constPrefix = DefaultConstPrefix
	}
	return &eventChecker{store: store, constPrefix: constPrefix, events: events}
}

func (c *eventChecker) Check(metricsPath, eventsPath string) (*models.EventCheckReport, error) {
	metrics, err := c.store.LoadMetrics(metricsPath)
	if err != nil {
		return nil, err
	}
	lines, err := c.store.LoadEventLines(eventsPath)
	if err != nil {
		return nil, err
	}

	used := UsedEvents(metrics, c.constPrefix)
	declared := DeclaredEvents(lines)
	missing, unused := CompareEvents(used, declared)

	log.Debug().
		Int("metrics", len(metrics)).
		Int("used", len(used)).
		Int("declared", len(declared)).
		Msg("checked events")

	report := &models.EventCheckReport{
		MetricsFile:   metricsPath,
		EventsFile:    eventsPath,
		MissingEvents: missing,
		UnusedEvents:  unused,
		UsedCount:     len(used),
		DeclaredCount: len(declared),
	}

	recordRun(c.events, EventCheckCompleted, map[string]any{
		"metrics_file": metricsPath,
		"events_file":  eventsPath,
		"missing":      len(missing),
		"unused":       len(unused),
	})
	return report, nil
}

// UsedEvents returns the events referenced by the metric expressions in the
// order they are first seen, skipping constant-prefixed tokens.
func UsedEvents(metrics []models.MetricDefinition, constPrefix string) []string {
	seen := mapset.NewThreadUnsafeSet[string]()
	var used []string
	for _, m := range metrics {
		for _, event := range ExpressionEvents(m.Expression) {
			if strings.HasPrefix(event, constPrefix) {
				continue
			}
			if seen.Add(event) {
				used = append(used, event)
			}
		}
	}
	return used
}

// ExpressionEvents lists the bracketed event names of an expression with any
// :modifier suffix removed. Each span runs from a '[' to the first ']' after
// it; nesting is not recognized. An unterminated '[' ends the scan.
func ExpressionEvents(expression string) []string {
	var events []string
	rest := expression
	for {
		start := strings.IndexByte(rest, '[')
		if start < 0 {
			break
		}
		end := strings.IndexByte(rest[start+1:], ']')
		if end < 0 {
			break
		}
		end += start + 1
		events = append(events, stripModifier(rest[start+1:end]))
		rest = rest[end+1:]
	}
	return events
}

// stripModifier drops everything from the first colon on. A colon in the
// first position is kept.
func stripModifier(event string) string {
	if i := strings.IndexByte(event, ':'); i > 0 {
		return event[:i]
	}
	return event
}

// DeclaredEvents extracts the event names declared by the lines of an events
// file, deduplicated in declaration order.
func DeclaredEvents(lines []string) []string {
	seen := mapset.NewThreadUnsafeSet[string]()
	var declared []string
	for _, line := range lines {
		event := EventFromLine(line)
		if event == "" {
			continue
		}
		if seen.Add(event) {
			declared = append(declared, event)
		}
	}
	return declared
}

// EventFromLine returns the event declared on one line of an events file, or
// "" if the line declares nothing. line includes its terminator.
//
// Lines carrying name='EVENT[:mod]' yield EVENT. Any other line is a bare
// event followed by a group separator and the newline, so the last two
// characters are dropped.
func EventFromLine(line string) string {
	if line == "" || strings.HasPrefix(line, "#") {
		return ""
	}

	idx := strings.Index(line, "name=")
	if idx < 0 {
		if len(line) < 2 {
			return ""
		}
		return line[:len(line)-2]
	}

	value := line[idx+len("name="):]
	value = value[strings.IndexByte(value, '\'')+1:]
	if end := strings.IndexByte(value, '\''); end >= 0 {
		value = value[:end]
	} else if value != "" {
		value = value[:len(value)-1]
	}
	return stripModifier(value)
}

// CompareEvents returns the used events that are not declared, in usage
// order, and the declared events that are not used, in declaration order.
func CompareEvents(used, declared []string) (missing, unused []string) {
	usedSet := mapset.NewThreadUnsafeSet(used...)
	declaredSet := mapset.NewThreadUnsafeSet(declared...)

	missing = []string{}
	for _, event := range used {
		if !declaredSet.Contains(event) {
			missing = append(missing, event)
		}
	}
	unused = []string{}
	for _, event := range declared {
		if !usedSet.Contains(event) {
			unused = append(unused, event)
		}
	}
	return missing, unused
}

// FormatReport renders a check report as the two summary lines printed by
// the check-events command.
func FormatReport(report *models.EventCheckReport) string {
	return fmt.Sprintf("Missing events: %s\nUnused events: %s\n",
		strings.Join(report.MissingEvents, "\n"),
		strings.Join(report.UnusedEvents, "\n"))
}
