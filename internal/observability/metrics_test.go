package observability

import (
	"testing"
	"time"

	"pgregory.net/rapid"
)

func TestMetricsCalculator_Calculate(t *testing.T) {
	log, _ := newTestLog(t)

	base := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	events := []Event{
		{
			Time: base,
			Type: EventCheckCompleted,
			Data: map[string]any{"missing": 0, "unused": 3},
		},
		{
			Time: base.Add(time.Hour),
			Type: EventCheckCompleted,
			Data: map[string]any{"missing": 2, "unused": 0},
		},
		{
			Time: base.Add(2 * time.Hour),
			Type: EventTranslateCompleted,
			Data: map[string]any{"source": "spr.json", "generated": 40},
		},
		{
			Time: base.Add(3 * time.Hour),
			Type: EventTranslateCompleted,
			Data: map[string]any{"source": "spr.json", "generated": 2},
		},
		{
			Time:  base.Add(4 * time.Hour),
			Level: LevelError,
			Type:  EventTranslateFailed,
			Data:  map[string]any{"source": "icx.json"},
		},
		{
			Time: base.Add(5 * time.Hour),
			Type: EventReconcileCompleted,
			Data: map[string]any{"matched": 30, "carried_over": 4},
		},
	}
	for _, e := range events {
		if err := log.Write(e); err != nil {
			t.Fatalf("writing event: %v", err)
		}
	}

	m, err := NewMetricsCalculator(log).Calculate(base.Add(-time.Hour))
	if err != nil {
		t.Fatalf("calculating metrics: %v", err)
	}

	if m.EventCount != 6 {
		t.Errorf("expected 6 events, got %d", m.EventCount)
	}
	if m.Checks != 2 {
		t.Errorf("expected 2 checks, got %d", m.Checks)
	}
	if m.ChecksWithMissing != 1 {
		t.Errorf("expected 1 check with missing events, got %d", m.ChecksWithMissing)
	}
	if m.Translations != 2 {
		t.Errorf("expected 2 translations, got %d", m.Translations)
	}
	if m.TranslationFailures != 1 {
		t.Errorf("expected 1 translation failure, got %d", m.TranslationFailures)
	}
	if m.MetricsGenerated != 42 {
		t.Errorf("expected 42 generated metrics, got %d", m.MetricsGenerated)
	}
	if m.Reconciliations != 1 {
		t.Errorf("expected 1 reconciliation, got %d", m.Reconciliations)
	}
	if m.MetricsCarriedOver != 4 {
		t.Errorf("expected 4 carried over metrics, got %d", m.MetricsCarriedOver)
	}
	if m.TranslationsBySource["spr.json"] != 2 {
		t.Errorf("expected 2 translations of spr.json, got %d", m.TranslationsBySource["spr.json"])
	}
	if m.OldestEvent == nil || !m.OldestEvent.Equal(base) {
		t.Errorf("expected oldest event %v, got %v", base, m.OldestEvent)
	}
	if m.NewestEvent == nil || !m.NewestEvent.Equal(base.Add(5*time.Hour)) {
		t.Errorf("expected newest event %v, got %v", base.Add(5*time.Hour), m.NewestEvent)
	}
}

func TestMetricsCalculator_SinceExcludesOlderEvents(t *testing.T) {
	log, _ := newTestLog(t)

	base := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		if err := log.Write(Event{Time: base.Add(time.Duration(i) * 24 * time.Hour), Type: EventCheckCompleted}); err != nil {
			t.Fatalf("writing event: %v", err)
		}
	}

	m, err := NewMetricsCalculator(log).Calculate(base.Add(36 * time.Hour))
	if err != nil {
		t.Fatalf("calculating metrics: %v", err)
	}
	if m.Checks != 2 {
		t.Errorf("expected 2 checks since cutoff, got %d", m.Checks)
	}
}

func TestMetricsCalculator_EmptyLog(t *testing.T) {
	log, _ := newTestLog(t)

	m, err := NewMetricsCalculator(log).Calculate(time.Time{})
	if err != nil {
		t.Fatalf("calculating metrics: %v", err)
	}
	if m.EventCount != 0 {
		t.Errorf("expected 0 events, got %d", m.EventCount)
	}
	if m.OldestEvent != nil || m.NewestEvent != nil {
		t.Errorf("expected no event bounds, got %v / %v", m.OldestEvent, m.NewestEvent)
	}
	if m.TranslationsBySource == nil {
		t.Error("expected TranslationsBySource to be initialized")
	}
}

// The generated-metrics total equals the sum of the per-run counts.
func TestProperty_MetricsGeneratedSumsRuns(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		counts := rapid.SliceOfN(rapid.IntRange(0, 500), 0, 20).Draw(rt, "counts")

		log, err := NewJSONLEventLog(t.TempDir() + "/events.jsonl")
		if err != nil {
			rt.Fatalf("creating event log: %v", err)
		}
		defer log.Close()

		want := 0
		for _, n := range counts {
			want += n
			if err := log.Write(Event{Type: EventTranslateCompleted, Data: map[string]any{"generated": n}}); err != nil {
				rt.Fatalf("writing event: %v", err)
			}
		}

		m, err := NewMetricsCalculator(log).Calculate(time.Time{})
		if err != nil {
			rt.Fatalf("calculating metrics: %v", err)
		}
		if m.MetricsGenerated != want {
			rt.Fatalf("expected %d generated, got %d", want, m.MetricsGenerated)
		}
		if m.Translations != len(counts) {
			rt.Fatalf("expected %d translations, got %d", len(counts), m.Translations)
		}
	})
}

func TestIntValue(t *testing.T) {
	tests := []struct {
		in   any
		want int
	}{
		{in: 3, want: 3},
		{in: float64(7), want: 7},
		{in: "7", want: 0},
		{in: nil, want: 0},
	}
	for _, tt := range tests {
		if got := intValue(tt.in); got != tt.want {
			t.Errorf("intValue(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
