package core

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

type recordedEvent struct {
	eventType string
	data      map[string]any
}

// recordingLogger captures logged events for assertions.
type recordingLogger struct {
	events []recordedEvent
}

func (l *recordingLogger) LogEvent(eventType string, data map[string]any) error {
	l.events = append(l.events, recordedEvent{eventType: eventType, data: data})
	return nil
}

func (l *recordingLogger) types() []string {
	var types []string
	for _, e := range l.events {
		types = append(types, e.eventType)
	}
	return types
}
