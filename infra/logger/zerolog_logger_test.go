package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestZerologLoggerWritesComponentField(t *testing.T) {
	t.Setenv("CREW_LOG_LEVEL", "debug")
	var buf bytes.Buffer
	l := NewZerologLoggerTo(&buf, "solver")
	l.Debugw("phase done", map[string]any{"phase": 1, "drivers": 9})
	l.Infof("roster for %s", "weekday")
	out := buf.String()
	for _, want := range []string{`"component":"solver"`, `"phase":1`, `"message":"phase done"`, `roster for weekday`} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %s:\n%s", want, out)
		}
	}
}

func TestZerologLoggerLevelFilter(t *testing.T) {
	t.Setenv("CREW_LOG_LEVEL", "warn")
	var buf bytes.Buffer
	l := NewZerologLoggerTo(&buf, "mqtt")
	l.Infof("suppressed")
	l.Warnf("kept")
	if strings.Contains(buf.String(), "suppressed") {
		t.Fatalf("info line not filtered:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "kept") {
		t.Fatalf("warn line missing:\n%s", buf.String())
	}
}

func TestNopLogger(t *testing.T) {
	var l Logger = NopLogger{}
	l.Debugf("debug %d", 1)
	l.Debugw("debug", map[string]any{"k": 1})
	l.Infof("info")
	l.Warnf("warn")
	l.Errorf("error")
}
