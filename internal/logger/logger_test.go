package logger

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

func newBufferLogger(level LogLevel) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewLogger(log.New(&buf, "", 0), level), &buf
}

func TestLevelFiltering(t *testing.T) {
	l, buf := newBufferLogger(LogLevelWarning)

	l.Debugf("debug")
	l.Infof("info")
	l.Warnf("warn %d", 1)
	l.Errorf("error %d", 2)

	out := buf.String()
	if strings.Contains(out, "debug") || strings.Contains(out, "info") {
		t.Errorf("Expected debug and info to be filtered, got %q", out)
	}
	if !strings.Contains(out, "WARN: warn 1") || !strings.Contains(out, "ERROR: error 2") {
		t.Errorf("Expected warn and error lines, got %q", out)
	}
}

func TestWithTag(t *testing.T) {
	l, buf := newBufferLogger(LogLevelDebug)

	l.WithTag("rotary").Debugf("tempo %d", 125)
	l.WithTag("gesture").Infof("listening")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d: %q", len(lines), buf.String())
	}
	if lines[0] != "[rotary] DEBUG: tempo 125" {
		t.Errorf("Unexpected tagged debug line %q", lines[0])
	}
	if lines[1] != "[gesture] listening" {
		t.Errorf("Unexpected tagged info line %q", lines[1])
	}
	if l.WithTag("x").Level() != LogLevelDebug {
		t.Error("Expected tagged logger to keep the level")
	}
}

func TestPrintfLogsAtInfo(t *testing.T) {
	l, buf := newBufferLogger(LogLevelInfo)
	l.WithTag("midi").Printf("port %s", "USB")
	if got := strings.TrimSpace(buf.String()); got != "[midi] port USB" {
		t.Errorf("Unexpected Printf line %q", got)
	}

	quiet, qbuf := newBufferLogger(LogLevelWarning)
	quiet.Printf("hidden")
	if qbuf.Len() != 0 {
		t.Errorf("Expected Printf to be filtered below info, got %q", qbuf.String())
	}
}

func TestNilLoggerDiscards(t *testing.T) {
	l := NewLogger(nil, LogLevelDebug)
	l.Infof("nothing to see")
}
