package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestLoggerInit(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	if Get() == nil {
		t.Fatal("logger is nil after initialization")
	}
	Named("test").Info(context.Background(), "test message", String("k", "v"))
}

func TestLoggerTextFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := InitWith(&buf, FormatText); err != nil {
		t.Fatalf("failed to initialize text logger: %v", err)
	}

	Named("service").Warn(context.Background(), "capacity reached", Int("maxSessions", 3))

	out := buf.String()
	for _, want := range []string{"level=WARN", `msg="capacity reached"`, "service.maxSessions=3", "logger_test.go:"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in %q", want, out)
		}
	}
}

func TestLoggerJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := InitWith(&buf, FormatJSON); err != nil {
		t.Fatalf("failed to initialize json logger: %v", err)
	}

	Get().Info(context.Background(), "session created", String("session", "abc"), Bool("fresh", true))

	out := buf.String()
	if !strings.Contains(out, `"msg":"session created"`) {
		t.Errorf("expected json message, got %q", out)
	}
	if !strings.Contains(out, `"session":"abc"`) {
		t.Errorf("expected session field, got %q", out)
	}
}

func TestLoggerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	if err := InitWith(&buf, FormatText); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	Get().Debug(context.Background(), "hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug written at info level: %q", buf.String())
	}

	if err := SetLevelString("debug"); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = SetLevelString("info") }()
	Get().Debug(context.Background(), "shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("expected debug line, got %q", buf.String())
	}
}

func TestLoggerUnknownFormat(t *testing.T) {
	if err := InitWith(&bytes.Buffer{}, "xml"); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestSetLevelString(t *testing.T) {
	for _, lvl := range []string{"debug", "INFO", " warn ", "warning", "error", ""} {
		if err := SetLevelString(lvl); err != nil {
			t.Errorf("level %q: unexpected error %v", lvl, err)
		}
	}
	if err := SetLevelString("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
	_ = SetLevelString("info")
}
