package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

// swapDefault installs a JSON logger writing to the returned buffer for the
// duration of the test.
func swapDefault(t *testing.T, opts ...Option) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer

	defaultMu.Lock()
	original := defaultLog
	defaultLog = Make(&buf, append([]Option{WithFormat(FormatJSON), WithPretty(false)}, opts...)...)
	defaultMu.Unlock()

	t.Cleanup(func() {
		defaultMu.Lock()
		defaultLog = original
		defaultMu.Unlock()
	})

	return &buf
}

func TestPackage_LogFunctions_UseDefaultLogger(t *testing.T) {
	buf := swapDefault(t, WithLevel(LevelTrace))

	tests := []struct {
		name  string
		fn    func(string, ...slog.Attr)
		level string
		msg   string
	}{
		{"Trace", Trace, "TRACE", "trace message"},
		{"Debug", Debug, "DEBUG", "debug message"},
		{"Info", Info, "INFO", "info message"},
		{"Warn", Warn, "WARN", "warn message"},
		{"Error", Error, "ERROR", "error message"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.fn(tt.msg, slog.String("key", "value"))

			output := buf.String()
			if !strings.Contains(output, tt.msg) {
				t.Errorf("expected output to contain message %q, got: %s", tt.msg, output)
			}
			if !strings.Contains(output, `"level":"`+tt.level+`"`) {
				t.Errorf("expected output to contain level %q, got: %s", tt.level, output)
			}
			if !strings.Contains(output, `"key":"value"`) {
				t.Errorf("expected output to contain attribute, got: %s", output)
			}
		})
	}
}

func TestPackage_Config_ReconfiguresDefault(t *testing.T) {
	buf := swapDefault(t)

	Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug logged at default level: %s", buf.String())
	}

	Config(WithLevel(LevelDebug))
	DebugContext(t.Context(), "shown")

	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("expected debug message after Config, got: %s", buf.String())
	}

	if Default().Level() != LevelDebug {
		t.Errorf("Default().Level() = %v", Default().Level())
	}
}

func TestPackage_Caller_PointsAtCallSite(t *testing.T) {
	buf := swapDefault(t, WithCaller(true))

	Info("where")

	if !strings.Contains(buf.String(), "default_test.go") {
		t.Errorf("expected caller default_test.go, got: %s", buf.String())
	}
}

func TestPackage_With_AddsAttributes(t *testing.T) {
	buf := swapDefault(t)

	With(slog.String("template", "Card")).Info("rendered")

	if !strings.Contains(buf.String(), `"template":"Card"`) {
		t.Errorf("expected template attribute, got: %s", buf.String())
	}
}
