package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

func decodeJSONLine(t *testing.T, b []byte) map[string]any {
	t.Helper()

	var result map[string]any
	if err := json.Unmarshal(b, &result); err != nil {
		t.Fatalf("failed to parse JSON output %q: %v", b, err)
	}

	return result
}

func TestLogger_Make_DefaultConfiguration(t *testing.T) {
	var buf bytes.Buffer
	logger := Make(&buf)

	if logger.config.level != LevelInfo {
		t.Errorf("expected default level Info, got %v", logger.config.level)
	}
	if logger.config.caller {
		t.Error("expected caller disabled by default")
	}
	if logger.config.format != FormatText {
		t.Errorf("expected default format text, got %v", logger.config.format)
	}
	if !logger.config.pretty {
		t.Error("expected pretty enabled by default")
	}
}

func TestLogger_ZeroValue_Discards(t *testing.T) {
	var logger Logger

	logger.Info("nothing")
	logger.TraceContext(t.Context(), "nothing")

	if got := logger.With(slog.String("k", "v")); got.Logger != nil {
		t.Error("expected With on zero logger to stay zero")
	}
	if logger.Level() != DefaultLevel {
		t.Errorf("expected default level, got %v", logger.Level())
	}
	if logger.Format() != DefaultFormat {
		t.Errorf("expected default format, got %v", logger.Format())
	}
}

func TestLogger_Make_WithLevel_FiltersMessages(t *testing.T) {
	var buf bytes.Buffer
	logger := Make(&buf, WithLevel(LevelDebug), WithPretty(false))

	logger.Debug("debug message")
	if !strings.Contains(buf.String(), "debug message") {
		t.Error("debug message not logged after setting level to Debug")
	}

	buf.Reset()
	logger2 := Make(&buf, WithLevel(LevelError), WithPretty(false))
	logger2.Info("info message")
	if buf.Len() > 0 {
		t.Error("info message logged when level is Error")
	}

	logger2.Error("error message")
	if !strings.Contains(buf.String(), "error message") {
		t.Error("error message not logged at Error level")
	}
}

func TestLogger_Trace_ShowsTraceLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := Make(&buf, WithLevel(LevelTrace), WithFormat(FormatJSON), WithPretty(false))

	logger.TraceContext(t.Context(), "cache hit", slog.String("key", "abc"))

	result := decodeJSONLine(t, buf.Bytes())
	if result["level"] != "TRACE" {
		t.Errorf("expected level TRACE, got %v", result["level"])
	}
	if result["key"] != "abc" {
		t.Errorf("expected key=abc, got %v", result["key"])
	}
}

func TestLogger_Make_WithTimeLayout(t *testing.T) {
	tests := []struct {
		name    string
		layout  string
		hasTime bool
		check   func(string) bool
	}{
		{"rfc3339 named", "RFC3339", true, func(s string) bool { return strings.Contains(s, "T") }},
		{"rfc3339 nano named", "RFC3339Nano", true, func(s string) bool { return strings.Contains(s, ".") }},
		{"kitchen", "Kitchen", true, func(s string) bool { return strings.HasSuffix(s, "M") }},
		{"none", "none", false, nil},
		{"empty", "", false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := Make(&buf, WithTimeLayout(tt.layout), WithFormat(FormatJSON), WithPretty(false))
			logger.Info("test")

			result := decodeJSONLine(t, buf.Bytes())
			ts, ok := result["time"].(string)

			if ok != tt.hasTime {
				t.Fatalf("time present = %v, want %v (output %s)", ok, tt.hasTime, buf.String())
			}
			if tt.check != nil && !tt.check(ts) {
				t.Errorf("unexpected timestamp %q for layout %q", ts, tt.layout)
			}
		})
	}
}

func TestLogger_Make_WithCaller_ReportsCallSite(t *testing.T) {
	var buf bytes.Buffer
	logger := Make(&buf, WithCaller(true), WithFormat(FormatJSON), WithPretty(false))
	logger.Info("test message")

	result := decodeJSONLine(t, buf.Bytes())
	src, ok := result["source"].(map[string]any)
	if !ok {
		t.Fatalf("source not included when enabled: %s", buf.String())
	}
	if file, _ := src["file"].(string); !strings.HasSuffix(file, "log_test.go") {
		t.Errorf("expected caller in log_test.go, got %v", src["file"])
	}

	buf.Reset()
	Make(&buf, WithCaller(false), WithFormat(FormatJSON), WithPretty(false)).Info("test message")
	if strings.Contains(buf.String(), "source") {
		t.Error("source included when disabled")
	}
}

func TestLogger_Make_WithFormat_SetsOutputFormat(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		logger := Make(&buf, WithFormat(FormatJSON), WithPretty(false))
		logger.Info("test message", slog.String("key", "value"))

		result := decodeJSONLine(t, buf.Bytes())
		if result["msg"] != "test message" {
			t.Errorf("expected msg=test message, got %v", result["msg"])
		}
		if result["key"] != "value" {
			t.Errorf("expected key=value, got %v", result["key"])
		}
	})

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		logger := Make(&buf, WithFormat(FormatText), WithPretty(false))
		logger.Info("test message", slog.String("key", "value"))

		output := buf.String()
		if !strings.Contains(output, "test message") {
			t.Error("message not found in text output")
		}
		if !strings.Contains(output, "key=value") {
			t.Error("key=value not found in text output")
		}
	})
}

func TestLogger_Pretty_KeepsWithAttributes(t *testing.T) {
	for _, format := range []Format{FormatText, FormatJSON} {
		t.Run(format.String(), func(t *testing.T) {
			var buf bytes.Buffer
			logger := Make(&buf, WithFormat(format), WithPretty(true)).
				With(slog.String("component", "catalog"))

			logger.Info("registered", slog.Int("count", 3))

			output := buf.String()
			for _, want := range []string{"component", "catalog", "registered", "count", "3", "INFO"} {
				if !strings.Contains(output, want) {
					t.Errorf("expected %q in pretty output: %q", want, output)
				}
			}
		})
	}
}

func TestLogger_Wrap_OverridesWithoutMutatingBase(t *testing.T) {
	var buf bytes.Buffer
	base := Make(&buf, WithLevel(LevelWarn), WithPretty(false))
	wrapped := base.Wrap(WithLevel(LevelDebug))

	if base.Level() != LevelWarn {
		t.Errorf("base level changed to %v", base.Level())
	}
	if wrapped.Level() != LevelDebug {
		t.Errorf("wrapped level = %v, want debug", wrapped.Level())
	}

	wrapped.Debug("visible")
	base.Debug("hidden")

	if got := strings.Count(buf.String(), "\n"); got != 1 {
		t.Errorf("expected exactly 1 line, got %d: %q", got, buf.String())
	}
}

func TestLogger_LogMethods_RespectLevelFiltering(t *testing.T) {
	tests := []struct {
		name     string
		logFunc  func(Logger, string, ...slog.Attr)
		minLevel Level
		logged   bool
	}{
		{"trace at trace", (Logger).Trace, LevelTrace, true},
		{"trace at debug", (Logger).Trace, LevelDebug, false},
		{"debug at debug", (Logger).Debug, LevelDebug, true},
		{"debug at info", (Logger).Debug, LevelInfo, false},
		{"info at info", (Logger).Info, LevelInfo, true},
		{"info at warn", (Logger).Info, LevelWarn, false},
		{"warn at warn", (Logger).Warn, LevelWarn, true},
		{"warn at error", (Logger).Warn, LevelError, false},
		{"error at error", (Logger).Error, LevelError, true},
		{"error at debug", (Logger).Error, LevelDebug, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := Make(&buf, WithLevel(tt.minLevel))
			tt.logFunc(logger, "test message")

			if hasOutput := buf.Len() > 0; hasOutput != tt.logged {
				t.Errorf(
					"expected logged=%v, got output length=%d",
					tt.logged,
					buf.Len(),
				)
			}
		})
	}
}

// lockedBuffer serializes writes from concurrent pretty handlers.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

func TestLogger_ConcurrentCalls_ThreadSafe(t *testing.T) {
	var out lockedBuffer
	logger := Make(&out, WithPretty(false)).With(slog.String("worker", "pool"))

	var wg sync.WaitGroup
	for i := range 100 {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			logger.Info("concurrent message", slog.Int("id", id))
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(out.buf.String()), "\n")
	if len(lines) != 100 {
		t.Errorf("expected 100 log lines, got %d", len(lines))
	}
}
