package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func envOf(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestConfigFromEnv(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
		want Config
	}{
		{"defaults", nil, Config{Level: "info", Dir: "logs", AuditMaxAge: 30 * 24 * time.Hour}},
		{"dev defaults to debug", map[string]string{"LOG_DEV": "1"},
			Config{Level: "debug", Dev: true, Dir: "logs", AuditMaxAge: 30 * 24 * time.Hour}},
		{"explicit values", map[string]string{"LOG_DEV": "true", "LOG_LEVEL": " WARN ", "LOG_DIR": "/var/log/orders", "LOG_AUDIT_DAYS": "7"},
			Config{Level: "warn", Dev: true, Dir: "/var/log/orders", AuditMaxAge: 7 * 24 * time.Hour}},
		{"bad retention ignored", map[string]string{"LOG_AUDIT_DAYS": "-3"},
			Config{Level: "info", Dir: "logs", AuditMaxAge: 30 * 24 * time.Hour}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ConfigFromEnv(envOf(tc.env)); got != tc.want {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestLevelFromString(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := levelFromString(in); got != want {
			t.Errorf("%q: got %v, want %v", in, got, want)
		}
	}
}

func TestInitWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	lg, err := Init(Config{Level: "warn", Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	lg.Info("dropped")
	lg.Warn("kept", zap.String("order", "o-1"))
	_ = lg.Sync()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("want one line, got %q", buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatal(err)
	}
	if entry["level"] != "warn" || entry["msg"] != "kept" || entry["order"] != "o-1" {
		t.Fatalf("unexpected entry %v", entry)
	}
	if _, err := time.Parse("2006-01-02T15:04:05.000Z0700", entry["ts"].(string)); err != nil {
		t.Fatalf("ts not ISO8601: %v", err)
	}
}

func TestOpenAudit(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	audit, err := Config{Dir: dir}.OpenAudit()
	if err != nil {
		t.Fatal(err)
	}
	if err := audit.Write("order o-1 notified"); err != nil {
		t.Fatal(err)
	}
	if err := audit.Write("order o-2 notified\n"); err != nil {
		t.Fatal(err)
	}

	files, err := filepath.Glob(filepath.Join(dir, "orders.*.log"))
	if err != nil || len(files) != 1 {
		t.Fatalf("want one rotated file, got %v (%v)", files, err)
	}
	b, err := os.ReadFile(files[0])
	if err != nil {
		t.Fatal(err)
	}
	if got := string(b); got != "order o-1 notified\norder o-2 notified\n" {
		t.Fatalf("got %q", got)
	}
}

func TestAuditWriter(t *testing.T) {
	var buf bytes.Buffer
	a := NewAuditWriter(&buf)
	for _, l := range []string{"a", "b\n", ""} {
		if err := a.Write(l); err != nil {
			t.Fatal(err)
		}
	}
	if buf.String() != "a\nb\n\n" {
		t.Fatalf("got %q", buf.String())
	}
}
