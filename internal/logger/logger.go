// Package logger builds the process logger and the notification audit log.
package logger

import (
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	defaultDir       = "logs"
	defaultAuditDays = 30
)

// Config controls both sinks the process writes to.
//
// Level and Dev shape the zap logger: Dev selects the human-readable
// console encoder and defaults the level to debug. Dir is where the
// order audit log rotates its daily files, and AuditMaxAge bounds how
// long a rotated file is kept. Output replaces stdout for the JSON
// encoder and is mostly useful in tests.
type Config struct {
	Level       string
	Dev         bool
	Dir         string
	AuditMaxAge time.Duration
	Output      io.Writer
}

// ConfigFromEnv reads LOG_DEV, LOG_LEVEL, LOG_DIR and LOG_AUDIT_DAYS through
// lookup, normally os.LookupEnv. Unparseable values fall back to defaults;
// the logger has to come up before anything can report a config error.
func ConfigFromEnv(lookup func(string) (string, bool)) Config {
	get := func(k string) string {
		v, _ := lookup(k)
		return strings.TrimSpace(v)
	}

	cfg := Config{
		Level:       strings.ToLower(get("LOG_LEVEL")),
		Dev:         get("LOG_DEV") == "1" || strings.EqualFold(get("LOG_DEV"), "true"),
		Dir:         get("LOG_DIR"),
		AuditMaxAge: defaultAuditDays * 24 * time.Hour,
	}
	if cfg.Level == "" {
		cfg.Level = "info"
		if cfg.Dev {
			cfg.Level = "debug"
		}
	}
	if cfg.Dir == "" {
		cfg.Dir = defaultDir
	}
	if days, err := strconv.Atoi(get("LOG_AUDIT_DAYS")); err == nil && days > 0 {
		cfg.AuditMaxAge = time.Duration(days) * 24 * time.Hour
	}
	return cfg
}

func levelFromString(l string) zapcore.Level {
	switch l {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Init builds a development console logger or a JSON production logger
// with ISO8601 timestamps and stack traces from error level up.
func Init(cfg Config) (*zap.Logger, error) {
	lvl := levelFromString(cfg.Level)
	if cfg.Dev {
		c := zap.NewDevelopmentConfig()
		c.Level = zap.NewAtomicLevelAt(lvl)
		return c.Build()
	}

	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(out), lvl)
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

// OpenAudit opens the order audit log under cfg.Dir.
func (cfg Config) OpenAudit() (*AuditLog, error) {
	maxAge := cfg.AuditMaxAge
	if maxAge <= 0 {
		maxAge = defaultAuditDays * 24 * time.Hour
	}
	dir := cfg.Dir
	if dir == "" {
		dir = defaultDir
	}
	return newAuditLog(dir, maxAge)
}
