package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
)

// AuditLog appends one line per delivered order notification to a file
// rotated daily, e.g. logs/orders.20240301.log.
type AuditLog struct {
	mu sync.Mutex
	w  io.Writer
}

func newAuditLog(dir string, maxAge time.Duration) (*AuditLog, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	rl, err := rotatelogs.New(
		filepath.Join(dir, "orders.%Y%m%d.log"),
		rotatelogs.WithLinkName(filepath.Join(dir, "orders.log")),
		rotatelogs.WithRotationTime(24*time.Hour),
		rotatelogs.WithMaxAge(maxAge),
	)
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	return &AuditLog{w: rl}, nil
}

// NewAuditWriter wraps an arbitrary writer; used in tests.
func NewAuditWriter(w io.Writer) *AuditLog { return &AuditLog{w: w} }

// Write appends a single line; a trailing newline is added when missing.
func (a *AuditLog) Write(line string) error {
	if len(line) == 0 || line[len(line)-1] != '\n' {
		line += "\n"
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	_, err := io.WriteString(a.w, line)
	return err
}
