package results

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Log appends records to <dir>/<name>.json and failure markers to
// <dir>/<name>.failed. Each write opens the file in append mode so partial
// batches leave complete lines behind.
type Log struct {
	dir    string
	name   string
	logger *slog.Logger

	mu sync.Mutex
}

func NewLog(dir, name string, logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{dir: dir, name: name, logger: logger}
}

// RecordsPath is the JSON-lines results file.
func (l *Log) RecordsPath() string {
	return filepath.Join(l.dir, l.name+".json")
}

// FailedPath is the failure marker file.
func (l *Log) FailedPath() string {
	return filepath.Join(l.dir, l.name+".failed")
}

// AppendRecord writes rec as a single JSON line.
func (l *Log) AppendRecord(rec *Record) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	return l.appendLine(l.RecordsPath(), b)
}

// AppendFailure writes modelID as a single line.
func (l *Log) AppendFailure(modelID string) error {
	return l.appendLine(l.FailedPath(), []byte(modelID))
}

func (l *Log) appendLine(path string, line []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	buf := make([]byte, 0, len(line)+1)
	buf = append(append(buf, line...), '\n')
	if _, err := f.Write(buf); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		l.logger.Warn("failed to close results file", "file", path, "error", err)
		return err
	}
	return nil
}
