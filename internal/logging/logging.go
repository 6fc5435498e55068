// Package logging sets up the structured logger for an audit run.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// New builds a JSON slog logger writing to both a timestamped file in
// logsDir and stderr. The returned closer owns the log file.
func New(logsDir string) (*slog.Logger, io.Closer, error) {
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return nil, nil, fmt.Errorf("create logs dir: %w", err)
	}

	name := filepath.Join(logsDir, fmt.Sprintf("audit_%s.log", time.Now().Format("20060102_150405")))
	f, err := os.OpenFile(name, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	handler := slog.NewJSONHandler(io.MultiWriter(f, os.Stderr), &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})

	return slog.New(handler), f, nil
}
