package logging

import (
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the process logger. Debug mode switches to the
// development encoder and lowers the level to Debug.
func NewLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// SQLLogger records executed SQL statements. When a log path is configured
// statements are appended to that file; otherwise they go to the wrapped
// zap logger at Debug level. A disabled SQLLogger drops everything, so
// callers can log unconditionally.
type SQLLogger struct {
	mu      sync.Mutex
	enabled bool
	file    *os.File
	logger  *zap.Logger
}

// NewSQLLogger creates a statement logger. enabled normally follows the
// show-SQL flag (which itself defaults to the debug flag). path is optional.
func NewSQLLogger(enabled bool, path string, logger *zap.Logger) (*SQLLogger, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	sl := &SQLLogger{enabled: enabled, logger: logger}

	if enabled && path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open sql log %s: %w", path, err)
		}
		sl.file = f
	}
	return sl, nil
}

// Log records one statement with the connection it ran against.
func (l *SQLLogger) Log(connection, sql string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.enabled {
		return
	}
	if l.file != nil {
		fmt.Fprintf(l.file, "[%s] %s\n", connection, sql)
		return
	}
	if ce := l.logger.Check(zapcore.DebugLevel, "sql"); ce != nil {
		ce.Write(zap.String("connection", connection), zap.String("statement", TruncateStatement(sql)))
	}
}

// Close releases the log file, if any.
func (l *SQLLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}
