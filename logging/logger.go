// Package logging provides the serialized, append-only file logger used by
// the server engine. Every call produces exactly one physical line of the
// form "LEVEL (RFC3339-seconds timestamp): message"; concurrent callers
// never interleave within a line.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// timestampLayout is RFC3339 truncated to seconds, always UTC.
const timestampLayout = "2006-01-02T15:04:05Z"

// Logger writes leveled lines to a single log file opened in create+append
// mode. The file is never rotated. A nil *Logger is valid and discards all
// calls, so an unconfigured server can log unconditionally.
type Logger struct {
	zl   zerolog.Logger
	file *os.File
}

// New opens (or creates) the log file at path and returns a logger appending
// to it.
func New(path string) (*Logger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return &Logger{zl: newZerolog(f), file: f}, nil
}

// NewWithWriter returns a logger writing to w instead of a file. Used by
// tests and by callers that already own an output stream.
func NewWithWriter(w io.Writer) *Logger {
	return &Logger{zl: newZerolog(w)}
}

// newZerolog builds the line-oriented zerolog instance. The console writer
// is not safe for concurrent use on its own, so it is wrapped in a
// SyncWriter; each event then reaches the underlying writer as one write.
func newZerolog(out io.Writer) zerolog.Logger {
	cw := zerolog.ConsoleWriter{
		Out:     out,
		NoColor: true,
		PartsOrder: []string{
			zerolog.LevelFieldName,
			zerolog.TimestampFieldName,
			zerolog.MessageFieldName,
		},
		FormatLevel:     formatLevel,
		FormatTimestamp: formatTimestamp,
		FormatMessage:   formatMessage,
	}
	return zerolog.New(zerolog.SyncWriter(cw)).
		Level(zerolog.DebugLevel).
		With().
		Timestamp().
		Logger()
}

func formatLevel(i interface{}) string {
	if i == "warn" {
		return "WARNING"
	}
	return strings.ToUpper(fmt.Sprintf("%s", i))
}

func formatTimestamp(i interface{}) string {
	if s, ok := i.(string); ok {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return "(" + t.UTC().Format(timestampLayout) + "):"
		}
	}
	return fmt.Sprintf("(%v):", i)
}

func formatMessage(i interface{}) string {
	if i == nil {
		return ""
	}
	return fmt.Sprintf("%s", i)
}

// Debug logs a message at debug level.
func (l *Logger) Debug(msg string) {
	if l == nil {
		return
	}
	l.zl.Debug().Msg(msg)
}

// Info logs a message at info level.
func (l *Logger) Info(msg string) {
	if l == nil {
		return
	}
	l.zl.Info().Msg(msg)
}

// Warning logs a message at warning level.
func (l *Logger) Warning(msg string) {
	if l == nil {
		return
	}
	l.zl.Warn().Msg(msg)
}

// Close closes the underlying log file, if any.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}
