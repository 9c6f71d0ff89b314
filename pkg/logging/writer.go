package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
)

// Format represents the log output format
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// ParseFormat maps a format name to a Format, defaulting to text
func ParseFormat(s string) Format {
	if s == string(FormatJSON) {
		return FormatJSON
	}
	return FormatText
}

// sink is the shared, locked destination of a logger and its WithFields children
type sink struct {
	mu     sync.Mutex
	writer io.Writer
	// before is called with the lock held ahead of each write
	before func()
	// written is called with the lock held after each write
	written func(n int)
}

// WriterLogger writes text or JSON lines to an io.Writer
type WriterLogger struct {
	sink   *sink
	format Format
	level  Level
	fields Fields
	closer io.Closer
}

// NewWriterLogger creates a logger writing to w
func NewWriterLogger(w io.Writer, format Format, level Level) *WriterLogger {
	return &WriterLogger{
		sink:   &sink{writer: w},
		format: format,
		level:  level,
	}
}

// Debug logs a debug message
func (l *WriterLogger) Debug(ctx context.Context, msg string, fields Fields) {
	if l.level <= DebugLevel {
		l.log(DebugLevel, msg, nil, fields)
	}
}

// Info logs an info message
func (l *WriterLogger) Info(ctx context.Context, msg string, fields Fields) {
	if l.level <= InfoLevel {
		l.log(InfoLevel, msg, nil, fields)
	}
}

// Warn logs a warning message
func (l *WriterLogger) Warn(ctx context.Context, msg string, fields Fields) {
	if l.level <= WarnLevel {
		l.log(WarnLevel, msg, nil, fields)
	}
}

// Error logs an error message
func (l *WriterLogger) Error(ctx context.Context, msg string, err error, fields Fields) {
	if l.level <= ErrorLevel {
		l.log(ErrorLevel, msg, err, fields)
	}
}

// WithFields returns a logger with additional fields sharing the same output
func (l *WriterLogger) WithFields(fields Fields) Logger {
	return &WriterLogger{
		sink:   l.sink,
		format: l.format,
		level:  l.level,
		fields: merge(l.fields, fields),
	}
}

// Close closes the underlying writer when the logger owns it
func (l *WriterLogger) Close() error {
	if l.closer == nil {
		return nil
	}
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	return l.closer.Close()
}

func (l *WriterLogger) log(level Level, msg string, err error, fields Fields) {
	line := l.encode(time.Now().UTC(), level, msg, err, merge(l.fields, fields))
	if line == nil {
		return
	}

	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	if l.sink.before != nil {
		l.sink.before()
	}
	n, _ := l.sink.writer.Write(line)
	if l.sink.written != nil {
		l.sink.written(n)
	}
}

func merge(base, extra Fields) Fields {
	return lo.Assign(base, extra)
}

// encode renders one entry. Text lines list fields in key order; a field
// that cannot be marshalled drops the JSON line.
func (l *WriterLogger) encode(now time.Time, level Level, msg string, err error, fields Fields) []byte {
	if l.format == FormatJSON {
		entry := lo.Assign(fields, Fields{
			"timestamp": now.Format(time.RFC3339),
			"level":     level.String(),
			"message":   msg,
		})
		if err != nil {
			entry["error"] = err.Error()
		}
		data, jsonErr := json.Marshal(entry)
		if jsonErr != nil {
			return nil
		}
		return append(data, '\n')
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s] %s", now.Format("2006-01-02T15:04:05.000Z"), level, msg)
	if err != nil {
		fmt.Fprintf(&b, " error=%q", err.Error())
	}
	for _, k := range slices.Sorted(maps.Keys(fields)) {
		fmt.Fprintf(&b, " %s=%v", k, fields[k])
	}
	b.WriteByte('\n')
	return []byte(b.String())
}

var levelNames = map[Level]string{
	DebugLevel: "DEBUG",
	InfoLevel:  "INFO",
	WarnLevel:  "WARN",
	ErrorLevel: "ERROR",
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "UNKNOWN"
}

// ParseLevel maps a level name, in any case, to a Level. Unknown names mean info.
func ParseLevel(s string) Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return DebugLevel
	case "WARN", "WARNING":
		return WarnLevel
	case "ERROR":
		return ErrorLevel
	default:
		return InfoLevel
	}
}
