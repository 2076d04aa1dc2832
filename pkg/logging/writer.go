package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// WriterLogger writes one line per entry to an io.Writer
type WriterLogger struct {
	mu     *sync.Mutex
	w      io.Writer
	closer io.Closer
	format Format
	level  Level
	fields Fields
	now    func() time.Time
}

// NewWriterLogger creates a logger writing to w. A nil writer means stderr.
func NewWriterLogger(w io.Writer, format Format, level Level) *WriterLogger {
	if w == nil {
		w = os.Stderr
	}
	return &WriterLogger{
		mu:     &sync.Mutex{},
		w:      w,
		format: format,
		level:  level,
		now:    time.Now,
	}
}

// Debug logs a debug message
func (l *WriterLogger) Debug(ctx context.Context, msg string, fields Fields) {
	l.log(DebugLevel, msg, nil, fields)
}

// Info logs an info message
func (l *WriterLogger) Info(ctx context.Context, msg string, fields Fields) {
	l.log(InfoLevel, msg, nil, fields)
}

// Warn logs a warning message
func (l *WriterLogger) Warn(ctx context.Context, msg string, fields Fields) {
	l.log(WarnLevel, msg, nil, fields)
}

// Error logs an error message
func (l *WriterLogger) Error(ctx context.Context, msg string, err error, fields Fields) {
	l.log(ErrorLevel, msg, err, fields)
}

// WithFields returns a logger sharing the same output with additional fields
func (l *WriterLogger) WithFields(fields Fields) Logger {
	child := *l
	child.fields = merge(l.fields, fields)
	child.closer = nil
	return &child
}

// Close closes the underlying output when the logger owns it
func (l *WriterLogger) Close() error {
	if l.closer == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closer.Close()
}

func (l *WriterLogger) log(level Level, msg string, err error, fields Fields) {
	if level < l.level {
		return
	}

	all := merge(l.fields, fields)
	ts := l.now().UTC()

	var line []byte
	if l.format == FormatJSON {
		var encErr error
		line, encErr = encodeJSON(ts, level, msg, err, all)
		if encErr != nil {
			return
		}
	} else {
		line = encodeText(ts, level, msg, err, all)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Write(line)
}

func encodeJSON(ts time.Time, level Level, msg string, err error, fields Fields) ([]byte, error) {
	entry := make(map[string]interface{}, len(fields)+4)
	for k, v := range fields {
		entry[k] = v
	}
	entry["timestamp"] = ts.Format(time.RFC3339)
	entry["level"] = level.String()
	entry["message"] = msg
	if err != nil {
		entry["error"] = err.Error()
	}

	data, jsonErr := json.Marshal(entry)
	if jsonErr != nil {
		return nil, jsonErr
	}
	return append(data, '\n'), nil
}

// encodeText renders "timestamp [LEVEL] message error=... k=v" with sorted keys
func encodeText(ts time.Time, level Level, msg string, err error, fields Fields) []byte {
	var b strings.Builder
	b.WriteString(ts.Format("2006-01-02T15:04:05.000Z"))
	b.WriteString(" [")
	b.WriteString(level.String())
	b.WriteString("] ")
	b.WriteString(msg)

	if err != nil {
		fmt.Fprintf(&b, " error=%q", err.Error())
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, fields[k])
	}

	b.WriteByte('\n')
	return []byte(b.String())
}
