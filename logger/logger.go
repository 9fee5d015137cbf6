package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// ZeroLogger wraps zerolog.Logger to implement the Logger interface.
type ZeroLogger struct {
	zlog   *zerolog.Logger
	filter *SensitiveDataFilter
}

var _ Logger = (*ZeroLogger)(nil)

// New creates a ZeroLogger writing to stdout at the given level.
// If pretty is true, output is formatted for human readability.
func New(level string, pretty bool) *ZeroLogger {
	return NewWithOutput(level, pretty, os.Stdout)
}

// NewWithOutput creates a ZeroLogger writing to the given writer.
func NewWithOutput(level string, pretty bool, out io.Writer) *ZeroLogger {
	var l zerolog.Logger
	if pretty {
		l = zerolog.New(zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Logger()
	} else {
		l = zerolog.New(out).With().Timestamp().Logger()
	}

	zLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		zLevel = zerolog.InfoLevel
	}
	l = l.Level(zLevel)

	return &ZeroLogger{zlog: &l, filter: NewSensitiveDataFilter(nil)}
}

// WithFilter returns a copy of the logger using a custom sensitive-data filter.
func (z *ZeroLogger) WithFilter(cfg *FilterConfig) *ZeroLogger {
	return &ZeroLogger{zlog: z.zlog, filter: NewSensitiveDataFilter(cfg)}
}

// Debug creates a debug-level log event.
func (z *ZeroLogger) Debug() LogEvent {
	return &logEvent{event: z.zlog.Debug(), filter: z.filter}
}

// Info creates an info-level log event.
func (z *ZeroLogger) Info() LogEvent {
	return &logEvent{event: z.zlog.Info(), filter: z.filter}
}

// Warn creates a warn-level log event.
func (z *ZeroLogger) Warn() LogEvent {
	return &logEvent{event: z.zlog.Warn(), filter: z.filter}
}

// Error creates an error-level log event.
func (z *ZeroLogger) Error() LogEvent {
	return &logEvent{event: z.zlog.Error(), filter: z.filter}
}

// WithFields returns a logger with the given fields attached to every event.
// Sensitive values are masked before they reach the underlying logger.
func (z *ZeroLogger) WithFields(fields map[string]any) Logger {
	zctx := z.zlog.With()
	for k, v := range fields {
		if z.filter != nil {
			v = z.filter.FilterValue(k, v)
		}
		zctx = zctx.Interface(k, v)
	}
	l := zctx.Logger()
	return &ZeroLogger{zlog: &l, filter: z.filter}
}

// logEvent adapts a zerolog event to the LogEvent interface.
type logEvent struct {
	event  *zerolog.Event
	filter *SensitiveDataFilter
}

func (e *logEvent) Msg(msg string) {
	e.event.Msg(msg)
}

func (e *logEvent) Msgf(format string, args ...any) {
	e.event.Msgf(format, args...)
}

func (e *logEvent) Err(err error) LogEvent {
	return &logEvent{event: e.event.Err(err), filter: e.filter}
}

func (e *logEvent) Str(key, value string) LogEvent {
	if e.filter != nil {
		value = e.filter.FilterString(key, value)
	}
	return &logEvent{event: e.event.Str(key, value), filter: e.filter}
}

func (e *logEvent) Int(key string, value int) LogEvent {
	return &logEvent{event: e.event.Int(key, value), filter: e.filter}
}

func (e *logEvent) Int64(key string, value int64) LogEvent {
	return &logEvent{event: e.event.Int64(key, value), filter: e.filter}
}

func (e *logEvent) Dur(key string, d time.Duration) LogEvent {
	return &logEvent{event: e.event.Dur(key, d), filter: e.filter}
}

func (e *logEvent) Interface(key string, i any) LogEvent {
	if e.filter != nil {
		i = e.filter.FilterValue(key, i)
	}
	return &logEvent{event: e.event.Interface(key, i), filter: e.filter}
}

func (e *logEvent) Bytes(key string, val []byte) LogEvent {
	return &logEvent{event: e.event.Bytes(key, val), filter: e.filter}
}
