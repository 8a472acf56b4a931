package log

// Logger is a structured logger. keysAndValues are alternating keys and
// values, e.g. "address", addr, "attempt", n.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
	// Fatal logs at fatal level. Whether the process exits depends on the
	// implementation; ZapLogger exits.
	Fatal(msg string, keysAndValues ...any)

	// WithKV returns a logger that adds key and value to every entry.
	WithKV(key string, value any) Logger
	// GetAllKV returns the pairs added with WithKV, already redacted.
	GetAllKV() []any
	// WithName returns a logger named after a component. Names nest with dots.
	WithName(name string) Logger
	Name() string
	// AddCallerSkip skips extra stack frames when reporting the call site.
	// Loggers without call site reporting return themselves.
	AddCallerSkip(skip int) Logger
}

// Level is the severity of a log entry.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
	LevelFatal Level = "fatal"
)

// SpanEventRecorder records log entries on a trace span.
type SpanEventRecorder interface {
	TraceID() string
	SpanID() string

	// RecordEvent adds an event named name with keysAndValues as attributes.
	RecordEvent(name string, keysAndValues ...any)
	// RecordError adds the event and marks the span as failed.
	RecordError(name string, keysAndValues ...any)
}
