package log

var _ Logger = SpanLogger{}

// SpanLogger forwards entries to another logger and records each one as an
// event on a span. Log lines gain traceId and spanId; span events gain the
// level, the component name and the logger's persistent pairs.
type SpanLogger struct {
	lg  Logger
	ser SpanEventRecorder
}

// NewSpanLogger wraps lg. One extra caller frame is skipped so call sites
// still point at the code that logged.
func NewSpanLogger(lg Logger, ser SpanEventRecorder) Logger {
	return SpanLogger{
		lg:  lg.AddCallerSkip(1),
		ser: ser,
	}
}

func (sl SpanLogger) Debug(msg string, keysAndValues ...any) {
	keysAndValues = Redact(keysAndValues)
	sl.ser.RecordEvent(msg, sl.eventAttributes(LevelDebug, keysAndValues)...)
	sl.lg.Debug(msg, sl.withTraceIDs(keysAndValues)...)
}

func (sl SpanLogger) Info(msg string, keysAndValues ...any) {
	keysAndValues = Redact(keysAndValues)
	sl.ser.RecordEvent(msg, sl.eventAttributes(LevelInfo, keysAndValues)...)
	sl.lg.Info(msg, sl.withTraceIDs(keysAndValues)...)
}

func (sl SpanLogger) Warn(msg string, keysAndValues ...any) {
	keysAndValues = Redact(keysAndValues)
	sl.ser.RecordEvent(msg, sl.eventAttributes(LevelWarn, keysAndValues)...)
	sl.lg.Warn(msg, sl.withTraceIDs(keysAndValues)...)
}

func (sl SpanLogger) Error(msg string, keysAndValues ...any) {
	keysAndValues = Redact(keysAndValues)
	sl.ser.RecordError(msg, sl.eventAttributes(LevelError, keysAndValues)...)
	sl.lg.Error(msg, sl.withTraceIDs(keysAndValues)...)
}

func (sl SpanLogger) Fatal(msg string, keysAndValues ...any) {
	keysAndValues = Redact(keysAndValues)
	sl.ser.RecordError(msg, sl.eventAttributes(LevelFatal, keysAndValues)...)
	sl.lg.Fatal(msg, sl.withTraceIDs(keysAndValues)...)
}

func (sl SpanLogger) WithKV(key string, value any) Logger {
	return SpanLogger{lg: sl.lg.WithKV(key, value), ser: sl.ser}
}

func (sl SpanLogger) GetAllKV() []any {
	return sl.lg.GetAllKV()
}

func (sl SpanLogger) WithName(name string) Logger {
	return SpanLogger{lg: sl.lg.WithName(name), ser: sl.ser}
}

func (sl SpanLogger) Name() string {
	return sl.lg.Name()
}

func (sl SpanLogger) AddCallerSkip(skip int) Logger {
	return SpanLogger{lg: sl.lg.AddCallerSkip(skip), ser: sl.ser}
}

func (sl SpanLogger) withTraceIDs(keysAndValues []any) []any {
	out := make([]any, 0, len(keysAndValues)+4)
	out = append(out, "traceId", sl.ser.TraceID(), "spanId", sl.ser.SpanID())
	return append(out, keysAndValues...)
}

func (sl SpanLogger) eventAttributes(level Level, keysAndValues []any) []any {
	persistent := sl.lg.GetAllKV()
	out := make([]any, 0, len(persistent)+len(keysAndValues)+4)
	out = append(out, "level", string(level), "component", sl.lg.Name())
	out = append(out, persistent...)
	return append(out, keysAndValues...)
}
