// Package log provides the structured, context-aware logger used by the signer.
//
// Loggers are passed explicitly and carried on request contexts; there is no
// package-level logger.
//
// # Core Types
//
// Logger is the interface every component logs through. Three
// implementations are provided:
//
//   - ZapLogger writes console, logfmt or JSON lines through zap
//   - NoopLogger discards everything and is the default for tests
//   - SpanLogger forwards to another logger and records each entry as an
//     event on an OpenTelemetry span
//
// # Redaction
//
// Values logged under a sensitive key (see IsSensitiveKey) are replaced with
// "[REDACTED]" before they reach any sink. Private key material must still
// never be passed to a logger, but a mistaken
//
//	logger.Info("loaded config", "gala_pk_hex", cfg.PrivateKeyHex)
//
// prints the placeholder instead of the key.
//
// # Context Integration
//
//	ctx = log.SetContextLogger(ctx, logger.WithKV("requestId", id))
//	log.FromContext(ctx).Info("payload signed")
//
// When ctx carries a valid span, SetContextLogger wraps the logger in a
// SpanLogger, so every entry is also a span event and Error or Fatal entries
// mark the span as failed.
//
// # Environment Configuration
//
//   - LOG_FORMAT: console, logfmt or json
//   - LOG_LEVEL: debug, info, warn, error or fatal
//   - LOG_OUTPUT: stderr, stdout or a file path
package log
