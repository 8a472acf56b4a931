package log_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snehendu098/ghost/galasigner/pkg/log"
)

func TestZapLogger(t *testing.T) {
	tws := &testWriteSyncer{}
	logger := log.NewZapLogger(log.Config{Format: "json", Level: log.LevelDebug}, tws)
	logger = logger.WithName("signer")

	kv := []any{"address", "0x1Be31A94361a391bBaFB2a4CCd704F57dc04d4bb", "attempt", float64(2)}

	logger.Debug("looking up public key", kv...)
	tws.AssertEntry(t, log.LevelDebug, "signer", "looking up public key", kv...)

	logger.Info("looking up public key", kv...)
	tws.AssertEntry(t, log.LevelInfo, "signer", "looking up public key", kv...)

	logger.Warn("looking up public key", kv...)
	tws.AssertEntry(t, log.LevelWarn, "signer", "looking up public key", kv...)

	logger.Error("looking up public key", kv...)
	tws.AssertEntry(t, log.LevelError, "signer", "looking up public key", kv...)

	t.Run("Names nest", func(t *testing.T) {
		assert.Equal(t, "signer.http", logger.WithName("http").Name())
	})

	t.Run("Persistent pairs", func(t *testing.T) {
		withID := logger.WithKV("requestId", "abc")
		assert.Equal(t, []any{"requestId", "abc"}, withID.GetAllKV())
		assert.Empty(t, logger.GetAllKV())

		withID.Info("signed", "status", float64(200))
		tws.AssertEntry(t, log.LevelInfo, "signer", "signed", "requestId", "abc", "status", float64(200))
	})

	t.Run("Sibling loggers do not share pairs", func(t *testing.T) {
		base := logger.WithKV("a", "1")
		left := base.WithKV("b", "2")
		right := base.WithKV("c", "3")
		assert.Equal(t, []any{"a", "1", "b", "2"}, left.GetAllKV())
		assert.Equal(t, []any{"a", "1", "c", "3"}, right.GetAllKV())
	})

	t.Run("Caller skip", func(t *testing.T) {
		helper := func(msg string) {
			logger.AddCallerSkip(1).Info(msg)
		}
		helper("from helper")
		entry := tws.Entry(t)
		assert.True(t, strings.HasPrefix(entry["caller"].(string), "log/zap_logger_test.go:"), entry["caller"])
	})

	t.Run("Level filtering", func(t *testing.T) {
		quiet := &testWriteSyncer{}
		lg := log.NewZapLogger(log.Config{Format: "json", Level: log.LevelWarn}, quiet)
		lg.Info("dropped")
		assert.Empty(t, quiet.lastEntry)
		lg.Warn("kept")
		assert.NotEmpty(t, quiet.lastEntry)
	})
}

func TestZapLoggerRedaction(t *testing.T) {
	const secret = "0x1234567890abcdef1234567890abcdef1234567890abcdef1234567890abcdef"

	for _, format := range []string{"json", "logfmt", "console"} {
		t.Run(format, func(t *testing.T) {
			tws := &testWriteSyncer{}
			logger := log.NewZapLogger(log.Config{Format: format, Level: log.LevelDebug}, tws)

			logger.Info("config loaded", "GALA_PK_HEX", secret, "listenAddr", "127.0.0.1:17777")
			assert.NotContains(t, string(tws.lastEntry), secret)
			assert.Contains(t, string(tws.lastEntry), log.RedactedValue)
			assert.Contains(t, string(tws.lastEntry), "127.0.0.1:17777")

			withKey := logger.WithKV("privateKey", secret)
			assert.Equal(t, []any{"privateKey", log.RedactedValue}, withKey.GetAllKV())
			withKey.Info("signing")
			assert.NotContains(t, string(tws.lastEntry), secret)
		})
	}
}

type testWriteSyncer struct {
	lastEntry []byte
}

func (tws *testWriteSyncer) Write(p []byte) (int, error) {
	tws.lastEntry = append([]byte(nil), p...)
	return len(p), nil
}

func (tws *testWriteSyncer) Sync() error { return nil }

func (tws *testWriteSyncer) Entry(t *testing.T) map[string]any {
	t.Helper()
	entry := make(map[string]any)
	require.NoError(t, json.Unmarshal(tws.lastEntry, &entry), "failed to unmarshal log entry: %s", string(tws.lastEntry))
	return entry
}

// AssertEntry checks the last JSON entry. Numbers must be given as float64.
func (tws *testWriteSyncer) AssertEntry(t *testing.T, level log.Level, name, message string, keysAndValues ...any) {
	t.Helper()
	entry := tws.Entry(t)

	assert.Contains(t, entry, "ts")
	assert.Equal(t, name, entry["logger"])
	assert.Equal(t, string(level), entry["level"])
	assert.Equal(t, message, entry["msg"])
	assert.True(t, strings.HasPrefix(entry["caller"].(string), "log/zap_logger_test.go:"), entry["caller"])

	for i := 0; i < len(keysAndValues); i += 2 {
		assert.Equal(t, keysAndValues[i+1], entry[keysAndValues[i].(string)])
	}
	assert.Len(t, entry, len(keysAndValues)/2+5) // ts, level, logger, caller, msg
}
