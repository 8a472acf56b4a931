package log

import "strings"

// RedactedValue replaces the value of any sensitive key.
const RedactedValue = "[REDACTED]"

var sensitiveKeys = map[string]struct{}{
	"privatekey":    {},
	"privatekeyhex": {},
	"private_key":   {},
	"secret":        {},
	"secretkey":     {},
	"gala_pk_hex":   {},
	"pk":            {},
	"pkhex":         {},
	"password":      {},
	"mnemonic":      {},
	"seed":          {},
}

// IsSensitiveKey reports whether values logged under key are replaced with
// RedactedValue. The match ignores case, "-" and " ".
func IsSensitiveKey(key string) bool {
	key = strings.ToLower(key)
	key = strings.NewReplacer("-", "", " ", "").Replace(key)
	_, ok := sensitiveKeys[key]
	return ok
}

// Redact returns keysAndValues with the value of every sensitive key
// replaced. The input slice is left untouched; it is returned as is when
// nothing needs replacing.
func Redact(keysAndValues []any) []any {
	var out []any
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok || !IsSensitiveKey(key) {
			continue
		}
		if out == nil {
			out = make([]any, len(keysAndValues))
			copy(out, keysAndValues)
		}
		out[i+1] = RedactedValue
	}
	if out == nil {
		return keysAndValues
	}
	return out
}
