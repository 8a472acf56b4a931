package galachain

import (
	"encoding/json"
	"strings"
)

var rawBodyCleaner = strings.NewReplacer("\r", "", "\n", "", `"`, "")

// ParsePublicKey extracts the key from a GetPublicKey response body.
//
//   - a JSON string is the key itself
//   - a JSON object holds it under publicKey, or under data, either as a
//     string or as an object with its own publicKey
//   - a body that is not JSON is the key, with CR, LF and '"' removed
//
// Field names match case-insensitively. Any other JSON value, or a key that
// ends up empty, yields ErrEmptyPublicKey.
func ParsePublicKey(body []byte) (string, error) {
	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		if key := rawBodyCleaner.Replace(string(body)); strings.TrimSpace(key) != "" {
			return key, nil
		}
		return "", ErrEmptyPublicKey
	}

	var key string
	switch v := decoded.(type) {
	case string:
		key = v
	case map[string]any:
		key = fromObject(v)
	}
	if key == "" {
		return "", ErrEmptyPublicKey
	}
	return key, nil
}

func fromObject(obj map[string]any) string {
	if key, ok := field(obj, "publicKey").(string); ok && key != "" {
		return key
	}
	switch data := field(obj, "data").(type) {
	case string:
		return data
	case map[string]any:
		if key, ok := field(data, "publicKey").(string); ok {
			return key
		}
	}
	return ""
}

func field(obj map[string]any, name string) any {
	if v, ok := obj[name]; ok {
		return v
	}
	for k, v := range obj {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return nil
}
