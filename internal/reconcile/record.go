package reconcile

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrMalformedRecord indicates a string-encoded raw parse record that is
// not valid JSON. Callers degrade to empty sections rather than failing
// the whole resume load.
var ErrMalformedRecord = errors.New("malformed raw parse record")

// DecodeRecord normalizes the stored raw parse blob into a map. Upstream
// storage sometimes holds the parsed data as a JSON string and sometimes as
// a native structure; this is the single place that difference is resolved,
// so no downstream code re-checks "is this a string".
func DecodeRecord(raw any) (map[string]any, error) {
	switch v := raw.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return v, nil
	case string:
		return decodeJSONRecord([]byte(v))
	case []byte:
		return decodeJSONRecord(v)
	case json.RawMessage:
		return decodeJSONRecord([]byte(v))
	default:
		return map[string]any{}, ErrMalformedRecord
	}
}

func decodeJSONRecord(data []byte) (map[string]any, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return map[string]any{}, nil
	}
	var record map[string]any
	if err := json.Unmarshal(data, &record); err != nil {
		return map[string]any{}, ErrMalformedRecord
	}
	if record == nil {
		record = map[string]any{}
	}
	return record, nil
}

// sectionItems coerces a resolved section value into a list of item maps.
// A string value is given one decode attempt, since some upstream parsers
// store individual sections as embedded JSON.
func sectionItems(val any) []map[string]any {
	switch v := val.(type) {
	case []any:
		out := make([]map[string]any, 0, len(v))
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	case string:
		var decoded []map[string]any
		if err := json.Unmarshal([]byte(v), &decoded); err != nil {
			return nil
		}
		return decoded
	default:
		return nil
	}
}

// itemString returns the first alias key whose value is a non-empty string.
func itemString(item map[string]any, aliases ...string) string {
	for _, key := range aliases {
		if val, ok := item[key]; ok {
			if s, ok := val.(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

// itemStringSlice returns the first alias key holding a sequence of strings.
func itemStringSlice(item map[string]any, aliases ...string) []string {
	for _, key := range aliases {
		val, ok := item[key]
		if !ok || val == nil {
			continue
		}
		if out := toStringSlice(val); out != nil {
			return out
		}
	}
	return []string{}
}

func toStringSlice(val any) []string {
	switch raw := val.(type) {
	case []string:
		out := make([]string, 0, len(raw))
		for _, s := range raw {
			if trimmed := strings.TrimSpace(s); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		return out
	case []any:
		out := make([]string, 0, len(raw))
		for _, item := range raw {
			if s, ok := item.(string); ok {
				if trimmed := strings.TrimSpace(s); trimmed != "" {
					out = append(out, trimmed)
				}
			}
		}
		return out
	default:
		return nil
	}
}

func ensureStringSlice(value []string) []string {
	if value == nil {
		return []string{}
	}
	return value
}

func fallbackString(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

// flexString renders scalar-or-wrapped date/grade values: upstream parsers
// emit either "2020", {"date":"2020"}, or {"raw":"2020-05"}.
func flexString(val any) string {
	switch v := val.(type) {
	case string:
		return strings.TrimSpace(v)
	case map[string]any:
		for _, key := range []string{"date", "raw", "value", "inputStr"} {
			if s, ok := v[key].(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	case float64:
		data, _ := json.Marshal(v)
		return string(data)
	}
	return ""
}
