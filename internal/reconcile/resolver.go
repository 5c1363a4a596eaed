package reconcile

import "strings"

// Path is a candidate location for a field inside a raw parse record.
// A plain key addresses a top-level field; dots descend nested maps
// ("dates.startDate"). Literal keys containing spaces ("Work Experience")
// are treated as a single segment when no dot is present.
type Path string

// Kind constrains the structural type a resolved value must have.
type Kind int

const (
	// KindAny accepts any non-nil value.
	KindAny Kind = iota
	// KindSlice accepts []any or []string values.
	KindSlice
	// KindMap accepts map[string]any values.
	KindMap
	// KindString accepts string values.
	KindString
)

// Resolve walks the candidate paths in order and returns the first value
// that is present, non-nil, and matches the kind constraint. Missing
// intermediate keys are treated as absent, never an error.
func Resolve(record map[string]any, paths []Path, kind Kind) (any, bool) {
	if record == nil {
		return nil, false
	}
	for _, p := range paths {
		val, ok := lookup(record, p)
		if !ok || val == nil {
			continue
		}
		if matchesKind(val, kind) {
			return val, true
		}
	}
	return nil, false
}

// ResolveSlice returns the first candidate value that is a sequence,
// normalized to []any.
func ResolveSlice(record map[string]any, paths []Path) ([]any, bool) {
	val, ok := Resolve(record, paths, KindSlice)
	if !ok {
		return nil, false
	}
	switch s := val.(type) {
	case []any:
		return s, true
	case []string:
		out := make([]any, len(s))
		for i, item := range s {
			out[i] = item
		}
		return out, true
	}
	return nil, false
}

// ResolveString returns the first candidate value that is a non-empty string.
func ResolveString(record map[string]any, paths []Path) (string, bool) {
	for _, p := range paths {
		val, ok := lookup(record, p)
		if !ok || val == nil {
			continue
		}
		if s, ok := val.(string); ok && strings.TrimSpace(s) != "" {
			return s, true
		}
	}
	return "", false
}

func lookup(record map[string]any, p Path) (any, bool) {
	key := string(p)
	if val, ok := record[key]; ok {
		return val, true
	}
	if !strings.Contains(key, ".") {
		return nil, false
	}
	segments := strings.Split(key, ".")
	var current any = record
	for _, seg := range segments {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func matchesKind(val any, kind Kind) bool {
	switch kind {
	case KindSlice:
		switch val.(type) {
		case []any, []string:
			return true
		}
		return false
	case KindMap:
		_, ok := val.(map[string]any)
		return ok
	case KindString:
		_, ok := val.(string)
		return ok
	default:
		return val != nil
	}
}
