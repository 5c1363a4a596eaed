package reconcile

import (
	"regexp"
	"strings"
)

var (
	timestampPrefix = regexp.MustCompile(`^(\d+)_`)
	leadingDigits   = regexp.MustCompile(`^\d+`)
)

// MapToRecordID resolves a stored file name (possibly of the form
// "<epoch-millis>_<original-name>") to a parsed-record identifier. Rules are
// tried in order and the first match wins:
//
//  1. exact match of the stored name against known candidate names;
//  2. match after stripping a leading numeric timestamp prefix;
//  3. match of the bare timestamp prefix itself, which is how records
//     identify themselves when the document id is the upload timestamp.
//
// The known map is built by callers in priority order (self-id first, least
// derived alias last), so resolution is deterministic. Returns false when no
// rule matches; callers decide whether an unlinked file is an error.
func MapToRecordID(storedFileName string, known map[string]string) (string, bool) {
	name := strings.TrimSpace(storedFileName)
	if name == "" || len(known) == 0 {
		return "", false
	}

	if id, ok := known[name]; ok {
		return id, true
	}

	if stripped := timestampPrefix.ReplaceAllString(name, ""); stripped != name {
		if id, ok := known[stripped]; ok {
			return id, true
		}
	}

	if m := timestampPrefix.FindStringSubmatch(name); m != nil {
		if id, ok := known[m[1]]; ok {
			return id, true
		}
	}

	return "", false
}

// StripTimestampPrefix removes a leading "<millis>_" prefix from a stored
// file name, returning the original upload name.
func StripTimestampPrefix(name string) string {
	return timestampPrefix.ReplaceAllString(name, "")
}

// NormalizeRecordID reduces a resume identifier to its bare numeric
// timestamp when the id carries a file-name suffix ("1700000000000_cv.pdf"
// becomes "1700000000000"). Identifiers without a numeric prefix pass
// through unchanged.
func NormalizeRecordID(id string) string {
	if m := leadingDigits.FindString(id); m != "" {
		return m
	}
	return id
}
