package resumes

import (
	"encoding/json"
	"time"
)

// Parse job statuses.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusParsed     = "parsed"
	StatusFailed     = "failed"
)

// ParsedResume is one parse job and the raw record the parser produced.
// Record is stored as-is: depending on the parser run it may be a JSON
// object or a JSON string wrapping one. Readers normalize it through
// reconcile.DecodeRecord.
type ParsedResume struct {
	ID         string
	UserID     string
	DocumentID string
	FileName   string
	StorageKey string
	MimeType   string
	Status     string
	Record     json.RawMessage
	ParseError string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
