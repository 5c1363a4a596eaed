package resumes

import (
	"context"
	"encoding/json"
)

// Repo defines persistence operations for parsed resumes.
type Repo interface {
	Create(ctx context.Context, resume ParsedResume) error
	GetByID(ctx context.Context, userId, id string) (ParsedResume, error)
	ListByUser(ctx context.Context, userId string) ([]ParsedResume, error)
	UpdateRecord(ctx context.Context, userId, id string, record json.RawMessage) error
	UpdateStatus(ctx context.Context, userId, id, status, parseError string) error
	DeleteByUser(ctx context.Context, userId string) (int, error)
}
