package resumes

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string][]ParsedResume // userId -> parse jobs
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data: make(map[string][]ParsedResume),
	}
}

// Create stores a new parse job for a user.
func (r *MemoryRepo) Create(ctx context.Context, resume ParsedResume) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if resume.Status == "" {
		resume.Status = StatusPending
	}
	if resume.CreatedAt.IsZero() {
		resume.CreatedAt = time.Now().UTC()
	}
	resume.UpdatedAt = resume.CreatedAt
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[resume.UserID] = append(r.data[resume.UserID], resume)
	return nil
}

// GetByID returns a parse job by ID for a user.
func (r *MemoryRepo) GetByID(ctx context.Context, userId, id string) (ParsedResume, error) {
	if err := ctx.Err(); err != nil {
		return ParsedResume{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	jobs := r.data[userId]
	for i := range jobs {
		if jobs[i].ID == id {
			return jobs[i], nil
		}
	}
	return ParsedResume{}, ErrNotFound
}

// ListByUser returns parse jobs for a user, newest first.
func (r *MemoryRepo) ListByUser(ctx context.Context, userId string) ([]ParsedResume, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	jobs := r.data[userId]
	out := make([]ParsedResume, len(jobs))
	copy(out, jobs)
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// UpdateRecord replaces the stored record for a parse job.
func (r *MemoryRepo) UpdateRecord(ctx context.Context, userId, id string, record json.RawMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	jobs := r.data[userId]
	for i := range jobs {
		if jobs[i].ID == id {
			jobs[i].Record = append(json.RawMessage(nil), record...)
			jobs[i].UpdatedAt = time.Now().UTC()
			r.data[userId] = jobs
			return nil
		}
	}
	return ErrNotFound
}

// UpdateStatus transitions a parse job's status.
func (r *MemoryRepo) UpdateStatus(ctx context.Context, userId, id, status, parseError string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	jobs := r.data[userId]
	for i := range jobs {
		if jobs[i].ID == id {
			jobs[i].Status = status
			jobs[i].ParseError = parseError
			jobs[i].UpdatedAt = time.Now().UTC()
			r.data[userId] = jobs
			return nil
		}
	}
	return ErrNotFound
}

// DeleteByUser removes every parse job owned by a user.
func (r *MemoryRepo) DeleteByUser(ctx context.Context, userId string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	deleted := len(r.data[userId])
	delete(r.data, userId)
	return deleted, nil
}

var _ Repo = (*MemoryRepo)(nil)

// ClaimGuest reassigns parse jobs owned by a guest user to an authenticated user.
func (r *MemoryRepo) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	jobs := r.data[guestUserID]
	if len(jobs) == 0 {
		return 0, nil
	}
	for i := range jobs {
		jobs[i].UserID = authedUserID
	}
	r.data[authedUserID] = append(r.data[authedUserID], jobs...)
	delete(r.data, guestUserID)
	return len(jobs), nil
}
