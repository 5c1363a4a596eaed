package resumes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new parse job.
func (r *PGRepo) Create(ctx context.Context, resume ParsedResume) error {
	const query = `
INSERT INTO parsed_resumes (
    id,
    user_id,
    document_id,
    file_name,
    storage_key,
    mime_type,
    status,
    parsed_data,
    parse_error,
    created_at,
    updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULL, $9, $9)`

	status := resume.Status
	if status == "" {
		status = StatusPending
	}
	createdAt := resume.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	var record any
	if len(resume.Record) > 0 {
		record = []byte(resume.Record)
	}

	_, err := r.DB.ExecContext(
		ctx,
		query,
		resume.ID,
		resume.UserID,
		resume.DocumentID,
		resume.FileName,
		resume.StorageKey,
		resume.MimeType,
		status,
		record,
		createdAt,
	)
	return err
}

// GetByID fetches a parse job by ID for a user.
func (r *PGRepo) GetByID(ctx context.Context, userId, id string) (ParsedResume, error) {
	const query = `
SELECT id, user_id, document_id, file_name, storage_key, mime_type, status, parsed_data, parse_error, created_at, updated_at
FROM parsed_resumes
WHERE user_id = $1 AND id = $2
LIMIT 1`
	row := r.DB.QueryRowContext(ctx, query, userId, id)
	resume, err := scanResume(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ParsedResume{}, ErrNotFound
		}
		return ParsedResume{}, err
	}
	return resume, nil
}

// ListByUser lists parse jobs for a user, newest first.
func (r *PGRepo) ListByUser(ctx context.Context, userId string) ([]ParsedResume, error) {
	const query = `
SELECT id, user_id, document_id, file_name, storage_key, mime_type, status, parsed_data, parse_error, created_at, updated_at
FROM parsed_resumes
WHERE user_id = $1
ORDER BY created_at DESC`

	rows, err := r.DB.QueryContext(ctx, query, userId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ParsedResume
	for rows.Next() {
		resume, err := scanResume(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, resume)
	}
	return out, rows.Err()
}

// UpdateRecord replaces the stored record for a parse job.
func (r *PGRepo) UpdateRecord(ctx context.Context, userId, id string, record json.RawMessage) error {
	const query = `
UPDATE parsed_resumes
SET parsed_data = $1, updated_at = $2
WHERE user_id = $3 AND id = $4`
	res, err := r.DB.ExecContext(ctx, query, []byte(record), time.Now().UTC(), userId, id)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateStatus transitions a parse job's status.
func (r *PGRepo) UpdateStatus(ctx context.Context, userId, id, status, parseError string) error {
	const query = `
UPDATE parsed_resumes
SET status = $1, parse_error = $2, updated_at = $3
WHERE user_id = $4 AND id = $5`

	var errVal sql.NullString
	if parseError != "" {
		errVal = sql.NullString{String: parseError, Valid: true}
	}

	res, err := r.DB.ExecContext(ctx, query, status, errVal, time.Now().UTC(), userId, id)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByUser removes every parse job owned by a user.
func (r *PGRepo) DeleteByUser(ctx context.Context, userId string) (int, error) {
	const query = `DELETE FROM parsed_resumes WHERE user_id = $1`
	res, err := r.DB.ExecContext(ctx, query, userId)
	if err != nil {
		return 0, err
	}
	deleted, _ := res.RowsAffected()
	return int(deleted), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResume(row rowScanner) (ParsedResume, error) {
	var resume ParsedResume
	var record []byte
	var parseError sql.NullString
	if err := row.Scan(
		&resume.ID,
		&resume.UserID,
		&resume.DocumentID,
		&resume.FileName,
		&resume.StorageKey,
		&resume.MimeType,
		&resume.Status,
		&record,
		&parseError,
		&resume.CreatedAt,
		&resume.UpdatedAt,
	); err != nil {
		return ParsedResume{}, err
	}
	if len(record) > 0 {
		resume.Record = json.RawMessage(record)
	}
	if parseError.Valid {
		resume.ParseError = parseError.String
	}
	return resume, nil
}

var _ Repo = (*PGRepo)(nil)

// ClaimGuest reassigns parse jobs owned by a guest user to an authenticated user.
func (r *PGRepo) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error) {
	const query = `
UPDATE parsed_resumes
SET user_id = $1, updated_at = NOW()
WHERE user_id = $2`
	res, err := r.DB.ExecContext(ctx, query, authedUserID, guestUserID)
	if err != nil {
		return 0, err
	}
	updated, _ := res.RowsAffected()
	return int(updated), nil
}
