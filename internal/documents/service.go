package documents

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"

	"talexus-backend/internal/shared/storage/object"
	"talexus-backend/internal/shared/telemetry"
)

// ParseStarter kicks off resume parsing for an uploaded document and
// returns the parse job ID.
type ParseStarter interface {
	StartParse(ctx context.Context, userId, documentID, fileName, storageKey, mimeType string) (string, error)
}

// Service contains business logic for documents.
type Service struct {
	Store  object.ObjectStore
	Repo   DocumentsRepo
	Parser ParseStarter
}

// Upload saves the file to object storage, records the document and starts
// a parse job. A parse that cannot be started does not fail the upload.
func (s *Service) Upload(ctx context.Context, userId, fileName string, r io.Reader) (Document, error) {
	if fileName == "" {
		return Document{}, ErrInvalidInput
	}

	storageKey, size, mimeType, err := s.Store.Save(ctx, userId, fileName, r)
	if err != nil {
		return Document{}, err
	}

	doc := Document{
		ID:         uuid.NewString(),
		UserID:     userId,
		FileName:   fileName,
		MimeType:   mimeType,
		SizeBytes:  size,
		StorageKey: storageKey,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.Repo.Create(ctx, doc); err != nil {
		return Document{}, err
	}

	doc.ResumeID = s.startParse(ctx, doc)
	return doc, nil
}

// CreateFromS3 records a document that was uploaded directly to S3 and
// starts a parse job.
func (s *Service) CreateFromS3(ctx context.Context, userId, s3Key, originalFileName, contentType string, sizeBytes int64) (Document, error) {
	if userId == "" || s3Key == "" || originalFileName == "" {
		return Document{}, ErrInvalidInput
	}

	doc := Document{
		ID:               uuid.NewString(),
		UserID:           userId,
		FileName:         originalFileName,
		OriginalFilename: originalFileName,
		MimeType:         contentType,
		ContentType:      contentType,
		SizeBytes:        sizeBytes,
		StorageProvider:  "s3",
		StorageKey:       s3Key,
		CreatedAt:        time.Now().UTC(),
	}

	if err := s.Repo.Create(ctx, doc); err != nil {
		return Document{}, err
	}

	doc.ResumeID = s.startParse(ctx, doc)
	return doc, nil
}

func (s *Service) startParse(ctx context.Context, doc Document) string {
	if s.Parser == nil {
		return ""
	}
	resumeID, err := s.Parser.StartParse(ctx, doc.UserID, doc.ID, doc.FileName, doc.StorageKey, doc.MimeType)
	if err != nil {
		telemetry.Error("document.parse.start", map[string]any{
			"document_id": doc.ID,
			"user_id":     doc.UserID,
			"err":         err.Error(),
		})
		return ""
	}
	return resumeID
}

// Current returns the current document for a user.
func (s *Service) Current(ctx context.Context, userId string) (Document, error) {
	if userId == "" {
		return Document{}, errors.New("user id required")
	}
	return s.Repo.GetCurrentByUser(ctx, userId)
}

// Get returns a document by ID for a user.
func (s *Service) Get(ctx context.Context, userId, documentID string) (Document, error) {
	if userId == "" || documentID == "" {
		return Document{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, userId, documentID)
}

// List returns documents for a user, newest first.
func (s *Service) List(ctx context.Context, userId string, limit, offset int) ([]Document, error) {
	if userId == "" {
		return nil, ErrInvalidInput
	}
	return s.Repo.ListByUser(ctx, userId, limit, offset)
}

// RecordExtraction marks a document's extracted-text object. Called by the
// parse worker after text extraction succeeds.
func (s *Service) RecordExtraction(ctx context.Context, userId, documentID, extractedKey string) error {
	if userId == "" || documentID == "" || extractedKey == "" {
		return ErrInvalidInput
	}
	return s.Repo.UpdateExtraction(ctx, userId, documentID, extractedKey, time.Now().UTC())
}
