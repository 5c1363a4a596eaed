package account

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"talexus-backend/internal/documents"
	"talexus-backend/internal/resumes"
	"talexus-backend/internal/shared/telemetry"
)

type Service struct {
	DocRepo    documents.DocumentsRepo
	ResumeRepo resumes.Repo
}

type ClaimResult struct {
	MigratedDocuments int `json:"migratedDocuments"`
	MigratedResumes   int `json:"migratedResumes"`
}

type ResetResult struct {
	DeletedDocuments int `json:"deletedDocuments"`
	DeletedResumes   int `json:"deletedResumes"`
}

func NewService(docRepo documents.DocumentsRepo, resumeRepo resumes.Repo) *Service {
	return &Service{DocRepo: docRepo, ResumeRepo: resumeRepo}
}

// ClaimGuest migrates guest-owned documents and parse jobs to an
// authenticated user.
func (s *Service) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (ClaimResult, error) {
	if strings.TrimSpace(guestUserID) == "" || strings.TrimSpace(authedUserID) == "" {
		return ClaimResult{}, errors.New("guestUserID and authedUserID are required")
	}

	if docPG, ok := s.DocRepo.(*documents.PGRepo); ok && docPG != nil && docPG.DB != nil {
		if resumePG, ok := s.ResumeRepo.(*resumes.PGRepo); ok && resumePG != nil && resumePG.DB != nil {
			return claimWithTx(ctx, docPG.DB, guestUserID, authedUserID)
		}
	}

	docCount, err := claimDocs(ctx, s.DocRepo, guestUserID, authedUserID)
	if err != nil {
		return ClaimResult{}, err
	}
	resumeCount, err := claimResumes(ctx, s.ResumeRepo, guestUserID, authedUserID)
	if err != nil {
		return ClaimResult{}, err
	}
	return ClaimResult{MigratedDocuments: docCount, MigratedResumes: resumeCount}, nil
}

// Reset deletes the user's documents and parse jobs.
func (s *Service) Reset(ctx context.Context, userID string) (ResetResult, error) {
	if strings.TrimSpace(userID) == "" {
		return ResetResult{}, errors.New("userID is required")
	}

	docCount, err := deleteDocs(ctx, s.DocRepo, userID)
	if err != nil {
		return ResetResult{}, err
	}
	resumeCount, err := s.ResumeRepo.DeleteByUser(ctx, userID)
	if err != nil {
		return ResetResult{}, err
	}

	telemetry.Info("account.reset", map[string]any{
		"user_id":           userID,
		"deleted_documents": docCount,
		"deleted_resumes":   resumeCount,
	})
	return ResetResult{DeletedDocuments: docCount, DeletedResumes: resumeCount}, nil
}

func claimWithTx(ctx context.Context, db *sql.DB, guestUserID, authedUserID string) (ClaimResult, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return ClaimResult{}, err
	}
	defer tx.Rollback()

	docRes, err := tx.ExecContext(ctx, `UPDATE documents SET user_id = $1 WHERE user_id = $2 AND deleted_at IS NULL`, authedUserID, guestUserID)
	if err != nil {
		return ClaimResult{}, err
	}
	docCount, _ := docRes.RowsAffected()

	resumeRes, err := tx.ExecContext(ctx, `UPDATE parsed_resumes SET user_id = $1, updated_at = NOW() WHERE user_id = $2`, authedUserID, guestUserID)
	if err != nil {
		return ClaimResult{}, err
	}
	resumeCount, _ := resumeRes.RowsAffected()

	if err := tx.Commit(); err != nil {
		return ClaimResult{}, err
	}
	return ClaimResult{MigratedDocuments: int(docCount), MigratedResumes: int(resumeCount)}, nil
}

type guestClaimer interface {
	ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error)
}

type userDeleter interface {
	DeleteByUser(ctx context.Context, userId string) (int, error)
}

func claimDocs(ctx context.Context, repo documents.DocumentsRepo, guestUserID, authedUserID string) (int, error) {
	if claimer, ok := repo.(guestClaimer); ok {
		return claimer.ClaimGuest(ctx, guestUserID, authedUserID)
	}
	return 0, errors.New("documents repo does not support claim")
}

func claimResumes(ctx context.Context, repo resumes.Repo, guestUserID, authedUserID string) (int, error) {
	if claimer, ok := repo.(guestClaimer); ok {
		return claimer.ClaimGuest(ctx, guestUserID, authedUserID)
	}
	return 0, errors.New("resumes repo does not support claim")
}

func deleteDocs(ctx context.Context, repo documents.DocumentsRepo, userID string) (int, error) {
	if deleter, ok := repo.(userDeleter); ok {
		return deleter.DeleteByUser(ctx, userID)
	}
	return 0, errors.New("documents repo does not support delete")
}
