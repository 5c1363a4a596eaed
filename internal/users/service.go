package users

import (
	"context"
	"errors"
	"strings"
)

type Service struct {
	Repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// UpsertFromIdentity persists the user identity carried by trusted headers
// to stabilize history and resume-name ownership.
func (s *Service) UpsertFromIdentity(ctx context.Context, user User) error {
	if s == nil || s.Repo == nil {
		return errors.New("users service not configured")
	}
	if strings.TrimSpace(user.ID) == "" || strings.TrimSpace(user.Email) == "" {
		return errors.New("user id and email are required")
	}
	return s.Repo.Upsert(ctx, user)
}

func (s *Service) GetByID(ctx context.Context, userID string) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errors.New("users service not configured")
	}
	if strings.TrimSpace(userID) == "" {
		return User{}, errors.New("user id is required")
	}
	return s.Repo.GetByID(ctx, userID)
}

// ResumeNames returns the user's display names keyed by resume ID or stored
// file name.
func (s *Service) ResumeNames(ctx context.Context, userID string) (map[string]string, error) {
	if s == nil || s.Repo == nil {
		return nil, errors.New("users service not configured")
	}
	if strings.TrimSpace(userID) == "" {
		return map[string]string{}, nil
	}
	return s.Repo.ResumeNames(ctx, userID)
}

// SetResumeName stores a display name for a resume.
func (s *Service) SetResumeName(ctx context.Context, userID, resumeKey, displayName string) error {
	if s == nil || s.Repo == nil {
		return errors.New("users service not configured")
	}
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(resumeKey) == "" {
		return errors.New("user id and resume key are required")
	}
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return errors.New("display name is required")
	}
	return s.Repo.SetResumeName(ctx, userID, resumeKey, displayName)
}
