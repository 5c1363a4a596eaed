package coverletters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"talexus-backend/internal/llm"
	"talexus-backend/internal/reconcile"
	"talexus-backend/internal/shared/telemetry"
)

// ErrUnavailable indicates the LLM provider is not configured.
var ErrUnavailable = errors.New("cover letter generation unavailable")

// ErrInvalidInput indicates a bad request payload.
var ErrInvalidInput = errors.New("invalid cover letter input")

// ResumeSource supplies the canonical resume feeding the prompt.
type ResumeSource interface {
	Canonical(ctx context.Context, userId, id string) (reconcile.CanonicalResume, error)
}

// Service builds cover letters from a parsed resume and a job description.
type Service struct {
	Resumes ResumeSource
	LLM     llm.Client
}

const systemPrompt = "You are a careful writing assistant. Follow the instructions exactly and only use facts present in the provided resume data."

// Generate renders a plain-text cover letter for the given resume and job.
func (s *Service) Generate(ctx context.Context, userId, resumeID, jobDescription string) (string, error) {
	if strings.TrimSpace(resumeID) == "" {
		return "", fmt.Errorf("%w: resumeId is required", ErrInvalidInput)
	}
	jobDescription = strings.TrimSpace(jobDescription)
	if len(jobDescription) < 40 {
		return "", fmt.Errorf("%w: jobDescription must be at least 40 characters", ErrInvalidInput)
	}
	if s.LLM == nil {
		return "", ErrUnavailable
	}

	resume, err := s.Resumes.Canonical(ctx, userId, resumeID)
	if err != nil {
		return "", fmt.Errorf("load resume: %w", err)
	}

	resumeJSON, err := json.Marshal(resume)
	if err != nil {
		return "", fmt.Errorf("marshal resume: %w", err)
	}

	prompt := strings.NewReplacer(
		"{{RESUME_JSON}}", string(resumeJSON),
		"{{JOB_DESCRIPTION}}", jobDescription,
	).Replace(llm.CoverLetterPromptV1())

	letter, err := s.LLM.Complete(ctx, llm.CompleteInput{System: systemPrompt, Prompt: prompt})
	if err != nil {
		if errors.Is(err, llm.ErrNotImplemented) {
			return "", ErrUnavailable
		}
		telemetry.Error("coverletter.generate_failed", map[string]any{
			"user_id":   userId,
			"resume_id": resumeID,
			"error":     err.Error(),
		})
		return "", fmt.Errorf("generate cover letter: %w", err)
	}
	letter = strings.TrimSpace(letter)
	if letter == "" {
		return "", errors.New("empty cover letter from provider")
	}

	telemetry.Info("coverletter.generated", map[string]any{
		"user_id":   userId,
		"resume_id": resumeID,
		"chars":     len(letter),
	})
	return letter, nil
}
