package coverletters

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"talexus-backend/internal/llm"
	"talexus-backend/internal/reconcile"
	"talexus-backend/internal/shared/server/middleware"
)

type stubResumes struct {
	resume reconcile.CanonicalResume
	err    error
}

func (s stubResumes) Canonical(ctx context.Context, userId, id string) (reconcile.CanonicalResume, error) {
	if s.err != nil {
		return reconcile.CanonicalResume{}, s.err
	}
	return s.resume, nil
}

type stubLLM struct {
	lastPrompt string
	letter     string
	err        error
}

func (s *stubLLM) ExtractResume(ctx context.Context, input llm.ExtractInput) (json.RawMessage, error) {
	return nil, llm.ErrNotImplemented
}

func (s *stubLLM) Complete(ctx context.Context, input llm.CompleteInput) (string, error) {
	s.lastPrompt = input.Prompt
	if s.err != nil {
		return "", s.err
	}
	return s.letter, nil
}

func setupCoverLetterRouter(t *testing.T, svc *Service) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.Identity())
	api := router.Group("/api/v1")
	NewHandler(svc).RegisterRoutes(api)
	return router
}

func postCoverLetter(t *testing.T, router *gin.Engine, payload map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cover-letters", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Guest-Id", "test-guest")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestGenerateCoverLetter(t *testing.T) {
	resume := reconcile.EmptyResume()
	resume.ContactInfo.FullName = "Jane Doe"
	resume.Skills = []reconcile.SkillEntry{{Name: "Go"}}

	client := &stubLLM{letter: "Dear Hiring Manager,\n\nI build Go services.\n"}
	svc := &Service{Resumes: stubResumes{resume: resume}, LLM: client}
	router := setupCoverLetterRouter(t, svc)

	resp := postCoverLetter(t, router, map[string]string{
		"resumeId":       "resume-1",
		"jobDescription": strings.Repeat("Backend engineer role. ", 5),
	})

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var body struct {
		CoverLetter string `json:"coverLetter"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !strings.Contains(body.CoverLetter, "Go services") {
		t.Fatalf("unexpected letter: %q", body.CoverLetter)
	}

	if !strings.Contains(client.lastPrompt, `"Jane Doe"`) {
		t.Fatalf("expected resume JSON in prompt, got: %s", client.lastPrompt)
	}
	if !strings.Contains(client.lastPrompt, "Backend engineer role.") {
		t.Fatalf("expected job description in prompt")
	}
	if strings.Contains(client.lastPrompt, "{{RESUME_JSON}}") || strings.Contains(client.lastPrompt, "{{JOB_DESCRIPTION}}") {
		t.Fatalf("prompt placeholders left unresolved")
	}
}

func TestGenerateCoverLetterShortJobDescription(t *testing.T) {
	svc := &Service{Resumes: stubResumes{resume: reconcile.EmptyResume()}, LLM: &stubLLM{letter: "x"}}
	router := setupCoverLetterRouter(t, svc)

	resp := postCoverLetter(t, router, map[string]string{
		"resumeId":       "resume-1",
		"jobDescription": "too short",
	})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}

func TestGenerateCoverLetterUnavailable(t *testing.T) {
	svc := &Service{Resumes: stubResumes{resume: reconcile.EmptyResume()}, LLM: llm.PlaceholderClient{}}
	router := setupCoverLetterRouter(t, svc)

	resp := postCoverLetter(t, router, map[string]string{
		"resumeId":       "resume-1",
		"jobDescription": strings.Repeat("Backend engineer role. ", 5),
	})
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", resp.Code)
	}
}

func TestGenerateCoverLetterMissingResumeID(t *testing.T) {
	svc := &Service{Resumes: stubResumes{resume: reconcile.EmptyResume()}, LLM: &stubLLM{letter: "x"}}
	router := setupCoverLetterRouter(t, svc)

	resp := postCoverLetter(t, router, map[string]string{
		"jobDescription": strings.Repeat("Backend engineer role. ", 5),
	})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}
