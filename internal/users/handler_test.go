package users

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"talexus-backend/internal/shared/server/middleware"
)

func setupUsersRouter(t *testing.T) (*gin.Engine, *MemoryRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := NewMemoryRepo()
	handler := NewHandler(NewService(repo))

	router := gin.New()
	router.Use(middleware.Identity())
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)

	return router, repo
}

func addUserHeaders(req *http.Request) {
	req.Header.Set("X-User-Id", "user-1")
	req.Header.Set("X-User-Email", "jane@example.com")
	req.Header.Set("X-User-Name", "Jane Doe")
}

func TestSyncMeUpsertsUser(t *testing.T) {
	router, repo := setupUsersRouter(t)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/me", nil)
	addUserHeaders(req)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	user, err := repo.GetByID(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if user.Email != "jane@example.com" {
		t.Fatalf("expected email jane@example.com, got %q", user.Email)
	}
	if user.FullName != "Jane Doe" {
		t.Fatalf("expected full name Jane Doe, got %q", user.FullName)
	}
}

func TestMeReturnsStoredUser(t *testing.T) {
	router, repo := setupUsersRouter(t)

	if err := repo.Upsert(context.Background(), User{ID: "user-1", Email: "jane@example.com", FullName: "Jane Doe"}); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	addUserHeaders(req)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var body struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.ID != "user-1" || body.Email != "jane@example.com" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestMeRejectsGuests(t *testing.T) {
	router, _ := setupUsersRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("X-Guest-Id", "test-guest")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", resp.Code)
	}
}

func TestMeNotFound(t *testing.T) {
	router, _ := setupUsersRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	addUserHeaders(req)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.Code)
	}
}

func TestRenameResume(t *testing.T) {
	router, repo := setupUsersRouter(t)

	body, err := json.Marshal(map[string]string{"displayName": "Backend Resume"})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req := httptest.NewRequest(http.MethodPut, "/api/v1/resumes/resume-123/name", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Guest-Id", "test-guest")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	names, err := repo.ResumeNames(context.Background(), "guest:test-guest")
	if err != nil {
		t.Fatalf("resume names: %v", err)
	}
	if names["resume-123"] != "Backend Resume" {
		t.Fatalf("expected display name stored, got %+v", names)
	}
}

func TestRenameResumeRequiresName(t *testing.T) {
	router, _ := setupUsersRouter(t)

	body, err := json.Marshal(map[string]string{"displayName": "   "})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req := httptest.NewRequest(http.MethodPut, "/api/v1/resumes/resume-123/name", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	addUserHeaders(req)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}

func TestSetResumeNameValidation(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	if err := svc.SetResumeName(context.Background(), "user-1", "", "Name"); err == nil {
		t.Fatalf("expected error for empty resume key")
	}
	if err := svc.SetResumeName(context.Background(), "user-1", "resume-1", "  "); err == nil {
		t.Fatalf("expected error for empty display name")
	}
	if err := svc.SetResumeName(context.Background(), "user-1", "resume-1", "  My Resume  "); err != nil {
		t.Fatalf("set resume name: %v", err)
	}
	names, err := svc.ResumeNames(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("resume names: %v", err)
	}
	if names["resume-1"] != "My Resume" {
		t.Fatalf("expected trimmed name, got %+v", names)
	}
}
