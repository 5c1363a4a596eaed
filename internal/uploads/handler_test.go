package uploads

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"

	"talexus-backend/internal/shared/server/middleware"
)

func newOfflinePresigner() *s3.PresignClient {
	cfg := aws.Config{
		Region:      "us-east-1",
		Credentials: aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider("AKID", "SECRET", "")),
	}
	return s3.NewPresignClient(s3.NewFromConfig(cfg))
}

func setupUploadsRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api/v1")
	api.Use(middleware.Identity())
	h.RegisterRoutes(api)
	return r
}

func doPresign(t *testing.T, r *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads/presign", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Guest-Id", "test-guest")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestPresignEndpoint(t *testing.T) {
	h := NewHandler(newOfflinePresigner(), "bucket", "documents")
	r := setupUploadsRouter(h)

	resp := doPresign(t, r, `{"fileName":"resume.pdf","contentType":"application/pdf","sizeBytes":1024}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var payload presignResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.UploadURL == "" {
		t.Fatalf("expected uploadUrl")
	}
	if !strings.HasPrefix(payload.S3Key, "documents/guest:test-guest/") {
		t.Fatalf("unexpected s3Key %q", payload.S3Key)
	}
	if !strings.HasSuffix(payload.S3Key, "-resume.pdf") {
		t.Fatalf("expected sanitized file name suffix in %q", payload.S3Key)
	}
	if payload.ExpiresInSeconds != int64(presignExpires.Seconds()) {
		t.Fatalf("expiresInSeconds = %d, want %d", payload.ExpiresInSeconds, int64(presignExpires.Seconds()))
	}

	parsed, err := url.Parse(payload.UploadURL)
	if err != nil {
		t.Fatalf("parse upload url: %v", err)
	}
	if parsed.Query().Get("X-Amz-Signature") == "" {
		t.Fatalf("expected signed url, got %q", payload.UploadURL)
	}
}

func TestPresignRejectsInvalidRequests(t *testing.T) {
	h := NewHandler(newOfflinePresigner(), "bucket", "documents")
	r := setupUploadsRouter(h)

	tests := []struct {
		name string
		body string
	}{
		{name: "missing file name", body: `{"contentType":"application/pdf","sizeBytes":1024}`},
		{name: "disallowed content type", body: `{"fileName":"a.exe","contentType":"application/octet-stream","sizeBytes":1024}`},
		{name: "zero size", body: `{"fileName":"a.pdf","contentType":"application/pdf","sizeBytes":0}`},
		{name: "oversized", body: `{"fileName":"a.pdf","contentType":"application/pdf","sizeBytes":99999999}`},
		{name: "malformed json", body: `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doPresign(t, r, tt.body)
			if resp.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", resp.Code)
			}
		})
	}
}

func TestPresignNotConfigured(t *testing.T) {
	h := NewHandler(nil, "", "")
	if h.Enabled() {
		t.Fatalf("expected handler without presigner to be disabled")
	}
	r := setupUploadsRouter(h)
	resp := doPresign(t, r, `{"fileName":"a.pdf","contentType":"application/pdf","sizeBytes":1024}`)
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.Code)
	}
}

func TestEnabledRequiresBucket(t *testing.T) {
	if NewHandler(newOfflinePresigner(), "", "").Enabled() {
		t.Fatalf("expected handler without bucket to be disabled")
	}
	if !NewHandler(newOfflinePresigner(), "bucket", "").Enabled() {
		t.Fatalf("expected configured handler to be enabled")
	}
}

func TestPresignSignedHeadersExcludeContentLength(t *testing.T) {
	presigner := newOfflinePresigner()

	input := presignInput("bucket", "documents/user/doc/file.pdf")
	out, err := presigner.PresignPutObject(context.Background(), input)
	if err != nil {
		t.Fatalf("presign: %v", err)
	}

	parsed, err := url.Parse(out.URL)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}

	signed := parsed.Query().Get("X-Amz-SignedHeaders")
	if signed == "" {
		t.Fatalf("expected X-Amz-SignedHeaders")
	}
	if strings.Contains(signed, "content-length") {
		t.Fatalf("unexpected content-length in signed headers: %s", signed)
	}
	if !strings.Contains(signed, "host") {
		t.Fatalf("expected host in signed headers: %s", signed)
	}
}
