package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/senank/ashby-screener/internal/ai"
	"github.com/senank/ashby-screener/internal/ashby"
	"github.com/senank/ashby-screener/internal/extract"
	"github.com/senank/ashby-screener/internal/pipeline"
)

const testSecret = "webhook-secret"

type fakeProcessor struct {
	mu     sync.Mutex
	calls  []string
	result *pipeline.Result
	err    error
}

func (f *fakeProcessor) Process(_ context.Context, applicationID string) (*pipeline.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, applicationID)
	if f.err != nil {
		return nil, f.err
	}

	return f.result, nil
}

func (f *fakeProcessor) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.calls)
}

func submitPayload(applicationID string) []byte {
	return []byte(fmt.Sprintf(
		`{"action": "applicationSubmit", "data": {"application": {"id": %q}}}`,
		applicationID,
	))
}

func signedRequest(path string, body []byte) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(signatureHeader, SignBody(testSecret, body))

	return req
}

func newTestServer(runner Processor) *Server {
	return New(runner, testSecret, time.Second, zap.NewNop())
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(&fakeProcessor{})

	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "working!" {
		t.Fatalf("unexpected body: %q", rec.Body.String())
	}
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	runner := &fakeProcessor{}
	s := newTestServer(runner)

	body := submitPayload("app-1")
	req := httptest.NewRequest(http.MethodPost, "/resume_analysis", strings.NewReader(string(body)))
	req.Header.Set(signatureHeader, "sha256=deadbeef")

	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if runner.callCount() != 0 {
		t.Fatal("pipeline must not run for an unsigned delivery")
	}
}

func TestWebhookRejectsMissingSignature(t *testing.T) {
	runner := &fakeProcessor{}
	s := newTestServer(runner)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/resume_analysis", strings.NewReader(`{}`))
	s.echo.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestWebhookAcknowledgesThenRuns(t *testing.T) {
	runner := &fakeProcessor{result: &pipeline.Result{
		ApplicationID: "app-1",
		CandidateName: "Ada Lovelace",
		Assessment:    &ai.Assessment{Score: 82},
	}}
	s := newTestServer(runner)

	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, signedRequest("/resume_analysis", submitPayload("app-1")))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var ack map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &ack); err != nil {
		t.Fatalf("decode ack: %v", err)
	}
	if ack["status"] != "accepted" || ack["run_id"] == "" {
		t.Fatalf("unexpected ack: %v", ack)
	}

	s.runs.Wait()

	if runner.callCount() != 1 {
		t.Fatalf("expected one pipeline run, got %d", runner.callCount())
	}
	if runner.calls[0] != "app-1" {
		t.Fatalf("pipeline ran for %q", runner.calls[0])
	}
}

func TestWebhookIgnoresOtherActions(t *testing.T) {
	runner := &fakeProcessor{}
	s := newTestServer(runner)

	body := []byte(`{"action": "candidateUpdate", "data": {}}`)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, signedRequest("/resume_analysis", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	s.runs.Wait()

	if runner.callCount() != 0 {
		t.Fatal("pipeline must not run for unrelated actions")
	}
}

func TestWebhookRejectsMalformedPayload(t *testing.T) {
	runner := &fakeProcessor{}
	s := newTestServer(runner)

	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, signedRequest("/resume_analysis", []byte(`{"data": {}}`)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestTestWebhookReturnsResult(t *testing.T) {
	runner := &fakeProcessor{result: &pipeline.Result{
		ApplicationID: "app-1",
		CandidateName: "Ada Lovelace",
		JobTitle:      "Software Engineer",
		Assessment:    &ai.Assessment{Score: 82, Summary: "Strong match"},
		FieldValue:    "82/100 - Strong match",
	}}
	s := newTestServer(runner)

	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, signedRequest("/test_ashby_webhook", submitPayload("app-1")))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result["field_value"] != "82/100 - Strong match" {
		t.Fatalf("unexpected result: %v", result)
	}
	if runner.callCount() != 1 {
		t.Fatalf("expected one inline run, got %d", runner.callCount())
	}
}

func TestTestWebhookErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{
			name:   "upstream api failure",
			err:    fmt.Errorf("fetch application: %w", &ashby.APIError{Endpoint: "application.info", StatusCode: 500}),
			status: http.StatusBadGateway,
		},
		{
			name:   "unreadable resume",
			err:    fmt.Errorf("extract resume text: %w", extract.ErrUnsupportedFormat),
			status: http.StatusUnprocessableEntity,
		},
		{
			name:   "model failure",
			err:    fmt.Errorf("grade candidate: %w", ai.ErrInvocation),
			status: http.StatusBadGateway,
		},
		{
			name:   "unexpected failure",
			err:    fmt.Errorf("boom"),
			status: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(&fakeProcessor{err: tt.err})

			rec := httptest.NewRecorder()
			s.echo.ServeHTTP(rec, signedRequest("/test_ashby_webhook", submitPayload("app-1")))

			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestVerifySignature(t *testing.T) {
	body := []byte(`{"action": "applicationSubmit"}`)

	if !verifySignature(testSecret, body, SignBody(testSecret, body)) {
		t.Fatal("expected valid signature to verify")
	}
	if verifySignature(testSecret, body, SignBody("other-secret", body)) {
		t.Fatal("expected wrong secret to fail")
	}
	if verifySignature(testSecret, body, "not-a-signature") {
		t.Fatal("expected unprefixed header to fail")
	}
	if verifySignature(testSecret, body, "") {
		t.Fatal("expected empty header to fail")
	}
	if verifySignature("", body, SignBody("", body)) {
		t.Fatal("expected empty secret to fail")
	}
}
