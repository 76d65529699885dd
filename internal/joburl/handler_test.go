package joburl

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(svc).RegisterRoutes(router.Group("/api"))
	return router
}

func postParse(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/job-url/parse", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestHandlerInvalidURL(t *testing.T) {
	fetcher := &countingFetcher{}
	resp := postParse(newTestRouter(NewService(fetcher, &stubLLM{})), `{"url":"javascript:alert(1)"}`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	if fetcher.calls != 0 {
		t.Fatalf("expected no fetch for invalid url")
	}
}

func TestHandlerRejectsLoopbackURL(t *testing.T) {
	fetcher := &countingFetcher{html: postingHTML}
	resp := postParse(newTestRouter(NewService(fetcher, &stubLLM{})), `{"url":"http://127.0.0.1/jobs/1"}`)
	if resp.Code != http.StatusBadRequest || !strings.Contains(resp.Body.String(), "invalid_url") {
		t.Fatalf("expected 400 invalid_url, got %d %s", resp.Code, resp.Body.String())
	}
	if fetcher.calls != 0 {
		t.Fatalf("expected no fetch for loopback url")
	}
}

func TestHandlerFetchFailureHasDetails(t *testing.T) {
	fetcher := &countingFetcher{err: errors.New("connection refused")}
	resp := postParse(newTestRouter(NewService(fetcher, &stubLLM{})), `{"url":"https://jobs.example.com/1"}`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	var body struct {
		Code    string            `json:"code"`
		Details map[string]string `json:"details"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Code != "job_url_parse_failed" || !strings.Contains(body.Details["reason"], "connection refused") {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestHandlerReturnsPosting(t *testing.T) {
	svc := NewService(&countingFetcher{html: postingHTML}, &stubLLM{reply: `{"title":"Go Engineer","company":"Acme","location":"","description":"Build"}`})
	resp := postParse(newTestRouter(svc), `{"url":"https://jobs.example.com/1"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var posting Posting
	if err := json.Unmarshal(resp.Body.Bytes(), &posting); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if posting.Title != "Go Engineer" || posting.URL != "https://jobs.example.com/1" {
		t.Fatalf("unexpected posting %+v", posting)
	}
}
