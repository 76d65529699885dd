package resumes

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestRouter(env testEnv, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("userId", userID)
		c.Next()
	})
	NewHandler(env.svc).RegisterRoutes(router.Group("/api"))
	return router
}

func uploadRequest(t *testing.T, fileName string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/resumes/upload", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func decodeError(t *testing.T, resp *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return payload
}

func TestUploadHandlerRejectsOversizedFile(t *testing.T) {
	env := newTestEnv(t, failingLLM())
	env.addUser(t, "user-1")
	router := newTestRouter(env, "user-1")

	data := append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte("a"), MaxUploadBytes)...)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, uploadRequest(t, "big.pdf", data))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", resp.Code, resp.Body.String())
	}
	if code := decodeError(t, resp)["code"]; code != "file_too_large" {
		t.Fatalf("unexpected code %v", code)
	}
	if items, _ := env.repo.ListByUser(t.Context(), "user-1"); len(items) != 0 {
		t.Fatalf("expected no resume rows, got %d", len(items))
	}
}

func TestUploadHandlerRejectsUnsupportedType(t *testing.T) {
	env := newTestEnv(t, failingLLM())
	env.addUser(t, "user-1")
	router := newTestRouter(env, "user-1")

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, uploadRequest(t, "notes.txt", []byte("just some notes")))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	if code := decodeError(t, resp)["code"]; code != "unsupported_file_type" {
		t.Fatalf("unexpected code %v", code)
	}
	if items, _ := env.repo.ListByUser(t.Context(), "user-1"); len(items) != 0 {
		t.Fatalf("expected no resume rows, got %d", len(items))
	}
}

func TestUploadHandlerQuotaExceeded(t *testing.T) {
	env := newTestEnv(t, failingLLM())
	env.addUser(t, "user-1")
	for i := 0; i < 3; i++ {
		if _, err := env.users.IncrementResumeCount(t.Context(), "user-1"); err != nil {
			t.Fatalf("increment: %v", err)
		}
	}
	router := newTestRouter(env, "user-1")

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, uploadRequest(t, "resume.docx", buildDocx(t, sampleParagraphs...)))

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.Code)
	}
	if code := decodeError(t, resp)["code"]; code != "quota_exceeded" {
		t.Fatalf("unexpected code %v", code)
	}
}

func TestUploadHandlerCreatesResume(t *testing.T) {
	env := newTestEnv(t, failingLLM())
	env.addUser(t, "user-1")
	router := newTestRouter(env, "user-1")

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, uploadRequest(t, "resume.docx", buildDocx(t, sampleParagraphs...)))
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var created resumeResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.ID == "" || created.ParseSource != "rules" || !created.HasThumbnail {
		t.Fatalf("unexpected response %+v", created)
	}

	listResp := httptest.NewRecorder()
	router.ServeHTTP(listResp, httptest.NewRequest(http.MethodGet, "/api/resumes", nil))
	if listResp.Code != http.StatusOK || !strings.Contains(listResp.Body.String(), created.ID) {
		t.Fatalf("expected resume in list: %d %s", listResp.Code, listResp.Body.String())
	}

	fileResp := httptest.NewRecorder()
	router.ServeHTTP(fileResp, httptest.NewRequest(http.MethodGet, "/api/resumes/"+created.ID+"/pdf", nil))
	if fileResp.Code != http.StatusOK || !bytes.HasPrefix(fileResp.Body.Bytes(), []byte("PK")) {
		t.Fatalf("expected stored file, got %d", fileResp.Code)
	}

	thumbResp := httptest.NewRecorder()
	router.ServeHTTP(thumbResp, httptest.NewRequest(http.MethodGet, "/api/resumes/"+created.ID+"/thumbnail", nil))
	if thumbResp.Code != http.StatusOK || thumbResp.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("expected png thumbnail, got %d %q", thumbResp.Code, thumbResp.Header().Get("Content-Type"))
	}
}

func TestResumeRoutesHideOtherUsersResumes(t *testing.T) {
	env := newTestEnv(t, failingLLM())
	env.addUser(t, "user-1")
	res := env.upload(t, "user-1")
	router := newTestRouter(env, "user-2")

	for _, path := range []string{"/api/resumes/" + res.ID, "/api/resumes/" + res.ID + "/pdf", "/api/resumes/" + res.ID + "/url"} {
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, path, nil))
		if resp.Code != http.StatusNotFound {
			t.Fatalf("%s: expected 404, got %d", path, resp.Code)
		}
	}
}

func TestAnalyzeHandler(t *testing.T) {
	env := newTestEnv(t, failingLLM())
	env.addUser(t, "user-1")
	res := env.upload(t, "user-1")
	router := newTestRouter(env, "user-1")

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/resumes/"+res.ID+"/analyze", nil))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without application, got %d", resp.Code)
	}
	if code := decodeError(t, resp)["code"]; code != "no_application" {
		t.Fatalf("unexpected code %v", code)
	}

	body := `{"jobTitle":"Backend Engineer","company":"Acme","jobDescription":"Go services"}`
	req := httptest.NewRequest(http.MethodPost, "/api/resumes/"+res.ID+"/analyze", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var out struct {
		Application struct {
			Status string `json:"status"`
		} `json:"application"`
		Analysis struct {
			MatchScore int    `json:"matchScore"`
			Source     string `json:"source"`
		} `json:"analysis"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Application.Status != "OPTIMIZED" || out.Analysis.Source != "example" {
		t.Fatalf("unexpected analyze response %+v", out)
	}
}

func TestTailorHandlerFailureIs500(t *testing.T) {
	env := newTestEnv(t, failingLLM())
	env.addUser(t, "user-1")
	res := env.upload(t, "user-1")
	router := newTestRouter(env, "user-1")

	req := httptest.NewRequest(http.MethodPost, "/api/resumes/"+res.ID+"/tailor",
		strings.NewReader(`{"jobTitle":"Engineer","jobDescription":"Build things"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
	if code := decodeError(t, resp)["code"]; code != "tailor_failed" {
		t.Fatalf("unexpected code %v", code)
	}
}
