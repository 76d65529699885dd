package applications

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestRouter(svc *Service, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("userId", userID)
		c.Next()
	})
	NewHandler(svc).RegisterRoutes(router.Group("/api"))
	return router
}

func TestCreateAndFetchApplication(t *testing.T) {
	svc := NewService(NewMemoryRepo(), ownership{"resume-1": "user-1"})
	router := newTestRouter(svc, "user-1")

	body, _ := json.Marshal(validInput())
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/resumes/applications", bytes.NewReader(body)))
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var created JobApplication
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Status != StatusDraft {
		t.Fatalf("expected DRAFT, got %s", created.Status)
	}

	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/resumes/applications/"+created.ID, nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/resumes/applications?resumeId=resume-1", nil))
	var list struct {
		Applications []JobApplication `json:"applications"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list.Applications) != 1 {
		t.Fatalf("expected 1 application, got %d", len(list.Applications))
	}
}

func TestCreateApplicationValidation(t *testing.T) {
	svc := NewService(NewMemoryRepo(), ownership{"resume-1": "user-1"})
	router := newTestRouter(svc, "user-1")

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/resumes/applications", bytes.NewReader([]byte(`{"resumeId":"resume-1"}`))))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}

	body, _ := json.Marshal(validInput())
	resp = httptest.NewRecorder()
	newTestRouter(svc, "user-2").ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/resumes/applications", bytes.NewReader(body)))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign resume, got %d", resp.Code)
	}
}

func TestGetApplicationOfOtherUserIs404(t *testing.T) {
	svc := NewService(NewMemoryRepo(), ownership{"resume-1": "user-1"})
	body, _ := json.Marshal(validInput())
	resp := httptest.NewRecorder()
	newTestRouter(svc, "user-1").ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/resumes/applications", bytes.NewReader(body)))
	var created JobApplication
	_ = json.Unmarshal(resp.Body.Bytes(), &created)

	resp = httptest.NewRecorder()
	newTestRouter(svc, "user-2").ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/resumes/applications/"+created.ID, nil))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}
