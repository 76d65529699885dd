package resumes

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"resume-tailor/internal/analysis"
	"resume-tailor/internal/applications"
	"resume-tailor/internal/events"
	"resume-tailor/internal/parse"
	"resume-tailor/internal/shared/storage/object/local"
	"resume-tailor/internal/tailoring"
	"resume-tailor/internal/thumbnail"
	"resume-tailor/internal/users"
)

var errModelDown = errors.New("model unavailable")

// funcLLM answers every prompt through fn.
type funcLLM func(prompt string) (string, error)

func (f funcLLM) Complete(_ context.Context, prompt string) (string, error) {
	return f(prompt)
}

func failingLLM() funcLLM {
	return func(string) (string, error) { return "", errModelDown }
}

type fakeThumbnails struct {
	png []byte
	err error
}

func (f fakeThumbnails) Render(context.Context, thumbnail.Input) ([]byte, error) {
	return f.png, f.err
}

type testEnv struct {
	svc    *Service
	repo   *MemoryRepo
	users  *users.Service
	events *events.Recorder
}

func newTestEnv(t *testing.T, completer funcLLM) testEnv {
	t.Helper()
	repo := NewMemoryRepo()
	userSvc := users.NewService(users.NewMemoryRepo(), users.DefaultFreeMonthlyLimit)
	recorder := &events.Recorder{}
	svc := &Service{
		Repo:       repo,
		Store:      local.New(t.TempDir()),
		Quota:      UserQuota{Users: userSvc},
		Parser:     parse.NewService(completer),
		Analysis:   analysis.NewService(completer),
		Tailorer:   tailoring.Tailorer{LLM: completer},
		Thumbnails: fakeThumbnails{png: []byte("\x89PNG-test")},
		Events:     recorder,
		Now:        func() time.Time { return time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC) },
	}
	svc.Applications = applications.NewService(applications.NewMemoryRepo(), svc)
	return testEnv{svc: svc, repo: repo, users: userSvc, events: recorder}
}

func (e testEnv) addUser(t *testing.T, id string) {
	t.Helper()
	if _, err := e.users.UpsertFromAuth(context.Background(), users.User{ID: id, Email: id + "@example.com"}); err != nil {
		t.Fatalf("upsert user: %v", err)
	}
}

func (e testEnv) upload(t *testing.T, userID string) Resume {
	t.Helper()
	data := buildDocx(t, sampleParagraphs...)
	res, err := e.svc.Upload(context.Background(), userID, UploadInput{
		FileName:    "jane.docx",
		ContentType: "application/octet-stream",
		Size:        int64(len(data)),
		Body:        bytes.NewReader(data),
	})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	return res
}

var sampleParagraphs = []string{
	"Jane Doe",
	"jane@example.com | (512) 555-0134",
	"SUMMARY",
	"Backend engineer building reliable services.",
	"SKILLS",
	"Go, SQL, Docker",
}

func buildDocx(t *testing.T, paragraphs ...string) []byte {
	t.Helper()
	var body strings.Builder
	for _, p := range paragraphs {
		fmt.Fprintf(&body, `<w:p><w:r><w:t>%s</w:t></w:r></w:p>`, p)
	}
	files := map[string]string{
		"[Content_Types].xml":          `<?xml version="1.0" encoding="UTF-8"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"></Types>`,
		"word/_rels/document.xml.rels": `<?xml version="1.0" encoding="UTF-8"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`,
		"word/document.xml": `<?xml version="1.0" encoding="UTF-8"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
			body.String() + `</w:body></w:document>`,
	}
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}
