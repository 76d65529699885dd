package resumes

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"resume-tailor/resume/model"
)

var resumeColumnNames = []string{
	"id", "user_id", "title", "raw_text", "contact", "summary", "experience", "education", "skills",
	"current_content", "original_content", "parse_source", "file_name", "content_type", "size_bytes",
	"storage_bucket", "storage_key", "thumbnail_key", "last_optimized", "created_at", "updated_at",
}

func TestPGRepoGetByIDScansStructuredColumns(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer sqlDB.Close()
	repo := &PGRepo{DB: sqlDB}

	ts := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("FROM resumes WHERE id = $1 AND user_id = $2")).
		WithArgs("resume-1", "user-1").
		WillReturnRows(sqlmock.NewRows(resumeColumnNames).AddRow(
			"resume-1", "user-1", "Jane Doe", "raw",
			[]byte(`{"name":"Jane Doe","email":"jane@example.com"}`), "Engineer",
			[]byte(`[{"title":"Dev","company":"Acme","bullets":["Shipped"]}]`), []byte(`[]`), []byte(`["Go"]`),
			[]byte(`{"summary":"Engineer"}`), nil, "ai", "jane.pdf", "application/pdf", int64(2048),
			"resumes", "u/abc_jane.pdf", nil, ts, ts, ts,
		))

	res, err := repo.GetByID(context.Background(), "user-1", "resume-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if res.Data.Contact.Email != "jane@example.com" || len(res.Data.Experience) != 1 || res.Data.Skills[0] != "Go" {
		t.Fatalf("structured columns not decoded: %+v", res.Data)
	}
	if res.Data.Education == nil {
		t.Fatalf("expected normalized empty education slice")
	}
	if res.ThumbnailKey != "" || res.LastOptimized == nil || res.Original() != nil {
		t.Fatalf("unexpected nullable columns: %+v", res)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer sqlDB.Close()
	repo := &PGRepo{DB: sqlDB}

	mock.ExpectQuery(regexp.QuoteMeta("FROM resumes WHERE id = $1 AND user_id = $2")).
		WithArgs("resume-1", "user-2").
		WillReturnRows(sqlmock.NewRows(resumeColumnNames))

	if _, err := repo.GetByID(context.Background(), "user-2", "resume-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoCreateWritesJSONColumns(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer sqlDB.Close()
	repo := &PGRepo{DB: sqlDB}

	ts := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	res := Resume{
		ID: "resume-1", UserID: "user-1", Title: "Jane", RawText: "raw", ParseSource: "rules",
		FileName: "jane.docx", ContentType: "application/msword", SizeBytes: 10, StorageKey: "k",
		CreatedAt: ts, UpdatedAt: ts,
	}
	if err := res.setContent(model.ResumeData{Contact: model.Contact{Name: "Jane"}, Skills: []string{"Go"}}); err != nil {
		t.Fatalf("setContent: %v", err)
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO resumes")).
		WithArgs(
			"resume-1", "user-1", "Jane", "raw",
			[]byte(`{"name":"Jane","email":"","phone":"","location":"","linkedin":"","website":""}`), "",
			[]byte(`[]`), []byte(`[]`), []byte(`["Go"]`),
			sqlmock.AnyArg(), nil, "rules", "jane.docx", "application/msword", int64(10),
			"", "k", nil, ts, ts,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Create(context.Background(), res); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGRepoSetLastOptimizedMissingRow(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer sqlDB.Close()
	repo := &PGRepo{DB: sqlDB}

	at := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE resumes SET last_optimized = $3")).
		WithArgs("resume-1", "user-1", at).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.SetLastOptimized(context.Background(), "user-1", "resume-1", at); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
