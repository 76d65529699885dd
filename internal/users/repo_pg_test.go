package users

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

var userColumnNames = []string{
	"id", "email", "name", "image", "plan", "resumes_created", "monthly_resumes_created", "last_reset_date",
	"stripe_customer_id", "stripe_subscription_id", "stripe_price_id", "stripe_current_period_end",
	"created_at", "updated_at",
}

func userRow(lastReset time.Time, monthly int) *sqlmock.Rows {
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return sqlmock.NewRows(userColumnNames).AddRow(
		"google:1", "a@example.com", "Ada", nil, "FREE", 5, monthly, lastReset,
		nil, nil, nil, nil, created, created,
	)
}

func TestPGRepoIncrementResetsAcrossMonth(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer sqlDB.Close()
	repo := &PGRepo{DB: sqlDB}

	lastReset := time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 2, 2, 8, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM users WHERE id = \$1 FOR UPDATE`).
		WithArgs("google:1").
		WillReturnRows(userRow(lastReset, 3))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET resumes_created = $2, monthly_resumes_created = $3")).
		WithArgs("google:1", 6, 1, now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	user, err := repo.IncrementResumeCount(context.Background(), "google:1", now)
	if err != nil {
		t.Fatalf("IncrementResumeCount: %v", err)
	}
	if user.MonthlyResumesCreated != 1 || user.ResumesCreated != 6 {
		t.Fatalf("unexpected counters %+v", user)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGRepoResetIfNewMonthSkipsWriteMidMonth(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer sqlDB.Close()
	repo := &PGRepo{DB: sqlDB}

	lastReset := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).WithArgs("google:1").WillReturnRows(userRow(lastReset, 2))
	mock.ExpectCommit()

	user, err := repo.ResetIfNewMonth(context.Background(), "google:1", lastReset.AddDate(0, 0, 20))
	if err != nil {
		t.Fatalf("ResetIfNewMonth: %v", err)
	}
	if user.MonthlyResumesCreated != 2 {
		t.Fatalf("expected counter untouched, got %d", user.MonthlyResumesCreated)
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

	mock.ExpectQuery(`FROM users WHERE id = \$1`).WithArgs("nope").WillReturnRows(sqlmock.NewRows(userColumnNames))

	if _, err := repo.GetByID(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoUpsertReturnsStoredRow(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer sqlDB.Close()
	repo := &PGRepo{DB: sqlDB}

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("google:1", "a@example.com", "Ada", nil).
		WillReturnRows(userRow(time.Now().UTC(), 0))

	user, err := repo.Upsert(context.Background(), User{ID: "google:1", Email: "a@example.com", Name: "Ada"})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if user.Plan != PlanFree || user.ResumesCreated != 5 {
		t.Fatalf("unexpected user %+v", user)
	}
}
