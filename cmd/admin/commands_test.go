package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"resume-tailor/internal/users"
)

func seededUsers(t *testing.T) *users.Service {
	t.Helper()
	svc := users.NewService(users.NewMemoryRepo(), users.DefaultFreeMonthlyLimit)
	if _, err := svc.UpsertFromAuth(t.Context(), users.User{ID: "google:1", Email: "jane@example.com", Name: "Jane"}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return svc
}

func TestSetPlanPromotesUser(t *testing.T) {
	svc := seededUsers(t)
	var out bytes.Buffer
	if err := setPlan(t.Context(), svc, "jane@example.com", "premium", &out); err != nil {
		t.Fatalf("setPlan: %v", err)
	}
	var body struct {
		Usage users.Usage `json:"usage"`
	}
	if err := json.Unmarshal(out.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Usage.Plan != users.PlanPremium || body.Usage.MonthlyLimit != nil {
		t.Fatalf("expected unlimited premium usage, got %+v", body.Usage)
	}
}

func TestSetPlanRejectsUnknownPlan(t *testing.T) {
	svc := seededUsers(t)
	err := setPlan(t.Context(), svc, "jane@example.com", "gold", &bytes.Buffer{})
	if !errors.Is(err, users.ErrInvalidPlan) {
		t.Fatalf("expected ErrInvalidPlan, got %v", err)
	}
}

func TestResetUsageClearsMonthlyCounter(t *testing.T) {
	svc := seededUsers(t)
	for i := 0; i < 3; i++ {
		if _, err := svc.IncrementResumeCount(t.Context(), "google:1"); err != nil {
			t.Fatalf("increment: %v", err)
		}
	}
	if ok, _ := svc.CanCreateResume(t.Context(), "google:1"); ok {
		t.Fatalf("expected quota to be exhausted")
	}

	var out bytes.Buffer
	if err := resetUsage(t.Context(), svc, "jane@example.com", &out); err != nil {
		t.Fatalf("resetUsage: %v", err)
	}
	if ok, _ := svc.CanCreateResume(t.Context(), "google:1"); !ok {
		t.Fatalf("expected quota to be available after reset")
	}
	if !strings.Contains(out.String(), `"monthlyResumesCreated": 0`) {
		t.Fatalf("unexpected output %s", out.String())
	}
}

func TestUnknownEmail(t *testing.T) {
	svc := seededUsers(t)
	err := printUsage(t.Context(), svc, "nobody@example.com", &bytes.Buffer{})
	if !errors.Is(err, users.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
