package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, key := range []string{"ENV", "PORT", "OBJECT_STORE", "LLM_PROVIDER", "FREE_MONTHLY_RESUMES", "LLM_TIMEOUT_SECONDS"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.Env != "dev" {
		t.Fatalf("expected dev env, got %q", cfg.Env)
	}
	if cfg.Port != "8080" {
		t.Fatalf("expected port 8080, got %q", cfg.Port)
	}
	if cfg.ObjectStoreType != "local" {
		t.Fatalf("expected local store, got %q", cfg.ObjectStoreType)
	}
	if cfg.FreeMonthlyResumes != 3 {
		t.Fatalf("expected free limit 3, got %d", cfg.FreeMonthlyResumes)
	}
	if cfg.LLMTimeout != 60*time.Second {
		t.Fatalf("unexpected llm timeout %s", cfg.LLMTimeout)
	}
	if cfg.SessionCookieName != "session_token" {
		t.Fatalf("unexpected cookie name %q", cfg.SessionCookieName)
	}
}

func TestLoadReadsDotEnvWithoutOverriding(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	content := "PORT=9090\nSTRIPE_PRICE_ID=price_from_file\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv("PORT", "7070")
	t.Setenv("STRIPE_PRICE_ID", "")
	os.Unsetenv("STRIPE_PRICE_ID")

	cfg := Load()
	if cfg.Port != "7070" {
		t.Fatalf("expected environment to win, got %q", cfg.Port)
	}
	if cfg.StripePriceID != "price_from_file" {
		t.Fatalf("expected value from .env, got %q", cfg.StripePriceID)
	}
}

func TestNormalizers(t *testing.T) {
	cases := []struct {
		fn   func(string) string
		in   string
		want string
	}{
		{normalizeEnv, "PROD", "production"},
		{normalizeEnv, "development", "dev"},
		{normalizeEnv, "local", "local"},
		{normalizeStoreType, "S3", "s3"},
		{normalizeStoreType, "supabase", "supabase"},
		{normalizeStoreType, "disk", "local"},
		{normalizeProvider, "Google", "gemini"},
		{normalizeProvider, "openai", "openai"},
		{normalizeProvider, "", "none"},
	}
	for _, tc := range cases {
		if got := tc.fn(tc.in); got != tc.want {
			t.Fatalf("normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSplitAndTrim(t *testing.T) {
	got := splitAndTrim(" http://a.test , ,http://b.test")
	want := []string{"http://a.test", "http://b.test"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("splitAndTrim = %v, want %v", got, want)
	}
}

func TestGetEnvIntInvalidFallsBack(t *testing.T) {
	t.Setenv("FREE_MONTHLY_RESUMES", "three")
	if got := getEnvInt("FREE_MONTHLY_RESUMES", 3); got != 3 {
		t.Fatalf("expected default on invalid int, got %d", got)
	}
}
