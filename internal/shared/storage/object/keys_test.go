package object

import (
	"errors"
	"strings"
	"testing"
)

func TestNewUserKeyNamespacesByHashedUser(t *testing.T) {
	key, err := NewUserKey("google:1", "my resume.pdf")
	if err != nil {
		t.Fatalf("NewUserKey: %v", err)
	}
	prefix := UserPrefix("google:1") + "/"
	if !strings.HasPrefix(key, prefix) {
		t.Fatalf("expected key under %s, got %s", prefix, key)
	}
	if !strings.HasSuffix(key, "_my resume.pdf") {
		t.Fatalf("expected sanitized name suffix, got %s", key)
	}

	other, _ := NewUserKey("google:1", "my resume.pdf")
	if other == key {
		t.Fatalf("expected random component to differ")
	}
}

func TestNewUserKeyRejectsTraversal(t *testing.T) {
	if _, err := NewUserKey("u", "../etc/passwd"); !errors.Is(err, ErrInvalidFileName) {
		t.Fatalf("expected ErrInvalidFileName, got %v", err)
	}
}

func TestUserPrefixIsStableHex(t *testing.T) {
	got := UserPrefix("google:12345")
	if got != UserPrefix("google:12345") || len(got) != 64 {
		t.Fatalf("unexpected prefix %q", got)
	}
	if strings.ContainsAny(got, ":/") {
		t.Fatalf("prefix leaks the raw id: %q", got)
	}
}

func TestSafeFileName(t *testing.T) {
	cases := map[string]string{
		"resume.pdf":        "resume.pdf",
		"  spaced.docx ":    "spaced.docx",
		"dir/name.pdf":      "dir_name.pdf",
		`win\path\file.doc`: "win_path_file.doc",
	}
	for in, want := range cases {
		got, err := SafeFileName(in)
		if err != nil || got != want {
			t.Fatalf("SafeFileName(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	for _, bad := range []string{"", "   ", "../secret"} {
		if _, err := SafeFileName(bad); err == nil {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
}

func TestThumbnailKey(t *testing.T) {
	if got := ThumbnailKey("abc/def.pdf"); got != "abc/def.pdf.thumb.png" {
		t.Fatalf("unexpected thumbnail key %s", got)
	}
}
