package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestStudyDir(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 5, 7, 0, time.UTC)
	got := StudyDir("/proj", "Coffee Study!", at)
	want := filepath.Join("/proj", ".conjoint", "studies", "Coffee-Study_20260301-090507")
	if got != want {
		t.Errorf("StudyDir() = %q, want %q", got, want)
	}
}

func TestEnsureStudyDir(t *testing.T) {
	root := t.TempDir()
	dir, err := EnsureStudyDir(root, "", time.Now())
	if err != nil {
		t.Fatalf("EnsureStudyDir() error = %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Fatalf("study dir not created: %v", err)
	}
	if !strings.HasPrefix(filepath.Base(dir), "study_") {
		t.Errorf("empty name should fall back to study slug, got %q", filepath.Base(dir))
	}
}

func TestNewRunID(t *testing.T) {
	a, b := NewRunID("d"), NewRunID("d")
	if a == b {
		t.Errorf("NewRunID() returned duplicate %q", a)
	}
	if !strings.HasPrefix(a, "d-") || len(a) != 10 {
		t.Errorf("NewRunID() = %q, want d-<8 chars>", a)
	}
}

func TestEnsureStudyDir_SameSecond(t *testing.T) {
	root := t.TempDir()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.Local)

	var dirs []string
	for range 3 {
		dir, err := EnsureStudyDir(root, "coffee", at)
		if err != nil {
			t.Fatalf("EnsureStudyDir() error = %v", err)
		}
		dirs = append(dirs, filepath.Base(dir))
	}
	want := []string{"coffee_20260301-120000", "coffee_20260301-120000_2", "coffee_20260301-120000_3"}
	for i := range want {
		if dirs[i] != want[i] {
			t.Errorf("dir %d = %q, want %q", i, dirs[i], want[i])
		}
	}

	folders, err := ListStudyFolders(root)
	if err != nil {
		t.Fatalf("ListStudyFolders() error = %v", err)
	}
	if len(folders) != 3 {
		t.Fatalf("ListStudyFolders() found %d folders, want 3", len(folders))
	}
	for _, f := range folders {
		if f.Study != "coffee" || !f.CreatedAt.Equal(at) {
			t.Errorf("folder %s parsed as %q at %v", filepath.Base(f.Path), f.Study, f.CreatedAt)
		}
	}
}
