package pathutil

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestConfine(t *testing.T) {
	root := t.TempDir()
	other := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "studies"), 0700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	tests := []struct {
		name        string
		path        string
		extra       []string
		want        string
		wantErr     bool
		errContains string
	}{
		{
			name: "relative file under root",
			path: "study.yaml",
			want: filepath.Join(root, "study.yaml"),
		},
		{
			name: "relative file in subdirectory",
			path: filepath.Join("studies", "phones.json"),
			want: filepath.Join(root, "studies", "phones.json"),
		},
		{
			name: "absolute file under root",
			path: filepath.Join(root, "study.toml"),
			want: filepath.Join(root, "study.toml"),
		},
		{
			name: "missing intermediate directories",
			path: filepath.Join("a", "b", "study.yaml"),
			want: filepath.Join(root, "a", "b", "study.yaml"),
		},
		{
			name:    "dot-dot escape",
			path:    filepath.Join("..", "etc", "passwd"),
			wantErr: true,
		},
		{
			name:    "embedded dot-dot escape",
			path:    filepath.Join("studies", "..", "..", "study.yaml"),
			wantErr: true,
		},
		{
			name:    "absolute path elsewhere",
			path:    filepath.Join(other, "study.yaml"),
			wantErr: true,
		},
		{
			name:  "absolute path in extra root",
			path:  filepath.Join(other, "study.yaml"),
			extra: []string{other},
			want:  filepath.Join(other, "study.yaml"),
		},
		{
			name:        "empty path",
			path:        "",
			wantErr:     true,
			errContains: "empty",
		},
		{
			name:        "null byte",
			path:        "stu\x00dy.yaml",
			wantErr:     true,
			errContains: "null byte",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Confine(root, tt.path, tt.extra...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Confine() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("Confine() error = %v, want containing %q", err, tt.errContains)
				}
				return
			}
			if got != tt.want {
				t.Errorf("Confine() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConfine_OutsideIsErrOutsideRoot(t *testing.T) {
	_, err := Confine(t.TempDir(), filepath.Join(t.TempDir(), "x.yaml"))
	if !errors.Is(err, ErrOutsideRoot) {
		t.Fatalf("error = %v, want ErrOutsideRoot", err)
	}
}

func TestConfine_Symlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on Windows")
	}

	root := t.TempDir()
	outside := t.TempDir()
	inside := filepath.Join(root, "real")
	if err := os.MkdirAll(inside, 0700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.Symlink(outside, filepath.Join(root, "escape")); err != nil {
		t.Fatalf("symlink: %v", err)
	}
	if err := os.Symlink(inside, filepath.Join(root, "link")); err != nil {
		t.Fatalf("symlink: %v", err)
	}

	if _, err := Confine(root, filepath.Join("escape", "study.yaml")); !errors.Is(err, ErrOutsideRoot) {
		t.Errorf("symlink escape: error = %v, want ErrOutsideRoot", err)
	}
	if _, err := Confine(root, filepath.Join("link", "study.yaml")); err != nil {
		t.Errorf("symlink inside root: unexpected error %v", err)
	}
}

func TestRedactPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/home/user/.conjoint/conjoint.db", ".../.conjoint/conjoint.db"},
		{"/study.yaml", "study.yaml"},
		{"study.yaml", "study.yaml"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := RedactPath(tt.path); got != tt.want {
			t.Errorf("RedactPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
