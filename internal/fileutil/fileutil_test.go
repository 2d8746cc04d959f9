package fileutil_test

// Notes:
// - Write, Sync and Close failures inside Stage are not tested: triggering
//   them needs a full or faulty filesystem.
// - Permission-based failures are skipped when running as root.

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/alnah/go-webembed/internal/fileutil"
)

// listDir returns the names of the entries of dir.
func listDir(t *testing.T, dir string) []string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

// ---------------------------------------------------------------------------
// TestStage - Staged writes
// ---------------------------------------------------------------------------

func TestStage_CommitReplacesTarget(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	target := filepath.Join(dir, "client.h")
	if err := os.WriteFile(target, []byte("old"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	staged, err := fileutil.Stage(target, []byte("new"))
	if err != nil {
		t.Fatalf("Stage() error: %v", err)
	}

	// Target untouched until commit
	if got, _ := os.ReadFile(target); string(got) != "old" {
		t.Errorf("target changed before Commit: %q", got)
	}

	if err := staged.Commit(); err != nil {
		t.Fatalf("Commit() error: %v", err)
	}
	if got, _ := os.ReadFile(target); string(got) != "new" {
		t.Errorf("target = %q, want %q", got, "new")
	}
	if names := listDir(t, dir); len(names) != 1 {
		t.Errorf("temp files left behind: %v", names)
	}

	if err := staged.Commit(); !errors.Is(err, fileutil.ErrStaged) {
		t.Errorf("second Commit() error = %v, want ErrStaged", err)
	}
}

func TestStage_DiscardLeavesNothing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	target := filepath.Join(dir, "dist.html")

	staged, err := fileutil.Stage(target, []byte("<p>x</p>"))
	if err != nil {
		t.Fatalf("Stage() error: %v", err)
	}
	staged.Discard()
	staged.Discard()

	if names := listDir(t, dir); len(names) != 0 {
		t.Errorf("Discard() left files: %v", names)
	}
	if fileutil.FileExists(target) {
		t.Error("target must not exist after Discard")
	}
}

func TestStage_CreatesParentDirectory(t *testing.T) {
	t.Parallel()

	target := filepath.Join(t.TempDir(), "Arduino", "client.h")
	staged, err := fileutil.Stage(target, []byte("const String HTML = \"\";"))
	if err != nil {
		t.Fatalf("Stage() error: %v", err)
	}
	if err := staged.Commit(); err != nil {
		t.Fatalf("Commit() error: %v", err)
	}

	got, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.HasPrefix(string(got), "const String") {
		t.Errorf("content = %q", got)
	}

	if runtime.GOOS != "windows" {
		info, _ := os.Stat(target)
		if info.Mode().Perm() != 0o644 {
			t.Errorf("mode = %v, want 0644", info.Mode().Perm())
		}
	}
}

func TestStage_TargetIsDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	target := filepath.Join(dir, "client.h")
	if err := os.MkdirAll(filepath.Join(target, "keep"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	if _, err := fileutil.Stage(target, []byte("x")); err == nil {
		t.Fatal("Stage() onto a directory should fail")
	}
	if names := listDir(t, dir); len(names) != 1 {
		t.Errorf("temp files left behind: %v", names)
	}
}

func TestStage_CommitFailureKeepsTarget(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	target := filepath.Join(dir, "client.h")
	staged, err := fileutil.Stage(target, []byte("new"))
	if err != nil {
		t.Fatalf("Stage() error: %v", err)
	}
	// The target turns into a directory between staging and commit
	if err := os.MkdirAll(filepath.Join(target, "keep"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	if err := staged.Commit(); err == nil {
		t.Fatal("Commit() onto a directory should fail")
	}
	if err := staged.Rollback(); err != nil {
		t.Errorf("Rollback() after failed Commit error: %v", err)
	}
	if info, err := os.Stat(target); err != nil || !info.IsDir() {
		t.Errorf("directory target disturbed: %v", err)
	}
	if names := listDir(t, dir); len(names) != 1 {
		t.Errorf("temp files left behind: %v", names)
	}
}

// ---------------------------------------------------------------------------
// TestStaged_Rollback - undoing a commit
// ---------------------------------------------------------------------------

func TestStaged_Rollback(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		previous *string // nil when the target does not exist yet
	}{
		{name: "restores previous content", previous: ptr("previous html")},
		{name: "restores empty file", previous: ptr("")},
		{name: "removes new target"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			target := filepath.Join(dir, "dist.html")
			if tt.previous != nil {
				if err := os.WriteFile(target, []byte(*tt.previous), 0o644); err != nil {
					t.Fatalf("write: %v", err)
				}
			}

			staged, err := fileutil.Stage(target, []byte("<p>new</p>"))
			if err != nil {
				t.Fatalf("Stage() error: %v", err)
			}
			if err := staged.Commit(); err != nil {
				t.Fatalf("Commit() error: %v", err)
			}
			if err := staged.Rollback(); err != nil {
				t.Fatalf("Rollback() error: %v", err)
			}

			got, err := os.ReadFile(target)
			switch {
			case tt.previous == nil:
				if !errors.Is(err, os.ErrNotExist) {
					t.Errorf("target should be removed, read error = %v", err)
				}
			case err != nil:
				t.Fatalf("read: %v", err)
			case string(got) != *tt.previous:
				t.Errorf("target = %q, want %q", got, *tt.previous)
			}

			// A second rollback is a no-op
			if err := staged.Rollback(); err != nil {
				t.Errorf("second Rollback() error: %v", err)
			}
			if names := listDir(t, dir); len(names) > 1 {
				t.Errorf("temp files left behind: %v", names)
			}
		})
	}
}

func ptr(s string) *string { return &s }

func TestStage_ParentIsFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := fileutil.Stage(filepath.Join(blocker, "client.h"), []byte("x")); err == nil {
		t.Error("Stage() under a regular file should fail")
	}
}

// ---------------------------------------------------------------------------
// TestCheckWritableDir
// ---------------------------------------------------------------------------

func TestCheckWritableDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := fileutil.CheckWritableDir(dir); err != nil {
		t.Errorf("CheckWritableDir(tempdir) error: %v", err)
	}
	if names := listDir(t, dir); len(names) != 0 {
		t.Errorf("check file left behind: %v", names)
	}

	if err := fileutil.CheckWritableDir(filepath.Join(dir, "missing")); err == nil {
		t.Error("CheckWritableDir(missing) should fail")
	}

	file := filepath.Join(dir, "f")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := fileutil.CheckWritableDir(file); err == nil {
		t.Error("CheckWritableDir(file) should fail")
	}
}

func TestCheckWritableDir_ReadOnly(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced here")
	}

	dir := t.TempDir()
	if err := os.Chmod(dir, 0o555); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })

	if err := fileutil.CheckWritableDir(dir); err == nil {
		t.Error("CheckWritableDir(read-only) should fail")
	}
}

// ---------------------------------------------------------------------------
// Path helpers
// ---------------------------------------------------------------------------

func TestFileExists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	tests := []struct {
		name string
		path string
		want bool
	}{
		{"regular file", file, true},
		{"directory", dir, false},
		{"missing", filepath.Join(dir, "nope"), false},
	}

	for _, tt := range tests {
		if got := fileutil.FileExists(tt.path); got != tt.want {
			t.Errorf("FileExists(%s) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestResolvePath(t *testing.T) {
	t.Parallel()

	base := filepath.Join(string(filepath.Separator), "project", "web")

	tests := []struct {
		path string
		want string
	}{
		{"src/main.js", filepath.Join(base, "src", "main.js")},
		{"../Arduino/client.h", filepath.Join(string(filepath.Separator), "project", "Arduino", "client.h")},
		{"dist.html", filepath.Join(base, "dist.html")},
	}

	for _, tt := range tests {
		if got := fileutil.ResolvePath(base, tt.path); got != tt.want {
			t.Errorf("ResolvePath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}

	abs := t.TempDir()
	if got := fileutil.ResolvePath(base, abs+string(filepath.Separator)+"."); got != abs {
		t.Errorf("absolute path not cleaned: %q", got)
	}
}

func TestIsURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want bool
	}{
		{"http://192.168.4.1", true},
		{"https://device.local", true},
		{"192.168.4.1", false},
		{"ftp://x", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := fileutil.IsURL(tt.in); got != tt.want {
			t.Errorf("IsURL(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
