package fsops

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMoveSameFilesystem(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.mkv")
	dst := filepath.Join(dir, "nested", "dst.mkv")

	if err := os.WriteFile(src, []byte("payload"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := Move(src, dst); err != nil {
		t.Fatalf("Move failed: %v", err)
	}

	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Errorf("source still exists after move: %v", err)
	}
	content, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("destination missing: %v", err)
	}
	if string(content) != "payload" {
		t.Errorf("destination content = %q, want %q", content, "payload")
	}
}

func TestMoveCreatesDestinationDirectories(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.mkv")
	dst := filepath.Join(dir, "a", "b", "c", "dst.mkv")
	os.WriteFile(src, []byte("x"), 0o644)

	if err := Move(src, dst); err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if _, err := os.Stat(dst); err != nil {
		t.Errorf("destination not created: %v", err)
	}
}

func TestMoveMissingSourceFails(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "does-not-exist.mkv")
	dst := filepath.Join(dir, "dst.mkv")

	if err := Move(src, dst); err == nil {
		t.Error("expected error moving a nonexistent source")
	}
}

func TestNextAvailablePathNoCollision(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file.mkv")
	if got := NextAvailablePath(path); got != path {
		t.Errorf("NextAvailablePath = %q, want %q (no collision)", got, path)
	}
}

func TestNextAvailablePathIncrementsSuffix(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file.mkv")
	os.WriteFile(path, []byte("a"), 0o644)
	os.WriteFile(filepath.Join(dir, "file (copy 1).mkv"), []byte("b"), 0o644)

	got := NextAvailablePath(path)
	want := filepath.Join(dir, "file (copy 2).mkv")
	if got != want {
		t.Errorf("NextAvailablePath = %q, want %q", got, want)
	}
}

func TestCopyFileCopiesFullContent(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.mkv")
	dst := filepath.Join(dir, "dst.mkv")
	if err := os.WriteFile(src, []byte("0123456789"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := copyFile(src, dst); err != nil {
		t.Fatalf("copyFile failed: %v", err)
	}
	content, err := os.ReadFile(dst)
	if err != nil || string(content) != "0123456789" {
		t.Errorf("copied content = %q, err %v", content, err)
	}
}
