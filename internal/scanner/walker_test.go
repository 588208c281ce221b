package scanner

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func TestWalkerDirs(t *testing.T) {
	// Create temp directory structure
	tmp := t.TempDir()

	os.MkdirAll(filepath.Join(tmp, "a", "b"), 0755)
	os.MkdirAll(filepath.Join(tmp, "c"), 0755)
	os.WriteFile(filepath.Join(tmp, "file1.txt"), []byte("hello"), 0644)
	os.WriteFile(filepath.Join(tmp, "a", "file2.txt"), []byte("world!"), 0644)

	w := NewWalker(4)
	dirs, err := w.Dirs(context.Background(), tmp)
	if err != nil {
		t.Fatalf("walk failed: %v", err)
	}

	absTmp, _ := filepath.Abs(tmp)
	if len(dirs) == 0 || dirs[0] != absTmp {
		t.Fatalf("expected root first, got %v", dirs)
	}

	rest := append([]string(nil), dirs[1:]...)
	sort.Strings(rest)
	want := []string{
		filepath.Join(absTmp, "a"),
		filepath.Join(absTmp, "a", "b"),
		filepath.Join(absTmp, "c"),
	}
	if len(rest) != len(want) {
		t.Fatalf("expected %d subdirectories, got %v", len(want), rest)
	}
	for i := range want {
		if rest[i] != want[i] {
			t.Errorf("expected %s, got %s", want[i], rest[i])
		}
	}
}

func TestWalkerCancelled(t *testing.T) {
	tmp := t.TempDir()
	os.MkdirAll(filepath.Join(tmp, "a"), 0755)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewWalker(2).Dirs(ctx, tmp); err == nil {
		t.Error("expected error from cancelled walk")
	}
}
