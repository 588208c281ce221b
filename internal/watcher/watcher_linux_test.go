//go:build linux

package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lumipallolabs/dirwatch/internal/record"
)

// readRecords reads batches until want records arrived or the timeout passed
func readRecords(t *testing.T, src Source, want int) []record.ChangeRecord {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	buf := make([]byte, DefaultBufferSize)
	var got []record.ChangeRecord
	for len(got) < want {
		n, err := src.Read(ctx, buf)
		if err != nil {
			t.Fatalf("read failed after %v: %v", got, err)
		}
		recs, err := record.Decode(buf, n)
		if err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		got = append(got, recs...)
	}
	return got
}

func TestNotifySourceCreate(t *testing.T) {
	root := t.TempDir()
	src, err := Open(root, Options{})
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer src.Close()

	if err := os.WriteFile(filepath.Join(root, "foo.txt"), nil, 0644); err != nil {
		t.Fatal(err)
	}

	got := readRecords(t, src, 1)
	if got[0].Action != record.ActionCreated || got[0].Name != "foo.txt" {
		t.Errorf("expected created foo.txt, got %v", got[0])
	}
}

func TestNotifySourceRecursive(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "a", "b"), 0755); err != nil {
		t.Fatal(err)
	}

	src, err := Open(root, Options{Recursive: true})
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer src.Close()

	if err := os.WriteFile(filepath.Join(root, "a", "b", "deep.txt"), nil, 0644); err != nil {
		t.Fatal(err)
	}

	got := readRecords(t, src, 1)
	want := filepath.Join("a", "b", "deep.txt")
	if got[0].Action != record.ActionCreated || got[0].Name != want {
		t.Errorf("expected created %s, got %v", want, got[0])
	}
}

func TestNotifySourceRootRemoved(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "watched")
	if err := os.Mkdir(root, 0755); err != nil {
		t.Fatal(err)
	}

	src, err := Open(root, Options{})
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer src.Close()

	if err := os.Remove(root); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	buf := make([]byte, DefaultBufferSize)
	for {
		_, err := src.Read(ctx, buf)
		if err == nil {
			continue
		}
		var readErr *ReadError
		if !errors.As(err, &readErr) {
			t.Fatalf("expected ReadError, got %v", err)
		}
		return
	}
}

func TestNotifySourceCancel(t *testing.T) {
	src, err := Open(t.TempDir(), Options{})
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer src.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := src.Read(ctx, make([]byte, DefaultBufferSize)); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
