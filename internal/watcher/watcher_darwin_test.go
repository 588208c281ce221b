//go:build darwin

package watcher

import (
	"errors"
	"testing"

	"github.com/fsnotify/fsevents"
)

func TestOpenStreamStartFailure(t *testing.T) {
	failed := errors.New("failed to start eventstream")
	orig := startStream
	startStream = func(*fsevents.EventStream) error { return failed }
	defer func() { startStream = orig }()

	src, err := Open(t.TempDir(), Options{})
	if src != nil {
		t.Error("expected no source when the stream cannot start")
	}
	var openErr *OpenError
	if !errors.As(err, &openErr) || !errors.Is(err, failed) {
		t.Fatalf("expected OpenError wrapping the start failure, got %v", err)
	}
}
