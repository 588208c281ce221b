//go:build !darwin && !windows

package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/lumipallolabs/dirwatch/internal/logging"
	"github.com/lumipallolabs/dirwatch/internal/record"
	"github.com/lumipallolabs/dirwatch/internal/scanner"
)

// eventBuffer is the capacity of the native event channel
const eventBuffer = 256

// notifySource watches a directory using fsnotify (inotify on Linux, kqueue on
// the BSDs). Recursive watches add one native watch per directory and follow
// directories as they are created.
type notifySource struct {
	watcher   *fsnotify.Watcher
	root      string
	recursive bool
	walker    scanner.Scanner
	pending   queue
	mu        sync.Mutex
	closed    bool
}

func openSource(root string, opts Options) (Source, error) {
	w, err := fsnotify.NewBufferedWatcher(eventBuffer)
	if err != nil {
		return nil, err
	}

	s := &notifySource{
		watcher:   w,
		root:      root,
		recursive: opts.Recursive,
		walker:    scanner.NewWalker(4),
	}

	if err := w.Add(root); err != nil {
		w.Close()
		return nil, &OpenError{Path: root, Err: err}
	}
	if s.recursive {
		if err := s.addTree(context.Background(), root); err != nil {
			w.Close()
			return nil, &OpenError{Path: root, Err: err}
		}
	}
	return s, nil
}

// addTree registers every directory below dir
func (s *notifySource) addTree(ctx context.Context, dir string) error {
	dirs, err := s.walker.Dirs(ctx, dir)
	if err != nil {
		return err
	}
	for _, d := range dirs {
		if d == s.root {
			continue
		}
		if err := s.watcher.Add(d); err != nil {
			// The directory may be gone again already
			logging.Watch.Printf("add watch %s: %v", d, err)
		}
	}
	logging.Watch.Printf("watching %d directories below %s", len(dirs), dir)
	return nil
}

func (s *notifySource) Read(ctx context.Context, buf []byte) (int, error) {
	for s.pending.empty() {
		// Block for the first event, then take whatever else is ready
		if _, err := s.receive(ctx, true); err != nil {
			return 0, err
		}
		for {
			got, err := s.receive(ctx, false)
			if err != nil {
				return 0, err
			}
			if !got {
				break
			}
		}
	}
	return s.pending.fill(buf)
}

// receive handles one event or error from the native watcher and reports
// whether there was one. Without block it returns at once when nothing is
// ready.
func (s *notifySource) receive(ctx context.Context, block bool) (bool, error) {
	if !block {
		select {
		case event, ok := <-s.watcher.Events:
			return s.onEvent(ctx, event, ok)
		case err, ok := <-s.watcher.Errors:
			return s.onError(err, ok)
		default:
			return false, nil
		}
	}

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case event, ok := <-s.watcher.Events:
		return s.onEvent(ctx, event, ok)
	case err, ok := <-s.watcher.Errors:
		return s.onError(err, ok)
	}
}

func (s *notifySource) onEvent(ctx context.Context, event fsnotify.Event, ok bool) (bool, error) {
	if !ok {
		return false, &ReadError{Path: s.root, Err: os.ErrClosed}
	}
	return true, s.translate(ctx, event)
}

func (s *notifySource) onError(err error, ok bool) (bool, error) {
	if !ok {
		return false, &ReadError{Path: s.root, Err: os.ErrClosed}
	}
	return true, s.handleError(err)
}

func (s *notifySource) handleError(err error) error {
	if errors.Is(err, fsnotify.ErrEventOverflow) {
		logging.Watch.Printf("inotify overflow for %s", s.root)
		s.pending.markOverflow()
		return nil
	}
	return &ReadError{Path: s.root, Err: err}
}

// translate converts one fsnotify event into queued records
func (s *notifySource) translate(ctx context.Context, event fsnotify.Event) error {
	path := filepath.Clean(event.Name)
	if path == s.root {
		if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
			return &ReadError{Path: s.root, Err: ErrRootRemoved}
		}
		return nil
	}

	rel, err := filepath.Rel(s.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return nil
	}
	if !s.recursive && strings.ContainsRune(rel, filepath.Separator) {
		return nil
	}

	switch {
	case event.Has(fsnotify.Create):
		s.pending.push(record.ChangeRecord{Action: record.ActionCreated, Name: rel})
		if s.recursive {
			if info, err := os.Lstat(path); err == nil && info.IsDir() {
				if err := s.addTree(ctx, path); err != nil {
					logging.Watch.Printf("watch new directory %s: %v", path, err)
				}
			}
		}
	case event.Has(fsnotify.Remove):
		// A watched subdirectory reports its own removal as well as its parent
		deleted := record.ChangeRecord{Action: record.ActionDeleted, Name: rel}
		if n := len(s.pending.records); n > 0 && s.pending.records[n-1] == deleted {
			return nil
		}
		s.pending.push(deleted)
	case event.Has(fsnotify.Rename):
		// inotify reports the new name as a separate Create
		s.pending.push(record.ChangeRecord{Action: record.ActionRenamedFrom, Name: rel})
	case event.Has(fsnotify.Write), event.Has(fsnotify.Chmod):
		s.pending.push(record.ChangeRecord{Action: record.ActionModified, Name: rel})
	}
	return nil
}

func (s *notifySource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.watcher.Close()
}
