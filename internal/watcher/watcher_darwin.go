//go:build darwin

package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsevents"
	"github.com/lumipallolabs/dirwatch/internal/logging"
	"github.com/lumipallolabs/dirwatch/internal/record"
)

const streamLatency = 50 * time.Millisecond

// startStream starts an event stream; replaced in tests
var startStream = (*fsevents.EventStream).Start

const (
	lostEvents   = fsevents.MustScanSubDirs | fsevents.KernelDropped | fsevents.UserDropped
	modifiedMask = fsevents.ItemModified | fsevents.ItemInodeMetaMod | fsevents.ItemChangeOwner |
		fsevents.ItemXattrMod | fsevents.ItemFinderInfoMod
)

// streamSource watches a directory tree using macOS FSEvents
type streamSource struct {
	stream    *fsevents.EventStream
	root      string
	realRoot  string
	recursive bool
	pending   queue
	mu        sync.Mutex
	closed    bool
}

func openSource(root string, opts Options) (Source, error) {
	// FSEvents reports resolved paths (/private/tmp rather than /tmp)
	realRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return nil, &OpenError{Path: root, Err: err}
	}

	s := &streamSource{
		root:      root,
		realRoot:  realRoot,
		recursive: opts.Recursive,
		stream: &fsevents.EventStream{
			Events:  make(chan []fsevents.Event, 16),
			Paths:   []string{realRoot},
			Latency: streamLatency,
			Flags:   fsevents.FileEvents | fsevents.WatchRoot | fsevents.NoDefer,
		},
	}
	if err := startStream(s.stream); err != nil {
		return nil, &OpenError{Path: root, Err: err}
	}
	return s, nil
}

func (s *streamSource) Read(ctx context.Context, buf []byte) (int, error) {
	for s.pending.empty() {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case events, ok := <-s.stream.Events:
			if !ok {
				return 0, &ReadError{Path: s.root, Err: ErrRootRemoved}
			}
			if err := s.translate(events); err != nil {
				return 0, err
			}
		}
	}
	return s.pending.fill(buf)
}

// translate converts one FSEvents delivery into queued records
func (s *streamSource) translate(events []fsevents.Event) error {
	for _, event := range events {
		path := event.Path
		if len(path) > 0 && path[0] != '/' {
			path = "/" + path
		}

		if event.Flags&lostEvents != 0 {
			logging.Watch.Printf("fsevents dropped events under %s (flags %#x)", s.root, event.Flags)
			s.pending.markOverflow()
			continue
		}

		if event.Flags&fsevents.RootChanged != 0 {
			if _, err := os.Stat(s.root); err != nil {
				return &ReadError{Path: s.root, Err: ErrRootRemoved}
			}
			continue
		}

		name, ok := s.relative(path)
		if !ok {
			continue
		}

		_, statErr := os.Lstat(path)
		exists := statErr == nil

		if event.Flags&fsevents.ItemCreated != 0 {
			s.pending.push(record.ChangeRecord{Action: record.ActionCreated, Name: name})
		}
		if event.Flags&fsevents.ItemRenamed != 0 {
			// The two halves of a rename arrive as consecutive events; only the
			// new name still exists.
			action := record.ActionRenamedFrom
			if exists {
				action = record.ActionRenamedTo
			}
			s.pending.push(record.ChangeRecord{Action: action, Name: name})
		}
		if event.Flags&modifiedMask != 0 && exists {
			s.pending.push(record.ChangeRecord{Action: record.ActionModified, Name: name})
		}
		if event.Flags&fsevents.ItemRemoved != 0 && !exists {
			s.pending.push(record.ChangeRecord{Action: record.ActionDeleted, Name: name})
		}
	}
	return nil
}

// relative maps an absolute event path to a name below the root. Events
// outside the watched scope are rejected.
func (s *streamSource) relative(path string) (string, bool) {
	rel, err := filepath.Rel(s.realRoot, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", false
	}
	if !s.recursive && strings.ContainsRune(rel, filepath.Separator) {
		return "", false
	}
	return rel, true
}

func (s *streamSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.stream.Stop()
	return nil
}
