//go:build windows

package watcher

import (
	"context"
	"errors"
	"sync"
	"syscall"

	"github.com/lumipallolabs/dirwatch/internal/logging"
	"golang.org/x/sys/windows"
)

// Every notification class ReadDirectoryChangesW offers
const notifyFilter = windows.FILE_NOTIFY_CHANGE_FILE_NAME |
	windows.FILE_NOTIFY_CHANGE_DIR_NAME |
	windows.FILE_NOTIFY_CHANGE_ATTRIBUTES |
	windows.FILE_NOTIFY_CHANGE_SIZE |
	windows.FILE_NOTIFY_CHANGE_LAST_WRITE |
	windows.FILE_NOTIFY_CHANGE_LAST_ACCESS |
	windows.FILE_NOTIFY_CHANGE_CREATION |
	windows.FILE_NOTIFY_CHANGE_SECURITY

// errNotifyEnumDir is ERROR_NOTIFY_ENUM_DIR: the system buffer overflowed and
// the changes are lost.
const errNotifyEnumDir = syscall.Errno(1022)

// dirSource watches a directory using Windows ReadDirectoryChangesW. The
// returned buffer already has the packed record layout.
type dirSource struct {
	handle    windows.Handle
	root      string
	recursive bool
	mu        sync.Mutex
	closed    bool
}

func openSource(root string, opts Options) (Source, error) {
	pathPtr, err := windows.UTF16PtrFromString(root)
	if err != nil {
		return nil, err
	}

	handle, err := windows.CreateFile(
		pathPtr,
		windows.FILE_LIST_DIRECTORY,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE|windows.FILE_SHARE_DELETE,
		nil,
		windows.OPEN_EXISTING,
		windows.FILE_FLAG_BACKUP_SEMANTICS,
		0,
	)
	if err != nil {
		return nil, &OpenError{Path: root, Err: err}
	}

	return &dirSource{
		handle:    handle,
		root:      root,
		recursive: opts.Recursive,
	}, nil
}

func (s *dirSource) Read(ctx context.Context, buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, errors.New("empty notification buffer")
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	// The call below is synchronous; cancel it from outside when ctx ends
	stop := context.AfterFunc(ctx, func() {
		_ = windows.CancelIoEx(s.handle, nil)
	})
	defer stop()

	var bytesReturned uint32
	err := windows.ReadDirectoryChanges(
		s.handle,
		&buf[0],
		uint32(len(buf)),
		s.recursive,
		notifyFilter,
		&bytesReturned,
		nil,
		0,
	)
	if err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		if errors.Is(err, errNotifyEnumDir) {
			logging.Watch.Printf("notification overflow for %s", s.root)
			return 0, nil
		}
		if errors.Is(err, windows.ERROR_ACCESS_DENIED) {
			// Raised once the watched directory is deleted
			return 0, &ReadError{Path: s.root, Err: ErrRootRemoved}
		}
		return 0, &ReadError{Path: s.root, Err: err}
	}

	return int(bytesReturned), nil
}

func (s *dirSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return windows.CloseHandle(s.handle)
}
