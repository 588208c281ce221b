// Package watcher provides the change notification sources.
//
// A Source blocks until the operating system reports changes below a watched
// directory and fills a caller-owned buffer with a batch of packed records
// (see package record). Windows hands the native ReadDirectoryChangesW buffer
// through untouched; other platforms translate their native events into the
// same layout.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// DefaultBufferSize is the size of the notification buffer used per watch
const DefaultBufferSize = 2048

// Source delivers batches of packed change records for one directory tree
type Source interface {
	// Read blocks until at least one change is available or ctx is done, then
	// writes a batch into buf and returns the number of valid bytes. A return
	// of (0, nil) means changes were lost to an overflow.
	Read(ctx context.Context, buf []byte) (int, error)

	// Close releases the directory handle
	Close() error
}

// Options controls what a Source watches
type Options struct {
	// Recursive includes the whole subtree instead of direct children only
	Recursive bool
}

// OpenError reports a watch root that could not be opened
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("open %s: %v", e.Path, e.Err)
}

func (e *OpenError) Unwrap() error {
	return e.Err
}

// ReadError reports a watch that can no longer deliver changes, typically
// because the watched directory itself went away.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read changes %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

var (
	// ErrNotDirectory is wrapped by OpenError when the root is not a directory
	ErrNotDirectory = errors.New("not a directory")

	// ErrRootRemoved is wrapped by ReadError when the watched root disappears
	ErrRootRemoved = errors.New("watched directory was removed or renamed")
)

// Open starts watching root, which must be an existing directory
func Open(root string, opts Options) (Source, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, &OpenError{Path: root, Err: err}
	}
	if !info.IsDir() {
		return nil, &OpenError{Path: root, Err: ErrNotDirectory}
	}

	src, err := openSource(root, opts)
	if err != nil {
		var openErr *OpenError
		if errors.As(err, &openErr) {
			return nil, err
		}
		return nil, &OpenError{Path: root, Err: err}
	}
	return src, nil
}
