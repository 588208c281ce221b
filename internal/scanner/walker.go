package scanner

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"sync"

	"github.com/charlievieth/fastwalk"
)

// Walker implements parallel directory enumeration
type Walker struct {
	workers int
}

// NewWalker creates a new parallel directory walker
func NewWalker(workers int) *Walker {
	if workers < 1 {
		workers = 4
	}
	return &Walker{workers: workers}
}

// Dirs walks root with fastwalk and returns every directory, root first.
// Unreadable directories are skipped; symlinks are not followed.
func (w *Walker) Dirs(ctx context.Context, root string) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	// Use channels for lock-free entry collection
	dirChan := make(chan string, 1024)
	var dirs []string
	var collectWg sync.WaitGroup

	collectWg.Add(1)
	go func() {
		defer collectWg.Done()
		for d := range dirChan {
			dirs = append(dirs, d)
		}
	}()

	// Track seen inodes so bind mounts are only watched once
	var seenItems sync.Map

	conf := &fastwalk.Config{
		Follow:     false,
		NumWorkers: w.workers,
	}

	walkErr := fastwalk.Walk(conf, absRoot, func(path string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			return nil // Skip entries with errors
		}
		if path == absRoot || !d.IsDir() {
			return nil
		}

		if shouldSkipDir(d, &seenItems) {
			return fs.SkipDir
		}

		dirChan <- path
		return nil
	})

	close(dirChan)
	collectWg.Wait()

	if walkErr != nil {
		if errors.Is(walkErr, ctx.Err()) {
			return nil, ctx.Err()
		}
		return nil, walkErr
	}

	return append([]string{absRoot}, dirs...), nil
}

// Ensure Walker implements Scanner
var _ Scanner = (*Walker)(nil)
