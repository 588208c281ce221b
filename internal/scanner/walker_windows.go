//go:build windows

package scanner

import (
	"io/fs"
	"sync"
)

// shouldSkipDir returns true if the directory should be skipped.
// Windows sources watch the subtree natively and never enumerate it.
func shouldSkipDir(d fs.DirEntry, seenItems *sync.Map) bool {
	return false
}
