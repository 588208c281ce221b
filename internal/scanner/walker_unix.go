//go:build !windows

package scanner

import (
	"io/fs"
	"sync"
	"syscall"
)

// shouldSkipDir returns true if the directory inode was already visited
func shouldSkipDir(d fs.DirEntry, seenItems *sync.Map) bool {
	info, err := d.Info()
	if err != nil {
		return false
	}

	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return false
	}

	type devIno struct {
		dev uint64
		ino uint64
	}
	key := devIno{dev: uint64(stat.Dev), ino: uint64(stat.Ino)}
	_, exists := seenItems.LoadOrStore(key, true)
	return exists
}
