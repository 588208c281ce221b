package core

import (
	"github.com/lumipallolabs/dirwatch/internal/format"
	"github.com/lumipallolabs/dirwatch/internal/watcher"
)

// Target is one directory to watch and how to report it. Targets are built
// once at startup and never modified.
type Target struct {
	// Root is the absolute path of the watched directory
	Root       string
	Recursive  bool
	BufferSize int
	Filter     Filter
	Format     format.Options
}

// bufferSize returns the notification buffer size, falling back to the default
func (t Target) bufferSize() int {
	if t.BufferSize <= 0 {
		return watcher.DefaultBufferSize
	}
	return t.BufferSize
}
