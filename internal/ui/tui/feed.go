package tui

import (
	"os"
	"sync"

	"github.com/lumipallolabs/dirwatch/internal/sink"
)

// Feed is the sink the watchers write to while the live view runs. Entries
// are handed to the view over a channel; a full channel blocks the writer.
type Feed struct {
	entries chan sink.Entry
	done    chan struct{}
	once    sync.Once
}

// NewFeed creates a feed buffering up to size entries
func NewFeed(size int) *Feed {
	return &Feed{
		entries: make(chan sink.Entry, size),
		done:    make(chan struct{}),
	}
}

// Write queues e for the view. It fails once the feed is closed.
func (f *Feed) Write(e sink.Entry) error {
	select {
	case <-f.done:
		return os.ErrClosed
	default:
	}
	select {
	case f.entries <- e:
		return nil
	case <-f.done:
		return os.ErrClosed
	}
}

// Close stops accepting entries and releases blocked writers
func (f *Feed) Close() {
	f.once.Do(func() { close(f.done) })
}
