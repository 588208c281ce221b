package core

import (
	"context"
	"path/filepath"

	"github.com/lumipallolabs/dirwatch/internal/format"
	"github.com/lumipallolabs/dirwatch/internal/logging"
	"github.com/lumipallolabs/dirwatch/internal/record"
	"github.com/lumipallolabs/dirwatch/internal/sink"
	"github.com/lumipallolabs/dirwatch/internal/stats"
	"github.com/lumipallolabs/dirwatch/internal/watcher"
)

// Loop runs the watch pipeline for one target: read a batch, decode it,
// pair up renames, filter, format and write each event to the sink.
type Loop struct {
	target    Target
	source    watcher.Source
	formatter *format.Formatter
	sink      sink.Sink
	stats     *stats.Counters
}

// NewLoop creates a loop reading from an already opened source. A nil
// counters value disables statistics.
func NewLoop(target Target, source watcher.Source, out sink.Sink, counters *stats.Counters) *Loop {
	if counters == nil {
		counters = stats.New(nil)
	}
	return &Loop{
		target:    target,
		source:    source,
		formatter: format.New(target.Format),
		sink:      out,
		stats:     counters,
	}
}

// Run processes batches until the source fails or ctx is done. It returns
// the error that ended the loop and never returns nil.
func (l *Loop) Run(ctx context.Context) error {
	root := l.target.Root
	buf := make([]byte, l.target.bufferSize())

	for {
		n, err := l.source.Read(ctx, buf)
		if err != nil {
			return err
		}
		l.stats.Batch(root)

		if n == 0 {
			logging.Watch.Printf("%s: notification overflow, changes were lost", root)
			l.stats.Overflow(root)
			continue
		}

		records, err := record.Decode(buf, n)
		if err != nil {
			// Keep what decoded cleanly
			logging.Watch.Printf("%s: %v after %d records", root, err, len(records))
		}

		for _, event := range Correlate(records) {
			l.dispatch(event)
		}
	}
}

// dispatch filters, formats and writes one event
func (l *Loop) dispatch(event Event) {
	var block format.Block

	switch e := event.(type) {
	case RenameEvent:
		newPath := l.path(e.NewName)
		if !l.target.Filter.Accept(newPath) {
			return
		}
		block = l.formatter.Rename(l.path(e.OldName), newPath)
		l.stats.Event(l.target.Root, record.ActionRenamedFrom)
		l.stats.Event(l.target.Root, record.ActionRenamedTo)
	case ChangeEvent:
		path := l.path(e.Name)
		if !l.target.Filter.Accept(path) {
			return
		}
		block = l.formatter.Change(e.Action, path)
		if block.Empty() {
			return
		}
		l.stats.Event(l.target.Root, e.Action)
	}

	if block.DumpFailed {
		l.stats.DumpFailure(l.target.Root)
	}
	l.write(block)
}

func (l *Loop) path(name string) string {
	return filepath.Join(l.target.Root, name)
}

func (l *Loop) write(block format.Block) {
	if block.Empty() {
		return
	}
	if err := l.sink.Write(sink.Entry{Path: block.Path, Lines: block.Lines, Content: block.Content}); err != nil {
		logging.Debug.Printf("%s: write event: %v", l.target.Root, err)
	}
}
