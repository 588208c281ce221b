// Package format turns change events into the lines of the event log.
package format

import (
	"os"
	"time"

	"github.com/lumipallolabs/dirwatch/internal/record"
	"golang.org/x/text/encoding"
)

// TimestampLayout renders [YYYY/MM/DD HH:MM:SS]
const TimestampLayout = "[2006/01/02 15:04:05]"

// Markers prefix every event line
const (
	MarkerCreated     = "[ + ] "
	MarkerDeleted     = "[ - ] "
	MarkerModified    = "[ * ] "
	MarkerRenamedFrom = "[ > ] "
	MarkerRenamedTo   = "[ < ] "
	MarkerUnknown     = "[???] "
	MarkerError       = "[!!!] "
	MarkerDumpStart   = "[vvv] "
	MarkerDumpEnd     = "[^^^] "
)

// Options controls the output layout
type Options struct {
	// OneLine puts the timestamp inline and drops labels and dump banners
	OneLine bool
	// Dump appends the content of modified files
	Dump bool
	// Encoding decodes dumped content; nil means DefaultEncoding
	Encoding encoding.Encoding
}

// Block is the formatted output for one event
type Block struct {
	// Path is the path the block is about (the new name for renames)
	Path  string
	Lines []string
	// Content is the index in Lines of the dumped file text, 0 when the
	// block carries none. The event line always comes first.
	Content int
	// DumpFailed is set when a content dump was attempted and failed
	DumpFailed bool
}

// Empty reports whether the event produced no output
func (b Block) Empty() bool {
	return len(b.Lines) == 0
}

// Formatter renders events. It is safe for concurrent use.
type Formatter struct {
	opts Options
	// Now returns the time stamped on each block
	Now func() time.Time
}

// New creates a formatter
func New(opts Options) *Formatter {
	if opts.Encoding == nil {
		opts.Encoding = DefaultEncoding
	}
	return &Formatter{opts: opts, Now: time.Now}
}

// Options returns the options the formatter was created with
func (f *Formatter) Options() Options {
	return f.opts
}

type label struct {
	marker string
	text   string
}

var labels = map[record.Action]label{
	record.ActionCreated:     {MarkerCreated, "Created "},
	record.ActionDeleted:     {MarkerDeleted, "Deleted "},
	record.ActionModified:    {MarkerModified, "Modified "},
	record.ActionRenamedFrom: {MarkerRenamedFrom, "Renamed from: "},
	record.ActionRenamedTo:   {MarkerRenamedTo, "Renamed to: "},
}

func labelFor(action record.Action) label {
	if l, ok := labels[action]; ok {
		return l
	}
	return label{MarkerUnknown, "Unknown: "}
}

// Change formats a single-record event for the absolute path.
func (f *Formatter) Change(action record.Action, path string) Block {
	if action == record.ActionModified {
		// Directory metadata churn is not reported
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			return Block{Path: path}
		}
	}

	stamp := f.Now().Format(TimestampLayout)
	var lines []string
	if !f.opts.OneLine && action != record.ActionRenamedTo {
		lines = append(lines, "", stamp)
	}
	lines = append(lines, f.line(stamp, action, path))

	block := Block{Path: path, Lines: lines}
	if action == record.ActionModified && f.opts.Dump {
		f.appendDump(&block)
	}
	return block
}

// Rename formats a merged rename. Both halves share one timestamp block.
func (f *Formatter) Rename(oldPath, newPath string) Block {
	stamp := f.Now().Format(TimestampLayout)
	var lines []string
	if !f.opts.OneLine {
		lines = append(lines, "", stamp)
	}
	lines = append(lines,
		f.line(stamp, record.ActionRenamedFrom, oldPath),
		f.line(stamp, record.ActionRenamedTo, newPath),
	)
	return Block{Path: newPath, Lines: lines}
}

// line renders the marker line for one path
func (f *Formatter) line(stamp string, action record.Action, path string) string {
	l := labelFor(action)
	if f.opts.OneLine {
		return stamp + l.marker + path
	}
	return l.marker + l.text + path
}

// Spawn announces that a watch started
func (f *Formatter) Spawn(root string) Block {
	return Block{Path: root, Lines: []string{"Spawning monitoring thread for path: " + root}}
}

// Failure reports an error that ended a watch
func (f *Formatter) Failure(root, kind string, err error) Block {
	stamp := f.Now().Format(TimestampLayout)
	msg := MarkerError + "<" + kind + "> " + err.Error()
	if f.opts.OneLine {
		return Block{Path: root, Lines: []string{stamp + msg}}
	}
	return Block{Path: root, Lines: []string{"", stamp, msg}}
}
