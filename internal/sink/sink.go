// Package sink writes formatted event blocks to their destination. Every sink
// serializes its physical writes so blocks from concurrent watchers never
// interleave.
package sink

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Entry is one event's worth of output
type Entry struct {
	// Path the entry is about; informational, never printed
	Path  string
	Lines []string
	// Content is the index of dumped file text in Lines, 0 when there is
	// none. It is printed but never styled.
	Content int
}

// Text returns the entry as written: lines joined by newlines, with a
// trailing newline.
func (e Entry) Text() string {
	return strings.Join(e.Lines, "\n") + "\n"
}

// Sink receives formatted entries. Implementations are safe for concurrent use.
type Sink interface {
	Write(e Entry) error
}

// Stream writes entries to an io.Writer such as standard output
type Stream struct {
	mu     sync.Mutex
	w      io.Writer
	styler *Styler
}

// NewStream creates a stream sink. A nil styler writes plain text.
func NewStream(w io.Writer, styler *Styler) *Stream {
	return &Stream{w: w, styler: styler}
}

func (s *Stream) Write(e Entry) error {
	text := e.Text()
	if s.styler != nil {
		text = s.styler.Style(e).Text()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := io.WriteString(s.w, text)
	return err
}

// File appends entries to a log file. Each entry is one write, so it reaches
// the file before Write returns.
type File struct {
	mu   sync.Mutex
	path string
	f    *os.File
}

// OpenFile opens path for appending, creating it if needed
func OpenFile(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return &File{path: path, f: f}, nil
}

// Path returns the log file path
func (s *File) Path() string {
	return s.path
}

func (s *File) Write(e Entry) error {
	text := e.Text()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return os.ErrClosed
	}
	_, err := s.f.WriteString(text)
	return err
}

// Close closes the log file
func (s *File) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f = nil
	return err
}
