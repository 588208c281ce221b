package sink

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"

	"golang.org/x/sync/errgroup"
)

// tricklingWriter copies one byte at a time and yields in between, so any
// unsynchronized writers would interleave.
type tricklingWriter struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (w *tricklingWriter) Write(p []byte) (int, error) {
	for _, b := range p {
		w.mu.Lock()
		w.buf.WriteByte(b)
		w.mu.Unlock()
		runtime.Gosched()
	}
	return len(p), nil
}

func TestEntryText(t *testing.T) {
	e := Entry{Lines: []string{"", "[stamp]", "[ + ] Created /a"}}
	if got := e.Text(); got != "\n[stamp]\n[ + ] Created /a\n" {
		t.Errorf("unexpected text %q", got)
	}
}

func TestStreamConcurrentWritesDoNotInterleave(t *testing.T) {
	const writers = 8
	const entries = 25
	const linesPerEntry = 4

	w := &tricklingWriter{}
	s := NewStream(w, nil)

	var g errgroup.Group
	for i := 0; i < writers; i++ {
		i := i
		g.Go(func() error {
			for j := 0; j < entries; j++ {
				lines := make([]string, linesPerEntry)
				for k := range lines {
					lines[k] = fmt.Sprintf("w%d-e%d line %d", i, j, k)
				}
				if err := s.Write(Entry{Lines: lines}); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	lines := strings.Split(strings.TrimSuffix(w.buf.String(), "\n"), "\n")
	if len(lines) != writers*entries*linesPerEntry {
		t.Fatalf("expected %d lines, got %d", writers*entries*linesPerEntry, len(lines))
	}

	// Every entry must appear as one contiguous run of its lines
	for start := 0; start < len(lines); start += linesPerEntry {
		var prefix string
		if _, err := fmt.Sscanf(lines[start], "%s line 0", &prefix); err != nil {
			t.Fatalf("line %d does not start an entry: %q", start, lines[start])
		}
		for k := 0; k < linesPerEntry; k++ {
			want := fmt.Sprintf("%s line %d", prefix, k)
			if lines[start+k] != want {
				t.Fatalf("interleaved output at line %d: expected %q, got %q", start+k, want, lines[start+k])
			}
		}
	}
}

func TestFileAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.log")
	if err := os.WriteFile(path, []byte("existing\n"), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := OpenFile(path)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if err := s.Write(Entry{Lines: []string{"one"}}); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if err := s.Write(Entry{Lines: []string{"two", "three"}}); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	// Content is on disk before Close
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "existing\none\ntwo\nthree\n" {
		t.Errorf("unexpected file content %q", data)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if err := s.Write(Entry{Lines: []string{"late"}}); !errors.Is(err, os.ErrClosed) {
		t.Errorf("expected ErrClosed after close, got %v", err)
	}
}

func TestStylerPlainForNonTerminal(t *testing.T) {
	var buf bytes.Buffer
	if s := NewStyler(&buf, ColorAuto); s != nil {
		t.Error("expected no styling for a non-terminal writer")
	}
	if s := NewStyler(&buf, ColorNever); s != nil {
		t.Error("expected no styling when disabled")
	}
}

func TestStylerAlways(t *testing.T) {
	var buf bytes.Buffer
	s := NewStyler(&buf, ColorAlways)
	if s == nil {
		t.Fatal("expected a styler when forced")
	}

	styled := s.Style(Entry{Lines: []string{"[ + ] Created /w/a.txt", "plain"}})
	if !strings.Contains(styled.Lines[0], "\x1b[") {
		t.Errorf("expected escape sequence, got %q", styled.Lines[0])
	}
	if !strings.HasSuffix(styled.Lines[0], " Created /w/a.txt") {
		t.Errorf("path should be untouched, got %q", styled.Lines[0])
	}
	if styled.Lines[1] != "plain" {
		t.Errorf("unmarked line should be untouched, got %q", styled.Lines[1])
	}
}

func TestStylerLeavesDumpedContent(t *testing.T) {
	s := NewStyler(&bytes.Buffer{}, ColorAlways)
	body := "[ + ] not an event\n[2024/03/09 14:05:07] nor this"
	styled := s.Style(Entry{
		Lines: []string{
			"[ * ] Modified /w/a.txt",
			"[vvv] Dumping contents...",
			body,
			"[^^^] Dump complete.",
		},
		Content: 2,
	})

	if styled.Lines[2] != body {
		t.Errorf("dumped content should be untouched, got %q", styled.Lines[2])
	}
	for _, i := range []int{0, 1, 3} {
		if !strings.Contains(styled.Lines[i], "\x1b[") {
			t.Errorf("line %d should be styled, got %q", i, styled.Lines[i])
		}
	}
	if styled.Content != 2 {
		t.Errorf("content index lost, got %d", styled.Content)
	}
}
