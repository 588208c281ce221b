package format

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lumipallolabs/dirwatch/internal/record"
	"golang.org/x/text/encoding/japanese"
)

var fixedTime = time.Date(2024, 3, 9, 14, 5, 7, 0, time.Local)

const fixedStamp = "[2024/03/09 14:05:07]"

func newTestFormatter(opts Options) *Formatter {
	f := New(opts)
	f.Now = func() time.Time { return fixedTime }
	return f
}

func expectLines(t *testing.T, got []string, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d lines %q, got %d lines %q", len(want), want, len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestCreated(t *testing.T) {
	f := newTestFormatter(Options{})
	block := f.Change(record.ActionCreated, "/root/new.txt")
	expectLines(t, block.Lines, "", fixedStamp, "[ + ] Created /root/new.txt")
	if block.Path != "/root/new.txt" {
		t.Errorf("unexpected path %q", block.Path)
	}
}

func TestOneLine(t *testing.T) {
	f := newTestFormatter(Options{OneLine: true})

	expectLines(t, f.Change(record.ActionDeleted, "/w/gone").Lines, fixedStamp+"[ - ] /w/gone")
	expectLines(t, f.Change(record.ActionRenamedFrom, "/w/a").Lines, fixedStamp+"[ > ] /w/a")
	expectLines(t, f.Change(record.Action(99), "/w/x").Lines, fixedStamp+"[???] /w/x")
}

func TestLabels(t *testing.T) {
	f := newTestFormatter(Options{})

	expectLines(t, f.Change(record.ActionDeleted, "/w/gone").Lines, "", fixedStamp, "[ - ] Deleted /w/gone")
	expectLines(t, f.Change(record.ActionRenamedFrom, "/w/a").Lines, "", fixedStamp, "[ > ] Renamed from: /w/a")
	expectLines(t, f.Change(record.Action(0), "/w/x").Lines, "", fixedStamp, "[???] Unknown: /w/x")
}

func TestOrphanRenamedToHasNoTimestamp(t *testing.T) {
	f := newTestFormatter(Options{})
	expectLines(t, f.Change(record.ActionRenamedTo, "/w/b").Lines, "[ < ] Renamed to: /w/b")
}

func TestRename(t *testing.T) {
	f := newTestFormatter(Options{})
	block := f.Rename("/w/a", "/w/b")
	expectLines(t, block.Lines, "", fixedStamp, "[ > ] Renamed from: /w/a", "[ < ] Renamed to: /w/b")
	if block.Path != "/w/b" {
		t.Errorf("expected new path, got %q", block.Path)
	}

	f = newTestFormatter(Options{OneLine: true})
	expectLines(t, f.Rename("/w/a", "/w/b").Lines, fixedStamp+"[ > ] /w/a", fixedStamp+"[ < ] /w/b")
}

func TestModifiedDirectorySuppressed(t *testing.T) {
	f := newTestFormatter(Options{Dump: true})
	block := f.Change(record.ActionModified, t.TempDir())
	if !block.Empty() {
		t.Errorf("expected no output for a directory, got %q", block.Lines)
	}
}

func TestModifiedWithoutDump(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.txt")
	os.WriteFile(path, []byte("content"), 0644)

	f := newTestFormatter(Options{})
	expectLines(t, f.Change(record.ActionModified, path).Lines, "", fixedStamp, "[ * ] Modified "+path)
}

func TestDumpShiftJIS(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memo.txt")
	encoded, err := japanese.ShiftJIS.NewEncoder().String("こんにちは world")
	if err != nil {
		t.Fatal(err)
	}
	os.WriteFile(path, []byte(encoded), 0644)

	f := newTestFormatter(Options{Dump: true})
	block := f.Change(record.ActionModified, path)
	expectLines(t, block.Lines,
		"", fixedStamp,
		"[ * ] Modified "+path,
		"[vvv] Dumping contents...",
		"こんにちは world",
		"[^^^] Dump complete.",
	)
	if block.DumpFailed {
		t.Error("dump should not have failed")
	}
	if block.Content != 4 {
		t.Errorf("expected content at line 4, got %d", block.Content)
	}
}

func TestDumpOneLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	os.WriteFile(path, []byte("hello"), 0644)

	f := newTestFormatter(Options{Dump: true, OneLine: true})
	block := f.Change(record.ActionModified, path)
	expectLines(t, block.Lines, fixedStamp+"[ * ] "+path, "hello")
	if block.Content != 1 {
		t.Errorf("expected content at line 1, got %d", block.Content)
	}
}

func TestDumpMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vanished.txt")

	f := newTestFormatter(Options{Dump: true})
	block := f.Change(record.ActionModified, path)

	if !block.DumpFailed {
		t.Error("expected dump failure")
	}
	if len(block.Lines) != 6 {
		t.Fatalf("expected 6 lines, got %q", block.Lines)
	}
	if !strings.HasPrefix(block.Lines[4], "[!!!] <NotFound> ") {
		t.Errorf("expected NotFound error line, got %q", block.Lines[4])
	}
	if block.Lines[5] != "[!!!] Dump failed." {
		t.Errorf("expected failure marker, got %q", block.Lines[5])
	}
}

func TestDumpMissingFileOneLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vanished.txt")

	f := newTestFormatter(Options{Dump: true, OneLine: true})
	block := f.Change(record.ActionModified, path)
	if len(block.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", block.Lines)
	}
	if !strings.HasPrefix(block.Lines[1], "[!!!] <NotFound> ") {
		t.Errorf("expected NotFound error line, got %q", block.Lines[1])
	}
}

func TestDumpBinary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blob.bin")
	os.WriteFile(path, []byte{0x00, 0x01, 0x02, 0x03, 0xff, 0x00, 0x10}, 0644)

	f := newTestFormatter(Options{Dump: true})
	block := f.Change(record.ActionModified, path)
	if !block.DumpFailed {
		t.Fatal("expected dump failure for binary content")
	}
	if !strings.HasPrefix(block.Lines[4], "[!!!] <DecodeError> ") {
		t.Errorf("expected DecodeError line, got %q", block.Lines[4])
	}
}

func TestReadTextDirectory(t *testing.T) {
	f := newTestFormatter(Options{Dump: true})
	_, err := f.ReadText(t.TempDir())

	var dumpErr *DumpError
	if !errors.As(err, &dumpErr) {
		t.Fatalf("expected DumpError, got %v", err)
	}
	if dumpErr.Kind != KindIsDirectory {
		t.Errorf("expected %s, got %s", KindIsDirectory, dumpErr.Kind)
	}
}

func TestLookupEncoding(t *testing.T) {
	if _, err := LookupEncoding("shift_jis"); err != nil {
		t.Errorf("shift_jis: %v", err)
	}
	if _, err := LookupEncoding("utf-8"); err != nil {
		t.Errorf("utf-8: %v", err)
	}
	if _, err := LookupEncoding("klingon"); err == nil {
		t.Error("expected error for unknown encoding")
	}
}

func TestFailure(t *testing.T) {
	f := newTestFormatter(Options{})
	block := f.Failure("/w", "OpenError", os.ErrNotExist)
	expectLines(t, block.Lines, "", fixedStamp, "[!!!] <OpenError> file does not exist")
}
