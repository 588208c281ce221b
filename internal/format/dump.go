package format

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/japanese"
)

// DefaultEncodingName is the legacy encoding dumps are decoded with by default
const DefaultEncodingName = "shift_jis"

// DefaultEncoding is Shift_JIS
var DefaultEncoding encoding.Encoding = japanese.ShiftJIS

// Dump error kinds
const (
	KindNotFound         = "NotFound"
	KindPermissionDenied = "PermissionDenied"
	KindIsDirectory      = "IsDirectory"
	KindDecodeError      = "DecodeError"
	KindIOError          = "IOError"
)

// DumpError describes why a file's content could not be dumped
type DumpError struct {
	Kind string
	Err  error
}

func (e *DumpError) Error() string {
	return e.Err.Error()
}

func (e *DumpError) Unwrap() error {
	return e.Err
}

// LookupEncoding resolves a WHATWG or IANA encoding name
func LookupEncoding(name string) (encoding.Encoding, error) {
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unknown text encoding %q", name)
	}
	return enc, nil
}

// appendDump adds the dump section for the block's path
func (f *Formatter) appendDump(b *Block) {
	if !f.opts.OneLine {
		b.Lines = append(b.Lines, MarkerDumpStart+"Dumping contents...")
	}

	text, err := f.ReadText(b.Path)
	if err != nil {
		var dumpErr *DumpError
		if !errors.As(err, &dumpErr) {
			dumpErr = &DumpError{Kind: KindIOError, Err: err}
		}
		b.Lines = append(b.Lines, MarkerError+"<"+dumpErr.Kind+"> "+dumpErr.Error())
		if !f.opts.OneLine {
			b.Lines = append(b.Lines, MarkerError+"Dump failed.")
		}
		b.DumpFailed = true
		return
	}

	b.Content = len(b.Lines)
	b.Lines = append(b.Lines, text)
	if !f.opts.OneLine {
		b.Lines = append(b.Lines, MarkerDumpEnd+"Dump complete.")
	}
}

// ReadText reads the whole file at path and decodes it with the configured
// encoding. Content that is not text is refused with a DecodeError.
func (f *Formatter) ReadText(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", &DumpError{Kind: readErrorKind(path, err), Err: err}
	}
	if len(content) == 0 {
		return "", nil
	}

	if mtype := mimetype.Detect(content); !isText(mtype) {
		return "", &DumpError{
			Kind: KindDecodeError,
			Err:  fmt.Errorf("cannot decode %s content of %s as text", mtype.String(), path),
		}
	}

	decoded, err := f.opts.Encoding.NewDecoder().Bytes(content)
	if err != nil {
		return "", &DumpError{Kind: KindDecodeError, Err: fmt.Errorf("decode %s: %w", path, err)}
	}
	return string(decoded), nil
}

func readErrorKind(path string, err error) string {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return KindNotFound
	case errors.Is(err, fs.ErrPermission):
		return KindPermissionDenied
	}
	// The path may have turned into a directory since the event
	if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
		return KindIsDirectory
	}
	return KindIOError
}

// isText reports whether the detected type is, or derives from, text/plain
func isText(mtype *mimetype.MIME) bool {
	for m := mtype; m != nil; m = m.Parent() {
		if m.Is("text/plain") || strings.HasPrefix(m.String(), "text/") {
			return true
		}
	}
	return false
}
