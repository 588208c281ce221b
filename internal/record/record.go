// Package record decodes and encodes batches of packed change records.
//
// A batch is a byte buffer holding zero or more variable-length entries:
//
//	offset 0  uint32  next entry offset (0 marks the last entry)
//	offset 4  uint32  action
//	offset 8  uint32  name length in bytes
//	offset 12 []byte  name, UTF-16LE, not terminated
//
// This is the FILE_NOTIFY_INFORMATION layout returned by ReadDirectoryChangesW.
// Sources on other platforms produce the same layout with Pack so that a single
// decoder serves every platform.
package record

import (
	"encoding/binary"
	"errors"
	"fmt"

	"golang.org/x/text/encoding/unicode"
)

// HeaderSize is the fixed size of an entry header
const HeaderSize = 12

// entryAlign is the alignment of every entry inside a batch
const entryAlign = 4

// ErrTruncated is returned with the records decoded before a malformed or
// truncated entry was found.
var ErrTruncated = errors.New("record: truncated or malformed batch")

// Action identifies the kind of change a record reports
type Action uint32

const (
	ActionCreated     Action = 1
	ActionDeleted     Action = 2
	ActionModified    Action = 3
	ActionRenamedFrom Action = 4
	ActionRenamedTo   Action = 5
)

// String returns a short lowercase name, used for metrics labels and debug logs
func (a Action) String() string {
	switch a {
	case ActionCreated:
		return "created"
	case ActionDeleted:
		return "deleted"
	case ActionModified:
		return "modified"
	case ActionRenamedFrom:
		return "renamed_from"
	case ActionRenamedTo:
		return "renamed_to"
	default:
		return "unknown"
	}
}

// Known reports whether a is one of the defined actions
func (a Action) Known() bool {
	return a >= ActionCreated && a <= ActionRenamedTo
}

// ChangeRecord is one decoded entry: an action and the entry name relative to
// the watched root.
type ChangeRecord struct {
	Action Action
	Name   string
}

func (r ChangeRecord) String() string {
	return fmt.Sprintf("%s %q", r.Action, r.Name)
}

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// Decode parses the first n bytes of buf into records, in batch order.
//
// Reads never go past n or len(buf), whichever is smaller. A declared name
// length is trusted only up to the end of its own entry. When an entry cannot
// be read completely Decode stops and returns the records decoded so far
// together with ErrTruncated. n == 0 is a valid empty batch.
func Decode(buf []byte, n int) ([]ChangeRecord, error) {
	if n <= 0 {
		return nil, nil
	}
	limit := n
	if limit > len(buf) {
		limit = len(buf)
	}

	var records []ChangeRecord
	offset := 0
	remaining := n

	for remaining > 0 {
		if offset+HeaderSize > limit {
			return records, ErrTruncated
		}
		header := buf[offset : offset+HeaderSize]
		next := int(binary.LittleEndian.Uint32(header[0:4]))
		action := Action(binary.LittleEndian.Uint32(header[4:8]))
		nameLen := int(binary.LittleEndian.Uint32(header[8:12]))

		// The entry ends at the next entry, or at the end of the valid bytes
		entryEnd := limit
		if next != 0 && offset+next < entryEnd {
			entryEnd = offset + next
		}
		nameStart := offset + HeaderSize
		if nameLen < 0 || nameStart+nameLen > entryEnd {
			return records, ErrTruncated
		}

		name, err := decodeName(buf[nameStart : nameStart+nameLen])
		if err != nil {
			return records, fmt.Errorf("%w: %v", ErrTruncated, err)
		}
		records = append(records, ChangeRecord{Action: action, Name: name})

		if next == 0 {
			break
		}
		if next > remaining {
			return records, ErrTruncated
		}
		offset += next
		remaining -= next
	}

	return records, nil
}

// decodeName converts a UTF-16LE name to a string. A dangling odd byte is ignored.
func decodeName(b []byte) (string, error) {
	if len(b)%2 != 0 {
		b = b[:len(b)-1]
	}
	if len(b) == 0 {
		return "", nil
	}
	out, err := utf16le.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// encodeName converts a string to UTF-16LE
func encodeName(name string) ([]byte, error) {
	return utf16le.NewEncoder().Bytes([]byte(name))
}

// Size returns the number of bytes rec occupies inside a batch, including
// alignment padding.
func Size(rec ChangeRecord) (int, error) {
	name, err := encodeName(rec.Name)
	if err != nil {
		return 0, err
	}
	return align(HeaderSize + len(name)), nil
}

func align(n int) int {
	return (n + entryAlign - 1) &^ (entryAlign - 1)
}

// Pack writes as many leading records as fit into buf, chained by their next
// entry offsets, and returns the number of valid bytes and the number of
// records consumed. Records are never split. When not even the first record
// fits, Pack returns (0, 0).
func Pack(buf []byte, records []ChangeRecord) (n int, consumed int, err error) {
	prev := -1
	for _, rec := range records {
		name, err := encodeName(rec.Name)
		if err != nil {
			return n, consumed, fmt.Errorf("encode %q: %w", rec.Name, err)
		}
		raw := HeaderSize + len(name)
		size := align(raw)
		// The last entry does not need its padding to fit
		if n+raw > len(buf) {
			break
		}

		if prev >= 0 {
			binary.LittleEndian.PutUint32(buf[prev:prev+4], uint32(n-prev))
		}
		binary.LittleEndian.PutUint32(buf[n:n+4], 0)
		binary.LittleEndian.PutUint32(buf[n+4:n+8], uint32(rec.Action))
		binary.LittleEndian.PutUint32(buf[n+8:n+12], uint32(len(name)))
		copy(buf[n+HeaderSize:], name)

		prev = n
		consumed++
		if n+size > len(buf) {
			n += raw
			break
		}
		n += size
	}

	// Valid bytes end at the last entry's name, without trailing padding
	if prev >= 0 {
		last := int(binary.LittleEndian.Uint32(buf[prev+8 : prev+12]))
		n = prev + HeaderSize + last
	}
	return n, consumed, nil
}
