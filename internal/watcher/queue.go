package watcher

import (
	"github.com/lumipallolabs/dirwatch/internal/logging"
	"github.com/lumipallolabs/dirwatch/internal/record"
)

// queue holds translated records between native delivery and Read, for
// sources whose platform does not produce packed batches itself.
type queue struct {
	records  []record.ChangeRecord
	overflow bool
}

func (q *queue) push(recs ...record.ChangeRecord) {
	q.records = append(q.records, recs...)
}

// markOverflow discards everything queued; the next fill reports an empty batch
func (q *queue) markOverflow() {
	q.records = q.records[:0]
	q.overflow = true
}

func (q *queue) empty() bool {
	return len(q.records) == 0 && !q.overflow
}

// fill packs queued records into buf. Records that do not fit stay queued for
// the next call. A record that cannot fit even into an empty buffer is treated
// like an operating system overflow.
func (q *queue) fill(buf []byte) (int, error) {
	if q.overflow {
		q.overflow = false
		return 0, nil
	}

	n, consumed, err := record.Pack(buf, q.records)
	if err != nil {
		return 0, err
	}
	if consumed == 0 && len(q.records) > 0 {
		logging.Watch.Printf("record for %q does not fit a %d byte buffer, dropping %d queued",
			q.records[0].Name, len(buf), len(q.records))
		q.records = q.records[:0]
		return 0, nil
	}

	q.records = append(q.records[:0], q.records[consumed:]...)
	return n, nil
}
