package core

import "github.com/lumipallolabs/dirwatch/internal/record"

// Correlate turns one decoded batch into semantic events, in batch order.
//
// A RenamedFrom record immediately followed by a RenamedTo record becomes one
// RenameEvent; this relies on the delivery order of the operating system and
// does not verify that both records describe the same file. A RenamedFrom at
// the end of a batch is forwarded on its own rather than held back for the
// next batch.
func Correlate(records []record.ChangeRecord) []Event {
	events := make([]Event, 0, len(records))
	for i := 0; i < len(records); i++ {
		rec := records[i]
		if rec.Action == record.ActionRenamedFrom && i+1 < len(records) &&
			records[i+1].Action == record.ActionRenamedTo {
			events = append(events, RenameEvent{OldName: rec.Name, NewName: records[i+1].Name})
			i++
			continue
		}
		events = append(events, ChangeEvent{Action: rec.Action, Name: rec.Name})
	}
	return events
}
