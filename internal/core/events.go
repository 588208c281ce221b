package core

import "github.com/lumipallolabs/dirwatch/internal/record"

// Event is one semantic change produced from a batch of records
type Event interface {
	isEvent()
}

// ChangeEvent is a single record passed through unchanged. Orphaned halves of
// a rename are ChangeEvents too.
type ChangeEvent struct {
	Action record.Action
	Name   string
}

func (ChangeEvent) isEvent() {}

// RenameEvent merges a renamed-from record with the renamed-to record that
// immediately follows it.
type RenameEvent struct {
	OldName string
	NewName string
}

func (RenameEvent) isEvent() {}
