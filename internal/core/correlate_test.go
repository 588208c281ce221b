package core

import (
	"testing"

	"github.com/lumipallolabs/dirwatch/internal/record"
)

func TestCorrelateMergesRename(t *testing.T) {
	events := Correlate([]record.ChangeRecord{
		{Action: record.ActionRenamedFrom, Name: "old.txt"},
		{Action: record.ActionRenamedTo, Name: "new.txt"},
	})
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	rename, ok := events[0].(RenameEvent)
	if !ok {
		t.Fatalf("expected RenameEvent, got %T", events[0])
	}
	if rename.OldName != "old.txt" || rename.NewName != "new.txt" {
		t.Errorf("unexpected names %q -> %q", rename.OldName, rename.NewName)
	}
}

func TestCorrelateOrphanAtEndOfBatch(t *testing.T) {
	events := Correlate([]record.ChangeRecord{
		{Action: record.ActionCreated, Name: "a"},
		{Action: record.ActionRenamedFrom, Name: "b"},
	})
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	orphan, ok := events[1].(ChangeEvent)
	if !ok || orphan.Action != record.ActionRenamedFrom || orphan.Name != "b" {
		t.Errorf("expected orphan renamed-from for b, got %#v", events[1])
	}
}

func TestCorrelateFromFollowedByOther(t *testing.T) {
	events := Correlate([]record.ChangeRecord{
		{Action: record.ActionRenamedFrom, Name: "a"},
		{Action: record.ActionModified, Name: "c"},
		{Action: record.ActionRenamedTo, Name: "b"},
	})
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	for i, want := range []record.Action{record.ActionRenamedFrom, record.ActionModified, record.ActionRenamedTo} {
		e, ok := events[i].(ChangeEvent)
		if !ok || e.Action != want {
			t.Errorf("event %d: expected %v, got %#v", i, want, events[i])
		}
	}
}

func TestCorrelatePreservesOrder(t *testing.T) {
	records := []record.ChangeRecord{
		{Action: record.ActionCreated, Name: "1"},
		{Action: record.ActionRenamedFrom, Name: "2"},
		{Action: record.ActionRenamedTo, Name: "3"},
		{Action: record.ActionDeleted, Name: "4"},
		{Action: record.ActionRenamedTo, Name: "5"},
	}
	events := Correlate(records)
	if len(events) != 4 {
		t.Fatalf("expected 4 events, got %d", len(events))
	}
	if _, ok := events[1].(RenameEvent); !ok {
		t.Errorf("expected rename at position 1, got %T", events[1])
	}
	if e := events[3].(ChangeEvent); e.Action != record.ActionRenamedTo || e.Name != "5" {
		t.Errorf("expected orphan renamed-to last, got %#v", e)
	}
}

func TestCorrelateEmpty(t *testing.T) {
	if events := Correlate(nil); len(events) != 0 {
		t.Errorf("expected no events, got %d", len(events))
	}
}
