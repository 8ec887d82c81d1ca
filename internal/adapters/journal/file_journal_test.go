package journal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ghalamif/BrickWatch/internal/domain"
	"github.com/ghalamif/BrickWatch/internal/ports"
)

func TestFileJournalAppendIterateAndReplay(t *testing.T) {
	dir := t.TempDir()

	j, err := NewFileJournal(dir)
	if err != nil {
		t.Fatalf("new journal: %v", err)
	}

	e1 := &domain.Event{Kind: domain.EventUpdateRequested, Channel: "temperature", RequestID: "r-1"}
	e2 := &domain.Event{Kind: domain.EventChannelUpdated, Channel: "temperature", Value: 72}

	id1, err := j.Append(e1)
	if err != nil || id1 == 0 {
		t.Fatalf("append event 1: %v id=%d", err, id1)
	}
	id2, err := j.Append(e2)
	if err != nil || id2 != id1+1 {
		t.Fatalf("append event 2: %v id=%d", err, id2)
	}

	var kinds []domain.EventKind
	if err := j.Iterate(1, func(id ports.EntryID, e *domain.Event) error {
		kinds = append(kinds, e.Kind)
		return nil
	}); err != nil {
		t.Fatalf("iterate: %v", err)
	}
	if len(kinds) != 2 || kinds[1] != domain.EventChannelUpdated {
		t.Fatalf("unexpected iterated kinds: %v", kinds)
	}

	if err := j.Commit(id2); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if err := j.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Reopen and confirm the commit mark and last entry survived.
	j2, err := NewFileJournal(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	stats := j2.Stats()
	if stats.LatestAppended != id2 {
		t.Fatalf("expected latest appended %d, got %d", id2, stats.LatestAppended)
	}
	if stats.OldestUncommitted != id2+1 {
		t.Fatalf("expected oldest uncommitted %d, got %d", id2+1, stats.OldestUncommitted)
	}
	if err := j2.Close(); err != nil {
		t.Fatalf("close reopened: %v", err)
	}
}

func TestFileJournalIterateFromOffset(t *testing.T) {
	j, err := NewFileJournal(t.TempDir())
	if err != nil {
		t.Fatalf("new journal: %v", err)
	}
	defer j.Close()

	for i := 0; i < 3; i++ {
		if _, err := j.Append(&domain.Event{Kind: domain.EventFeeChanged, Fee: uint64(i)}); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	var seen []ports.EntryID
	if err := j.Iterate(3, func(id ports.EntryID, e *domain.Event) error {
		seen = append(seen, id)
		return nil
	}); err != nil {
		t.Fatalf("iterate: %v", err)
	}
	if len(seen) != 1 || seen[0] != 3 {
		t.Fatalf("expected only entry 3, got %v", seen)
	}
}

func TestFileJournalTruncatesTornTail(t *testing.T) {
	dir := t.TempDir()

	j, err := NewFileJournal(dir)
	if err != nil {
		t.Fatalf("new journal: %v", err)
	}
	id, err := j.Append(&domain.Event{Kind: domain.EventMaintenanceAdded, Description: "filter swap"})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := j.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Simulate a crash mid-append by writing a partial frame.
	path := filepath.Join(dir, "events.log")
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		t.Fatalf("open for garbage: %v", err)
	}
	if _, err := f.Write([]byte{0x00, 0x00, 0xFF}); err != nil {
		t.Fatalf("write garbage: %v", err)
	}
	f.Close()

	j2, err := NewFileJournal(dir)
	if err != nil {
		t.Fatalf("reopen after garbage: %v", err)
	}
	defer j2.Close()

	if got := j2.Stats().LatestAppended; got != id {
		t.Fatalf("expected latest appended %d after truncation, got %d", id, got)
	}
	next, err := j2.Append(&domain.Event{Kind: domain.EventFeeChanged, Fee: 2})
	if err != nil {
		t.Fatalf("append after truncation: %v", err)
	}
	if next != id+1 {
		t.Fatalf("expected id %d after truncation, got %d", id+1, next)
	}
}
