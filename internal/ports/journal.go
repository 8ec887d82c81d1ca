package ports

import "github.com/ghalamif/BrickWatch/internal/domain"

// EntryID is the position of an event in the append-only journal.
type EntryID uint64

// EventJournal is the durable event log. Appends are acknowledged before the
// originating mutation reports success; the commit watermark tracks how far
// downstream archiving has progressed.
type EventJournal interface {
	Append(e *domain.Event) (EntryID, error)
	Iterate(from EntryID, fn func(id EntryID, e *domain.Event) error) error
	Commit(upto EntryID) error
	Stats() JournalStats
}

// JournalStats exposes journal metadata for observability and replay.
type JournalStats struct {
	OldestUncommitted EntryID
	LatestAppended    EntryID
	SizeBytes         int64
}
