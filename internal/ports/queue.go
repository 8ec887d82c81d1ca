package ports

import "github.com/ghalamif/BrickWatch/internal/domain"

// JournaledEvent pairs an event with its journal position so archivers can
// key writes idempotently.
type JournaledEvent struct {
	ID    EntryID
	Event *domain.Event
}

// EventQueue is the bounded buffer between the registry and the archiver.
type EventQueue interface {
	Enqueue(id EntryID, e *domain.Event) bool
	DequeueBatch(max int) []JournaledEvent
	Len() int
}
