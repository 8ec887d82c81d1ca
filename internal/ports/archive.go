package ports

// Archiver persists batches of journaled events downstream. Writes must be
// idempotent with respect to the entry ID: a batch replayed after a crash is
// applied at most once.
type Archiver interface {
	WriteBatch(events []JournaledEvent) error
	Name() string
}
