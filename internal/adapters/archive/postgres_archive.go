package archive

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/ghalamif/BrickWatch/internal/domain"
	"github.com/ghalamif/BrickWatch/internal/ports"
)

// PostgresArchiver mirrors the event journal into Postgres: every event lands
// in an append-only events table keyed by its journal entry id, and
// channel_updated events additionally refresh a latest-readings table.
// Both statements are idempotent so replayed batches are harmless.
type PostgresArchiver struct {
	db            *sql.DB
	eventsTable   string
	readingsTable string
}

func NewPostgresArchiver(db *sql.DB, eventsTable, readingsTable string) *PostgresArchiver {
	return &PostgresArchiver{db: db, eventsTable: eventsTable, readingsTable: readingsTable}
}

func (p *PostgresArchiver) Name() string { return "postgres" }

func (p *PostgresArchiver) WriteBatch(events []ports.JournaledEvent) error {
	if len(events) == 0 {
		return nil
	}

	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(p.eventsTable)
	b.WriteString(" (entry_id, kind, ts, channel, request_id, value, fee, description, owner, prev_owner) VALUES ")

	args := make([]any, 0, len(events)*10)
	for i, item := range events {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(fmt.Sprintf("($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
			len(args)+1, len(args)+2, len(args)+3, len(args)+4, len(args)+5,
			len(args)+6, len(args)+7, len(args)+8, len(args)+9, len(args)+10))

		e := item.Event
		args = append(args,
			uint64(item.ID),
			string(e.Kind),
			e.Timestamp,
			e.Channel,
			string(e.RequestID),
			e.Value,
			e.Fee,
			e.Description,
			string(e.Owner),
			string(e.PrevOwner),
		)
	}
	b.WriteString(" ON CONFLICT (entry_id) DO NOTHING")

	if _, err := p.db.Exec(b.String(), args...); err != nil {
		return fmt.Errorf("archive events: %w", err)
	}

	upsert := "INSERT INTO " + p.readingsTable +
		" (channel, value, updated_at) VALUES ($1,$2,$3)" +
		" ON CONFLICT (channel) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at"

	for _, item := range events {
		e := item.Event
		if e.Kind != domain.EventChannelUpdated {
			continue
		}
		if _, err := p.db.Exec(upsert, e.Channel, e.Value, e.Timestamp); err != nil {
			return fmt.Errorf("archive reading %s: %w", e.Channel, err)
		}
	}
	return nil
}

var _ ports.Archiver = (*PostgresArchiver)(nil)
