package pipeline

import (
	"fmt"
	"time"

	"github.com/ghalamif/BrickWatch/internal/adapters/observability"
	"github.com/ghalamif/BrickWatch/internal/domain"
	"github.com/ghalamif/BrickWatch/internal/ports"
)

// ReplayJournal pushes every uncommitted journal entry back into the queue.
// Called once on startup so events that were journaled but never archived
// before a crash are not lost.
func ReplayJournal(j ports.EventJournal, q ports.EventQueue, pol ports.Policy, obs ports.Observability) error {
	stats := j.Stats()
	if stats.LatestAppended == 0 {
		return nil
	}
	start := stats.OldestUncommitted
	if start == 0 || start > stats.LatestAppended {
		return nil
	}

	sleep := pol.IdleSleep
	if sleep <= 0 {
		sleep = 5 * time.Millisecond
	}

	var replayed int
	err := j.Iterate(start, func(id ports.EntryID, e *domain.Event) error {
		for {
			if q.Enqueue(id, e) {
				replayed++
				return nil
			}
			switch pol.OnQueueFull {
			case "drop", "reject":
				return fmt.Errorf("queue full during journal replay")
			default:
				time.Sleep(sleep)
			}
		}
	})
	if err != nil {
		return err
	}
	if replayed > 0 {
		obs.LogInfo("journal_replay_complete",
			ports.Field{Key: "events", Value: replayed},
			ports.Field{Key: "from_id", Value: start})
	}
	return nil
}

// RunArchivePipeline drains the queue in batches, writes each batch to the
// archiver, and advances the journal commit watermark. A failed batch is not
// retried here: its entries stay uncommitted in the journal and replay on
// the next start.
func RunArchivePipeline(j ports.EventJournal, q ports.EventQueue, ar ports.Archiver, pol ports.Policy, obs ports.Observability, stop <-chan struct{}) {
	idle := pol.IdleSleep
	if idle <= 0 {
		idle = 5 * time.Millisecond
	}

	for {
		select {
		case <-stop:
			return
		default:
		}

		batch := q.DequeueBatch(pol.MaxBatchSize)
		if len(batch) == 0 {
			time.Sleep(idle)
			continue
		}

		var maxID ports.EntryID
		for _, item := range batch {
			if item.ID > maxID {
				maxID = item.ID
			}
		}

		start := time.Now()
		if err := ar.WriteBatch(batch); err != nil {
			obs.LogError("archive_write_failed", err,
				ports.Field{Key: "archiver", Value: ar.Name()},
				ports.Field{Key: "batch", Value: len(batch)})
			time.Sleep(idle)
			continue
		}
		obs.ObserveLatency(observability.MetricArchiveLatency, time.Since(start).Seconds())
		obs.IncCounter(observability.MetricEventsArchived, float64(len(batch)))

		if err := j.Commit(maxID); err != nil {
			obs.LogError("journal_commit_failed", err)
		}
	}
}
