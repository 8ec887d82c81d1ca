package queue

import (
	"sync"

	"github.com/ghalamif/BrickWatch/internal/domain"
	"github.com/ghalamif/BrickWatch/internal/ports"
)

// MemQueue buffers journaled events between the registry's emit path and the
// archive pipeline. It is bounded: Enqueue reports false at capacity and
// leaves the backpressure decision to the caller's policy.
type MemQueue struct {
	mu    sync.Mutex
	items []ports.JournaledEvent
	limit int
}

func NewMemQueue(limit int) *MemQueue {
	if limit < 1 {
		limit = 1
	}
	return &MemQueue{limit: limit}
}

func (q *MemQueue) Enqueue(id ports.EntryID, e *domain.Event) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == q.limit {
		return false
	}
	q.items = append(q.items, ports.JournaledEvent{ID: id, Event: e})
	return true
}

// DequeueBatch removes up to max events in FIFO order. A max of zero or
// less drains everything currently buffered.
func (q *MemQueue) DequeueBatch(max int) []ports.JournaledEvent {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := len(q.items)
	if n == 0 {
		return nil
	}
	if max > 0 && max < n {
		n = max
	}
	batch := make([]ports.JournaledEvent, n)
	copy(batch, q.items[:n])
	q.items = q.items[:copy(q.items, q.items[n:])]
	return batch
}

func (q *MemQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

var _ ports.EventQueue = (*MemQueue)(nil)
