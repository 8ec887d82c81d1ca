package queue

import (
	"testing"

	"github.com/ghalamif/BrickWatch/internal/domain"
	"github.com/ghalamif/BrickWatch/internal/ports"
)

func TestMemQueuePreservesFIFOOrder(t *testing.T) {
	q := NewMemQueue(8)

	requested := &domain.Event{Kind: domain.EventUpdateRequested, Channel: "occupancy", RequestID: "r-11"}
	updated := &domain.Event{Kind: domain.EventChannelUpdated, Channel: "occupancy", RequestID: "r-11", Value: 140}
	serviced := &domain.Event{Kind: domain.EventMaintenanceAdded, Description: "Sensor recalibration"}

	for i, e := range []*domain.Event{requested, updated, serviced} {
		if !q.Enqueue(ports.EntryID(i+1), e) {
			t.Fatalf("enqueue %d failed below capacity", i+1)
		}
	}

	first := q.DequeueBatch(2)
	if len(first) != 2 || first[0].ID != 1 || first[1].Event.Value != 140 {
		t.Fatalf("unexpected first batch: %+v", first)
	}

	// max <= 0 drains the rest.
	rest := q.DequeueBatch(0)
	if len(rest) != 1 || rest[0].Event.Kind != domain.EventMaintenanceAdded {
		t.Fatalf("unexpected drain batch: %+v", rest)
	}
	if q.Len() != 0 {
		t.Fatalf("queue should be empty, got %d", q.Len())
	}
}

func TestMemQueueBoundedCapacity(t *testing.T) {
	q := NewMemQueue(2)
	fee := &domain.Event{Kind: domain.EventFeeChanged, Fee: 3}

	if !q.Enqueue(1, fee) || !q.Enqueue(2, fee) {
		t.Fatalf("expected enqueue within capacity")
	}
	if q.Enqueue(3, fee) {
		t.Fatalf("enqueue must fail at capacity")
	}

	if got := q.DequeueBatch(1); len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("unexpected dequeued entry: %+v", got)
	}
	if !q.Enqueue(4, fee) {
		t.Fatalf("expected capacity to free up after dequeue")
	}
	if q.Len() != 2 {
		t.Fatalf("expected 2 buffered events, got %d", q.Len())
	}
}
