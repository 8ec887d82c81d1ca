package brickwatch

import (
	"errors"
	"testing"
	"time"
)

func TestNewCallbackArchiver(t *testing.T) {
	var received []Event
	ar := NewCallbackArchiver("cb", func(batch []Event) error {
		received = append(received, batch...)
		return nil
	})

	input := Event{
		Kind:      EventChannelUpdated,
		Timestamp: time.Unix(1700000000, 0).UTC(),
		Channel:   "temperature",
		RequestID: "r-17",
		Value:     68,
	}

	if err := ar.WriteBatch([]JournaledEvent{{ID: 4, Event: &input}}); err != nil {
		t.Fatalf("WriteBatch returned error: %v", err)
	}
	if len(received) != 1 {
		t.Fatalf("expected 1 batch entry, got %d", len(received))
	}
	got := received[0]
	if got.Kind != input.Kind || got.RequestID != input.RequestID || got.Value != 68 {
		t.Fatalf("mismatched event payload: %+v vs %+v", got, input)
	}
	if ar.Name() != "cb" {
		t.Fatalf("expected archiver name cb, got %s", ar.Name())
	}
}

func TestNewCallbackArchiverNilHandler(t *testing.T) {
	ar := NewCallbackArchiver("", nil)
	if ar.Name() != "callback" {
		t.Fatalf("expected default name callback, got %s", ar.Name())
	}

	e := Event{Kind: EventFeeChanged, Fee: 2}
	if err := ar.WriteBatch([]JournaledEvent{{ID: 1, Event: &e}}); err == nil {
		t.Fatalf("expected error when callback is nil")
	}
}

func TestNewCallbackArchiverEmptyBatch(t *testing.T) {
	calls := 0
	ar := NewCallbackArchiver("cb", func([]Event) error {
		calls++
		return nil
	})

	if err := ar.WriteBatch(nil); err != nil {
		t.Fatalf("empty batch should be a no-op, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("handler must not run for an empty batch, ran %d times", calls)
	}
}

func TestNewChannelArchiver(t *testing.T) {
	ar, ch, closeFn := NewChannelArchiver("fanout", 1)
	defer closeFn()

	input := Event{Kind: EventMaintenanceAdded, Description: "Facade wash"}
	errCh := make(chan error, 1)

	go func() {
		errCh <- ar.WriteBatch([]JournaledEvent{{ID: 2, Event: &input}})
	}()

	var batch []Event
	select {
	case batch = <-ch:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for channel batch")
	}

	if err := <-errCh; err != nil {
		t.Fatalf("WriteBatch returned error: %v", err)
	}
	if len(batch) != 1 || batch[0].Description != input.Description {
		t.Fatalf("unexpected batch data: %+v", batch)
	}

	closeFn()
	if err := ar.WriteBatch([]JournaledEvent{{ID: 3, Event: &input}}); !errors.Is(err, ErrChannelArchiverClosed) {
		t.Fatalf("expected ErrChannelArchiverClosed, got %v", err)
	}
}
