package brickwatch

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ghalamif/BrickWatch/internal/ports"
)

// ErrChannelArchiverClosed is returned when events are written to a channel
// archiver after its close function ran.
var ErrChannelArchiverClosed = errors.New("brickwatch: channel archiver closed")

// EventBatchSink receives ordered event batches dequeued from the pipeline.
type EventBatchSink func([]Event) error

// NewCallbackArchiver adapts a plain function into an Archiver so observers
// can subscribe without defining structs.
func NewCallbackArchiver(name string, fn EventBatchSink) Archiver {
	if name == "" {
		name = "callback"
	}
	return &callbackArchiver{name: name, fn: fn}
}

// NewChannelArchiver exposes archived batches on a channel; it returns the
// archiver, the read-only channel, and a close function the caller should
// invoke during shutdown.
func NewChannelArchiver(name string, buffer int) (Archiver, <-chan []Event, func()) {
	if name == "" {
		name = "channel"
	}
	if buffer < 0 {
		buffer = 0
	}
	ch := make(chan []Event, buffer)
	a := &channelArchiver{
		name:   name,
		ch:     ch,
		closed: make(chan struct{}),
	}
	return a, ch, func() { a.close() }
}

type callbackArchiver struct {
	name string
	fn   EventBatchSink
}

func (a *callbackArchiver) WriteBatch(events []ports.JournaledEvent) error {
	if a.fn == nil {
		return fmt.Errorf("callback archiver %q: nil handler", a.name)
	}
	if len(events) == 0 {
		return nil
	}
	return a.fn(convertBatch(events))
}

func (a *callbackArchiver) Name() string { return a.name }

type channelArchiver struct {
	name   string
	ch     chan []Event
	closed chan struct{}
	once   sync.Once
}

func (a *channelArchiver) WriteBatch(events []ports.JournaledEvent) error {
	select {
	case <-a.closed:
		return ErrChannelArchiverClosed
	default:
	}

	if len(events) == 0 {
		return nil
	}

	batch := convertBatch(events)

	select {
	case <-a.closed:
		return ErrChannelArchiverClosed
	case a.ch <- batch:
		return nil
	}
}

func (a *channelArchiver) Name() string { return a.name }

func (a *channelArchiver) close() {
	a.once.Do(func() {
		close(a.closed)
		close(a.ch)
	})
}

func convertBatch(events []ports.JournaledEvent) []Event {
	out := make([]Event, len(events))
	for i, item := range events {
		out[i] = *item.Event
	}
	return out
}
