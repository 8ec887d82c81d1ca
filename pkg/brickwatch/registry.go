package brickwatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ghalamif/BrickWatch/internal/domain"
	"github.com/ghalamif/BrickWatch/internal/ports"
)

// ErrUnauthorized is returned when the caller is not the principal an
// operation requires (owner for mutations, oracle for fulfillments).
var ErrUnauthorized = errors.New("brickwatch: unauthorized")

// ErrInvalidOwner is returned on an attempted transfer to an empty identity.
var ErrInvalidOwner = errors.New("brickwatch: invalid owner")

// ErrUnknownRequest is returned when a fulfillment or cancellation names a
// request that was never issued or is already consumed.
var ErrUnknownRequest = errors.New("brickwatch: unknown request")

// ErrRequestAlreadyPending is returned when a channel already has an
// outstanding request. A channel holds at most one request in flight.
var ErrRequestAlreadyPending = errors.New("brickwatch: request already pending")

// ErrUnknownChannel is returned for a channel outside the monitored set.
var ErrUnknownChannel = errors.New("brickwatch: unknown channel")

// EmitFunc receives the single notification of a successful mutation. A
// non-nil error aborts the operation before any state changes.
type EmitFunc func(*domain.Event) error

// RegistryConfig is the construction-time identity of a Registry. Everything
// here is immutable after construction except fee and owner, which have
// dedicated mutators.
type RegistryConfig struct {
	Owner        domain.Principal
	Oracle       domain.Principal
	InitialFee   uint64
	Jobs         map[domain.Channel]domain.JobID
	CallbackURL  string
	CallbackPath string
}

type channelState struct {
	value     uint64
	jobID     domain.JobID
	updatedAt time.Time
	pending   domain.RequestID
}

// Registry is the authoritative record of building telemetry and the
// append-only maintenance ledger. Values enter only through oracle
// fulfillments; every mutation is gated on the caller's principal and emits
// exactly one event before returning success. All operations are serialized
// by a single mutex, so each runs to completion with no interleaving.
type Registry struct {
	mu       sync.Mutex
	owner    domain.Principal
	oracle   domain.Principal
	fee      uint64
	channels map[domain.Channel]*channelState
	pending  map[domain.RequestID]domain.Channel
	records  []domain.MaintenanceRecord

	clock        func() time.Time
	newRequestID func() domain.RequestID
	dispatch     ports.Dispatcher
	emit         EmitFunc
	callbackURL  string
	callbackPath string
}

// RegistryOption customizes a Registry at construction.
type RegistryOption func(*Registry)

// WithClock overrides the timestamp source, mainly for tests.
func WithClock(clock func() time.Time) RegistryOption {
	return func(r *Registry) {
		if clock != nil {
			r.clock = clock
		}
	}
}

// WithRequestIDs overrides request id allocation. The replacement must keep
// ids unique for the lifetime of the registry.
func WithRequestIDs(next func() domain.RequestID) RegistryOption {
	return func(r *Registry) {
		if next != nil {
			r.newRequestID = next
		}
	}
}

// NewRegistry builds a registry owned by cfg.Owner. dispatch carries update
// requests to the oracle network; emit receives one event per successful
// mutation (nil discards events, useful for bare library use).
func NewRegistry(cfg RegistryConfig, dispatch ports.Dispatcher, emit EmitFunc, opts ...RegistryOption) (*Registry, error) {
	if cfg.Owner == "" {
		return nil, ErrInvalidOwner
	}
	if cfg.Oracle == "" {
		return nil, fmt.Errorf("oracle principal is required")
	}
	if dispatch == nil {
		return nil, fmt.Errorf("dispatcher is required")
	}
	if emit == nil {
		emit = func(*domain.Event) error { return nil }
	}

	channels := make(map[domain.Channel]*channelState, len(domain.Channels()))
	for _, ch := range domain.Channels() {
		job, ok := cfg.Jobs[ch]
		if !ok || job == "" {
			return nil, fmt.Errorf("missing job id for channel %s", ch)
		}
		channels[ch] = &channelState{jobID: job}
	}

	callbackPath := cfg.CallbackPath
	if callbackPath == "" {
		callbackPath = FulfillPath
	}

	r := &Registry{
		owner:        cfg.Owner,
		oracle:       cfg.Oracle,
		fee:          cfg.InitialFee,
		channels:     channels,
		pending:      make(map[domain.RequestID]domain.Channel),
		clock:        time.Now,
		newRequestID: func() domain.RequestID { return domain.RequestID(uuid.NewString()) },
		dispatch:     dispatch,
		emit:         emit,
		callbackURL:  cfg.CallbackURL,
		callbackPath: callbackPath,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r, nil
}

// RequestUpdate issues one oracle request for the channel. Owner only. A
// channel with an outstanding request rejects further ones until fulfilled
// or cancelled. On any error nothing is recorded and no event is emitted.
func (r *Registry) RequestUpdate(ctx context.Context, caller domain.Principal, ch domain.Channel) (domain.RequestID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if caller != r.owner {
		return "", ErrUnauthorized
	}
	state, ok := r.channels[ch]
	if !ok {
		return "", ErrUnknownChannel
	}
	if state.pending != "" {
		return "", ErrRequestAlreadyPending
	}

	id := r.newRequestID()
	req := ports.OracleRequest{
		JobID:        state.jobID,
		RequestID:    id,
		Channel:      ch.String(),
		CallbackURL:  r.callbackURL,
		CallbackPath: r.callbackPath,
		Fee:          r.fee,
	}
	if err := r.dispatch.Dispatch(ctx, req); err != nil {
		return "", err
	}

	// The dispatch is out the door at this point. If the emit below fails
	// the request is NOT recorded: a fulfillment for it will be rejected as
	// unknown, which keeps the registry consistent.
	if err := r.emit(&domain.Event{
		Kind:      domain.EventUpdateRequested,
		Timestamp: r.clock(),
		Channel:   ch.String(),
		RequestID: id,
		Fee:       r.fee,
	}); err != nil {
		return "", err
	}

	state.pending = id
	r.pending[id] = ch
	return id, nil
}

// Fulfill applies an oracle response. Oracle only. The pending entry is
// consumed before the value is applied, so a request fulfills at most once.
func (r *Registry) Fulfill(caller domain.Principal, id domain.RequestID, value uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if caller != r.oracle {
		return ErrUnauthorized
	}
	ch, ok := r.pending[id]
	if !ok {
		return ErrUnknownRequest
	}

	now := r.clock()
	if err := r.emit(&domain.Event{
		Kind:      domain.EventChannelUpdated,
		Timestamp: now,
		Channel:   ch.String(),
		RequestID: id,
		Value:     value,
	}); err != nil {
		return err
	}

	// Consume first, then apply: the request id is dead before the value
	// lands, whatever the emit sink did with control flow.
	delete(r.pending, id)
	state := r.channels[ch]
	state.pending = ""
	state.value = value
	state.updatedAt = now
	return nil
}

// CancelRequest clears the channel's outstanding request without applying a
// value. Owner only. A fulfillment arriving after cancellation is rejected
// as unknown. This is the escape hatch for an oracle that never answers.
func (r *Registry) CancelRequest(caller domain.Principal, ch domain.Channel) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if caller != r.owner {
		return ErrUnauthorized
	}
	state, ok := r.channels[ch]
	if !ok {
		return ErrUnknownChannel
	}
	if state.pending == "" {
		return ErrUnknownRequest
	}

	id := state.pending
	if err := r.emit(&domain.Event{
		Kind:      domain.EventRequestCancelled,
		Timestamp: r.clock(),
		Channel:   ch.String(),
		RequestID: id,
	}); err != nil {
		return err
	}

	delete(r.pending, id)
	state.pending = ""
	return nil
}

// AddRecord appends one maintenance record. Owner only. Timestamps are
// assigned here and never move backwards across records.
func (r *Registry) AddRecord(caller domain.Principal, description string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if caller != r.owner {
		return ErrUnauthorized
	}

	ts := r.clock()
	if n := len(r.records); n > 0 && ts.Before(r.records[n-1].Timestamp) {
		ts = r.records[n-1].Timestamp
	}

	if err := r.emit(&domain.Event{
		Kind:        domain.EventMaintenanceAdded,
		Timestamp:   ts,
		Description: description,
	}); err != nil {
		return err
	}

	r.records = append(r.records, domain.MaintenanceRecord{
		Description: description,
		Timestamp:   ts,
	})
	return nil
}

// SetFee changes the price attached to future oracle requests. Owner only.
// Requests already in flight keep the fee they were issued with.
func (r *Registry) SetFee(caller domain.Principal, fee uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if caller != r.owner {
		return ErrUnauthorized
	}

	if err := r.emit(&domain.Event{
		Kind:      domain.EventFeeChanged,
		Timestamp: r.clock(),
		Fee:       fee,
	}); err != nil {
		return err
	}

	r.fee = fee
	return nil
}

// TransferOwnership hands the registry to a new owner. Owner only; the new
// owner must be a non-empty identity.
func (r *Registry) TransferOwnership(caller, newOwner domain.Principal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if caller != r.owner {
		return ErrUnauthorized
	}
	if newOwner == "" {
		return ErrInvalidOwner
	}

	if err := r.emit(&domain.Event{
		Kind:      domain.EventOwnershipTransferred,
		Timestamp: r.clock(),
		PrevOwner: r.owner,
		Owner:     newOwner,
	}); err != nil {
		return err
	}

	r.owner = newOwner
	return nil
}

// Owner returns the current owning principal.
func (r *Registry) Owner() domain.Principal {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.owner
}

// Fee returns the price attached to the next oracle request.
func (r *Registry) Fee() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fee
}

// Value returns the latest recorded value for the channel.
func (r *Registry) Value(ch domain.Channel) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	state, ok := r.channels[ch]
	if !ok {
		return 0, ErrUnknownChannel
	}
	return state.value, nil
}

// Reading returns the full state of one channel.
func (r *Registry) Reading(ch domain.Channel) (domain.Reading, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	state, ok := r.channels[ch]
	if !ok {
		return domain.Reading{}, ErrUnknownChannel
	}
	return r.readingLocked(ch, state), nil
}

// Snapshot returns all channel readings in declaration order.
func (r *Registry) Snapshot() []domain.Reading {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Reading, 0, len(r.channels))
	for _, ch := range domain.Channels() {
		out = append(out, r.readingLocked(ch, r.channels[ch]))
	}
	return out
}

func (r *Registry) readingLocked(ch domain.Channel, state *channelState) domain.Reading {
	return domain.Reading{
		Channel:   ch,
		Value:     state.value,
		JobID:     state.jobID,
		UpdatedAt: state.updatedAt,
		Pending:   state.pending,
	}
}

// Pending reports the channel's outstanding request id, if any.
func (r *Registry) Pending(ch domain.Channel) (domain.RequestID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	state, ok := r.channels[ch]
	if !ok {
		return "", ErrUnknownChannel
	}
	return state.pending, nil
}

// PendingCount reports how many requests await fulfillment.
func (r *Registry) PendingCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

// RecordCount reports the length of the maintenance ledger.
func (r *Registry) RecordCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

// Record returns the ledger entry at index i in append order.
func (r *Registry) Record(i int) (domain.MaintenanceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i < 0 || i >= len(r.records) {
		return domain.MaintenanceRecord{}, fmt.Errorf("record index %d out of range [0,%d)", i, len(r.records))
	}
	return r.records[i], nil
}

// Records returns a copy of the whole ledger in append order.
func (r *Registry) Records() []domain.MaintenanceRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.MaintenanceRecord(nil), r.records...)
}
