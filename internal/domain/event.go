package domain

import "time"

// EventKind discriminates the notification emitted by a mutation.
type EventKind string

const (
	EventUpdateRequested      EventKind = "update_requested"
	EventChannelUpdated       EventKind = "channel_updated"
	EventRequestCancelled     EventKind = "request_cancelled"
	EventMaintenanceAdded     EventKind = "maintenance_added"
	EventOwnershipTransferred EventKind = "ownership_transferred"
	EventFeeChanged           EventKind = "fee_changed"
)

// Event is one append-only notification. Every successful mutation emits
// exactly one Event before returning; failed operations emit nothing.
// Unused string fields are elided from the JSON encoding; Value and Fee are
// always written so observers can tell "updated to zero" from "no value".
type Event struct {
	Kind        EventKind `json:"kind"`
	Timestamp   time.Time `json:"ts"`
	Channel     string    `json:"channel,omitempty"`
	RequestID   RequestID `json:"request_id,omitempty"`
	Value       uint64    `json:"value"`
	Fee         uint64    `json:"fee"`
	Description string    `json:"description,omitempty"`
	Owner       Principal `json:"owner,omitempty"`
	PrevOwner   Principal `json:"prev_owner,omitempty"`
}
