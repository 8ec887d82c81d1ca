package brickwatch

import (
	"github.com/ghalamif/BrickWatch/internal/domain"
	"github.com/ghalamif/BrickWatch/internal/ports"
)

// Channel identifies one monitored building quantity.
type Channel = domain.Channel

// The seven monitored channels.
const (
	Temperature       = domain.Temperature
	Humidity          = domain.Humidity
	Occupancy         = domain.Occupancy
	EnergyConsumption = domain.EnergyConsumption
	StructuralHealth  = domain.StructuralHealth
	WaterConsumption  = domain.WaterConsumption
	AirQuality        = domain.AirQuality
)

// ParseChannel maps a channel name back to its identifier.
func ParseChannel(s string) (Channel, error) { return domain.ParseChannel(s) }

// Channels returns all monitored channels in declaration order.
func Channels() []Channel { return domain.Channels() }

type (
	// JobID names the off-system oracle computation for a channel.
	JobID = domain.JobID
	// RequestID correlates an oracle request with its fulfillment.
	RequestID = domain.RequestID
	// Principal is an opaque caller identity.
	Principal = domain.Principal
	// Reading is the latest recorded state of a channel.
	Reading = domain.Reading
	// MaintenanceRecord is one append-only ledger entry.
	MaintenanceRecord = domain.MaintenanceRecord
	// Event is the notification emitted by every successful mutation.
	Event = domain.Event
	// EventKind discriminates notifications.
	EventKind = domain.EventKind
)

// Event kinds.
const (
	EventUpdateRequested      = domain.EventUpdateRequested
	EventChannelUpdated       = domain.EventChannelUpdated
	EventRequestCancelled     = domain.EventRequestCancelled
	EventMaintenanceAdded     = domain.EventMaintenanceAdded
	EventOwnershipTransferred = domain.EventOwnershipTransferred
	EventFeeChanged           = domain.EventFeeChanged
)

type (
	// Dispatcher hands update requests to the oracle network.
	Dispatcher = ports.Dispatcher
	// OracleRequest is the outbound payload of one update request.
	OracleRequest = ports.OracleRequest
	// EventJournal is the durable append-only event log.
	EventJournal = ports.EventJournal
	// JournalStats exposes journal metadata.
	JournalStats = ports.JournalStats
	// EntryID is a position in the event journal.
	EntryID = ports.EntryID
	// EventQueue buffers journaled events for the archiver.
	EventQueue = ports.EventQueue
	// JournaledEvent pairs an event with its journal position.
	JournaledEvent = ports.JournaledEvent
	// Archiver persists batches of journaled events downstream.
	Archiver = ports.Archiver
	// Observability emits metrics and logs for the node.
	Observability = ports.Observability
	// Field is a structured log field.
	Field = ports.Field
	// Policy controls journal/queue thresholds.
	Policy = ports.Policy
)
