package brickwatch

import (
	"net/http"
	"time"

	base "github.com/ghalamif/BrickWatch/pkg/brickwatch"
)

// Re-exported errors for convenience.
var (
	ErrUnauthorized          = base.ErrUnauthorized
	ErrInvalidOwner          = base.ErrInvalidOwner
	ErrUnknownRequest        = base.ErrUnknownRequest
	ErrRequestAlreadyPending = base.ErrRequestAlreadyPending
	ErrUnknownChannel        = base.ErrUnknownChannel
	ErrJournalFull           = base.ErrJournalFull
	ErrChannelArchiverClosed = base.ErrChannelArchiverClosed
)

// Type aliases so consumers can import github.com/ghalamif/BrickWatch directly.
type (
	Config            = base.Config
	BuildingConfig    = base.BuildingConfig
	APIConfig         = base.APIConfig
	ArchiveConfig     = base.ArchiveConfig
	MetricsConfig     = base.MetricsConfig
	JournalConfig     = base.JournalConfig
	OracleConfig      = base.OracleConfig
	Policy            = base.Policy
	Registry          = base.Registry
	RegistryConfig    = base.RegistryConfig
	RegistryOption    = base.RegistryOption
	Runtime           = base.Runtime
	RuntimeOption     = base.RuntimeOption
	EmitFunc          = base.EmitFunc
	Channel           = base.Channel
	JobID             = base.JobID
	RequestID         = base.RequestID
	Principal         = base.Principal
	Reading           = base.Reading
	MaintenanceRecord = base.MaintenanceRecord
	Event             = base.Event
	EventKind         = base.EventKind
	EventBatchSink    = base.EventBatchSink
	Dispatcher        = base.Dispatcher
	OracleRequest     = base.OracleRequest
	EventJournal      = base.EventJournal
	JournalStats      = base.JournalStats
	EntryID           = base.EntryID
	EventQueue        = base.EventQueue
	JournaledEvent    = base.JournaledEvent
	Archiver          = base.Archiver
	Observability     = base.Observability
	Field             = base.Field
)

// The seven monitored channels.
const (
	Temperature       = base.Temperature
	Humidity          = base.Humidity
	Occupancy         = base.Occupancy
	EnergyConsumption = base.EnergyConsumption
	StructuralHealth  = base.StructuralHealth
	WaterConsumption  = base.WaterConsumption
	AirQuality        = base.AirQuality
)

// Event kinds.
const (
	EventUpdateRequested      = base.EventUpdateRequested
	EventChannelUpdated       = base.EventChannelUpdated
	EventRequestCancelled     = base.EventRequestCancelled
	EventMaintenanceAdded     = base.EventMaintenanceAdded
	EventOwnershipTransferred = base.EventOwnershipTransferred
	EventFeeChanged           = base.EventFeeChanged
)

// FulfillPath is the callback selector dispatched with every oracle request.
const FulfillPath = base.FulfillPath

// Channel helpers.
func ParseChannel(s string) (Channel, error) { return base.ParseChannel(s) }

func Channels() []Channel { return base.Channels() }

// Config helpers.
func LoadConfig(path string) (*Config, error) {
	return base.LoadConfig(path)
}

// Runtime constructors and options.
func Open(path string, opts ...RuntimeOption) (*Runtime, error) {
	return base.Open(path, opts...)
}

func NewRuntime(cfg *Config, opts ...RuntimeOption) (*Runtime, error) {
	return base.NewRuntime(cfg, opts...)
}

func WithDispatcher(d Dispatcher) RuntimeOption {
	return base.WithDispatcher(d)
}

func WithArchiver(a Archiver) RuntimeOption {
	return base.WithArchiver(a)
}

func WithJournal(j EventJournal) RuntimeOption {
	return base.WithJournal(j)
}

func WithQueue(q EventQueue) RuntimeOption {
	return base.WithQueue(q)
}

func WithObservability(obs Observability) RuntimeOption {
	return base.WithObservability(obs)
}

func WithRegistryOptions(opts ...RegistryOption) RuntimeOption {
	return base.WithRegistryOptions(opts...)
}

// Registry constructor and options for bare library use.
func NewRegistry(cfg RegistryConfig, dispatch Dispatcher, emit EmitFunc, opts ...RegistryOption) (*Registry, error) {
	return base.NewRegistry(cfg, dispatch, emit, opts...)
}

func WithClock(clock func() time.Time) RegistryOption {
	return base.WithClock(clock)
}

func WithRequestIDs(next func() RequestID) RegistryOption {
	return base.WithRequestIDs(next)
}

// HTTP surface for embedding in an existing server.
func NewAPIRouter(reg *Registry, tokens map[string]Principal, obs Observability) http.Handler {
	return base.NewAPIRouter(reg, tokens, obs)
}

// Archive adapters.
func NewCallbackArchiver(name string, fn EventBatchSink) Archiver {
	return base.NewCallbackArchiver(name, fn)
}

func NewChannelArchiver(name string, buffer int) (Archiver, <-chan []Event, func()) {
	return base.NewChannelArchiver(name, buffer)
}
