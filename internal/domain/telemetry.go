package domain

import (
	"fmt"
	"time"
)

// Channel identifies one monitored building quantity. Each channel carries
// its own oracle job identifier and latest value.
type Channel uint8

const (
	Temperature Channel = iota
	Humidity
	Occupancy
	EnergyConsumption
	StructuralHealth
	WaterConsumption
	AirQuality

	channelCount
)

var channelNames = [channelCount]string{
	Temperature:       "temperature",
	Humidity:          "humidity",
	Occupancy:         "occupancy",
	EnergyConsumption: "energy_consumption",
	StructuralHealth:  "structural_health",
	WaterConsumption:  "water_consumption",
	AirQuality:        "air_quality",
}

func (c Channel) String() string {
	if !c.Valid() {
		return fmt.Sprintf("channel(%d)", uint8(c))
	}
	return channelNames[c]
}

func (c Channel) Valid() bool { return c < channelCount }

// ParseChannel maps the wire/config name of a channel back to its identifier.
func ParseChannel(s string) (Channel, error) {
	for c, name := range channelNames {
		if name == s {
			return Channel(c), nil
		}
	}
	return 0, fmt.Errorf("unknown channel %q", s)
}

// Channels returns all monitored channels in declaration order.
func Channels() []Channel {
	out := make([]Channel, channelCount)
	for i := range out {
		out[i] = Channel(i)
	}
	return out
}

// JobID names the off-system computation the oracle runs for a channel.
type JobID string

// RequestID correlates a dispatched oracle request with its fulfillment.
// IDs are unique for the lifetime of the process.
type RequestID string

// Principal is an opaque caller identity used for authorization.
type Principal string

// Reading is the latest recorded state of a channel.
type Reading struct {
	Channel   Channel   `json:"channel"`
	Value     uint64    `json:"value"`
	JobID     JobID     `json:"job_id"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
	Pending   RequestID `json:"pending_request,omitempty"`
}

// MaintenanceRecord is one entry of the append-only maintenance ledger.
// Records are never edited or removed after append.
type MaintenanceRecord struct {
	Description string    `json:"description"`
	Timestamp   time.Time `json:"ts"`
}
