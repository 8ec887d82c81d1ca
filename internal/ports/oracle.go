package ports

import (
	"context"

	"github.com/ghalamif/BrickWatch/internal/domain"
)

// OracleRequest is the outbound payload dispatched once per update request.
// Fee is snapshotted at issue time; later fee changes do not touch requests
// already in flight.
type OracleRequest struct {
	JobID        domain.JobID     `json:"job_id"`
	RequestID    domain.RequestID `json:"request_id"`
	Channel      string           `json:"channel"`
	CallbackURL  string           `json:"callback_url"`
	CallbackPath string           `json:"callback_path"`
	Fee          uint64           `json:"fee"`
}

// Dispatcher hands an oracle request to the external oracle network.
// A non-nil error aborts the whole RequestUpdate with no state change.
type Dispatcher interface {
	Dispatch(ctx context.Context, req OracleRequest) error
}
