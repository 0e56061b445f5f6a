package ports

import (
	"context"
	"parcel-tracking-service/internal/domain"
)

// Port: one courier source answering "what is the current status of this id".
//
// Implementations must be idempotent and side-effect-free from the caller's
// perspective: repeated calls with the same id only return current truth.
// domain.ErrNotFound is returned when the courier does not know the id; any
// other error is a transient fetch failure and must not be mapped to it.
type StatusProvider interface {
	// FetchStatus returns the shipment's most recent status at this courier.
	FetchStatus(ctx context.Context, trackingID string) (domain.TrackingStatus, error)

	// TrackingURL returns the public tracking page for the id.
	TrackingURL(trackingID string) string
}
