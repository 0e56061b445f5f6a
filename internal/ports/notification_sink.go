package ports

import (
	"context"
	"parcel-tracking-service/internal/domain"
)

// A watched shipment's status changed since the last sweep.
type PackageChanged struct {
	OrgID       string
	Courier     string
	Label       string
	TrackingID  string
	TrackingURL string
	Status      domain.TrackingStatus
}

// A watched shipment was delivered and evicted from the watch-list.
type PackageRemoved struct {
	OrgID       string
	Courier     string
	Label       string
	TrackingID  string
	TrackingURL string
	FinalStatus domain.TrackingStatus
}

// Port: delivery of watch-list events to end users. Delivery is best-effort;
// the engine does not guarantee exactly-once.
type NotificationSink interface {
	PackageChanged(ctx context.Context, target string, ev PackageChanged) error
	PackageRemoved(ctx context.Context, target string, ev PackageRemoved) error
}
