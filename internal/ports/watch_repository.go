package ports

import (
	"context"
	"parcel-tracking-service/internal/domain"
)

// Port: durable storage for organizations and their watch-lists.
//
// Every mutation must be committed before the call returns; a crash between
// mutation and persistence must not be observable as success. Watches are
// listed in insertion order.
type WatchRepository interface {
	// Create the organization if it does not exist yet.
	EnsureOrganization(ctx context.Context, orgID string) error

	// Remove the organization and its entire watch-list.
	DeleteOrganization(ctx context.Context, orgID string) error

	// Return all known organizations.
	ListOrganizations(ctx context.Context) ([]domain.Organization, error)

	// Set (or clear, with an empty target) the notification destination.
	SetNotificationTarget(ctx context.Context, orgID, target string) error

	// Return the organization's watches in insertion order, optionally
	// filtered to one courier (empty courier means all).
	ListWatches(ctx context.Context, orgID, courier string) ([]domain.WatchedPackage, error)

	// Persist a new watch. Returns domain.ErrAlreadyWatched when the
	// (org, courier, tracking id) identity already exists.
	InsertWatch(ctx context.Context, orgID string, pkg domain.WatchedPackage) error

	// Remove a watch and return it. Returns domain.ErrNotWatched when absent.
	DeleteWatch(ctx context.Context, key domain.WatchKey) (*domain.WatchedPackage, error)

	// Record a fresh status. When the status is delivered the entry is
	// removed in the same transaction, so no delivered entry is ever visible.
	// Returns domain.ErrNotWatched when the entry is absent.
	ApplyStatus(ctx context.Context, key domain.WatchKey, status domain.TrackingStatus) error
}
