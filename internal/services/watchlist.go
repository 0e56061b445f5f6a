package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"parcel-tracking-service/internal/domain"
	"parcel-tracking-service/internal/ports"
)

// WatchList owns all watch-list mutations. Operations touching one
// organization's list are serialized behind a per-organization mutex so a
// user's add/remove cannot race a concurrent sweep update; different
// organizations proceed fully in parallel.
type WatchList struct {
	repo         ports.WatchRepository
	registry     *CourierRegistry
	fetchTimeout time.Duration

	mu       sync.Mutex
	orgLocks map[string]*sync.Mutex
}

func NewWatchList(repo ports.WatchRepository, registry *CourierRegistry, fetchTimeout time.Duration) *WatchList {
	if fetchTimeout <= 0 {
		fetchTimeout = 15 * time.Second
	}
	return &WatchList{
		repo:         repo,
		registry:     registry,
		fetchTimeout: fetchTimeout,
		orgLocks:     make(map[string]*sync.Mutex),
	}
}

// lockOrg acquires the organization's mutex and returns its release func.
func (l *WatchList) lockOrg(orgID string) func() {
	l.mu.Lock()
	m, ok := l.orgLocks[orgID]
	if !ok {
		m = &sync.Mutex{}
		l.orgLocks[orgID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// Add validates the id against the courier before persisting: the watch is
// created only when the courier knows the id and the shipment is not already
// delivered. The fetched status is stored with the watch and returned.
func (l *WatchList) Add(ctx context.Context, orgID, courier, trackingID, label string) (domain.TrackingStatus, error) {
	provider, err := l.registry.ProviderFor(courier)
	if err != nil {
		return domain.TrackingStatus{}, fmt.Errorf("add watch: %w", err)
	}

	fctx, cancel := context.WithTimeout(ctx, l.fetchTimeout)
	defer cancel()

	status, err := provider.FetchStatus(fctx, trackingID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.TrackingStatus{}, fmt.Errorf("add watch %s/%s: %w", courier, trackingID, err)
		}
		return domain.TrackingStatus{}, &domain.FetchError{Courier: courier, Err: err}
	}

	if status.Delivered {
		return domain.TrackingStatus{}, &domain.AlreadyDeliveredError{Status: status}
	}

	if strings.TrimSpace(label) == "" {
		label = trackingID
	}

	unlock := l.lockOrg(orgID)
	defer unlock()

	if err := l.repo.EnsureOrganization(ctx, orgID); err != nil {
		return domain.TrackingStatus{}, fmt.Errorf("add watch: %w", err)
	}

	pkg := domain.WatchedPackage{
		TrackingID: trackingID,
		Courier:    courier,
		Label:      label,
		LastStatus: &status,
	}
	if err := l.repo.InsertWatch(ctx, orgID, pkg); err != nil {
		return domain.TrackingStatus{}, fmt.Errorf("add watch %s/%s: %w", courier, trackingID, err)
	}

	return status, nil
}

// Remove deletes a watch and returns it.
func (l *WatchList) Remove(ctx context.Context, orgID, courier, trackingID string) (*domain.WatchedPackage, error) {
	unlock := l.lockOrg(orgID)
	defer unlock()

	key := domain.WatchKey{OrgID: orgID, Courier: courier, TrackingID: trackingID}
	pkg, err := l.repo.DeleteWatch(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("remove watch %s/%s: %w", courier, trackingID, err)
	}

	return pkg, nil
}

// Edit relabels a watch as remove-then-add, so the id is re-validated against
// the courier. A failed re-validation leaves the entry removed; the caller
// gets the add error and can retry.
func (l *WatchList) Edit(ctx context.Context, orgID, courier, trackingID, newLabel string) (domain.TrackingStatus, error) {
	if _, err := l.Remove(ctx, orgID, courier, trackingID); err != nil {
		return domain.TrackingStatus{}, fmt.Errorf("edit watch: %w", err)
	}

	status, err := l.Add(ctx, orgID, courier, trackingID, newLabel)
	if err != nil {
		return domain.TrackingStatus{}, fmt.Errorf("edit watch: %w", err)
	}

	return status, nil
}

// List returns an organization's watches in insertion order, optionally
// filtered to one courier.
func (l *WatchList) List(ctx context.Context, orgID, courier string) ([]domain.WatchedPackage, error) {
	unlock := l.lockOrg(orgID)
	defer unlock()

	watches, err := l.repo.ListWatches(ctx, orgID, courier)
	if err != nil {
		return nil, fmt.Errorf("list watches: %w", err)
	}

	return watches, nil
}

// SetNotificationTarget sets (or clears, with an empty target) where the
// organization's change events are delivered.
func (l *WatchList) SetNotificationTarget(ctx context.Context, orgID, target string) error {
	unlock := l.lockOrg(orgID)
	defer unlock()

	if err := l.repo.EnsureOrganization(ctx, orgID); err != nil {
		return fmt.Errorf("set notification target: %w", err)
	}
	if err := l.repo.SetNotificationTarget(ctx, orgID, target); err != nil {
		return fmt.Errorf("set notification target: %w", err)
	}

	return nil
}

// DeleteOrganization removes the organization and its entire watch-list.
func (l *WatchList) DeleteOrganization(ctx context.Context, orgID string) error {
	unlock := l.lockOrg(orgID)
	defer unlock()

	if err := l.repo.DeleteOrganization(ctx, orgID); err != nil {
		return fmt.Errorf("delete organization %s: %w", orgID, err)
	}

	// Drop the mutex entry so the lock map does not grow with every
	// organization ever seen. A later operation recreates it on demand.
	l.mu.Lock()
	delete(l.orgLocks, orgID)
	l.mu.Unlock()

	return nil
}

// Organizations returns all organizations with a watch-list.
func (l *WatchList) Organizations(ctx context.Context) ([]domain.Organization, error) {
	orgs, err := l.repo.ListOrganizations(ctx)
	if err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}
	return orgs, nil
}

// ApplyStatus records a fresh status under the organization's lock. Delivered
// statuses evict the watch atomically with the update.
func (l *WatchList) ApplyStatus(ctx context.Context, key domain.WatchKey, status domain.TrackingStatus) error {
	unlock := l.lockOrg(key.OrgID)
	defer unlock()

	if err := l.repo.ApplyStatus(ctx, key, status); err != nil {
		return fmt.Errorf("apply status %s/%s: %w", key.Courier, key.TrackingID, err)
	}

	return nil
}
