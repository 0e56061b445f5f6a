package services

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"parcel-tracking-service/internal/domain"
)

// TrackResult is the outcome of asking one candidate courier about a raw id.
type TrackResult struct {
	Courier     string
	TrackingURL string
	Status      *domain.TrackingStatus // nil when not found or the fetch failed
	NotFound    bool
	Err         error // transient fetch failure for this courier only
}

// Tracker answers one-off lookups for bare tracking ids of unknown origin.
// It never touches the watch store.
type Tracker struct {
	registry     *CourierRegistry
	fetchTimeout time.Duration
}

func NewTracker(registry *CourierRegistry, fetchTimeout time.Duration) *Tracker {
	if fetchTimeout <= 0 {
		fetchTimeout = 15 * time.Second
	}
	return &Tracker{registry: registry, fetchTimeout: fetchTimeout}
}

// TrackOnce queries every candidate courier for the id in parallel and
// returns all results in candidate order, not-found and failed ones included,
// so the caller can distinguish "not found anywhere" from "found at X" from
// "ambiguously found at several couriers". An empty result means no courier
// claims the id's shape.
func (t *Tracker) TrackOnce(ctx context.Context, rawID string) []TrackResult {
	candidates := t.registry.CandidatesFor(rawID)
	results := make([]TrackResult, len(candidates))

	g := new(errgroup.Group)

	for i, name := range candidates {
		i, name := i, name
		g.Go(func() error {
			results[i] = t.trackAt(ctx, name, rawID)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (t *Tracker) trackAt(ctx context.Context, courier, rawID string) TrackResult {
	result := TrackResult{Courier: courier}

	provider, err := t.registry.ProviderFor(courier)
	if err != nil {
		result.Err = err
		return result
	}
	result.TrackingURL = provider.TrackingURL(rawID)

	fctx, cancel := context.WithTimeout(ctx, t.fetchTimeout)
	defer cancel()

	status, err := provider.FetchStatus(fctx, rawID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		result.NotFound = true
	case err != nil:
		result.Err = &domain.FetchError{Courier: courier, Err: err}
	default:
		result.Status = &status
	}

	return result
}
