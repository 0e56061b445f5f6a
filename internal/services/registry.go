package services

import (
	"fmt"

	"parcel-tracking-service/internal/domain"
	"parcel-tracking-service/internal/ports"
)

// CourierRegistry maps courier names to their status providers and routes
// bare tracking ids to candidate couriers by shape.
//
// Shape recognition is a best-effort heuristic declared per courier (not a
// central branch): several couriers can claim the same shape, and callers are
// expected to query every candidate and merge the answers, because shape
// alone cannot disambiguate.
type CourierRegistry struct {
	order   []string
	entries map[string]registryEntry
}

type registryEntry struct {
	provider ports.StatusProvider
	matches  func(trackingID string) bool
}

func NewCourierRegistry() *CourierRegistry {
	return &CourierRegistry{entries: make(map[string]registryEntry)}
}

// Register adds a courier. Registration order determines candidate order.
// Registering a name twice replaces the earlier entry.
func (r *CourierRegistry) Register(name string, provider ports.StatusProvider, matches func(trackingID string) bool) {
	if _, ok := r.entries[name]; !ok {
		r.order = append(r.order, name)
	}
	r.entries[name] = registryEntry{provider: provider, matches: matches}
}

// ProviderFor returns the adapter owning a courier name.
func (r *CourierRegistry) ProviderFor(name string) (ports.StatusProvider, error) {
	e, ok := r.entries[name]
	if !ok {
		return nil, fmt.Errorf("courier %q: %w", name, domain.ErrUnknownCourier)
	}
	return e.provider, nil
}

// CandidatesFor returns, in registration order, every courier whose shape
// predicate claims the raw id. The result may be empty or ambiguous.
func (r *CourierRegistry) CandidatesFor(trackingID string) []string {
	candidates := make([]string, 0, 2)
	for _, name := range r.order {
		if r.entries[name].matches(trackingID) {
			candidates = append(candidates, name)
		}
	}
	return candidates
}

// Names returns all registered couriers in registration order.
func (r *CourierRegistry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
