package couriers

import (
	"context"
	"sync"

	"parcel-tracking-service/internal/domain"
)

type MockResult struct {
	Status domain.TrackingStatus
	Err    error
}

// MockStatusProvider is a scripted provider for tests. Ids absent from the
// script report not-found. Safe for concurrent use so sweep fan-out can hit it.
type MockStatusProvider struct {
	mu      sync.Mutex
	results map[string]MockResult
}

func NewMockStatusProvider(results map[string]MockResult) *MockStatusProvider {
	if results == nil {
		results = map[string]MockResult{}
	}
	return &MockStatusProvider{results: results}
}

// Set rescripts one id, e.g. to simulate a status change between sweeps.
func (m *MockStatusProvider) Set(trackingID string, r MockResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[trackingID] = r
}

func (m *MockStatusProvider) FetchStatus(ctx context.Context, trackingID string) (domain.TrackingStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.results[trackingID]
	if !ok {
		return domain.TrackingStatus{}, domain.ErrNotFound
	}
	if r.Err != nil {
		return domain.TrackingStatus{}, r.Err
	}
	return r.Status, nil
}

func (m *MockStatusProvider) TrackingURL(trackingID string) string {
	return "https://courier.example/track/" + trackingID
}
