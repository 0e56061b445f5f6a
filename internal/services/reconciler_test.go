package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"parcel-tracking-service/internal/adapters/couriers"
	"parcel-tracking-service/internal/domain"
	"parcel-tracking-service/internal/ports"
)

// captureSink records emitted events in order.
type captureSink struct {
	mu     sync.Mutex
	events []capturedEvent
}

type capturedEvent struct {
	kind       string
	target     string
	trackingID string
	status     domain.TrackingStatus
}

func (c *captureSink) PackageChanged(ctx context.Context, target string, ev ports.PackageChanged) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, capturedEvent{kind: "changed", target: target, trackingID: ev.TrackingID, status: ev.Status})
	return nil
}

func (c *captureSink) PackageRemoved(ctx context.Context, target string, ev ports.PackageRemoved) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, capturedEvent{kind: "removed", target: target, trackingID: ev.TrackingID, status: ev.FinalStatus})
	return nil
}

func (c *captureSink) all() []capturedEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]capturedEvent, len(c.events))
	copy(out, c.events)
	return out
}

func sweepFixture(t *testing.T, provider *couriers.MockStatusProvider) (*WatchList, *Reconciler, *captureSink, *memRepo) {
	t.Helper()

	repo := newMemRepo()
	registry := newTestRegistry(provider)
	list := NewWatchList(repo, registry, time.Second)
	sink := &captureSink{}
	rec := NewReconciler(list, registry, sink, ReconcilerConfig{FetchTimeout: time.Second})
	return list, rec, sink, repo
}

func TestSweepPersistsChangeAndNotifies(t *testing.T) {
	initial := domain.TrackingStatus{Description: "Παραλαβή", ObservedAt: "20/05/2021, 09:05"}
	updated := domain.TrackingStatus{Description: "Σε μεταφορά", ObservedAt: "21/05/2021, 14:33"}

	provider := couriers.NewMockStatusProvider(map[string]couriers.MockResult{
		"0123456789": {Status: initial},
	})
	list, rec, sink, _ := sweepFixture(t, provider)

	if _, err := list.Add(context.Background(), "org-1", "acs", "0123456789", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := list.SetNotificationTarget(context.Background(), "org-1", "https://hooks.example/t"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	provider.Set("0123456789", couriers.MockResult{Status: updated})
	rec.Sweep(context.Background())

	watches, _ := list.List(context.Background(), "org-1", "")
	if len(watches) != 1 || watches[0].LastStatus == nil || *watches[0].LastStatus != updated {
		t.Fatalf("sweep should persist the fresh status, got %+v", watches)
	}

	events := sink.all()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %+v", events)
	}
	if events[0].kind != "changed" || events[0].target != "https://hooks.example/t" || events[0].status != updated {
		t.Fatalf("event = %+v", events[0])
	}
}

func TestSweepSkipsUnchangedObservation(t *testing.T) {
	status := domain.TrackingStatus{Description: "Παραλαβή", ObservedAt: "20/05/2021, 09:05"}

	provider := couriers.NewMockStatusProvider(map[string]couriers.MockResult{
		"0123456789": {Status: status},
	})
	list, rec, sink, _ := sweepFixture(t, provider)

	if _, err := list.Add(context.Background(), "org-1", "acs", "0123456789", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := list.SetNotificationTarget(context.Background(), "org-1", "https://hooks.example/t"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rec.Sweep(context.Background())

	if events := sink.all(); len(events) != 0 {
		t.Fatalf("unchanged observation must not emit events, got %+v", events)
	}
}

func TestSweepDeliveredEvictsAndEmitsOrderedPair(t *testing.T) {
	initial := domain.TrackingStatus{Description: "Σε μεταφορά", ObservedAt: "21/05/2021, 14:33"}
	delivered := domain.TrackingStatus{Description: "Παραδόθηκε", ObservedAt: "22/05/2021, 11:00", Delivered: true}

	provider := couriers.NewMockStatusProvider(map[string]couriers.MockResult{
		"0123456789": {Status: initial},
	})
	list, rec, sink, _ := sweepFixture(t, provider)

	if _, err := list.Add(context.Background(), "org-1", "acs", "0123456789", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := list.SetNotificationTarget(context.Background(), "org-1", "https://hooks.example/t"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	provider.Set("0123456789", couriers.MockResult{Status: delivered})
	rec.Sweep(context.Background())

	watches, _ := list.List(context.Background(), "org-1", "")
	if len(watches) != 0 {
		t.Fatalf("delivered shipment should be evicted, got %+v", watches)
	}

	events := sink.all()
	if len(events) != 2 {
		t.Fatalf("expected changed then removed, got %+v", events)
	}
	if events[0].kind != "changed" || events[1].kind != "removed" {
		t.Fatalf("event order = [%s %s], want [changed removed]", events[0].kind, events[1].kind)
	}
	if events[1].status != delivered {
		t.Fatalf("removal should carry the final status, got %+v", events[1].status)
	}
}

func TestSweepFetchFailureKeepsEntry(t *testing.T) {
	initial := domain.TrackingStatus{Description: "Σε μεταφορά", ObservedAt: "21/05/2021, 14:33"}

	provider := couriers.NewMockStatusProvider(map[string]couriers.MockResult{
		"0123456789": {Status: initial},
	})
	list, rec, sink, _ := sweepFixture(t, provider)

	if _, err := list.Add(context.Background(), "org-1", "acs", "0123456789", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := list.SetNotificationTarget(context.Background(), "org-1", "https://hooks.example/t"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	provider.Set("0123456789", couriers.MockResult{Err: errors.New("gateway timeout")})
	rec.Sweep(context.Background())

	watches, _ := list.List(context.Background(), "org-1", "")
	if len(watches) != 1 || watches[0].LastStatus == nil || *watches[0].LastStatus != initial {
		t.Fatalf("a failed fetch must leave the entry untouched, got %+v", watches)
	}
	if events := sink.all(); len(events) != 0 {
		t.Fatalf("a failed fetch must not emit events, got %+v", events)
	}
}

func TestSweepWithoutTargetPollsSilently(t *testing.T) {
	initial := domain.TrackingStatus{Description: "Παραλαβή", ObservedAt: "20/05/2021, 09:05"}
	updated := domain.TrackingStatus{Description: "Σε μεταφορά", ObservedAt: "21/05/2021, 14:33"}

	provider := couriers.NewMockStatusProvider(map[string]couriers.MockResult{
		"0123456789": {Status: initial},
	})
	list, rec, sink, _ := sweepFixture(t, provider)

	if _, err := list.Add(context.Background(), "org-1", "acs", "0123456789", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	provider.Set("0123456789", couriers.MockResult{Status: updated})
	rec.Sweep(context.Background())

	watches, _ := list.List(context.Background(), "org-1", "")
	if len(watches) != 1 || watches[0].LastStatus == nil || *watches[0].LastStatus != updated {
		t.Fatalf("silent polling should still persist the fresh status, got %+v", watches)
	}
	if events := sink.all(); len(events) != 0 {
		t.Fatalf("organization without a target must not receive events, got %+v", events)
	}
}

func TestSweepNeverFetchedEntryGetsFirstStatus(t *testing.T) {
	status := domain.TrackingStatus{Description: "Παραλαβή", ObservedAt: "20/05/2021, 09:05"}

	provider := couriers.NewMockStatusProvider(map[string]couriers.MockResult{
		"0123456789": {Status: status},
	})
	list, rec, sink, repo := sweepFixture(t, provider)

	// Seeded entries can predate any successful fetch.
	if err := repo.EnsureOrganization(context.Background(), "org-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.InsertWatch(context.Background(), "org-1", domain.WatchedPackage{
		TrackingID: "0123456789",
		Courier:    "acs",
		Label:      "seeded",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := list.SetNotificationTarget(context.Background(), "org-1", "https://hooks.example/t"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rec.Sweep(context.Background())

	watches, _ := list.List(context.Background(), "org-1", "")
	if len(watches) != 1 || watches[0].LastStatus == nil || *watches[0].LastStatus != status {
		t.Fatalf("first sweep should record the initial status, got %+v", watches)
	}

	events := sink.all()
	if len(events) != 1 || events[0].kind != "changed" {
		t.Fatalf("first status should emit a change event, got %+v", events)
	}
}
