package services

import (
	"context"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"parcel-tracking-service/internal/domain"
	"parcel-tracking-service/internal/ports"
)

type ReconcilerConfig struct {
	// Interval between sweep starts. The original cadence is five minutes.
	Interval time.Duration
	// FetchTimeout bounds every courier call so one hanging source cannot
	// stall the sweep.
	FetchTimeout time.Duration
	// OrgConcurrency bounds how many organizations are swept in parallel.
	OrgConcurrency int
	// FetchConcurrency bounds parallel courier calls within one organization.
	FetchConcurrency int
}

func (c ReconcilerConfig) withDefaults() ReconcilerConfig {
	if c.Interval <= 0 {
		c.Interval = 5 * time.Minute
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = 15 * time.Second
	}
	if c.OrgConcurrency <= 0 {
		c.OrgConcurrency = 4
	}
	if c.FetchConcurrency <= 0 {
		c.FetchConcurrency = 4
	}
	return c
}

// Reconciler periodically re-checks every watched shipment, persists status
// changes, evicts delivered shipments, and emits change/removal events.
//
// Every step is idempotent, so a sweep interrupted by shutdown is simply
// resumed in full on the next tick.
type Reconciler struct {
	watches  *WatchList
	registry *CourierRegistry
	sink     ports.NotificationSink
	cfg      ReconcilerConfig
}

func NewReconciler(watches *WatchList, registry *CourierRegistry, sink ports.NotificationSink, cfg ReconcilerConfig) *Reconciler {
	return &Reconciler{
		watches:  watches,
		registry: registry,
		sink:     sink,
		cfg:      cfg.withDefaults(),
	}
}

// Run sweeps at the configured interval until the context is cancelled.
// Cancelling the context is the clean-shutdown signal.
func (r *Reconciler) Run(ctx context.Context) {
	log.Printf("reconciler started interval=%s", r.cfg.Interval)

	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("reconciler stopped")
			return
		case <-ticker.C:
			r.Sweep(ctx)
		}
	}
}

// Sweep re-checks all organizations once. Failures are logged and skipped;
// a sweep never aborts because one package or one organization failed.
func (r *Reconciler) Sweep(ctx context.Context) {
	start := time.Now()

	orgs, err := r.watches.Organizations(ctx)
	if err != nil {
		log.Printf("sweep aborted: %v", err)
		return
	}

	g := new(errgroup.Group)
	g.SetLimit(r.cfg.OrgConcurrency)

	for _, org := range orgs {
		org := org
		g.Go(func() error {
			r.sweepOrg(ctx, org)
			return nil
		})
	}
	_ = g.Wait()

	log.Printf("sweep done orgs=%d dur=%dms", len(orgs), time.Since(start).Milliseconds())
}

type fetchOutcome struct {
	status      domain.TrackingStatus
	trackingURL string
	err         error
}

// sweepOrg fans fetches out with bounded concurrency, then applies results in
// the store's iteration order so each package's change/removal pair stays
// ordered and per-organization processing order is deterministic.
func (r *Reconciler) sweepOrg(ctx context.Context, org domain.Organization) {
	pkgs, err := r.watches.List(ctx, org.OrgID, "")
	if err != nil {
		log.Printf("sweep org=%s list failed: %v", org.OrgID, err)
		return
	}

	outcomes := make([]fetchOutcome, len(pkgs))

	g := new(errgroup.Group)
	g.SetLimit(r.cfg.FetchConcurrency)

	for i, pkg := range pkgs {
		i, pkg := i, pkg
		g.Go(func() error {
			outcomes[i] = r.fetchOne(ctx, pkg)
			return nil
		})
	}
	_ = g.Wait()

	for i, pkg := range pkgs {
		out := outcomes[i]

		if out.err != nil {
			// Transient source unavailability must not destroy watch-list
			// state: keep the entry untouched and retry next sweep.
			log.Printf("sweep skip org=%s courier=%s id=%s err=%v",
				org.OrgID, pkg.Courier, pkg.TrackingID, out.err)
			continue
		}

		if pkg.LastStatus != nil && out.status.SameObservation(*pkg.LastStatus) {
			continue
		}

		key := domain.WatchKey{OrgID: org.OrgID, Courier: pkg.Courier, TrackingID: pkg.TrackingID}
		if err := r.watches.ApplyStatus(ctx, key, out.status); err != nil {
			log.Printf("sweep apply org=%s courier=%s id=%s err=%v",
				org.OrgID, pkg.Courier, pkg.TrackingID, err)
			continue
		}

		// No notification target configured means silent polling only.
		if org.NotifyTarget == "" {
			continue
		}

		changed := ports.PackageChanged{
			OrgID:       org.OrgID,
			Courier:     pkg.Courier,
			Label:       pkg.Label,
			TrackingID:  pkg.TrackingID,
			TrackingURL: out.trackingURL,
			Status:      out.status,
		}
		if err := r.sink.PackageChanged(ctx, org.NotifyTarget, changed); err != nil {
			log.Printf("notify change org=%s courier=%s id=%s err=%v",
				org.OrgID, pkg.Courier, pkg.TrackingID, err)
		}

		if out.status.Delivered {
			removed := ports.PackageRemoved{
				OrgID:       org.OrgID,
				Courier:     pkg.Courier,
				Label:       pkg.Label,
				TrackingID:  pkg.TrackingID,
				TrackingURL: out.trackingURL,
				FinalStatus: out.status,
			}
			if err := r.sink.PackageRemoved(ctx, org.NotifyTarget, removed); err != nil {
				log.Printf("notify removal org=%s courier=%s id=%s err=%v",
					org.OrgID, pkg.Courier, pkg.TrackingID, err)
			}
		}
	}
}

func (r *Reconciler) fetchOne(ctx context.Context, pkg domain.WatchedPackage) fetchOutcome {
	provider, err := r.registry.ProviderFor(pkg.Courier)
	if err != nil {
		return fetchOutcome{err: err}
	}

	fctx, cancel := context.WithTimeout(ctx, r.cfg.FetchTimeout)
	defer cancel()

	status, err := provider.FetchStatus(fctx, pkg.TrackingID)
	if err != nil {
		return fetchOutcome{err: err}
	}

	return fetchOutcome{status: status, trackingURL: provider.TrackingURL(pkg.TrackingID)}
}
