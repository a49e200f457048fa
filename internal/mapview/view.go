package mapview

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"crimewatch/internal/domain"
)

// Fetcher loads the three marker sources. The REST client implements it.
type Fetcher interface {
	ActiveSignals(ctx context.Context) ([]domain.EmergencySignal, error)
	Reports(ctx context.Context) ([]domain.CrimeReport, error)
	Teams(ctx context.Context) ([]domain.Team, error)
}

// MapView keeps the marker registry in sync with the server. It refreshes on
// a fixed poll interval and immediately on Invalidate, which the push channel
// triggers when a signal event arrives. Push payloads only ever trigger a
// refetch; marker state always comes from the REST API.
type MapView struct {
	logger   *slog.Logger
	fetcher  Fetcher
	registry *Registry
	interval time.Duration

	mu      sync.Mutex
	filters Filters

	invalidate chan struct{}
	closeOnce  sync.Once
	done       chan struct{}
}

func NewMapView(fetcher Fetcher, renderer Renderer, logger *slog.Logger, interval time.Duration, filters Filters) *MapView {
	return &MapView{
		logger:     logger,
		fetcher:    fetcher,
		registry:   NewRegistry(renderer, logger),
		interval:   interval,
		filters:    filters,
		invalidate: make(chan struct{}, 1),
		done:       make(chan struct{}),
	}
}

// Run refreshes immediately, then on every poll tick and every invalidation,
// until ctx is done or Close is called. Refresh failures are logged and the
// previous marker state stays on the map.
func (v *MapView) Run(ctx context.Context) {
	ticker := time.NewTicker(v.interval)
	defer ticker.Stop()

	v.refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-v.done:
			return
		case <-ticker.C:
			v.refresh(ctx)
		case <-v.invalidate:
			v.refresh(ctx)
		}
	}
}

// Invalidate requests an immediate refresh. Coalesces: many invalidations
// between refreshes cause one refetch.
func (v *MapView) Invalidate() {
	select {
	case v.invalidate <- struct{}{}:
	default:
	}
}

// SetFilters replaces the visibility toggles and schedules a refresh so
// disabled kinds clear promptly.
func (v *MapView) SetFilters(f Filters) {
	v.mu.Lock()
	v.filters = f
	v.mu.Unlock()
	v.Invalidate()
}

func (v *MapView) Filters() Filters {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.filters
}

// Close stops the refresh loop. The registry is left as-is; the renderer is
// about to go away with it.
func (v *MapView) Close() {
	v.closeOnce.Do(func() { close(v.done) })
}

// Refresh fetches all visible sources in parallel and reconciles the
// registry. A disabled source is not fetched and reconciles to empty.
func (v *MapView) Refresh(ctx context.Context) error {
	filters := v.Filters()

	var snap Snapshot
	g, gctx := errgroup.WithContext(ctx)

	if filters.ShowCrimes {
		g.Go(func() error {
			reports, err := v.fetcher.Reports(gctx)
			if err != nil {
				return err
			}
			snap.Reports = reports
			return nil
		})
	}
	if filters.ShowEmergencies {
		g.Go(func() error {
			signals, err := v.fetcher.ActiveSignals(gctx)
			if err != nil {
				return err
			}
			snap.Signals = signals
			return nil
		})
	}
	if filters.ShowTeams {
		g.Go(func() error {
			teams, err := v.fetcher.Teams(gctx)
			if err != nil {
				return err
			}
			snap.Teams = teams
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	desired := Compose(snap, filters)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.registry.Reconcile(KindCrime, desired.Crimes)
	v.registry.Reconcile(KindEmergency, desired.Emergencies)
	v.registry.Reconcile(KindTeam, desired.Teams)
	return nil
}

func (v *MapView) refresh(ctx context.Context) {
	if err := v.Refresh(ctx); err != nil {
		v.logger.Warn("map refresh failed", slog.Any("error", err))
	}
}

// MarkerCount reports placed markers across all kinds.
func (v *MapView) MarkerCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.registry.Len()
}
