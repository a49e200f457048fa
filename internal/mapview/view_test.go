package mapview_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crimewatch/internal/domain"
	"crimewatch/internal/mapview"
)

// fakeFetcher serves a mutable snapshot and counts fetches.
type fakeFetcher struct {
	mu      sync.Mutex
	snap    mapview.Snapshot
	fetches int
	err     error
}

func (f *fakeFetcher) set(snap mapview.Snapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snap = snap
}

func (f *fakeFetcher) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches
}

func (f *fakeFetcher) ActiveSignals(context.Context) ([]domain.EmergencySignal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	return f.snap.Signals, f.err
}

func (f *fakeFetcher) Reports(context.Context) ([]domain.CrimeReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap.Reports, f.err
}

func (f *fakeFetcher) Teams(context.Context) ([]domain.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap.Teams, f.err
}

func TestMapView_RefreshPlacesMarkers(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{}
	fetcher.set(mapview.Snapshot{
		Reports: []domain.CrimeReport{{ID: 1, CrimeType: "Theft", Latitude: "40.7", Longitude: "-74.0"}},
		Signals: []domain.EmergencySignal{{ID: 2, Active: true, Latitude: "40.8", Longitude: "-74.1"}},
		Teams:   []domain.Team{{ID: 3, Name: "Alpha", Latitude: "40.9", Longitude: "-74.2"}},
	})

	renderer := newRecordingRenderer()
	view := mapview.NewMapView(fetcher, renderer, testLogger(), time.Hour, mapview.AllVisible())

	require.NoError(t, view.Refresh(context.Background()))
	assert.Equal(t, 3, view.MarkerCount())
}

func TestMapView_RefreshConvergesAfterChanges(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{}
	fetcher.set(mapview.Snapshot{
		Signals: []domain.EmergencySignal{{ID: 1, Active: true, Latitude: "40.8", Longitude: "-74.1"}},
	})

	renderer := newRecordingRenderer()
	view := mapview.NewMapView(fetcher, renderer, testLogger(), time.Hour, mapview.AllVisible())

	require.NoError(t, view.Refresh(context.Background()))
	require.Equal(t, 1, view.MarkerCount())

	// Signal resolved server-side: the next refresh removes its marker.
	fetcher.set(mapview.Snapshot{})
	require.NoError(t, view.Refresh(context.Background()))
	assert.Zero(t, view.MarkerCount())

	_, _, removes := renderer.counts()
	assert.Equal(t, 1, removes)
}

func TestMapView_DisableEnableRoundTrip(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{}
	fetcher.set(mapview.Snapshot{
		Reports: []domain.CrimeReport{{ID: 1, CrimeType: "Theft", Latitude: "40.7", Longitude: "-74.0"}},
		Signals: []domain.EmergencySignal{{ID: 2, Active: true, Latitude: "40.8", Longitude: "-74.1"}},
	})

	renderer := newRecordingRenderer()
	view := mapview.NewMapView(fetcher, renderer, testLogger(), time.Hour, mapview.AllVisible())

	require.NoError(t, view.Refresh(context.Background()))
	require.Equal(t, 2, view.MarkerCount())

	view.SetFilters(mapview.Filters{ShowEmergencies: true})
	require.NoError(t, view.Refresh(context.Background()))
	assert.Equal(t, 1, view.MarkerCount(), "disabled kind must clear its markers")

	view.SetFilters(mapview.AllVisible())
	require.NoError(t, view.Refresh(context.Background()))
	assert.Equal(t, 2, view.MarkerCount(), "re-enabled kind must come back")
}

func TestMapView_FetchErrorKeepsPreviousMarkers(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{}
	fetcher.set(mapview.Snapshot{
		Signals: []domain.EmergencySignal{{ID: 1, Active: true, Latitude: "40.8", Longitude: "-74.1"}},
	})

	renderer := newRecordingRenderer()
	view := mapview.NewMapView(fetcher, renderer, testLogger(), time.Hour, mapview.AllVisible())

	require.NoError(t, view.Refresh(context.Background()))
	require.Equal(t, 1, view.MarkerCount())

	fetcher.mu.Lock()
	fetcher.err = errors.New("server unreachable")
	fetcher.mu.Unlock()

	require.Error(t, view.Refresh(context.Background()))
	assert.Equal(t, 1, view.MarkerCount(), "failed refresh must not clear the map")
}

func TestMapView_InvalidateTriggersRefresh(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{}
	renderer := newRecordingRenderer()
	view := mapview.NewMapView(fetcher, renderer, testLogger(), time.Hour, mapview.AllVisible())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		view.Run(ctx)
		close(done)
	}()

	// Run refreshes once on start; Invalidate forces another without
	// waiting out the hour-long poll interval.
	deadline := time.After(2 * time.Second)
	for fetcher.fetchCount() < 1 {
		select {
		case <-deadline:
			t.Fatal("initial refresh never happened")
		case <-time.After(2 * time.Millisecond):
		}
	}

	view.Invalidate()
	for fetcher.fetchCount() < 2 {
		select {
		case <-deadline:
			t.Fatal("invalidation never triggered a refresh")
		case <-time.After(2 * time.Millisecond):
		}
	}

	view.Close()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not exit after Close")
	}
}
