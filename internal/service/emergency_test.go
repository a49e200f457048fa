package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/golang/mock/gomock"

	"crimewatch/internal/domain"
	"crimewatch/internal/service"
	"crimewatch/pkg/e"

	mock_service "crimewatch/internal/service/mocks"
)

// --- helpers ---

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mustTime(t *testing.T) time.Time {
	t.Helper()
	return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
}

func timePtr(v time.Time) *time.Time { return &v }

// --- Create ---

func TestEmergencyService_Create_PersistsBeforeBroadcast(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_service.NewMockEmergencyRepository(ctrl)
	users := mock_service.NewMockUserRepository(ctrl)
	hub := mock_service.NewMockBroadcaster(ctrl)
	cache := mock_service.NewMockSignalCache(ctrl)

	persisted := false
	repo.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, sig *domain.EmergencySignal) error {
			persisted = true
			sig.ID = 7
			return nil
		}).
		Times(1)

	cache.EXPECT().Invalidate(gomock.Any()).Return(nil).Times(1)

	users.EXPECT().
		GetByID(gomock.Any(), int64(42)).
		Return(&domain.User{ID: 42, FullName: "Jane Smith", Role: domain.RoleCivilian}, nil).
		Times(1)

	var broadcast domain.Envelope
	hub.EXPECT().
		Broadcast(gomock.Any()).
		Do(func(env domain.Envelope) {
			if !persisted {
				t.Fatalf("broadcast fired before the signal was persisted")
			}
			broadcast = env
		}).
		Times(1)

	svc := service.NewEmergencyService(repo, users, hub, cache, testLogger())

	signal, err := svc.Create(context.Background(), 42, domain.CreateEmergencySignalRequest{
		Latitude:  "40.7128",
		Longitude: "-74.0060",
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if signal.ID != 7 {
		t.Fatalf("expected id=7 got=%d", signal.ID)
	}
	if !signal.Active {
		t.Fatalf("new signal must be active")
	}
	if signal.ResolvedAt != nil {
		t.Fatalf("new signal must have nil resolvedAt")
	}

	if broadcast.Type != domain.EventEmergencySignal {
		t.Fatalf("expected %s broadcast, got %s", domain.EventEmergencySignal, broadcast.Type)
	}
	ev, err := domain.DecodeSignalEvent(broadcast)
	if err != nil {
		t.Fatalf("bad broadcast payload: %v", err)
	}
	if ev.ID != 7 || ev.User == nil || ev.User.FullName != "Jane Smith" {
		t.Fatalf("unexpected event payload: %+v", ev)
	}
}

func TestEmergencyService_Create_RepoError_NoBroadcast(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_service.NewMockEmergencyRepository(ctrl)
	users := mock_service.NewMockUserRepository(ctrl)
	hub := mock_service.NewMockBroadcaster(ctrl)

	repo.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		Return(errors.New("db down")).
		Times(1)
	// hub.Broadcast must not be called at all.

	svc := service.NewEmergencyService(repo, users, hub, nil, testLogger())

	_, err := svc.Create(context.Background(), 1, domain.CreateEmergencySignalRequest{
		Latitude:  "1",
		Longitude: "2",
	})
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
}

func TestEmergencyService_Create_UserLookupFails_StillBroadcasts(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_service.NewMockEmergencyRepository(ctrl)
	users := mock_service.NewMockUserRepository(ctrl)
	hub := mock_service.NewMockBroadcaster(ctrl)

	repo.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, sig *domain.EmergencySignal) error {
			sig.ID = 3
			return nil
		}).
		Times(1)
	users.EXPECT().
		GetByID(gomock.Any(), int64(9)).
		Return(nil, e.ErrNotFound).
		Times(1)

	var broadcast domain.Envelope
	hub.EXPECT().
		Broadcast(gomock.Any()).
		Do(func(env domain.Envelope) { broadcast = env }).
		Times(1)

	svc := service.NewEmergencyService(repo, users, hub, nil, testLogger())

	if _, err := svc.Create(context.Background(), 9, domain.CreateEmergencySignalRequest{
		Latitude:  "1",
		Longitude: "2",
	}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	ev, err := domain.DecodeSignalEvent(broadcast)
	if err != nil {
		t.Fatalf("bad broadcast payload: %v", err)
	}
	if ev.User == nil || ev.User.ID != 9 || ev.User.FullName != "" {
		t.Fatalf("expected bare issuer id in payload, got %+v", ev.User)
	}
}

// --- Resolve ---

func TestEmergencyService_Resolve_OK(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_service.NewMockEmergencyRepository(ctrl)
	users := mock_service.NewMockUserRepository(ctrl)
	hub := mock_service.NewMockBroadcaster(ctrl)
	cache := mock_service.NewMockSignalCache(ctrl)

	resolvedAt := mustTime(t)
	repo.EXPECT().
		Resolve(gomock.Any(), int64(5), gomock.Any()).
		Return(&domain.EmergencySignal{
			ID:         5,
			UserID:     42,
			Active:     false,
			ResolvedAt: timePtr(resolvedAt),
		}, nil).
		Times(1)
	cache.EXPECT().Invalidate(gomock.Any()).Return(nil).Times(1)

	var broadcast domain.Envelope
	hub.EXPECT().
		Broadcast(gomock.Any()).
		Do(func(env domain.Envelope) { broadcast = env }).
		Times(1)

	svc := service.NewEmergencyService(repo, users, hub, cache, testLogger())

	signal, err := svc.Resolve(context.Background(), 5)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if signal.Active {
		t.Fatalf("resolved signal must be inactive")
	}
	if signal.ResolvedAt == nil {
		t.Fatalf("resolved signal must carry resolvedAt")
	}

	if broadcast.Type != domain.EventEmergencyResolved {
		t.Fatalf("expected %s broadcast, got %s", domain.EventEmergencyResolved, broadcast.Type)
	}
	ev, err := domain.DecodeSignalEvent(broadcast)
	if err != nil {
		t.Fatalf("bad broadcast payload: %v", err)
	}
	if ev.ID != 5 || ev.User != nil {
		t.Fatalf("resolve payload must not carry issuer identity: %+v", ev)
	}
}

func TestEmergencyService_Resolve_NotFound_NoBroadcast(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_service.NewMockEmergencyRepository(ctrl)
	users := mock_service.NewMockUserRepository(ctrl)
	hub := mock_service.NewMockBroadcaster(ctrl)

	// Already-resolved and unknown ids look the same to the service.
	repo.EXPECT().
		Resolve(gomock.Any(), int64(99), gomock.Any()).
		Return(nil, e.ErrNotFound).
		Times(1)
	// No Broadcast expectation: resolving nothing announces nothing.

	svc := service.NewEmergencyService(repo, users, hub, nil, testLogger())

	_, err := svc.Resolve(context.Background(), 99)
	if !errors.Is(err, e.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// --- ListActive ---

func TestEmergencyService_ListActive_CacheHit(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_service.NewMockEmergencyRepository(ctrl)
	users := mock_service.NewMockUserRepository(ctrl)
	hub := mock_service.NewMockBroadcaster(ctrl)
	cache := mock_service.NewMockSignalCache(ctrl)

	want := []domain.EmergencySignal{{ID: 1, Active: true}}
	cache.EXPECT().GetActive(gomock.Any()).Return(want, true, nil).Times(1)
	// repo.ListActive must not be called on a hit.

	svc := service.NewEmergencyService(repo, users, hub, cache, testLogger())

	got, err := svc.ListActive(context.Background())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("unexpected list: %+v", got)
	}
}

func TestEmergencyService_ListActive_CacheMiss_FillsCache(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_service.NewMockEmergencyRepository(ctrl)
	users := mock_service.NewMockUserRepository(ctrl)
	hub := mock_service.NewMockBroadcaster(ctrl)
	cache := mock_service.NewMockSignalCache(ctrl)

	want := []domain.EmergencySignal{{ID: 2, Active: true}}
	gomock.InOrder(
		cache.EXPECT().GetActive(gomock.Any()).Return(nil, false, nil).Times(1),
		repo.EXPECT().ListActive(gomock.Any()).Return(want, nil).Times(1),
		cache.EXPECT().SetActive(gomock.Any(), want).Return(nil).Times(1),
	)

	svc := service.NewEmergencyService(repo, users, hub, cache, testLogger())

	got, err := svc.ListActive(context.Background())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("unexpected list: %+v", got)
	}
}

func TestEmergencyService_ListActive_CacheErrorFallsThrough(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_service.NewMockEmergencyRepository(ctrl)
	users := mock_service.NewMockUserRepository(ctrl)
	hub := mock_service.NewMockBroadcaster(ctrl)
	cache := mock_service.NewMockSignalCache(ctrl)

	cache.EXPECT().GetActive(gomock.Any()).Return(nil, false, errors.New("redis down")).Times(1)
	repo.EXPECT().ListActive(gomock.Any()).Return([]domain.EmergencySignal{}, nil).Times(1)
	cache.EXPECT().SetActive(gomock.Any(), gomock.Any()).Return(errors.New("redis down")).Times(1)

	svc := service.NewEmergencyService(repo, users, hub, cache, testLogger())

	if _, err := svc.ListActive(context.Background()); err != nil {
		t.Fatalf("cache failure must not fail the read: %v", err)
	}
}
