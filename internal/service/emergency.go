package service

import (
	"context"
	"log/slog"
	"time"

	"crimewatch/internal/domain"
)

type emergencyService struct {
	repo   EmergencyRepository
	users  UserRepository
	hub    Broadcaster
	cache  SignalCache
	logger *slog.Logger
}

func NewEmergencyService(
	repo EmergencyRepository,
	users UserRepository,
	hub Broadcaster,
	cache SignalCache,
	logger *slog.Logger,
) EmergencyService {
	if cache == nil {
		cache = NopSignalCache{}
	}
	return &emergencyService{
		repo:   repo,
		users:  users,
		hub:    hub,
		cache:  cache,
		logger: logger,
	}
}

// Create persists the signal first; only a durable signal is announced. The
// broadcast carries the issuer's id and display name, nothing else about them.
func (s *emergencyService) Create(ctx context.Context, userID int64, req domain.CreateEmergencySignalRequest) (*domain.EmergencySignal, error) {
	signal := &domain.EmergencySignal{
		UserID:    userID,
		Active:    true,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, signal); err != nil {
		return nil, err
	}

	s.logger.Info("emergency signal created",
		slog.Int64("id", signal.ID),
		slog.Int64("user_id", userID),
		slog.String("lat", signal.Latitude),
		slog.String("lng", signal.Longitude),
	)

	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("signal cache invalidate failed", slog.Any("error", err))
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		// Signal is durable; announce it without issuer identity rather
		// than failing the request.
		s.logger.Error("issuer lookup failed, broadcasting without user", slog.Any("error", err))
		user = &domain.User{ID: userID}
	}

	env, err := domain.NewSignalEnvelope(*signal, user.Public())
	if err != nil {
		s.logger.Error("envelope marshal failed", slog.Any("error", err))
		return signal, nil
	}
	s.hub.Broadcast(env)

	return signal, nil
}

// Resolve is the only transition out of Active and it is terminal. The
// repository matches active rows only, so an already-resolved or unknown id
// surfaces as ErrNotFound and nothing is broadcast.
func (s *emergencyService) Resolve(ctx context.Context, id int64) (*domain.EmergencySignal, error) {
	signal, err := s.repo.Resolve(ctx, id, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	s.logger.Info("emergency signal resolved", slog.Int64("id", signal.ID))

	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("signal cache invalidate failed", slog.Any("error", err))
	}

	env, err := domain.NewResolvedEnvelope(*signal)
	if err != nil {
		s.logger.Error("envelope marshal failed", slog.Any("error", err))
		return signal, nil
	}
	s.hub.Broadcast(env)

	return signal, nil
}

func (s *emergencyService) ListActive(ctx context.Context) ([]domain.EmergencySignal, error) {
	if cached, ok, err := s.cache.GetActive(ctx); err != nil {
		s.logger.Warn("signal cache read failed", slog.Any("error", err))
	} else if ok {
		return cached, nil
	}

	signals, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetActive(ctx, signals); err != nil {
		s.logger.Warn("signal cache write failed", slog.Any("error", err))
	}
	return signals, nil
}
