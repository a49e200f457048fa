package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"crimewatch/internal/domain"
	"crimewatch/pkg/e"
)

type teamService struct {
	repo   TeamRepository
	logger *slog.Logger
}

func NewTeamService(repo TeamRepository, logger *slog.Logger) TeamService {
	return &teamService{repo: repo, logger: logger}
}

func (s *teamService) Create(ctx context.Context, req domain.CreateTeamRequest) (*domain.Team, error) {
	team := &domain.Team{
		Name:      req.Name,
		Type:      req.Type,
		Members:   req.Members,
		Status:    domain.TeamAvailable,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, team); err != nil {
		return nil, err
	}
	s.logger.Info("team created", slog.Int64("id", team.ID), slog.String("name", team.Name))
	return team, nil
}

func (s *teamService) Get(ctx context.Context, id int64) (*domain.Team, error) {
	return s.repo.Get(ctx, id)
}

func (s *teamService) List(ctx context.Context) ([]domain.Team, error) {
	return s.repo.List(ctx)
}

func (s *teamService) UpdateStatus(ctx context.Context, id int64, status domain.TeamStatus) (*domain.Team, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("status %q: %w", status, e.ErrInvalidInput)
	}
	return s.repo.UpdateStatus(ctx, id, status)
}
