package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"crimewatch/internal/domain"
	"crimewatch/pkg/e"
)

type reportService struct {
	repo   ReportRepository
	logger *slog.Logger
}

func NewReportService(repo ReportRepository, logger *slog.Logger) ReportService {
	return &reportService{repo: repo, logger: logger}
}

func (s *reportService) Create(ctx context.Context, userID int64, req domain.CreateReportRequest) (*domain.CrimeReport, error) {
	report := &domain.CrimeReport{
		UserID:      userID,
		CrimeType:   req.CrimeType,
		Description: req.Description,
		Location:    req.Location,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Date:        req.Date,
		Status:      domain.ReportPending,
		Evidence:    req.Evidence,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, report); err != nil {
		return nil, err
	}

	s.logger.Info("crime report created",
		slog.Int64("id", report.ID),
		slog.Int64("user_id", userID),
		slog.String("crime_type", report.CrimeType),
	)
	return report, nil
}

// Get enforces the ownership rule: civilians read their own reports only.
func (s *reportService) Get(ctx context.Context, viewer *domain.User, id int64) (*domain.CrimeReport, error) {
	report, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if viewer.Role != domain.RolePolice && report.UserID != viewer.ID {
		return nil, fmt.Errorf("report %d: %w", id, e.ErrForbidden)
	}
	return report, nil
}

func (s *reportService) List(ctx context.Context, viewer *domain.User) ([]domain.CrimeReport, error) {
	if viewer.Role == domain.RolePolice {
		return s.repo.ListAll(ctx)
	}
	return s.repo.ListByUser(ctx, viewer.ID)
}

func (s *reportService) UpdateStatus(ctx context.Context, id int64, status domain.ReportStatus) (*domain.CrimeReport, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("status %q: %w", status, e.ErrInvalidInput)
	}
	return s.repo.UpdateStatus(ctx, id, status)
}

// AssignTeam attaches a team and pulls the report out of pending in one
// repository operation. The target team's current status is not checked.
func (s *reportService) AssignTeam(ctx context.Context, reportID, teamID int64) (*domain.CrimeReport, error) {
	report, err := s.repo.AssignTeam(ctx, reportID, teamID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("team assigned to report",
		slog.Int64("report_id", reportID),
		slog.Int64("team_id", teamID),
	)
	return report, nil
}
