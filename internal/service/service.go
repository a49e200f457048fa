package service

import (
	"context"
	"time"

	"crimewatch/internal/domain"
)

//go:generate mockgen -source=service.go -destination=mocks/mock.go

// EmergencyService drives the signal lifecycle: Active on creation, one
// terminal transition to Resolved, broadcast after each successful write.
type EmergencyService interface {
	Create(ctx context.Context, userID int64, req domain.CreateEmergencySignalRequest) (*domain.EmergencySignal, error)
	Resolve(ctx context.Context, id int64) (*domain.EmergencySignal, error)
	ListActive(ctx context.Context) ([]domain.EmergencySignal, error)
}

type ReportService interface {
	Create(ctx context.Context, userID int64, req domain.CreateReportRequest) (*domain.CrimeReport, error)
	Get(ctx context.Context, viewer *domain.User, id int64) (*domain.CrimeReport, error)
	List(ctx context.Context, viewer *domain.User) ([]domain.CrimeReport, error)
	UpdateStatus(ctx context.Context, id int64, status domain.ReportStatus) (*domain.CrimeReport, error)
	AssignTeam(ctx context.Context, reportID, teamID int64) (*domain.CrimeReport, error)
}

type TeamService interface {
	Create(ctx context.Context, req domain.CreateTeamRequest) (*domain.Team, error)
	Get(ctx context.Context, id int64) (*domain.Team, error)
	List(ctx context.Context) ([]domain.Team, error)
	UpdateStatus(ctx context.Context, id int64, status domain.TeamStatus) (*domain.Team, error)
}

// Repositories, consumer side.

type EmergencyRepository interface {
	Create(ctx context.Context, signal *domain.EmergencySignal) error
	ListActive(ctx context.Context) ([]domain.EmergencySignal, error)
	Resolve(ctx context.Context, id int64, at time.Time) (*domain.EmergencySignal, error)
}

type ReportRepository interface {
	Create(ctx context.Context, report *domain.CrimeReport) error
	Get(ctx context.Context, id int64) (*domain.CrimeReport, error)
	ListAll(ctx context.Context) ([]domain.CrimeReport, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.CrimeReport, error)
	UpdateStatus(ctx context.Context, id int64, status domain.ReportStatus) (*domain.CrimeReport, error)
	AssignTeam(ctx context.Context, reportID, teamID int64) (*domain.CrimeReport, error)
}

type TeamRepository interface {
	Create(ctx context.Context, team *domain.Team) error
	Get(ctx context.Context, id int64) (*domain.Team, error)
	List(ctx context.Context) ([]domain.Team, error)
	UpdateStatus(ctx context.Context, id int64, status domain.TeamStatus) (*domain.Team, error)
}

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
}

// Broadcaster fans an event out to every connected push client. Delivery is
// best-effort; implementations never report an error back.
type Broadcaster interface {
	Broadcast(env domain.Envelope)
}

// SignalCache is optional read-through caching for the active-signal list.
type SignalCache interface {
	GetActive(ctx context.Context) ([]domain.EmergencySignal, bool, error)
	SetActive(ctx context.Context, signals []domain.EmergencySignal) error
	Invalidate(ctx context.Context) error
}

type Service struct {
	EmergencyService EmergencyService
	ReportService    ReportService
	TeamService      TeamService
	Users            UserRepository
}

func NewService(
	emergencyService EmergencyService,
	reportService ReportService,
	teamService TeamService,
	users UserRepository,
) *Service {
	return &Service{
		EmergencyService: emergencyService,
		ReportService:    reportService,
		TeamService:      teamService,
		Users:            users,
	}
}

// NopSignalCache stands in when redis is disabled.
type NopSignalCache struct{}

func (NopSignalCache) GetActive(context.Context) ([]domain.EmergencySignal, bool, error) {
	return nil, false, nil
}
func (NopSignalCache) SetActive(context.Context, []domain.EmergencySignal) error { return nil }
func (NopSignalCache) Invalidate(context.Context) error                          { return nil }
