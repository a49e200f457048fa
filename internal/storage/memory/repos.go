package memory

import (
	"context"
	"time"

	"crimewatch/internal/domain"
)

// Per-entity views over the shared store, shaped like the postgres repos so
// the service layer cannot tell the backends apart.

type EmergencyRepo struct{ s *Store }
type ReportRepo struct{ s *Store }
type TeamRepo struct{ s *Store }
type UserRepo struct{ s *Store }

func (st *Store) EmergencyRepository() *EmergencyRepo { return &EmergencyRepo{s: st} }
func (st *Store) ReportRepository() *ReportRepo       { return &ReportRepo{s: st} }
func (st *Store) TeamRepository() *TeamRepo           { return &TeamRepo{s: st} }
func (st *Store) UserRepository() *UserRepo           { return &UserRepo{s: st} }

func (r *EmergencyRepo) Create(ctx context.Context, signal *domain.EmergencySignal) error {
	return r.s.CreateSignal(ctx, signal)
}

func (r *EmergencyRepo) ListActive(ctx context.Context) ([]domain.EmergencySignal, error) {
	return r.s.ListActiveSignals(ctx)
}

func (r *EmergencyRepo) Resolve(ctx context.Context, id int64, at time.Time) (*domain.EmergencySignal, error) {
	return r.s.ResolveSignal(ctx, id, at)
}

func (r *ReportRepo) Create(ctx context.Context, report *domain.CrimeReport) error {
	return r.s.CreateReport(ctx, report)
}

func (r *ReportRepo) Get(ctx context.Context, id int64) (*domain.CrimeReport, error) {
	return r.s.GetReport(ctx, id)
}

func (r *ReportRepo) ListAll(ctx context.Context) ([]domain.CrimeReport, error) {
	return r.s.ListAllReports(ctx)
}

func (r *ReportRepo) ListByUser(ctx context.Context, userID int64) ([]domain.CrimeReport, error) {
	return r.s.ListReportsByUser(ctx, userID)
}

func (r *ReportRepo) UpdateStatus(ctx context.Context, id int64, status domain.ReportStatus) (*domain.CrimeReport, error) {
	return r.s.UpdateReportStatus(ctx, id, status)
}

func (r *ReportRepo) AssignTeam(ctx context.Context, reportID, teamID int64) (*domain.CrimeReport, error) {
	return r.s.AssignTeam(ctx, reportID, teamID)
}

func (r *TeamRepo) Create(ctx context.Context, team *domain.Team) error {
	return r.s.CreateTeam(ctx, team)
}

func (r *TeamRepo) Get(ctx context.Context, id int64) (*domain.Team, error) {
	return r.s.GetTeam(ctx, id)
}

func (r *TeamRepo) List(ctx context.Context) ([]domain.Team, error) {
	return r.s.ListTeams(ctx)
}

func (r *TeamRepo) UpdateStatus(ctx context.Context, id int64, status domain.TeamStatus) (*domain.Team, error) {
	return r.s.UpdateTeamStatus(ctx, id, status)
}

func (r *UserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.s.GetUserByID(ctx, id)
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.s.GetUserByUsername(ctx, username)
}

func (r *UserRepo) Create(ctx context.Context, user *domain.User) error {
	return r.s.CreateUser(ctx, user)
}
