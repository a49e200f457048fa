// Package memory keeps all entities in process. It backs STORAGE=memory dev
// runs and the repository-consuming tests.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"crimewatch/internal/domain"
	"crimewatch/pkg/e"
)

type Store struct {
	mu sync.Mutex

	users   map[int64]domain.User
	reports map[int64]domain.CrimeReport
	teams   map[int64]domain.Team
	signals map[int64]domain.EmergencySignal

	userID   int64
	reportID int64
	teamID   int64
	signalID int64
}

func NewStore() *Store {
	return &Store{
		users:   make(map[int64]domain.User),
		reports: make(map[int64]domain.CrimeReport),
		teams:   make(map[int64]domain.Team),
		signals: make(map[int64]domain.EmergencySignal),
	}
}

// --- users ---

func (s *Store) CreateUser(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == user.Username {
			return fmt.Errorf("memory.User.Create: %w", e.ErrUniqueViolation)
		}
	}
	s.userID++
	user.ID = s.userID
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	if user.Role == "" {
		user.Role = domain.RoleCivilian
	}
	s.users[user.ID] = *user
	return nil
}

func (s *Store) GetUserByID(_ context.Context, id int64) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("memory.User.GetByID: %w", e.ErrNotFound)
	}
	return &u, nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, fmt.Errorf("memory.User.GetByUsername: %w", e.ErrNotFound)
}

// --- crime reports ---

func (s *Store) CreateReport(_ context.Context, report *domain.CrimeReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reportID++
	report.ID = s.reportID
	now := time.Now().UTC()
	if report.CreatedAt.IsZero() {
		report.CreatedAt = now
	}
	report.UpdatedAt = report.CreatedAt
	if report.Status == "" {
		report.Status = domain.ReportPending
	}
	report.AssignedTeam = nil
	s.reports[report.ID] = *report
	return nil
}

func (s *Store) GetReport(_ context.Context, id int64) (*domain.CrimeReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[id]
	if !ok {
		return nil, fmt.Errorf("memory.Report.Get: %w", e.ErrNotFound)
	}
	return &r, nil
}

func (s *Store) ListAllReports(_ context.Context) ([]domain.CrimeReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.CrimeReport, 0, len(s.reports))
	for _, r := range s.reports {
		out = append(out, r)
	}
	return out, nil
}

func (s *Store) ListReportsByUser(_ context.Context, userID int64) ([]domain.CrimeReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.CrimeReport, 0)
	for _, r := range s.reports {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Store) UpdateReportStatus(_ context.Context, id int64, status domain.ReportStatus) (*domain.CrimeReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[id]
	if !ok {
		return nil, fmt.Errorf("memory.Report.UpdateStatus: %w", e.ErrNotFound)
	}
	r.Status = status
	r.UpdatedAt = time.Now().UTC()
	s.reports[id] = r
	return &r, nil
}

func (s *Store) AssignTeam(_ context.Context, reportID, teamID int64) (*domain.CrimeReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[reportID]
	if !ok {
		return nil, fmt.Errorf("memory.Report.AssignTeam: %w", e.ErrNotFound)
	}
	t, ok := s.teams[teamID]
	if !ok {
		return nil, fmt.Errorf("memory.Report.AssignTeam: team %d: %w", teamID, e.ErrNotFound)
	}

	r.AssignedTeam = &teamID
	r.Status = domain.ReportInProgress
	r.UpdatedAt = time.Now().UTC()
	s.reports[reportID] = r

	t.Status = domain.TeamAssigned
	s.teams[teamID] = t

	return &r, nil
}

// --- teams ---

func (s *Store) CreateTeam(_ context.Context, team *domain.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teamID++
	team.ID = s.teamID
	if team.CreatedAt.IsZero() {
		team.CreatedAt = time.Now().UTC()
	}
	if team.Status == "" {
		team.Status = domain.TeamAvailable
	}
	s.teams[team.ID] = *team
	return nil
}

func (s *Store) GetTeam(_ context.Context, id int64) (*domain.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.teams[id]
	if !ok {
		return nil, fmt.Errorf("memory.Team.Get: %w", e.ErrNotFound)
	}
	return &t, nil
}

func (s *Store) ListTeams(_ context.Context) ([]domain.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Team, 0, len(s.teams))
	for _, t := range s.teams {
		out = append(out, t)
	}
	return out, nil
}

func (s *Store) UpdateTeamStatus(_ context.Context, id int64, status domain.TeamStatus) (*domain.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.teams[id]
	if !ok {
		return nil, fmt.Errorf("memory.Team.UpdateStatus: %w", e.ErrNotFound)
	}
	t.Status = status
	s.teams[id] = t
	return &t, nil
}

// --- emergency signals ---

func (s *Store) CreateSignal(_ context.Context, signal *domain.EmergencySignal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signalID++
	signal.ID = s.signalID
	if signal.CreatedAt.IsZero() {
		signal.CreatedAt = time.Now().UTC()
	}
	signal.Active = true
	signal.ResolvedAt = nil
	s.signals[signal.ID] = *signal
	return nil
}

func (s *Store) ListActiveSignals(_ context.Context) ([]domain.EmergencySignal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.EmergencySignal, 0)
	for _, sig := range s.signals {
		if sig.Active {
			out = append(out, sig)
		}
	}
	return out, nil
}

// ResolveSignal only finds signals that are still active, which makes a second
// resolve indistinguishable from an unknown id.
func (s *Store) ResolveSignal(_ context.Context, id int64, at time.Time) (*domain.EmergencySignal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sig, ok := s.signals[id]
	if !ok || !sig.Active {
		return nil, fmt.Errorf("memory.Emergency.Resolve: %w", e.ErrNotFound)
	}
	sig.Active = false
	at = at.UTC()
	sig.ResolvedAt = &at
	s.signals[id] = sig
	return &sig, nil
}
