package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"

	"crimewatch/internal/domain"
	"crimewatch/internal/service"
	"crimewatch/pkg/e"

	mock_service "crimewatch/internal/service/mocks"
)

func TestReportService_Create_DefaultsToPending(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_service.NewMockReportRepository(ctrl)

	var got *domain.CrimeReport
	repo.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, rep *domain.CrimeReport) error {
			got = rep
			rep.ID = 11
			return nil
		}).
		Times(1)

	svc := service.NewReportService(repo, testLogger())

	req := domain.CreateReportRequest{
		CrimeType:   "Vehicle Theft",
		Description: "Car taken overnight",
		Location:    "5th and Main",
		Latitude:    "40.71",
		Longitude:   "-74.00",
		Date:        mustTime(t),
	}

	report, err := svc.Create(context.Background(), 42, req)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if report.ID != 11 {
		t.Fatalf("expected id=11 got=%d", report.ID)
	}
	if got.Status != domain.ReportPending {
		t.Fatalf("expected pending status, got %q", got.Status)
	}
	if got.UserID != 42 {
		t.Fatalf("expected userID=42 got=%d", got.UserID)
	}
	if got.AssignedTeam != nil {
		t.Fatalf("fresh report must have no team")
	}
}

func TestReportService_Get_OwnerAndPoliceAllowed(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		viewer  *domain.User
		wantErr error
	}{
		{"owner", &domain.User{ID: 42, Role: domain.RoleCivilian}, nil},
		{"police", &domain.User{ID: 1, Role: domain.RolePolice}, nil},
		{"other_civilian", &domain.User{ID: 43, Role: domain.RoleCivilian}, e.ErrForbidden},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := mock_service.NewMockReportRepository(ctrl)
			repo.EXPECT().
				Get(gomock.Any(), int64(5)).
				Return(&domain.CrimeReport{ID: 5, UserID: 42}, nil).
				Times(1)

			svc := service.NewReportService(repo, testLogger())

			_, err := svc.Get(context.Background(), c.viewer, 5)
			if c.wantErr == nil && err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if c.wantErr != nil && !errors.Is(err, c.wantErr) {
				t.Fatalf("expected %v, got %v", c.wantErr, err)
			}
		})
	}
}

func TestReportService_List_RoleScoped(t *testing.T) {
	t.Parallel()

	t.Run("police_sees_all", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := mock_service.NewMockReportRepository(ctrl)
		repo.EXPECT().
			ListAll(gomock.Any()).
			Return([]domain.CrimeReport{{ID: 1}, {ID: 2}}, nil).
			Times(1)

		svc := service.NewReportService(repo, testLogger())

		list, err := svc.List(context.Background(), &domain.User{ID: 1, Role: domain.RolePolice})
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if len(list) != 2 {
			t.Fatalf("expected 2 reports got %d", len(list))
		}
	})

	t.Run("civilian_sees_own", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := mock_service.NewMockReportRepository(ctrl)
		repo.EXPECT().
			ListByUser(gomock.Any(), int64(42)).
			Return([]domain.CrimeReport{{ID: 1, UserID: 42}}, nil).
			Times(1)

		svc := service.NewReportService(repo, testLogger())

		list, err := svc.List(context.Background(), &domain.User{ID: 42, Role: domain.RoleCivilian})
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if len(list) != 1 {
			t.Fatalf("expected 1 report got %d", len(list))
		}
	})
}

func TestReportService_UpdateStatus_RejectsUnknownStatus(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_service.NewMockReportRepository(ctrl)
	// Repo must not be reached with a bogus status.

	svc := service.NewReportService(repo, testLogger())

	_, err := svc.UpdateStatus(context.Background(), 1, domain.ReportStatus("escalated"))
	if !errors.Is(err, e.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestReportService_UpdateStatus_OK(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_service.NewMockReportRepository(ctrl)
	repo.EXPECT().
		UpdateStatus(gomock.Any(), int64(1), domain.ReportResolved).
		Return(&domain.CrimeReport{ID: 1, Status: domain.ReportResolved}, nil).
		Times(1)

	svc := service.NewReportService(repo, testLogger())

	report, err := svc.UpdateStatus(context.Background(), 1, domain.ReportResolved)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if report.Status != domain.ReportResolved {
		t.Fatalf("expected resolved, got %q", report.Status)
	}
}

func TestReportService_AssignTeam_OK(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	teamID := int64(3)
	repo := mock_service.NewMockReportRepository(ctrl)
	repo.EXPECT().
		AssignTeam(gomock.Any(), int64(7), teamID).
		Return(&domain.CrimeReport{
			ID:           7,
			Status:       domain.ReportInProgress,
			AssignedTeam: &teamID,
		}, nil).
		Times(1)

	svc := service.NewReportService(repo, testLogger())

	report, err := svc.AssignTeam(context.Background(), 7, teamID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if report.Status != domain.ReportInProgress {
		t.Fatalf("assignment must move the report to in_progress, got %q", report.Status)
	}
	if report.AssignedTeam == nil || *report.AssignedTeam != teamID {
		t.Fatalf("unexpected assigned team: %v", report.AssignedTeam)
	}
}

func TestReportService_AssignTeam_TeamNotFound(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_service.NewMockReportRepository(ctrl)
	repo.EXPECT().
		AssignTeam(gomock.Any(), int64(7), int64(99)).
		Return(nil, e.ErrNotFound).
		Times(1)

	svc := service.NewReportService(repo, testLogger())

	if _, err := svc.AssignTeam(context.Background(), 7, 99); !errors.Is(err, e.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
