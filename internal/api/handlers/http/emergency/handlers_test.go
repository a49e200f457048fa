package emergency_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/golang/mock/gomock"

	"crimewatch/internal/api/handlers/http/emergency"
	"crimewatch/internal/domain"
	"crimewatch/internal/middleware"
	"crimewatch/pkg/e"

	mock_service "crimewatch/internal/service/mocks"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), &slog.HandlerOptions{Level: slog.LevelError}))
}

func addChiURLParam(r *http.Request, key, val string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, val)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func asUser(r *http.Request, user *domain.User) *http.Request {
	return r.WithContext(middleware.WithUser(r.Context(), user))
}

func decodeJSON[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid json response: %v, body=%s", err, rr.Body.String())
	}
	return out
}

func TestEmergencyCreate_OK(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := mock_service.NewMockEmergencyService(ctrl)
	h := emergency.NewHandler(newTestLogger(), svc)

	reqBody := `{"latitude":"40.7128","longitude":"-74.0060","active":true}`
	req := httptest.NewRequest(http.MethodPost, "/api/emergency/", bytes.NewBufferString(reqBody))
	req.Header.Set("Content-Type", "application/json")
	req = asUser(req, &domain.User{ID: 42, Role: domain.RoleCivilian})
	rr := httptest.NewRecorder()

	svc.EXPECT().
		Create(gomock.Any(), int64(42), domain.CreateEmergencySignalRequest{
			Latitude: "40.7128", Longitude: "-74.0060", Active: true,
		}).
		Return(&domain.EmergencySignal{ID: 7, UserID: 42, Active: true}, nil).
		Times(1)

	h.Create(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected %d got %d, body=%s", http.StatusCreated, rr.Code, rr.Body.String())
	}
	got := decodeJSON[domain.EmergencySignal](t, rr)
	if got.ID != 7 || !got.Active {
		t.Fatalf("unexpected signal: %+v", got)
	}
}

func TestEmergencyCreate_InvalidJSON_400(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := emergency.NewHandler(newTestLogger(), mock_service.NewMockEmergencyService(ctrl))

	req := httptest.NewRequest(http.MethodPost, "/api/emergency/", bytes.NewBufferString("{bad json"))
	rr := httptest.NewRecorder()

	h.Create(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected %d got %d, body=%s", http.StatusBadRequest, rr.Code, rr.Body.String())
	}
}

func TestEmergencyCreate_BadCoordinates_400(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		body string
	}{
		{"not_a_number", `{"latitude":"forty","longitude":"-74.0"}`},
		{"lat_out_of_range", `{"latitude":"91.0","longitude":"-74.0"}`},
		{"lng_out_of_range", `{"latitude":"40.7","longitude":"181.0"}`},
		{"missing_lng", `{"latitude":"40.7"}`},
		{"nan", `{"latitude":"NaN","longitude":"-74.0"}`},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			// Service must never see an invalid payload.
			h := emergency.NewHandler(newTestLogger(), mock_service.NewMockEmergencyService(ctrl))

			req := httptest.NewRequest(http.MethodPost, "/api/emergency/", bytes.NewBufferString(c.body))
			req = asUser(req, &domain.User{ID: 1, Role: domain.RoleCivilian})
			rr := httptest.NewRecorder()

			h.Create(rr, req)

			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected %d got %d, body=%s", http.StatusBadRequest, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestEmergencyCreate_NoUser_401(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := emergency.NewHandler(newTestLogger(), mock_service.NewMockEmergencyService(ctrl))

	reqBody := `{"latitude":"40.7128","longitude":"-74.0060"}`
	req := httptest.NewRequest(http.MethodPost, "/api/emergency/", bytes.NewBufferString(reqBody))
	rr := httptest.NewRecorder()

	h.Create(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected %d got %d, body=%s", http.StatusUnauthorized, rr.Code, rr.Body.String())
	}
}

func TestEmergencyList_OK(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := mock_service.NewMockEmergencyService(ctrl)
	h := emergency.NewHandler(newTestLogger(), svc)

	svc.EXPECT().
		ListActive(gomock.Any()).
		Return([]domain.EmergencySignal{{ID: 1, Active: true}, {ID: 2, Active: true}}, nil).
		Times(1)

	req := httptest.NewRequest(http.MethodGet, "/api/emergency/", nil)
	rr := httptest.NewRecorder()

	h.List(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected %d got %d, body=%s", http.StatusOK, rr.Code, rr.Body.String())
	}
	got := decodeJSON[[]domain.EmergencySignal](t, rr)
	if len(got) != 2 {
		t.Fatalf("expected 2 signals got %d", len(got))
	}
}

func TestEmergencyResolve_OK(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := mock_service.NewMockEmergencyService(ctrl)
	h := emergency.NewHandler(newTestLogger(), svc)

	svc.EXPECT().
		Resolve(gomock.Any(), int64(5)).
		Return(&domain.EmergencySignal{ID: 5, Active: false}, nil).
		Times(1)

	req := httptest.NewRequest(http.MethodPatch, "/api/emergency/5/resolve", nil)
	req = addChiURLParam(req, "id", "5")
	rr := httptest.NewRecorder()

	h.Resolve(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected %d got %d, body=%s", http.StatusOK, rr.Code, rr.Body.String())
	}
	got := decodeJSON[domain.EmergencySignal](t, rr)
	if got.Active {
		t.Fatalf("resolved signal must be inactive: %+v", got)
	}
}

func TestEmergencyResolve_NotFound_404(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := mock_service.NewMockEmergencyService(ctrl)
	h := emergency.NewHandler(newTestLogger(), svc)

	// Resolving twice and resolving a missing id both look like this.
	svc.EXPECT().
		Resolve(gomock.Any(), int64(99)).
		Return(nil, e.ErrNotFound).
		Times(1)

	req := httptest.NewRequest(http.MethodPatch, "/api/emergency/99/resolve", nil)
	req = addChiURLParam(req, "id", "99")
	rr := httptest.NewRecorder()

	h.Resolve(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected %d got %d, body=%s", http.StatusNotFound, rr.Code, rr.Body.String())
	}
}

func TestEmergencyResolve_BadID_400(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := emergency.NewHandler(newTestLogger(), mock_service.NewMockEmergencyService(ctrl))

	req := httptest.NewRequest(http.MethodPatch, "/api/emergency/abc/resolve", nil)
	req = addChiURLParam(req, "id", "abc")
	rr := httptest.NewRecorder()

	h.Resolve(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected %d got %d, body=%s", http.StatusBadRequest, rr.Code, rr.Body.String())
	}
}
