package apiclient_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"crimewatch/internal/apiclient"
	"crimewatch/internal/config"
	"crimewatch/internal/domain"
	"crimewatch/pkg/e"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newClient(srvURL string, userID int64) *apiclient.Client {
	return apiclient.New(config.ClientConfig{BaseURL: srvURL, UserID: userID}, testLogger())
}

func TestClient_SendsIdentityHeader(t *testing.T) {
	t.Parallel()

	var gotHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("X-User-ID")
		_ = json.NewEncoder(w).Encode([]domain.EmergencySignal{{ID: 1, Active: true}})
	}))
	defer srv.Close()

	client := newClient(srv.URL, 42)

	signals, err := client.ActiveSignals(context.Background())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if gotHeader != "42" {
		t.Fatalf("expected X-User-ID=42, got %q", gotHeader)
	}
	if len(signals) != 1 || signals[0].ID != 1 {
		t.Fatalf("unexpected signals: %+v", signals)
	}
}

func TestClient_MapsStatusToSentinels(t *testing.T) {
	t.Parallel()

	cases := []struct {
		code int
		want error
	}{
		{http.StatusNotFound, e.ErrNotFound},
		{http.StatusBadRequest, e.ErrInvalidInput},
		{http.StatusForbidden, e.ErrForbidden},
		{http.StatusConflict, e.ErrConflict},
		{http.StatusInternalServerError, e.ErrInternal},
	}

	for _, c := range cases {
		c := c
		t.Run(http.StatusText(c.code), func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(c.code)
			}))
			defer srv.Close()

			client := newClient(srv.URL, 1)

			_, err := client.ResolveSignal(context.Background(), 5)
			if !errors.Is(err, c.want) {
				t.Fatalf("expected %v, got %v", c.want, err)
			}
		})
	}
}

func TestClient_CreateSignalRoundTrip(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/emergency/" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var req domain.CreateEmergencySignalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(domain.EmergencySignal{
			ID: 7, Active: true, Latitude: req.Latitude, Longitude: req.Longitude,
		})
	}))
	defer srv.Close()

	client := newClient(srv.URL, 42)

	signal, err := client.CreateSignal(context.Background(), domain.CreateEmergencySignalRequest{
		Latitude: "40.7", Longitude: "-74.0",
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if signal.ID != 7 || signal.Latitude != "40.7" {
		t.Fatalf("unexpected signal: %+v", signal)
	}
}
