package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"crimewatch/internal/config"
	"crimewatch/internal/domain"
	"crimewatch/pkg/e"
)

// Client talks to the platform REST API. Identity rides on the X-User-ID
// header; the server resolves it to a user on every request.
type Client struct {
	logger  *slog.Logger
	http    *http.Client
	baseURL string
	userID  int64
}

func New(cfg config.ClientConfig, logger *slog.Logger) *Client {
	return &Client{
		logger:  logger,
		http:    &http.Client{Timeout: 15 * time.Second},
		baseURL: cfg.BaseURL,
		userID:  cfg.UserID,
	}
}

func (c *Client) ActiveSignals(ctx context.Context) ([]domain.EmergencySignal, error) {
	var signals []domain.EmergencySignal
	if err := c.do(ctx, http.MethodGet, "/api/emergency/", nil, &signals); err != nil {
		return nil, err
	}
	return signals, nil
}

func (c *Client) Reports(ctx context.Context) ([]domain.CrimeReport, error) {
	var reports []domain.CrimeReport
	if err := c.do(ctx, http.MethodGet, "/api/reports/", nil, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

func (c *Client) Teams(ctx context.Context) ([]domain.Team, error) {
	var teams []domain.Team
	if err := c.do(ctx, http.MethodGet, "/api/teams/", nil, &teams); err != nil {
		return nil, err
	}
	return teams, nil
}

func (c *Client) CreateSignal(ctx context.Context, req domain.CreateEmergencySignalRequest) (*domain.EmergencySignal, error) {
	var signal domain.EmergencySignal
	if err := c.do(ctx, http.MethodPost, "/api/emergency/", req, &signal); err != nil {
		return nil, err
	}
	return &signal, nil
}

func (c *Client) ResolveSignal(ctx context.Context, id int64) (*domain.EmergencySignal, error) {
	var signal domain.EmergencySignal
	path := "/api/emergency/" + strconv.FormatInt(id, 10) + "/resolve"
	if err := c.do(ctx, http.MethodPatch, path, nil, &signal); err != nil {
		return nil, err
	}
	return &signal, nil
}

func (c *Client) CreateReport(ctx context.Context, req domain.CreateReportRequest) (*domain.CrimeReport, error) {
	var report domain.CrimeReport
	if err := c.do(ctx, http.MethodPost, "/api/reports/", req, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("X-User-ID", strconv.FormatInt(c.userID, 10))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s: %w", method, path, statusError(resp.StatusCode))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func statusError(code int) error {
	switch code {
	case http.StatusNotFound:
		return e.ErrNotFound
	case http.StatusBadRequest:
		return e.ErrInvalidInput
	case http.StatusForbidden:
		return e.ErrForbidden
	case http.StatusConflict:
		return e.ErrConflict
	default:
		return fmt.Errorf("%w: status %d", e.ErrInternal, code)
	}
}
