package report

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"crimewatch/internal/domain"
	"crimewatch/internal/middleware"
	"crimewatch/internal/service"
	"crimewatch/pkg/validator"
)

type Handler struct {
	logger  *slog.Logger
	Reports service.ReportService
}

func NewHandler(logger *slog.Logger, reports service.ReportService) *Handler {
	return &Handler{
		logger:  logger,
		Reports: reports,
	}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)

	var req domain.CreateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		l.Warn("invalid JSON", slog.String("error", err.Error()))
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if err := validator.ValidateStruct(&req); err != nil {
		l.Warn("invalid report payload", slog.String("error", err.Error()))
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	user := middleware.UserFrom(r.Context())
	if user == nil {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	report, err := h.Reports.Create(r.Context(), user.ID, req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	l.Info("crime report created", slog.Int64("id", report.ID), slog.Int64("user_id", user.ID))
	h.writeJSON(w, http.StatusCreated, report)
}

// List is role-scoped: police see everything, civilians their own reports.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())
	if user == nil {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	reports, err := h.Reports.List(r.Context(), user)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, reports)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())
	if user == nil {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	report, err := h.Reports.Get(r.Context(), user, id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, report)
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)

	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	var req domain.UpdateReportStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		l.Warn("invalid JSON", slog.String("error", err.Error()))
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if err := validator.ValidateStruct(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
		return
	}

	report, err := h.Reports.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	l.Info("report status updated", slog.Int64("id", id), slog.String("status", string(req.Status)))
	h.writeJSON(w, http.StatusOK, report)
}

func (h *Handler) AssignTeam(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)

	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	var req domain.AssignTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		l.Warn("invalid JSON", slog.String("error", err.Error()))
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if err := validator.ValidateStruct(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "teamId is required"})
		return
	}

	report, err := h.Reports.AssignTeam(r.Context(), id, req.TeamID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	l.Info("team assigned", slog.Int64("report_id", id), slog.Int64("team_id", req.TeamID))
	h.writeJSON(w, http.StatusOK, report)
}
