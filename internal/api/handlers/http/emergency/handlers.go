package emergency

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
	logger    *slog.Logger
	Emergency service.EmergencyService
}

func NewHandler(logger *slog.Logger, emergency service.EmergencyService) *Handler {
	return &Handler{
		logger:    logger,
		Emergency: emergency,
	}
}

// Create files a distress signal for the authenticated caller and announces
// it to all connected push clients once it is durable.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)

	var req domain.CreateEmergencySignalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		l.Warn("invalid JSON", slog.String("error", err.Error()))
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if err := validator.ValidateStruct(&req); err != nil {
		l.Warn("invalid signal payload", slog.String("error", err.Error()))
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid coordinates"})
		return
	}

	user := middleware.UserFrom(r.Context())
	if user == nil {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	signal, err := h.Emergency.Create(r.Context(), user.ID, req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	l.Info("emergency signal accepted",
		slog.Int64("id", signal.ID),
		slog.Int64("user_id", user.ID),
	)
	h.writeJSON(w, http.StatusCreated, signal)
}

// List returns active signals only; resolved ones are history, not map state.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	signals, err := h.Emergency.ListActive(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, signals)
}

func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)

	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	signal, err := h.Emergency.Resolve(r.Context(), id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	l.Info("emergency signal resolved", slog.Int64("id", id))
	h.writeJSON(w, http.StatusOK, signal)
}
