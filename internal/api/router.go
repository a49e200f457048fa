package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"crimewatch/internal/api/handlers/http/emergency"
	"crimewatch/internal/api/handlers/http/report"
	"crimewatch/internal/api/handlers/http/system"
	"crimewatch/internal/api/handlers/http/team"
	"crimewatch/internal/api/handlers/ws"
	"crimewatch/internal/config"
	"crimewatch/internal/hub"
	"crimewatch/internal/middleware"
	"crimewatch/internal/service"
)

type Server struct {
	logger *slog.Logger
	router *chi.Mux
	cfg    config.Config
}

func NewServer(cfg *config.Config, logger *slog.Logger, svc *service.Service, h *hub.Hub) *Server {
	emergencyHandler := emergency.NewHandler(logger, svc.EmergencyService)
	reportHandler := report.NewHandler(logger, svc.ReportService)
	teamHandler := team.NewHandler(logger, svc.TeamService)
	systemHandler := system.NewHandler(logger)
	wsHandler := ws.NewHandler(logger, h, cfg.Hub.SendTimeout, cfg.Hub.PingInterval)

	r := InitRouter(logger, svc.Users, emergencyHandler, reportHandler, teamHandler, systemHandler, wsHandler)

	return &Server{
		logger: logger,
		router: r,
		cfg:    *cfg,
	}
}

func InitRouter(
	logger *slog.Logger,
	users service.UserRepository,
	emergencyHandler *emergency.Handler,
	reportHandler *report.Handler,
	teamHandler *team.Handler,
	systemHandler *system.Handler,
	wsHandler *ws.Handler,
) *chi.Mux {
	r := chi.NewMux()

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)

	// Push endpoint stays outside the api group: no identity, no rate limit,
	// push clients only ever receive.
	r.Get("/ws", wsHandler.Serve)

	r.Get("/health", systemHandler.SystemHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(api chi.Router) {
		api.Use(middleware.Limit(10, 20, 5*time.Minute, logger))
		api.Use(middleware.Identity(users, logger))

		api.Route("/emergency", func(er chi.Router) {
			er.Post("/", emergencyHandler.Create)

			er.Group(func(pr chi.Router) {
				pr.Use(middleware.RequirePolice)
				pr.Get("/", emergencyHandler.List)
				pr.Patch("/{id}/resolve", emergencyHandler.Resolve)
			})
		})

		api.Route("/reports", func(rr chi.Router) {
			rr.Post("/", reportHandler.Create)
			rr.Get("/", reportHandler.List)
			rr.Get("/{id}", reportHandler.Get)

			rr.Group(func(pr chi.Router) {
				pr.Use(middleware.RequirePolice)
				pr.Patch("/{id}/status", reportHandler.UpdateStatus)
				pr.Patch("/{id}/team", reportHandler.AssignTeam)
			})
		})

		api.Route("/teams", func(tr chi.Router) {
			tr.Get("/", teamHandler.List)
			tr.Get("/{id}", teamHandler.Get)

			tr.Group(func(pr chi.Router) {
				pr.Use(middleware.RequirePolice)
				pr.Post("/", teamHandler.Create)
				pr.Patch("/{id}/status", teamHandler.UpdateStatus)
			})
		})
	})

	return r
}

func (s *Server) Run(ctx context.Context) error {
	port := s.cfg.Http.Port
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	srv := &http.Server{
		Addr:         port,
		Handler:      s.router,
		ReadTimeout:  s.cfg.Http.ReadTimeout,
		WriteTimeout: s.cfg.Http.WriteTimeout,
		IdleTimeout:  30 * time.Second,
	}

	errChan := make(chan error, 1)

	go func() {
		s.logger.Info("🚀 Starting HTTP server",
			slog.String("addr", srv.Addr),
			slog.Duration("read_timeout", s.cfg.Http.ReadTimeout),
			slog.Duration("write_timeout", s.cfg.Http.WriteTimeout),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("ListenAndServe error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("🛑 Shutting down HTTP server", slog.String("reason", ctx.Err().Error()))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Http.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Server shutdown failed", slog.Any("error", err))
			return err
		}
		return nil

	case err := <-errChan:
		return err
	}
}
