package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"crimewatch/internal/apiclient"
	"crimewatch/internal/components"
	"crimewatch/internal/config"
	"crimewatch/internal/domain"
	"crimewatch/internal/livechannel"
	"crimewatch/internal/mapview"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		components.SetupLogger("local").Error("load config failed", "err", err)
		return err
	}
	logger := components.SetupLogger(cfg.Env)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	client := apiclient.New(cfg.Client, logger)
	channel := livechannel.New(cfg.Client.PushURL, livechannel.WSDialer{Logger: logger}, logger)
	view := mapview.NewMapView(client, &logRenderer{logger: logger}, logger,
		cfg.Client.PollInterval, mapview.AllVisible())

	channel.Subscribe(domain.EventConnected, func(domain.Envelope) {
		logger.Info("push channel confirmed")
	})
	channel.Subscribe(domain.EventEmergencySignal, func(env domain.Envelope) {
		ev, err := domain.DecodeSignalEvent(env)
		if err != nil {
			logger.Warn("bad signal event", slog.Any("error", err))
			return
		}
		name := ""
		if ev.User != nil {
			name = ev.User.FullName
		}
		logger.Info("emergency signal received",
			slog.Int64("id", ev.ID),
			slog.String("from", name))
		view.Invalidate()
	})
	channel.Subscribe(domain.EventEmergencyResolved, func(env domain.Envelope) {
		ev, err := domain.DecodeSignalEvent(env)
		if err != nil {
			logger.Warn("bad resolve event", slog.Any("error", err))
			return
		}
		logger.Info("emergency resolved", slog.Int64("id", ev.ID))
		view.Invalidate()
	})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		channel.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		view.Run(ctx)
	}()

	quitChan := make(chan os.Signal, 1)
	signal.Notify(quitChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quitChan
	logger.Info("captured signal, shutting down", "signal", sig.String())

	view.Close()
	if err := channel.Close(); err != nil {
		logger.Warn("push channel close failed", slog.Any("error", err))
	}
	stop()
	wg.Wait()

	return nil
}

// logRenderer draws the map into the log stream. It stands in for a real map
// surface on headless consoles.
type logRenderer struct {
	logger *slog.Logger
}

func (r *logRenderer) Create(m mapview.Marker) {
	r.logger.Info("marker placed",
		slog.String("kind", string(m.Key.Kind)),
		slog.Int64("id", m.Key.ID),
		slog.Float64("lat", m.Lat),
		slog.Float64("lng", m.Lng),
		slog.String("color", m.Style.Color),
		slog.String("label", m.Label))
}

func (r *logRenderer) Update(m mapview.Marker) {
	r.logger.Info("marker moved",
		slog.String("kind", string(m.Key.Kind)),
		slog.Int64("id", m.Key.ID),
		slog.Float64("lat", m.Lat),
		slog.Float64("lng", m.Lng))
}

func (r *logRenderer) Remove(k mapview.Key) {
	r.logger.Info("marker removed",
		slog.String("kind", string(k.Kind)),
		slog.Int64("id", k.ID))
}
