package hub

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"crimewatch/internal/domain"
)

// Hub tracks open push connections and fans emergency events out to all of
// them. It is owned by the server process: components init it, route handlers
// get it injected, Shutdown closes every connection.
type Hub struct {
	logger       *slog.Logger
	pingInterval time.Duration

	mu     sync.Mutex
	conns  map[uuid.UUID]Conn
	closed bool
}

func New(logger *slog.Logger, pingInterval time.Duration) *Hub {
	return &Hub{
		logger:       logger,
		pingInterval: pingInterval,
		conns:        make(map[uuid.UUID]Conn),
	}
}

// Register adds a connection and greets it. A CONNECTED send failure is not
// fatal: the heartbeat will reap the connection if it is really dead.
func (h *Hub) Register(conn Conn) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.Close()
		return
	}
	h.conns[conn.ID()] = conn
	total := len(h.conns)
	h.mu.Unlock()

	connectionsGauge.Set(float64(total))
	h.logger.Info("push client registered",
		slog.String("conn_id", conn.ID().String()),
		slog.Int("total", total))

	if err := conn.Send(domain.NewConnectedEnvelope()); err != nil {
		h.logger.Warn("welcome send failed",
			slog.String("conn_id", conn.ID().String()),
			slog.Any("error", err))
	}
}

// Unregister removes a connection. Safe to call more than once per connection;
// only the first call logs and changes state.
func (h *Hub) Unregister(conn Conn) {
	h.mu.Lock()
	_, ok := h.conns[conn.ID()]
	if ok {
		delete(h.conns, conn.ID())
	}
	total := len(h.conns)
	h.mu.Unlock()

	if !ok {
		return
	}
	connectionsGauge.Set(float64(total))
	h.logger.Info("push client unregistered",
		slog.String("conn_id", conn.ID().String()),
		slog.Int("total", total))
}

// Broadcast delivers env to every registered connection. Send errors are
// logged and counted; a failing connection is dropped and fan-out continues.
// Broadcast never returns an error to its caller.
func (h *Hub) Broadcast(env domain.Envelope) {
	snapshot := h.snapshot()
	broadcastsTotal.WithLabelValues(string(env.Type)).Inc()

	h.logger.Debug("broadcasting",
		slog.String("type", string(env.Type)),
		slog.Int("clients", len(snapshot)))

	for _, conn := range snapshot {
		if err := conn.Send(env); err != nil {
			sendFailuresTotal.Inc()
			h.logger.Warn("broadcast send failed",
				slog.String("conn_id", conn.ID().String()),
				slog.Any("error", err))
			h.Unregister(conn)
			_ = conn.Close()
		}
	}
}

// Run drives the heartbeat until ctx is done. A connection that fails its
// ping is treated as half-open and reaped.
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.logger.Info("hub heartbeat stopped", slog.String("reason", ctx.Err().Error()))
			return
		case <-ticker.C:
			h.probe()
		}
	}
}

func (h *Hub) probe() {
	for _, conn := range h.snapshot() {
		if err := conn.Ping(); err != nil {
			h.logger.Warn("heartbeat failed, dropping connection",
				slog.String("conn_id", conn.ID().String()),
				slog.Any("error", err))
			h.Unregister(conn)
			_ = conn.Close()
		}
	}
}

// Shutdown closes all connections and rejects future registrations.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	h.closed = true
	conns := make([]Conn, 0, len(h.conns))
	for _, c := range h.conns {
		conns = append(conns, c)
	}
	h.conns = make(map[uuid.UUID]Conn)
	h.mu.Unlock()

	for _, c := range conns {
		_ = c.Close()
	}
	connectionsGauge.Set(0)
	h.logger.Info("hub shut down", slog.Int("closed", len(conns)))
}

// snapshot copies the live set so broadcast/probe never iterate the map while
// register/unregister mutate it.
func (h *Hub) snapshot() []Conn {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns := make([]Conn, 0, len(h.conns))
	for _, c := range h.conns {
		conns = append(conns, c)
	}
	return conns
}

func (h *Hub) ConnCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}
