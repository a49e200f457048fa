package ws

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"crimewatch/internal/hub"
)

// Handler upgrades /ws requests and hands the connection to the hub. The read
// loop exists only to service control frames and detect the peer going away;
// clients never send application data upstream.
type Handler struct {
	logger      *slog.Logger
	hub         *hub.Hub
	sendTimeout time.Duration
	pongWait    time.Duration
	upgrader    websocket.Upgrader
}

// NewHandler derives the read deadline from the heartbeat interval: a peer
// may miss two pings before it is reaped.
func NewHandler(logger *slog.Logger, h *hub.Hub, sendTimeout, pingInterval time.Duration) *Handler {
	return &Handler{
		logger:      logger,
		hub:         h,
		sendTimeout: sendTimeout,
		pongWait:    3 * pingInterval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	wsConn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		h.logger.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}

	conn := hub.NewWSConn(wsConn, h.sendTimeout)
	h.hub.Register(conn)

	_ = wsConn.SetReadDeadline(time.Now().Add(h.pongWait))
	wsConn.SetPongHandler(func(string) error {
		return wsConn.SetReadDeadline(time.Now().Add(h.pongWait))
	})

	go h.readLoop(wsConn, conn)
}

func (h *Handler) readLoop(wsConn *websocket.Conn, conn *hub.WSConn) {
	defer func() {
		h.hub.Unregister(conn)
		_ = conn.Close()
	}()

	for {
		if _, _, err := wsConn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("websocket read failed", slog.Any("error", err))
			}
			return
		}
	}
}
