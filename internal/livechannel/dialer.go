package livechannel

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/gorilla/websocket"

	"crimewatch/internal/domain"
)

// WSDialer opens gorilla websocket connections to the server's /ws endpoint.
type WSDialer struct {
	Logger *slog.Logger
}

func (d WSDialer) Dial(ctx context.Context, url string) (Conn, error) {
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	// The default ping handler answers the server heartbeat with a pong.
	return &wsConn{ws: ws, logger: logger}, nil
}

type wsConn struct {
	ws     *websocket.Conn
	logger *slog.Logger
}

// ReadEnvelope returns the next parseable frame. A frame that is not valid
// JSON is logged and skipped; the connection stays open. Only transport
// errors are returned.
func (c *wsConn) ReadEnvelope() (domain.Envelope, error) {
	for {
		_, raw, err := c.ws.ReadMessage()
		if err != nil {
			return domain.Envelope{}, err
		}

		var env domain.Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			c.logger.Warn("dropping malformed push frame", slog.Any("error", err))
			continue
		}
		return env, nil
	}
}

func (c *wsConn) Close() error {
	return c.ws.Close()
}
