package hub

import (
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"crimewatch/internal/domain"
)

// Conn is one registered push connection. Implementations must be safe for
// concurrent Send/Ping/Close: the hub calls them from the broadcast path and
// the heartbeat loop.
type Conn interface {
	ID() uuid.UUID
	Send(env domain.Envelope) error
	Ping() error
	Close() error
}

// WSConn adapts a gorilla websocket connection to the hub. All writes go
// through writeMu because gorilla allows only one concurrent writer.
type WSConn struct {
	id          uuid.UUID
	ws          *websocket.Conn
	sendTimeout time.Duration
	writeMu     chan struct{} // 1-slot semaphore, usable with deadlines
}

func NewWSConn(ws *websocket.Conn, sendTimeout time.Duration) *WSConn {
	c := &WSConn{
		id:          uuid.New(),
		ws:          ws,
		sendTimeout: sendTimeout,
		writeMu:     make(chan struct{}, 1),
	}
	c.writeMu <- struct{}{}
	return c
}

func (c *WSConn) ID() uuid.UUID { return c.id }

func (c *WSConn) Send(env domain.Envelope) error {
	<-c.writeMu
	defer func() { c.writeMu <- struct{}{} }()

	_ = c.ws.SetWriteDeadline(time.Now().Add(c.sendTimeout))
	return c.ws.WriteJSON(env)
}

func (c *WSConn) Ping() error {
	<-c.writeMu
	defer func() { c.writeMu <- struct{}{} }()

	_ = c.ws.SetWriteDeadline(time.Now().Add(c.sendTimeout))
	return c.ws.WriteMessage(websocket.PingMessage, nil)
}

func (c *WSConn) Close() error {
	return c.ws.Close()
}
