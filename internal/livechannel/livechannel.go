package livechannel

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"crimewatch/internal/domain"
)

// State of the push channel as seen by consumers.
type State int

const (
	StateConnecting State = iota
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// Conn is one established push connection.
type Conn interface {
	ReadEnvelope() (domain.Envelope, error)
	Close() error
}

// Dialer opens push connections. Production uses the gorilla dialer; tests
// substitute fakes.
type Dialer interface {
	Dial(ctx context.Context, url string) (Conn, error)
}

type Handler func(domain.Envelope)

// Client maintains a push connection to the server and redials it forever.
// Reconnects use exponential backoff starting at 1s and capped at 30s; the
// delay resets only after a connection outlives the cap, so a server that
// accepts the upgrade and immediately drops still backs the client off.
// Every retry waits a nonzero delay.
//
// Handlers run on the read goroutine, one event at a time. After Close no
// handler fires again, even if a read was already in flight.
type Client struct {
	logger *slog.Logger
	url    string
	dialer Dialer

	initialBackoff time.Duration
	maxBackoff     time.Duration

	mu       sync.Mutex
	state    State
	handlers map[domain.EventType][]Handler
	conn     Conn
	gen      uint64
	closed   bool
}

type Option func(*Client)

func WithBackoff(initial, max time.Duration) Option {
	return func(c *Client) {
		c.initialBackoff = initial
		c.maxBackoff = max
	}
}

func New(url string, dialer Dialer, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		logger:         logger,
		url:            url,
		dialer:         dialer,
		initialBackoff: time.Second,
		maxBackoff:     30 * time.Second,
		state:          StateConnecting,
		handlers:       make(map[domain.EventType][]Handler),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.initialBackoff <= 0 {
		c.initialBackoff = time.Second
	}
	return c
}

// Subscribe registers fn for envelopes of type t. Subscribing after Close is
// a no-op.
func (c *Client) Subscribe(t domain.EventType, fn Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.handlers[t] = append(c.handlers[t], fn)
}

func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Run drives the connect/read/reconnect loop until ctx is done or Close is
// called. Cancelling ctx closes the live connection so an in-flight read
// unblocks.
func (c *Client) Run(ctx context.Context) {
	backoff := c.initialBackoff

	for {
		if c.isClosed() || ctx.Err() != nil {
			return
		}
		c.setState(StateConnecting)

		conn, err := c.dialer.Dial(ctx, c.url)
		if err != nil {
			c.logger.Warn("push dial failed",
				slog.String("url", c.url),
				slog.Duration("retry_in", backoff),
				slog.Any("error", err))

			if !c.waitRetry(ctx, backoff) {
				return
			}
			backoff = c.nextBackoff(backoff)
			continue
		}

		gen, ok := c.attach(conn)
		if !ok {
			_ = conn.Close()
			return
		}
		c.logger.Info("push channel open", slog.String("url", c.url))

		watchDone := make(chan struct{})
		go func() {
			select {
			case <-ctx.Done():
				_ = conn.Close()
			case <-watchDone:
			}
		}()

		opened := time.Now()
		c.readLoop(ctx, conn, gen)
		close(watchDone)
		c.detach(gen)

		// Only a connection that outlived the backoff cap earns a fresh
		// delay. One that died right after opening keeps the growing delay,
		// so an accept-then-drop server cannot trigger a tight redial loop.
		if time.Since(opened) >= c.maxBackoff {
			backoff = c.initialBackoff
		}

		if c.isClosed() || ctx.Err() != nil {
			return
		}
		if !c.waitRetry(ctx, backoff) {
			return
		}
		backoff = c.nextBackoff(backoff)
	}
}

func (c *Client) waitRetry(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

func (c *Client) nextBackoff(d time.Duration) time.Duration {
	d *= 2
	if d > c.maxBackoff {
		d = c.maxBackoff
	}
	return d
}

func (c *Client) readLoop(ctx context.Context, conn Conn, gen uint64) {
	for {
		env, err := conn.ReadEnvelope()
		if err != nil {
			if !c.isClosed() && ctx.Err() == nil {
				c.logger.Warn("push channel lost", slog.Any("error", err))
			}
			return
		}
		c.dispatch(gen, env)
	}
}

// dispatch calls the handlers for env, unless the connection generation has
// been superseded or the client closed in the meantime.
func (c *Client) dispatch(gen uint64, env domain.Envelope) {
	c.mu.Lock()
	if c.closed || c.gen != gen {
		c.mu.Unlock()
		return
	}
	handlers := make([]Handler, len(c.handlers[env.Type]))
	copy(handlers, c.handlers[env.Type])
	c.mu.Unlock()

	for _, fn := range handlers {
		fn(env)
	}
}

// Close detaches all handlers first, then closes the live connection. Run
// exits on the resulting read error.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.handlers = nil
	c.gen++
	conn := c.conn
	c.conn = nil
	c.state = StateClosed
	c.mu.Unlock()

	if conn != nil {
		return conn.Close()
	}
	return nil
}

func (c *Client) attach(conn Conn) (uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, false
	}
	c.gen++
	c.conn = conn
	c.state = StateOpen
	return c.gen, true
}

func (c *Client) detach(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return
	}
	c.conn = nil
	if !c.closed {
		c.state = StateConnecting
	}
}

func (c *Client) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Client) setState(s State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.state = s
	}
}
