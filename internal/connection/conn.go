package connection

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/time/rate"

	"github.com/minhpascal/IBREST/internal/tws"
)

// Conn is one upstream connection bound to a fixed clientId. The events
// channel is created once and survives reconnects; each session's read
// loop feeds it until the session dies.
type Conn struct {
	clientID  int
	transport Transport
	limiter   *rate.Limiter
	logger    *slog.Logger

	// Output channel
	events chan tws.Event
	done   chan struct{}

	// State
	mu        sync.RWMutex
	session   Session
	connected bool
	closed    bool
}

// NewConn creates a Connection. It does not dial; call Connect.
func NewConn(clientID int, transport Transport, cfg ConnConfig, logger *slog.Logger) *Conn {
	if logger == nil {
		logger = slog.Default()
	}

	return &Conn{
		clientID:  clientID,
		transport: transport,
		limiter:   rate.NewLimiter(rate.Limit(cfg.CommandRate), cfg.CommandBurst),
		logger:    logger,
		events:    make(chan tws.Event, cfg.BufferSize),
		done:      make(chan struct{}),
	}
}

// ClientID returns the fixed clientId this connection is bound to.
func (c *Conn) ClientID() int {
	return c.clientID
}

// Events returns the inbound event channel. The channel is never closed;
// consumers select on Done to stop.
func (c *Conn) Events() <-chan tws.Event {
	return c.events
}

// Done is closed when the connection is shut down for good.
func (c *Conn) Done() <-chan struct{} {
	return c.done
}

// IsConnected reports whether a live session is up.
func (c *Conn) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// Connect dials a session and starts its read loop. Calling Connect on a
// live connection is a no-op; on a closed one it returns ErrAlreadyClosed.
func (c *Conn) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrAlreadyClosed
	}
	if c.connected {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	sess, err := c.transport.Dial(ctx, c.clientID)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.closed || c.connected {
		c.mu.Unlock()
		sess.Close()
		if c.closed {
			return ErrAlreadyClosed
		}
		return nil
	}
	c.session = sess
	c.connected = true
	c.mu.Unlock()

	go c.readLoop(sess)

	c.logger.Debug("connected", "client_id", c.clientID)
	return nil
}

// Send paces and writes one command to the live session.
func (c *Conn) Send(ctx context.Context, cmd tws.Command) error {
	c.mu.RLock()
	sess := c.session
	up := c.connected
	c.mu.RUnlock()

	if !up {
		return ErrNotConnected
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	return sess.WriteCommand(cmd)
}

// Close shuts the connection down for good. Idempotent.
func (c *Conn) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.connected = false
	sess := c.session
	c.mu.Unlock()

	close(c.done)

	if sess != nil {
		return sess.Close()
	}
	return nil
}

// readLoop pumps one session's events into the connection's channel. It
// exits when the session dies, flipping connected off unless a newer
// session has already replaced this one.
func (c *Conn) readLoop(s Session) {
	defer func() {
		c.mu.Lock()
		if c.session == s {
			c.connected = false
		}
		c.mu.Unlock()
	}()

	for {
		ev, err := s.ReadEvent()
		if err != nil {
			// Quiet after Close; otherwise the session dropped.
			select {
			case <-c.done:
			default:
				c.logger.Warn("upstream read failed", "client_id", c.clientID, "error", err)
			}
			return
		}

		select {
		case c.events <- ev:
		case <-c.done:
			return
		default:
			c.logger.Warn("event buffer full, dropping event",
				"client_id", c.clientID,
				"type", ev.Type(),
			)
		}
	}
}
