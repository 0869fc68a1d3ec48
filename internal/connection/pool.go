package connection

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Pool is the fixed set of Connections, clientIds 0..Size-1. Every
// clientId is either in available or checked out by exactly one in-flight
// request; never both, never neither.
type Pool struct {
	cfg    PoolConfig
	logger *slog.Logger

	mu        sync.Mutex
	all       map[int]*Conn
	available []int
	closed    bool
}

// NewPool builds the pool and its Connections. Nothing is dialed until
// ConnectAll or a lazy Healthcheck reconnect.
func NewPool(transport Transport, connCfg ConnConfig, cfg PoolConfig, logger *slog.Logger) *Pool {
	if logger == nil {
		logger = slog.Default()
	}

	p := &Pool{
		cfg:       cfg,
		logger:    logger,
		all:       make(map[int]*Conn, cfg.Size),
		available: make([]int, 0, cfg.Size),
	}
	for id := 0; id < cfg.Size; id++ {
		p.all[id] = NewConn(id, transport, connCfg, logger)
		p.available = append(p.available, id)
	}
	return p
}

// ConnectAll dials every connection. Failures are logged, not fatal; dead
// slots reconnect lazily on checkout.
func (p *Pool) ConnectAll(ctx context.Context) {
	for id := 0; id < p.cfg.Size; id++ {
		if err := p.all[id].Connect(ctx); err != nil {
			p.logger.Warn("initial connect failed", "client_id", id, "error", err)
		}
	}
}

// Acquire checks out any free non-reserved Connection, FIFO over released
// clientIds. It polls up to the pool-wait budget and returns
// ErrPoolTimeout when nothing frees up in time.
func (p *Pool) Acquire(ctx context.Context) (*Conn, error) {
	for i := 0; i < p.cfg.WaitIters; i++ {
		conn, err := p.takeAny()
		if err != nil {
			return nil, err
		}
		if conn != nil {
			return conn, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(p.cfg.WaitInterval):
		}
	}
	return nil, ErrPoolTimeout
}

// AcquireID checks out one specific clientId, polling for it through the
// pool-wait budget. If it never frees up, any free Connection is taken as
// a fallback before giving up.
func (p *Pool) AcquireID(ctx context.Context, id int) (*Conn, error) {
	for i := 0; i < p.cfg.WaitIters; i++ {
		conn, err := p.takeID(id)
		if err != nil {
			return nil, err
		}
		if conn != nil {
			return conn, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(p.cfg.WaitInterval):
		}
	}

	conn, err := p.takeAny()
	if err != nil {
		return nil, err
	}
	if conn != nil {
		p.logger.Warn("preferred client id busy, falling back",
			"preferred", id,
			"client_id", conn.ClientID(),
		)
		return conn, nil
	}
	return nil, ErrPoolTimeout
}

// Release returns a Connection to the tail of the available list. The
// session stays up; connections are persistent.
func (p *Pool) Release(conn *Conn) {
	if conn == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	for _, id := range p.available {
		if id == conn.clientID {
			p.logger.Warn("double release ignored", "client_id", id)
			return
		}
	}
	p.available = append(p.available, conn.clientID)
}

// Healthcheck reports whether a checked-out Connection is usable,
// attempting one lazy reconnect first. Callers observing false must treat
// the request as not-connected and release the Connection.
func (p *Pool) Healthcheck(ctx context.Context, conn *Conn) bool {
	if conn.IsConnected() {
		return true
	}

	if err := conn.Connect(ctx); err != nil {
		p.logger.Warn("reconnect failed", "client_id", conn.ClientID(), "error", err)
		return false
	}
	p.logger.Info("reconnected", "client_id", conn.ClientID())
	return true
}

// Snapshot reports per-clientId connectivity and the current available
// list, in order.
func (p *Pool) Snapshot() Snapshot {
	p.mu.Lock()
	avail := make([]int, len(p.available))
	copy(avail, p.available)
	p.mu.Unlock()

	connected := make(map[int]bool, len(p.all))
	for id, conn := range p.all {
		connected[id] = conn.IsConnected()
	}

	return Snapshot{Connected: connected, Available: avail}
}

// Conns returns every Connection ordered by clientId. The set is fixed
// after construction.
func (p *Pool) Conns() []*Conn {
	conns := make([]*Conn, 0, p.cfg.Size)
	for id := 0; id < p.cfg.Size; id++ {
		conns = append(conns, p.all[id])
	}
	return conns
}

// Size returns the number of pool slots.
func (p *Pool) Size() int {
	return p.cfg.Size
}

// AvailableCount returns how many clientIds are currently free.
func (p *Pool) AvailableCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.available)
}

// Close shuts every Connection down. Idempotent.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	for _, conn := range p.all {
		conn.Close()
	}
}

// takeAny removes and returns the first free non-reserved clientId, or
// nil when none is free.
func (p *Pool) takeAny() (*Conn, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrAlreadyClosed
	}

	for i, id := range p.available {
		if id == OrderClientID {
			continue
		}
		p.available = append(p.available[:i], p.available[i+1:]...)
		return p.all[id], nil
	}
	return nil, nil
}

// takeID removes and returns the given clientId if it is free.
func (p *Pool) takeID(want int) (*Conn, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrAlreadyClosed
	}

	for i, id := range p.available {
		if id != want {
			continue
		}
		p.available = append(p.available[:i], p.available[i+1:]...)
		return p.all[id], nil
	}
	return nil, nil
}
