package gateway

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/minhpascal/IBREST/internal/connection"
	"github.com/minhpascal/IBREST/internal/metrics"
	"github.com/minhpascal/IBREST/internal/tws"
)

// Config tunes how long requests wait for upstream events.
type Config struct {
	// TimeoutIters is the polling budget for most requests.
	TimeoutIters int
	// OrderTimeoutIters is the shorter budget for order placement and
	// cancellation, which should answer quickly or not at all.
	OrderTimeoutIters int
	// PollInterval is the sleep between polling rounds.
	PollInterval time.Duration
	// MarketTicks is how many ticks satisfy a market data request.
	MarketTicks int
}

// DefaultConfig waits up to 5s for most requests and 2s for orders.
func DefaultConfig() Config {
	return Config{
		TimeoutIters:      20,
		OrderTimeoutIters: 8,
		PollInterval:      250 * time.Millisecond,
		MarketTicks:       5,
	}
}

// Gateway turns synchronous requests into upstream command/event
// exchanges. Each request checks one connection out of the pool, installs
// a mailbox, writes the command, polls until its completion predicate
// holds or the budget runs out, issues any required teardown, and returns
// a deep-copied snapshot of whatever arrived.
type Gateway struct {
	cfg      Config
	pool     *connection.Pool
	registry *Registry
	ids      *Identifiers
	metrics  *metrics.Metrics
	logger   *slog.Logger
	wg       sync.WaitGroup
}

// New assembles a gateway around an existing pool. The pool's connections
// must not be consumed by anyone else; Start claims their event channels.
func New(cfg Config, pool *connection.Pool, m *metrics.Metrics, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		cfg:      cfg,
		pool:     pool,
		registry: NewRegistry(),
		ids:      NewIdentifiers(),
		metrics:  m,
		logger:   logger,
	}
}

// Start dials the pool and begins demultiplexing events. Connections that
// fail to dial stay pooled and are redialed by per-request healthchecks,
// so Start succeeds even with the upstream down.
func (g *Gateway) Start(ctx context.Context) error {
	g.pool.ConnectAll(ctx)
	g.metrics.SetPoolAvailable(g.pool.AvailableCount())
	for _, conn := range g.pool.Conns() {
		g.wg.Add(1)
		go g.demux(conn)
	}
	// Prompt the order id seed. The upstream answers on the order client
	// with a nextValidId event.
	for _, conn := range g.pool.Conns() {
		if conn.ClientID() != connection.OrderClientID {
			continue
		}
		if err := conn.Send(ctx, tws.ReqIDs{NumIDs: 1}); err != nil {
			g.logger.Warn("order id seed request failed", "error", err)
		} else {
			g.metrics.CommandSent(tws.ReqIDs{}.Cmd())
		}
	}
	return nil
}

// Close shuts the pool down and waits for the demultiplexers to exit.
func (g *Gateway) Close() {
	g.pool.Close()
	g.wg.Wait()
}

// Clients reports pool connectivity for the diagnostics endpoint.
func (g *Gateway) Clients() connection.Snapshot {
	return g.pool.Snapshot()
}

// Accounts lists the managed account codes announced by the upstream.
func (g *Gateway) Accounts() []string {
	return g.ids.ManagedAccounts()
}

// checkout takes any non-reserved connection and verifies it is live,
// redialing once if not.
func (g *Gateway) checkout(ctx context.Context) (*connection.Conn, *Error) {
	return g.take(ctx, func(ctx context.Context) (*connection.Conn, error) {
		return g.pool.Acquire(ctx)
	})
}

// checkoutOrder takes the reserved order connection, falling back to any
// free one if it stays busy through the wait budget.
func (g *Gateway) checkoutOrder(ctx context.Context) (*connection.Conn, *Error) {
	return g.take(ctx, func(ctx context.Context) (*connection.Conn, error) {
		return g.pool.AcquireID(ctx, connection.OrderClientID)
	})
}

func (g *Gateway) take(ctx context.Context, acquire func(context.Context) (*connection.Conn, error)) (*connection.Conn, *Error) {
	start := time.Now()
	conn, err := acquire(ctx)
	g.metrics.ObserveAcquireWait(time.Since(start))
	if err != nil {
		return nil, errPoolTimeout()
	}
	g.metrics.SetPoolAvailable(g.pool.AvailableCount())
	if !conn.IsConnected() {
		if !g.pool.Healthcheck(ctx, conn) {
			g.release(conn)
			return nil, errNotConnected()
		}
		g.metrics.Reconnect()
	}
	return conn, nil
}

func (g *Gateway) release(conn *connection.Conn) {
	g.pool.Release(conn)
	g.metrics.SetPoolAvailable(g.pool.AvailableCount())
}

// send writes one command, mapping write failures to the not-connected
// error shape.
func (g *Gateway) send(ctx context.Context, conn *connection.Conn, cmd tws.Command) *Error {
	if err := conn.Send(ctx, cmd); err != nil {
		g.logger.Error("send failed", "cmd", cmd.Cmd(), "client_id", conn.ClientID(), "error", err)
		return errNotConnected()
	}
	g.metrics.CommandSent(cmd.Cmd())
	return nil
}

// teardown writes a cancel command, best effort. A wait outcome never
// changes because its cancel could not be written.
func (g *Gateway) teardown(ctx context.Context, conn *connection.Conn, cmd tws.Command) {
	if err := conn.Send(ctx, cmd); err != nil {
		g.logger.Warn("teardown failed", "cmd", cmd.Cmd(), "client_id", conn.ClientID(), "error", err)
		return
	}
	g.metrics.CommandSent(cmd.Cmd())
}
