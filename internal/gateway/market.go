package gateway

import (
	"context"

	"github.com/minhpascal/IBREST/internal/tws"
)

// MarketResult is the tick snapshot returned by a market data request.
type MarketResult struct {
	Ticks []tws.Tick `json:"ticks"`
}

// Market streams level-one ticks for a symbol until enough arrive or the
// budget runs out. The contract defaults to a US stock routed through
// SMART. Fewer ticks than asked for is still a success; thin instruments
// simply tick slowly.
func (g *Gateway) Market(ctx context.Context, symbol string) (*MarketResult, error) {
	ctx = context.WithoutCancel(ctx)
	contract := tws.NewContract(symbol)

	conn, gerr := g.checkout(ctx)
	if gerr != nil {
		return nil, gerr
	}
	defer g.release(conn)

	tickerID := g.ids.NextTickerID()
	g.registry.ResetMarket(tickerID)
	defer g.registry.ClearError(tickerID)
	defer g.registry.DropMarket(tickerID)

	if gerr := g.send(ctx, conn, tws.ReqMktData{TickerID: tickerID, Contract: contract}); gerr != nil {
		return nil, gerr
	}
	werr := g.await(conn, g.cfg.TimeoutIters, func() bool {
		return g.registry.MarketTickCount(tickerID) >= g.cfg.MarketTicks
	}, tickerID)
	g.teardown(ctx, conn, tws.CancelMktData{TickerID: tickerID})
	if werr != nil {
		return nil, werr
	}
	return &MarketResult{Ticks: g.registry.MarketSnapshot(tickerID)}, nil
}
