package gateway

import (
	"context"
	"time"

	"github.com/minhpascal/IBREST/internal/tws"
)

// HistoryResult is the bar download returned by a history request.
type HistoryResult struct {
	Bars []tws.Bar `json:"bars"`
}

// History downloads bars for one instrument. Contract and query fields
// come from a flat name/value bag; anything not supplied falls back to a
// 2 day window of 30 minute TRADES bars ending 15 minutes ago, the most
// recent window available without a market data subscription.
func (g *Gateway) History(ctx context.Context, symbol string, fields map[string]string) (*HistoryResult, error) {
	ctx = context.WithoutCancel(ctx)

	contract := tws.NewContract(symbol)
	if err := tws.ApplyContractFields(&contract, fields); err != nil {
		return nil, NewValidationError(err.Error())
	}
	req := tws.ReqHistoricalData{
		Contract:       contract,
		EndDateTime:    time.Now().Add(-15 * time.Minute).Format(tws.TimeLayout),
		DurationStr:    "2 D",
		BarSizeSetting: "30 mins",
		WhatToShow:     "TRADES",
		UseRTH:         0,
		FormatDate:     1,
	}
	if err := tws.ApplyHistoryFields(&req, fields); err != nil {
		return nil, NewValidationError(err.Error())
	}

	conn, gerr := g.checkout(ctx)
	if gerr != nil {
		return nil, gerr
	}
	defer g.release(conn)

	tickerID := g.ids.NextTickerID()
	req.TickerID = tickerID
	g.registry.ResetHistory(tickerID)
	defer g.registry.ClearError(tickerID)
	defer g.registry.DropHistory(tickerID)

	if gerr := g.send(ctx, conn, req); gerr != nil {
		return nil, gerr
	}
	werr := g.await(conn, g.cfg.TimeoutIters, func() bool {
		return g.registry.HistoryBarCount(tickerID) > 0
	}, tickerID)
	g.teardown(ctx, conn, tws.CancelHistoricalData{TickerID: tickerID})
	if werr != nil {
		return nil, werr
	}
	return &HistoryResult{Bars: g.registry.HistorySnapshot(tickerID)}, nil
}
