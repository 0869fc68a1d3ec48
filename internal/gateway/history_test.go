package gateway

import (
	"context"
	"testing"

	"github.com/minhpascal/IBREST/internal/tws"
)

func TestHistory_DefaultsAndBars(t *testing.T) {
	g, u := newTestGateway(t, 2, func(clientID int, cmd tws.Command, emit func(tws.Event)) {
		if c, ok := cmd.(tws.ReqHistoricalData); ok {
			emit(tws.HistoricalData{ReqID: c.TickerID, Bar: tws.Bar{Date: "20260824 15:30:00", Open: 100, Close: 101, Volume: 1200}})
			emit(tws.HistoricalData{ReqID: c.TickerID, Bar: tws.Bar{Date: "20260824 16:00:00", Open: 101, Close: 102, Volume: 900}})
		}
	})

	res, err := g.History(context.Background(), "AAPL", nil)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(res.Bars) < 1 {
		t.Fatal("History() returned no bars")
	}
	if res.Bars[0].Date != "20260824 15:30:00" {
		t.Errorf("first bar date = %q", res.Bars[0].Date)
	}

	sent, ok := u.find("reqHistoricalData")
	if !ok {
		t.Fatal("no reqHistoricalData written upstream")
	}
	req := sent.Cmd.(tws.ReqHistoricalData)
	if req.DurationStr != "2 D" || req.BarSizeSetting != "30 mins" || req.WhatToShow != "TRADES" {
		t.Errorf("defaults not applied: %+v", req)
	}
	if req.FormatDate != 1 {
		t.Errorf("formatDate = %d, want 1", req.FormatDate)
	}
	if req.EndDateTime == "" {
		t.Error("endDateTime not defaulted")
	}
	if req.Contract.SecType != "STK" || req.Contract.Exchange != "SMART" {
		t.Errorf("contract defaults not applied: %+v", req.Contract)
	}
	if got := u.count("cancelHistoricalData"); got != 1 {
		t.Errorf("cancelHistoricalData written %d times, want exactly 1", got)
	}
}

func TestHistory_FieldOverrides(t *testing.T) {
	g, u := newTestGateway(t, 2, func(clientID int, cmd tws.Command, emit func(tws.Event)) {
		if c, ok := cmd.(tws.ReqHistoricalData); ok {
			emit(tws.HistoricalData{ReqID: c.TickerID, Bar: tws.Bar{Date: "20260820"}})
		}
	})

	_, err := g.History(context.Background(), "ES", map[string]string{
		"secType":        "FUT",
		"exchange":       "GLOBEX",
		"expiry":         "20261218",
		"durationStr":    "1 W",
		"barSizeSetting": "1 day",
		"whatToShow":     "MIDPOINT",
		"useRTH":         "1",
	})
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}

	sent, _ := u.find("reqHistoricalData")
	req := sent.Cmd.(tws.ReqHistoricalData)
	if req.Contract.SecType != "FUT" || req.Contract.Exchange != "GLOBEX" || req.Contract.Expiry != "20261218" {
		t.Errorf("contract overrides not applied: %+v", req.Contract)
	}
	if req.DurationStr != "1 W" || req.BarSizeSetting != "1 day" || req.WhatToShow != "MIDPOINT" || req.UseRTH != 1 {
		t.Errorf("query overrides not applied: %+v", req)
	}
}

func TestHistory_BadFieldRejectedBeforeWire(t *testing.T) {
	g, u := newTestGateway(t, 2, nil)

	_, err := g.History(context.Background(), "AAPL", map[string]string{"useRTH": "yes"})
	gerr := asGatewayError(t, err)
	if gerr.Code == nil || *gerr.Code != 400 {
		t.Errorf("errorCode = %v, want 400", gerr.Code)
	}
	if gerr.ID != IDNotConnected {
		t.Errorf("error id = %d, want %d", gerr.ID, IDNotConnected)
	}
	if got := u.count("reqHistoricalData"); got != 0 {
		t.Errorf("reqHistoricalData written %d times, want 0 for a rejected request", got)
	}
}
