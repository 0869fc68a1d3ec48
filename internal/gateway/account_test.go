package gateway

import (
	"context"
	"testing"
	"time"

	"github.com/minhpascal/IBREST/internal/connection"
	"github.com/minhpascal/IBREST/internal/tws"
)

func TestPositions_ListingAndTeardown(t *testing.T) {
	g, u := newTestGateway(t, 2, func(clientID int, cmd tws.Command, emit func(tws.Event)) {
		if _, ok := cmd.(tws.ReqPositions); ok {
			emit(tws.Position{Account: "DU123", Contract: tws.Contract{Symbol: "AAPL"}, Position: 500, AvgCost: 101.2})
			emit(tws.PositionEnd{})
		}
	})

	res, err := g.Positions(context.Background())
	if err != nil {
		t.Fatalf("Positions() error = %v", err)
	}
	if !res.Complete {
		t.Error("positionEnd = false, want true")
	}
	if len(res.Positions) != 1 || res.Positions[0].Position != 500 {
		t.Errorf("positions = %+v, want one 500 share row", res.Positions)
	}
	if got := u.count("cancelPositions"); got != 1 {
		t.Errorf("cancelPositions written %d times, want exactly 1", got)
	}
}

func TestAccountSummary_TagsAndSentinel(t *testing.T) {
	g, u := newTestGateway(t, 2, func(clientID int, cmd tws.Command, emit func(tws.Event)) {
		if c, ok := cmd.(tws.ReqAccountSummary); ok {
			emit(tws.AccountSummary{ReqID: c.ReqID, Account: "DU123", Tag: "NetLiquidation", Value: "100000.00", Currency: "USD"})
			emit(tws.AccountSummary{ReqID: c.ReqID, Account: "DU123", Tag: "BuyingPower", Value: "400000.00", Currency: "USD"})
			emit(tws.AccountSummaryEnd{ReqID: c.ReqID})
		}
	})

	res, err := g.AccountSummary(context.Background(), []string{"NetLiquidation", "BuyingPower"})
	if err != nil {
		t.Fatalf("AccountSummary() error = %v", err)
	}
	if res["NetLiquidation"] != "100000.00" || res["BuyingPower"] != "400000.00" {
		t.Errorf("summary = %v, want both tags", res)
	}
	if res["accountSummaryEnd"] != true {
		t.Errorf("accountSummaryEnd = %v, want true", res["accountSummaryEnd"])
	}

	sent, ok := u.find("reqAccountSummary")
	if !ok {
		t.Fatal("no reqAccountSummary written upstream")
	}
	cmd := sent.Cmd.(tws.ReqAccountSummary)
	if cmd.Group != "All" {
		t.Errorf("group = %q, want All", cmd.Group)
	}
	if cmd.Tags != "NetLiquidation,BuyingPower" {
		t.Errorf("tags = %q, want comma joined", cmd.Tags)
	}
	if cmd.ReqID != int64(sent.ClientID) {
		t.Errorf("reqId = %d, want the client id %d", cmd.ReqID, sent.ClientID)
	}
	if got := u.count("cancelAccountSummary"); got != 1 {
		t.Errorf("cancelAccountSummary written %d times, want exactly 1", got)
	}
	cancel, _ := u.find("cancelAccountSummary")
	if cancel.Cmd.(tws.CancelAccountSummary).ReqID != cmd.ReqID {
		t.Error("cancelAccountSummary req id does not match the request")
	}
}

func TestAccountSummary_UpstreamError(t *testing.T) {
	g, u := newTestGateway(t, 2, func(clientID int, cmd tws.Command, emit func(tws.Event)) {
		if c, ok := cmd.(tws.ReqAccountSummary); ok {
			emit(tws.ErrorMsg{ID: c.ReqID, Code: 321, Message: "Error validating request"})
		}
	})

	_, err := g.AccountSummary(context.Background(), []string{"NetLiquidation"})
	gerr := asGatewayError(t, err)
	if gerr.Code == nil || *gerr.Code != 321 {
		t.Errorf("errorCode = %v, want 321", gerr.Code)
	}
	if got := u.count("cancelAccountSummary"); got != 1 {
		t.Errorf("cancelAccountSummary written %d times, want exactly 1 on the failure path", got)
	}
}

func TestAccountUpdate_SnapshotAndUnsubscribe(t *testing.T) {
	g, u := newTestGateway(t, 2, func(clientID int, cmd tws.Command, emit func(tws.Event)) {
		if c, ok := cmd.(tws.ReqAccountUpdates); ok {
			if !c.Subscribe {
				return
			}
			emit(tws.UpdateAccountTime{Timestamp: "16:32"})
			emit(tws.UpdateAccountValue{Key: "CashBalance", Value: "5000.00", Currency: "USD", Account: c.AcctCode})
			emit(tws.UpdatePortfolio{Contract: tws.Contract{Symbol: "AAPL"}, Position: 100, MarketValue: 25000, Account: c.AcctCode})
			emit(tws.AccountDownloadEnd{Account: c.AcctCode})
		}
	})

	res, err := g.AccountUpdate(context.Background(), "DU123")
	if err != nil {
		t.Fatalf("AccountUpdate() error = %v", err)
	}
	if !res.Complete || res.Time != "16:32" {
		t.Errorf("result = complete=%v time=%q, want a finished 16:32 snapshot", res.Complete, res.Time)
	}
	if res.Values["CashBalance"].Value != "5000.00" {
		t.Errorf("CashBalance = %+v", res.Values["CashBalance"])
	}
	if len(res.Portfolio) != 1 || res.Portfolio[0].Position != 100 {
		t.Errorf("portfolio = %+v, want one 100 share row", res.Portfolio)
	}

	sub, _ := u.find("reqAccountUpdates")
	if !sub.Cmd.(tws.ReqAccountUpdates).Subscribe {
		t.Error("reqAccountUpdates not marked subscribe")
	}
	if got := u.count("cancelAccountUpdates"); got != 1 {
		t.Errorf("cancelAccountUpdates written %d times, want exactly 1", got)
	}
	cancel, _ := u.find("cancelAccountUpdates")
	if code := cancel.Cmd.(tws.CancelAccountUpdates).AcctCode; code != "DU123" {
		t.Errorf("cancel acctCode = %q, want DU123", code)
	}
}

func TestAccountUpdate_RejectsUnknownAccount(t *testing.T) {
	g, u := newTestGateway(t, 2, nil)

	u.session(connection.OrderClientID).emit(tws.ManagedAccounts{AccountsList: "DU123,DU456"})
	deadline := time.Now().Add(time.Second)
	for len(g.Accounts()) != 2 {
		if time.Now().After(deadline) {
			t.Fatalf("accounts never populated, got %v", g.Accounts())
		}
		time.Sleep(time.Millisecond)
	}

	_, err := g.AccountUpdate(context.Background(), "DU999")
	gerr := asGatewayError(t, err)
	if gerr.Code == nil || *gerr.Code != 400 {
		t.Fatalf("errorCode = %v, want 400", gerr.Code)
	}
	if got := u.count("reqAccountUpdates"); got != 0 {
		t.Errorf("reqAccountUpdates written %d times, want none for an unknown account", got)
	}

	// A known account still goes upstream.
	if _, err := g.AccountUpdate(context.Background(), "DU123"); err != nil {
		t.Fatalf("AccountUpdate(DU123) error = %v", err)
	}
	if got := u.count("reqAccountUpdates"); got != 1 {
		t.Errorf("reqAccountUpdates written %d times, want 1", got)
	}
}
