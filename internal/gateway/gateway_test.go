package gateway

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/minhpascal/IBREST/internal/connection"
	"github.com/minhpascal/IBREST/internal/tws"
)

func (u *fakeUpstream) setDialErr(err error) {
	u.mu.Lock()
	u.dialErr = err
	u.mu.Unlock()
}

func TestGateway_SeedsOrderIDOnStart(t *testing.T) {
	g, u := newTestGateway(t, 2, func(clientID int, cmd tws.Command, emit func(tws.Event)) {
		if _, ok := cmd.(tws.ReqIDs); ok {
			emit(tws.NextValidID{OrderID: 7})
		}
	})

	waitSeed(t, g, 7)
	sent, ok := u.find("reqIds")
	if !ok {
		t.Fatal("no reqIds written on startup")
	}
	if sent.ClientID != connection.OrderClientID {
		t.Errorf("reqIds written on client %d, want the order client", sent.ClientID)
	}
}

func TestGateway_PoolExhausted(t *testing.T) {
	g, _ := newTestGateway(t, 2, func(clientID int, cmd tws.Command, emit func(tws.Event)) {
		if _, ok := cmd.(tws.ReqPositions); ok {
			emit(tws.PositionEnd{})
		}
	})

	// Client 0 is reserved for orders, so holding client 1 drains the pool.
	held, err := g.pool.Acquire(context.Background())
	if err != nil {
		t.Fatalf("draining acquire failed: %v", err)
	}

	_, err = g.Positions(context.Background())
	gerr := asGatewayError(t, err)
	if gerr.ID != IDPoolExhausted {
		t.Errorf("error id = %d, want %d", gerr.ID, IDPoolExhausted)
	}
	if gerr.Code != nil {
		t.Errorf("errorCode = %v, want null", *gerr.Code)
	}
	if gerr.Msg != "Client ID not available in time. Try request later" {
		t.Errorf("errorMsg = %q", gerr.Msg)
	}

	g.pool.Release(held)
	if _, err := g.Positions(context.Background()); err != nil {
		t.Errorf("Positions() after release error = %v", err)
	}
}

func TestGateway_NotConnectedWhenUpstreamDown(t *testing.T) {
	u := newFakeUpstream(nil)
	u.setDialErr(errors.New("connection refused"))
	pool := connection.NewPool(u, connection.DefaultConnConfig(), connection.PoolConfig{
		Size:         2,
		WaitIters:    3,
		WaitInterval: 2 * time.Millisecond,
	}, nil)
	g := New(fastConfig(), pool, nil, nil)
	if err := g.Start(context.Background()); err != nil {
		t.Fatalf("Start() with upstream down error = %v, want nil", err)
	}
	t.Cleanup(g.Close)

	_, err := g.Market(context.Background(), "AAPL")
	gerr := asGatewayError(t, err)
	if gerr.ID != IDNotConnected {
		t.Errorf("error id = %d, want %d", gerr.ID, IDNotConnected)
	}
	if gerr.Code == nil || *gerr.Code != 502 {
		t.Errorf("errorCode = %v, want 502", gerr.Code)
	}
	if gerr.Msg != "Couldn't connect to IB Gateway. Confirm it is running and reachable" {
		t.Errorf("errorMsg = %q", gerr.Msg)
	}
	// The dead connection went back to the pool.
	if got := pool.AvailableCount(); got != 2 {
		t.Errorf("pool available = %d, want 2", got)
	}
}

func TestGateway_RecoversWhenUpstreamReturns(t *testing.T) {
	u := newFakeUpstream(func(clientID int, cmd tws.Command, emit func(tws.Event)) {
		if c, ok := cmd.(tws.ReqMktData); ok {
			for _, ev := range tickStream(c.TickerID, 5) {
				emit(ev)
			}
		}
	})
	u.setDialErr(errors.New("connection refused"))
	pool := connection.NewPool(u, connection.DefaultConnConfig(), connection.PoolConfig{
		Size:         2,
		WaitIters:    3,
		WaitInterval: 2 * time.Millisecond,
	}, nil)
	g := New(fastConfig(), pool, nil, nil)
	if err := g.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(g.Close)

	if _, err := g.Market(context.Background(), "AAPL"); err == nil {
		t.Fatal("Market() with upstream down succeeded, want not-connected error")
	}

	u.setDialErr(nil)
	res, err := g.Market(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("Market() after upstream returned error = %v", err)
	}
	if len(res.Ticks) != 5 {
		t.Errorf("Market() returned %d ticks, want 5", len(res.Ticks))
	}
}

func TestGateway_DisconnectMidWait(t *testing.T) {
	var upstream *fakeUpstream
	u := newFakeUpstream(func(clientID int, cmd tws.Command, emit func(tws.Event)) {
		if _, ok := cmd.(tws.ReqMktData); ok {
			// The upstream dies right after accepting the request.
			upstream.session(clientID).drop()
		}
	})
	upstream = u
	pool := connection.NewPool(u, connection.DefaultConnConfig(), connection.PoolConfig{
		Size:         2,
		WaitIters:    3,
		WaitInterval: 2 * time.Millisecond,
	}, nil)
	g := New(fastConfig(), pool, nil, nil)
	if err := g.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(g.Close)

	_, err := g.Market(context.Background(), "AAPL")
	gerr := asGatewayError(t, err)
	if gerr.Code == nil || *gerr.Code != 502 {
		t.Errorf("errorCode = %v, want 502 after mid-request disconnect", gerr.Code)
	}
}

func TestGateway_AccountsFollowManagedAccounts(t *testing.T) {
	g, u := newTestGateway(t, 2, nil)

	u.session(connection.OrderClientID).emit(tws.ManagedAccounts{AccountsList: "DU123, DU456,"})

	deadline := time.Now().Add(time.Second)
	for {
		got := g.Accounts()
		if len(got) == 2 {
			if got[0] != "DU123" || got[1] != "DU456" {
				t.Fatalf("Accounts() = %v", got)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("Accounts() never populated, got %v", got)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestGateway_ClientsSnapshot(t *testing.T) {
	g, _ := newTestGateway(t, 3, nil)

	snap := g.Clients()
	if len(snap.Available) != 3 {
		t.Fatalf("available = %v, want all 3", snap.Available)
	}
	for id, up := range snap.Connected {
		if !up {
			t.Errorf("client %d reported down", id)
		}
	}

	held, err := g.pool.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	defer g.pool.Release(held)

	snap = g.Clients()
	if len(snap.Available) != 2 {
		t.Errorf("available while one held = %v, want 2 entries", snap.Available)
	}
	for _, id := range snap.Available {
		if id == held.ClientID() {
			t.Errorf("held client %d still listed available", id)
		}
	}
}

func TestGateway_CloseIsIdempotent(t *testing.T) {
	g, _ := newTestGateway(t, 2, nil)
	g.Close()
	g.Close()

	_, err := g.Positions(context.Background())
	gerr := asGatewayError(t, err)
	if gerr.ID != IDPoolExhausted {
		t.Errorf("error id after close = %d, want %d", gerr.ID, IDPoolExhausted)
	}
}
