package gateway

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/minhpascal/IBREST/internal/tws"
)

// PositionsResult is a positions listing with its completion marker.
type PositionsResult struct {
	Complete  bool           `json:"positionEnd"`
	Positions []tws.Position `json:"positions"`
}

// UpdateResult is the one-shot account download.
type UpdateResult struct {
	Complete  bool                    `json:"accountDownloadEnd"`
	Time      string                  `json:"updateAccountTime,omitempty"`
	Values    map[string]AccountValue `json:"updateAccountValue"`
	Portfolio []tws.UpdatePortfolio   `json:"updatePortfolio"`
}

// Positions lists portfolio positions across all managed accounts.
func (g *Gateway) Positions(ctx context.Context) (*PositionsResult, error) {
	ctx = context.WithoutCancel(ctx)

	conn, gerr := g.checkout(ctx)
	if gerr != nil {
		return nil, gerr
	}
	defer g.release(conn)

	clientID := int64(conn.ClientID())
	g.registry.ResetPositions(clientID)
	defer g.registry.DropPositions(clientID)

	if gerr := g.send(ctx, conn, tws.ReqPositions{}); gerr != nil {
		return nil, gerr
	}
	werr := g.await(conn, g.cfg.TimeoutIters, func() bool {
		return g.registry.PositionsComplete(clientID)
	})
	g.teardown(ctx, conn, tws.CancelPositions{})
	if werr != nil {
		return nil, werr
	}
	positions, complete := g.registry.PositionsSnapshot(clientID)
	return &PositionsResult{Complete: complete, Positions: positions}, nil
}

// AccountSummary reports the requested summary tags as a flat map, plus an
// accountSummaryEnd key recording whether the listing finished inside the
// budget. The request id is the acquired connection's client id, which is
// what the upstream echoes back on each accountSummary event.
func (g *Gateway) AccountSummary(ctx context.Context, tags []string) (map[string]any, error) {
	ctx = context.WithoutCancel(ctx)

	conn, gerr := g.checkout(ctx)
	if gerr != nil {
		return nil, gerr
	}
	defer g.release(conn)

	reqID := int64(conn.ClientID())
	g.registry.ResetSummary(reqID)
	defer g.registry.ClearError(reqID)
	defer g.registry.DropSummary(reqID)

	cmd := tws.ReqAccountSummary{ReqID: reqID, Group: "All", Tags: strings.Join(tags, ",")}
	if gerr := g.send(ctx, conn, cmd); gerr != nil {
		return nil, gerr
	}
	werr := g.await(conn, g.cfg.TimeoutIters, func() bool {
		return g.registry.SummaryComplete(reqID)
	}, reqID)
	g.teardown(ctx, conn, tws.CancelAccountSummary{ReqID: reqID})
	if werr != nil {
		return nil, werr
	}
	values, complete := g.registry.SummarySnapshot(reqID)
	out := make(map[string]any, len(values)+1)
	for k, v := range values {
		out[k] = v
	}
	out["accountSummaryEnd"] = complete
	return out, nil
}

// AccountUpdate subscribes to one account's value and portfolio stream,
// drains a single snapshot, and unsubscribes. When the upstream has
// reported its managed accounts, unknown account codes are rejected
// before a client is tied up.
func (g *Gateway) AccountUpdate(ctx context.Context, acctCode string) (*UpdateResult, error) {
	ctx = context.WithoutCancel(ctx)

	if accts := g.ids.ManagedAccounts(); len(accts) > 0 && !slices.Contains(accts, acctCode) {
		return nil, NewValidationError(fmt.Sprintf("unknown acctCode %q", acctCode))
	}

	conn, gerr := g.checkout(ctx)
	if gerr != nil {
		return nil, gerr
	}
	defer g.release(conn)

	clientID := int64(conn.ClientID())
	g.registry.ResetUpdate(clientID)
	defer g.registry.DropUpdate(clientID)

	if gerr := g.send(ctx, conn, tws.ReqAccountUpdates{Subscribe: true, AcctCode: acctCode}); gerr != nil {
		return nil, gerr
	}
	werr := g.await(conn, g.cfg.TimeoutIters, func() bool {
		return g.registry.UpdateComplete(clientID)
	})
	g.teardown(ctx, conn, tws.CancelAccountUpdates{AcctCode: acctCode})
	if werr != nil {
		return nil, werr
	}
	st := g.registry.UpdateSnapshot(clientID)
	return &UpdateResult{
		Complete:  st.Complete,
		Time:      st.Time,
		Values:    st.Values,
		Portfolio: st.Portfolio,
	}, nil
}
