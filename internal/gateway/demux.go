package gateway

import (
	"strings"

	"github.com/minhpascal/IBREST/internal/connection"
	"github.com/minhpascal/IBREST/internal/tws"
)

// demux drains one connection's event channel into the registry. One demux
// goroutine runs per pooled connection for the life of the gateway; it
// survives redials because the channel does.
func (g *Gateway) demux(conn *connection.Conn) {
	defer g.wg.Done()
	clientID := int64(conn.ClientID())
	for {
		select {
		case <-conn.Done():
			return
		case ev := <-conn.Events():
			g.route(clientID, ev)
		}
	}
}

// route files one event under the id its kind is keyed by. Events whose
// mailbox is not live are dropped; only the demultiplexer mutates event
// state, so requests always see a consistent snapshot.
func (g *Gateway) route(clientID int64, ev tws.Event) {
	g.metrics.EventReceived(ev.Type())
	switch e := ev.(type) {
	case tws.NextValidID:
		g.ids.SeedOrderID(e.OrderID)
		g.logger.Info("order id seeded", "order_id", e.OrderID, "client_id", clientID)
	case tws.ManagedAccounts:
		accounts := splitAccounts(e.AccountsList)
		g.ids.SetManagedAccounts(accounts)
		g.logger.Info("managed accounts", "accounts", accounts)
	case tws.HistoricalData:
		g.registry.AppendBar(e.ReqID, e.Bar)
	case tws.OpenOrder:
		g.registry.AppendOpenOrder(clientID, e)
	case tws.OrderStatus:
		g.registry.AppendOrderStatus(clientID, e)
	case tws.OpenOrderEnd:
		g.registry.CompleteOrderList(clientID)
	case tws.Position:
		g.registry.AppendPosition(clientID, e)
	case tws.PositionEnd:
		g.registry.CompletePositions(clientID)
	case tws.AccountSummary:
		g.registry.SetSummaryTag(e.ReqID, e.Tag, e.Value)
	case tws.AccountSummaryEnd:
		g.registry.CompleteSummary(e.ReqID)
	case tws.UpdateAccountTime:
		g.registry.SetUpdateTime(clientID, e.Timestamp)
	case tws.UpdateAccountValue:
		g.registry.SetUpdateValue(clientID, e.Key, AccountValue{
			Value:    e.Value,
			Currency: e.Currency,
			Account:  e.Account,
		})
	case tws.UpdatePortfolio:
		g.registry.AppendPortfolio(clientID, e)
	case tws.AccountDownloadEnd:
		g.registry.CompleteUpdate(clientID)
	case tws.TickPrice:
		g.registry.AppendTick(e.TickerID, e.Tick())
	case tws.TickSize:
		g.registry.AppendTick(e.TickerID, e.Tick())
	case tws.ErrorMsg:
		if e.ID == -1 {
			// Connection-scoped notice, addressed to no request.
			g.logger.Info("upstream notice", "client_id", clientID, "code", e.Code, "msg", e.Message)
			return
		}
		g.logger.Warn("upstream error", "client_id", clientID, "id", e.ID, "code", e.Code, "msg", e.Message)
		g.registry.SetError(e.ID, e.Code, e.Message)
	default:
		g.logger.Warn("unhandled event", "type", ev.Type())
	}
}

func splitAccounts(list string) []string {
	var accounts []string
	for _, a := range strings.Split(list, ",") {
		if a = strings.TrimSpace(a); a != "" {
			accounts = append(accounts, a)
		}
	}
	return accounts
}
