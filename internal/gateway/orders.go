package gateway

import (
	"context"

	"github.com/minhpascal/IBREST/internal/connection"
	"github.com/minhpascal/IBREST/internal/tws"
)

// OrderListResult is the merged open-order listing. Complete is false when
// the budget ran out before openOrderEnd arrived.
type OrderListResult struct {
	Complete   bool              `json:"openOrderEnd"`
	OpenOrders []tws.OpenOrder   `json:"openOrder"`
	Statuses   []tws.OrderStatus `json:"orderStatus"`
}

// OrderResult is the submit-time view of one order. Err carries any
// upstream error recorded against the order id; cancel confirmations
// arrive this way (code 202) beside the Cancelled status.
type OrderResult struct {
	OrderID   int64            `json:"orderId"`
	OpenOrder *tws.OpenOrder   `json:"openOrder,omitempty"`
	Status    *tws.OrderStatus `json:"orderStatus,omitempty"`
	Err       *ErrorEntry      `json:"error,omitempty"`
}

// OpenOrders lists every order the upstream knows across client ids. The
// listing binds to the order client because the upstream routes order
// events there.
func (g *Gateway) OpenOrders(ctx context.Context) (*OrderListResult, error) {
	ctx = context.WithoutCancel(ctx)

	conn, gerr := g.checkoutOrder(ctx)
	if gerr != nil {
		return nil, gerr
	}
	defer g.release(conn)

	clientID := int64(conn.ClientID())
	g.registry.ResetOrderList(clientID)
	defer g.registry.DropOrderList(clientID)

	if gerr := g.send(ctx, conn, tws.ReqAllOpenOrders{}); gerr != nil {
		return nil, gerr
	}
	werr := g.await(conn, g.cfg.TimeoutIters, func() bool {
		return g.registry.OrderListComplete(clientID)
	})
	if werr != nil {
		return nil, werr
	}
	opens, statuses, complete := g.registry.OrderListSnapshot(clientID)
	return &OrderListResult{Complete: complete, OpenOrders: opens, Statuses: statuses}, nil
}

// PlaceOrder submits a new order built from a flat name/value bag and
// waits briefly for its first status. Orders transmit immediately unless
// the bag says otherwise; absence of an error inside the short budget is
// itself the success signal, so a silent timeout is provisional success.
func (g *Gateway) PlaceOrder(ctx context.Context, symbol string, fields map[string]string) (*OrderResult, error) {
	contract, order, gerr := buildOrder(symbol, fields)
	if gerr != nil {
		return nil, gerr
	}
	return g.submitOrder(ctx, 0, contract, order)
}

// ModifyOrder resubmits an existing order id with updated fields. The id
// must already be live upstream; resubmitting it modifies in place.
func (g *Gateway) ModifyOrder(ctx context.Context, orderID int64, symbol string, fields map[string]string) (*OrderResult, error) {
	contract, order, gerr := buildOrder(symbol, fields)
	if gerr != nil {
		return nil, gerr
	}
	return g.submitOrder(ctx, orderID, contract, order)
}

// CancelOrder asks the upstream to cancel a live order and waits for the
// resulting status.
func (g *Gateway) CancelOrder(ctx context.Context, orderID int64) (*OrderResult, error) {
	ctx = context.WithoutCancel(ctx)

	conn, gerr := g.checkoutOrder(ctx)
	if gerr != nil {
		return nil, gerr
	}
	defer g.release(conn)

	g.registry.ResetOrder(orderID)
	defer g.registry.ClearError(orderID)
	defer g.registry.DropOrder(orderID)

	if gerr := g.send(ctx, conn, tws.CancelOrder{OrderID: orderID}); gerr != nil {
		return nil, gerr
	}
	if werr := g.awaitOrder(conn, orderID); werr != nil {
		return nil, werr
	}
	return g.orderResult(orderID), nil
}

func buildOrder(symbol string, fields map[string]string) (tws.Contract, tws.Order, *Error) {
	contract := tws.NewContract(symbol)
	if err := tws.ApplyContractFields(&contract, fields); err != nil {
		return tws.Contract{}, tws.Order{}, NewValidationError(err.Error())
	}
	order := tws.Order{Transmit: true}
	if err := tws.ApplyOrderFields(&order, fields); err != nil {
		return tws.Contract{}, tws.Order{}, NewValidationError(err.Error())
	}
	return contract, order, nil
}

// submitOrder is the shared tail of place and modify. orderID zero means
// consume the next allocator value.
func (g *Gateway) submitOrder(ctx context.Context, orderID int64, contract tws.Contract, order tws.Order) (*OrderResult, error) {
	ctx = context.WithoutCancel(ctx)

	conn, gerr := g.checkoutOrder(ctx)
	if gerr != nil {
		return nil, gerr
	}
	defer g.release(conn)

	if orderID == 0 {
		orderID = g.ids.NextOrderID()
	}
	order.OrderID = orderID
	order.ClientID = conn.ClientID()

	g.registry.ResetOrder(orderID)
	defer g.registry.ClearError(orderID)
	defer g.registry.DropOrder(orderID)

	cmd := tws.PlaceOrder{OrderID: orderID, Contract: contract, Order: order}
	if gerr := g.send(ctx, conn, cmd); gerr != nil {
		return nil, gerr
	}
	if werr := g.awaitOrder(conn, orderID); werr != nil {
		return nil, werr
	}
	return g.orderResult(orderID), nil
}

// awaitOrder waits on the short order budget. An upstream error against
// the order id completes the wait rather than failing it; the error rides
// along in the result for the caller to judge.
func (g *Gateway) awaitOrder(conn *connection.Conn, orderID int64) *Error {
	return g.await(conn, g.cfg.OrderTimeoutIters, func() bool {
		if g.registry.OrderStatusPresent(orderID) {
			return true
		}
		_, ok := g.registry.ErrorFor(orderID)
		return ok
	})
}

func (g *Gateway) orderResult(orderID int64) *OrderResult {
	open, status := g.registry.OrderSnapshot(orderID)
	res := &OrderResult{OrderID: orderID, OpenOrder: open, Status: status}
	if e, ok := g.registry.ErrorFor(orderID); ok {
		res.Err = &e
	}
	return res
}
