package gateway

import (
	"sync"

	"github.com/minhpascal/IBREST/internal/tws"
)

// AccountValue is one updateAccountValue entry.
type AccountValue struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
	Account  string `json:"account"`
}

// ErrorEntry is one upstream error held in a request's error slot.
type ErrorEntry struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

type orderListMailbox struct {
	complete   bool
	openOrders []tws.OpenOrder
	statuses   []tws.OrderStatus
}

type orderMailbox struct {
	openOrder *tws.OpenOrder
	status    *tws.OrderStatus
}

type positionsMailbox struct {
	complete  bool
	positions []tws.Position
}

type summaryMailbox struct {
	complete bool
	tags     map[string]string
}

type updateMailbox struct {
	complete  bool
	time      string
	values    map[string]AccountValue
	portfolio []tws.UpdatePortfolio
}

type historyMailbox struct {
	bars []tws.Bar
}

type marketMailbox struct {
	ticks []tws.Tick
}

// UpdateState is the deep-copied state of an account-update request.
type UpdateState struct {
	Time      string
	Values    map[string]AccountValue
	Portfolio []tws.UpdatePortfolio
	Complete  bool
}

// Registry holds every live request mailbox. Demultiplexer goroutines are
// the only writers of event data; request operations reset, poll, and
// snapshot. A mailbox exists only between its operation's reset and exit;
// events addressed to an id with no live mailbox are dropped.
//
// Former process-wide singletons are keyed by the acquiring clientId, so
// two concurrent requests of the same kind on different connections never
// share state. Order mailboxes are keyed by orderId.
type Registry struct {
	mu         sync.Mutex
	orderLists map[int64]*orderListMailbox // clientId
	orders     map[int64]*orderMailbox     // orderId
	positions  map[int64]*positionsMailbox // clientId
	summaries  map[int64]*summaryMailbox   // reqId (= clientId)
	updates    map[int64]*updateMailbox    // clientId
	histories  map[int64]*historyMailbox   // tickerId
	markets    map[int64]*marketMailbox    // tickerId
	errs       map[int64]ErrorEntry        // request id
}

func NewRegistry() *Registry {
	return &Registry{
		orderLists: make(map[int64]*orderListMailbox),
		orders:     make(map[int64]*orderMailbox),
		positions:  make(map[int64]*positionsMailbox),
		summaries:  make(map[int64]*summaryMailbox),
		updates:    make(map[int64]*updateMailbox),
		histories:  make(map[int64]*historyMailbox),
		markets:    make(map[int64]*marketMailbox),
		errs:       make(map[int64]ErrorEntry),
	}
}

// Resets. Each installs the empty baseline for one request.

func (r *Registry) ResetOrderList(clientID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orderLists[clientID] = &orderListMailbox{}
}

func (r *Registry) ResetOrder(orderID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[orderID] = &orderMailbox{}
}

func (r *Registry) ResetPositions(clientID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.positions[clientID] = &positionsMailbox{}
}

func (r *Registry) ResetSummary(reqID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.summaries[reqID] = &summaryMailbox{tags: make(map[string]string)}
}

func (r *Registry) ResetUpdate(clientID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates[clientID] = &updateMailbox{values: make(map[string]AccountValue)}
}

func (r *Registry) ResetHistory(tickerID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.histories[tickerID] = &historyMailbox{}
}

func (r *Registry) ResetMarket(tickerID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.markets[tickerID] = &marketMailbox{}
}

// Drops. Each retires a request's mailbox on operation exit.

func (r *Registry) DropOrderList(clientID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.orderLists, clientID)
}

func (r *Registry) DropOrder(orderID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.orders, orderID)
}

func (r *Registry) DropPositions(clientID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.positions, clientID)
}

func (r *Registry) DropSummary(reqID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.summaries, reqID)
}

func (r *Registry) DropUpdate(clientID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.updates, clientID)
}

func (r *Registry) DropHistory(tickerID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.histories, tickerID)
}

func (r *Registry) DropMarket(tickerID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.markets, tickerID)
}

// Error slot.

func (r *Registry) SetError(id int64, code int, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs[id] = ErrorEntry{Code: code, Msg: msg}
}

func (r *Registry) ErrorFor(id int64) (ErrorEntry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.errs[id]
	return e, ok
}

func (r *Registry) ClearError(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.errs, id)
}

// Event mutators, called only by the demultiplexer.

func (r *Registry) AppendBar(tickerID int64, bar tws.Bar) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if mb, ok := r.histories[tickerID]; ok {
		mb.bars = append(mb.bars, bar)
	}
}

func (r *Registry) AppendTick(tickerID int64, tick tws.Tick) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if mb, ok := r.markets[tickerID]; ok {
		mb.ticks = append(mb.ticks, tick)
	}
}

// AppendOpenOrder feeds both the connection's order list and the
// per-orderId mailbox; in the latter the latest event wins.
func (r *Registry) AppendOpenOrder(clientID int64, ev tws.OpenOrder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if mb, ok := r.orderLists[clientID]; ok {
		mb.openOrders = append(mb.openOrders, ev)
	}
	if mb, ok := r.orders[ev.OrderID]; ok {
		cp := ev
		mb.openOrder = &cp
	}
}

func (r *Registry) AppendOrderStatus(clientID int64, ev tws.OrderStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if mb, ok := r.orderLists[clientID]; ok {
		mb.statuses = append(mb.statuses, ev)
	}
	if mb, ok := r.orders[ev.OrderID]; ok {
		cp := ev
		mb.status = &cp
	}
}

func (r *Registry) CompleteOrderList(clientID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if mb, ok := r.orderLists[clientID]; ok {
		mb.complete = true
	}
}

func (r *Registry) AppendPosition(clientID int64, p tws.Position) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if mb, ok := r.positions[clientID]; ok {
		mb.positions = append(mb.positions, p)
	}
}

func (r *Registry) CompletePositions(clientID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if mb, ok := r.positions[clientID]; ok {
		mb.complete = true
	}
}

func (r *Registry) SetSummaryTag(reqID int64, tag, value string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if mb, ok := r.summaries[reqID]; ok {
		mb.tags[tag] = value
	}
}

func (r *Registry) CompleteSummary(reqID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if mb, ok := r.summaries[reqID]; ok {
		mb.complete = true
	}
}

func (r *Registry) SetUpdateTime(clientID int64, t string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if mb, ok := r.updates[clientID]; ok {
		mb.time = t
	}
}

func (r *Registry) SetUpdateValue(clientID int64, key string, v AccountValue) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if mb, ok := r.updates[clientID]; ok {
		mb.values[key] = v
	}
}

func (r *Registry) AppendPortfolio(clientID int64, item tws.UpdatePortfolio) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if mb, ok := r.updates[clientID]; ok {
		mb.portfolio = append(mb.portfolio, item)
	}
}

func (r *Registry) CompleteUpdate(clientID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if mb, ok := r.updates[clientID]; ok {
		mb.complete = true
	}
}

// Predicates, polled by the wait primitive.

func (r *Registry) OrderListComplete(clientID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	mb, ok := r.orderLists[clientID]
	return ok && mb.complete
}

func (r *Registry) OrderStatusPresent(orderID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	mb, ok := r.orders[orderID]
	return ok && mb.status != nil
}

func (r *Registry) PositionsComplete(clientID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	mb, ok := r.positions[clientID]
	return ok && mb.complete
}

func (r *Registry) SummaryComplete(reqID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	mb, ok := r.summaries[reqID]
	return ok && mb.complete
}

func (r *Registry) UpdateComplete(clientID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	mb, ok := r.updates[clientID]
	return ok && mb.complete
}

func (r *Registry) HistoryBarCount(tickerID int64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	mb, ok := r.histories[tickerID]
	if !ok {
		return 0
	}
	return len(mb.bars)
}

func (r *Registry) MarketTickCount(tickerID int64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	mb, ok := r.markets[tickerID]
	if !ok {
		return 0
	}
	return len(mb.ticks)
}

// Snapshots. All deep-copy so consumers never share live references with
// the demultiplexer.

func (r *Registry) OrderListSnapshot(clientID int64) ([]tws.OpenOrder, []tws.OrderStatus, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	mb, ok := r.orderLists[clientID]
	if !ok {
		return nil, nil, false
	}
	opens := make([]tws.OpenOrder, len(mb.openOrders))
	copy(opens, mb.openOrders)
	statuses := make([]tws.OrderStatus, len(mb.statuses))
	copy(statuses, mb.statuses)
	return opens, statuses, mb.complete
}

func (r *Registry) OrderSnapshot(orderID int64) (*tws.OpenOrder, *tws.OrderStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	mb, ok := r.orders[orderID]
	if !ok {
		return nil, nil
	}
	var open *tws.OpenOrder
	var status *tws.OrderStatus
	if mb.openOrder != nil {
		cp := *mb.openOrder
		open = &cp
	}
	if mb.status != nil {
		cp := *mb.status
		status = &cp
	}
	return open, status
}

func (r *Registry) PositionsSnapshot(clientID int64) ([]tws.Position, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	mb, ok := r.positions[clientID]
	if !ok {
		return nil, false
	}
	positions := make([]tws.Position, len(mb.positions))
	copy(positions, mb.positions)
	return positions, mb.complete
}

func (r *Registry) SummarySnapshot(reqID int64) (map[string]string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	mb, ok := r.summaries[reqID]
	if !ok {
		return nil, false
	}
	tags := make(map[string]string, len(mb.tags))
	for k, v := range mb.tags {
		tags[k] = v
	}
	return tags, mb.complete
}

func (r *Registry) UpdateSnapshot(clientID int64) UpdateState {
	r.mu.Lock()
	defer r.mu.Unlock()
	mb, ok := r.updates[clientID]
	if !ok {
		return UpdateState{}
	}
	values := make(map[string]AccountValue, len(mb.values))
	for k, v := range mb.values {
		values[k] = v
	}
	portfolio := make([]tws.UpdatePortfolio, len(mb.portfolio))
	copy(portfolio, mb.portfolio)
	return UpdateState{
		Time:      mb.time,
		Values:    values,
		Portfolio: portfolio,
		Complete:  mb.complete,
	}
}

func (r *Registry) HistorySnapshot(tickerID int64) []tws.Bar {
	r.mu.Lock()
	defer r.mu.Unlock()
	mb, ok := r.histories[tickerID]
	if !ok {
		return nil
	}
	bars := make([]tws.Bar, len(mb.bars))
	copy(bars, mb.bars)
	return bars
}

func (r *Registry) MarketSnapshot(tickerID int64) []tws.Tick {
	r.mu.Lock()
	defer r.mu.Unlock()
	mb, ok := r.markets[tickerID]
	if !ok {
		return nil
	}
	ticks := make([]tws.Tick, len(mb.ticks))
	copy(ticks, mb.ticks)
	return ticks
}
