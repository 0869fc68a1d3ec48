package tws

// Event is one inbound message from an upstream session. The demultiplexer
// dispatches over the concrete variants; Type returns the upstream's
// callback name for logging and metrics.
type Event interface {
	Type() string
}

// NextValidID seeds the order id counter. Sent by the upstream after
// connect and in response to reqIds.
type NextValidID struct {
	OrderID int64 `json:"orderId"`
}

func (NextValidID) Type() string { return "nextValidId" }

// ManagedAccounts lists the account codes this session may act on.
type ManagedAccounts struct {
	AccountsList string `json:"accountsList"` // comma separated
}

func (ManagedAccounts) Type() string { return "managedAccounts" }

// HistoricalData delivers one bar of a historical data request.
type HistoricalData struct {
	ReqID int64 `json:"reqId"`
	Bar   Bar   `json:"bar"`
}

func (HistoricalData) Type() string { return "historicalData" }

// OpenOrder reports an order the upstream knows about.
type OpenOrder struct {
	OrderID  int64      `json:"orderId"`
	Contract Contract   `json:"contract"`
	Order    Order      `json:"order"`
	State    OrderState `json:"orderState"`
}

func (OpenOrder) Type() string { return "openOrder" }

// OrderStatus reports the execution status of an order.
type OrderStatus struct {
	OrderID       int64   `json:"orderId"`
	Status        string  `json:"status"`
	Filled        int64   `json:"filled"`
	Remaining     int64   `json:"remaining"`
	AvgFillPrice  float64 `json:"avgFillPrice"`
	PermID        int64   `json:"permId,omitempty"`
	ParentID      int64   `json:"parentId,omitempty"`
	LastFillPrice float64 `json:"lastFillPrice,omitempty"`
	ClientID      int     `json:"clientId"`
	WhyHeld       string  `json:"whyHeld,omitempty"`
}

func (OrderStatus) Type() string { return "orderStatus" }

// OpenOrderEnd terminates an open-orders listing.
type OpenOrderEnd struct{}

func (OpenOrderEnd) Type() string { return "openOrderEnd" }

// Position reports one portfolio position.
type Position struct {
	Account  string   `json:"account"`
	Contract Contract `json:"contract"`
	Position float64  `json:"position"`
	AvgCost  float64  `json:"avgCost"`
}

func (Position) Type() string { return "position" }

// PositionEnd terminates a positions listing.
type PositionEnd struct{}

func (PositionEnd) Type() string { return "positionEnd" }

// AccountSummary delivers one tag of an account summary request.
type AccountSummary struct {
	ReqID    int64  `json:"reqId"`
	Account  string `json:"account"`
	Tag      string `json:"tag"`
	Value    string `json:"value"`
	Currency string `json:"currency,omitempty"`
}

func (AccountSummary) Type() string { return "accountSummary" }

// AccountSummaryEnd terminates an account summary request.
type AccountSummaryEnd struct {
	ReqID int64 `json:"reqId"`
}

func (AccountSummaryEnd) Type() string { return "accountSummaryEnd" }

// UpdateAccountTime stamps the account update stream.
type UpdateAccountTime struct {
	Timestamp string `json:"timeStamp"`
}

func (UpdateAccountTime) Type() string { return "updateAccountTime" }

// UpdateAccountValue delivers one account value key.
type UpdateAccountValue struct {
	Key      string `json:"key"`
	Value    string `json:"value"`
	Currency string `json:"currency,omitempty"`
	Account  string `json:"accountName"`
}

func (UpdateAccountValue) Type() string { return "updateAccountValue" }

// UpdatePortfolio delivers one portfolio line of an account update.
type UpdatePortfolio struct {
	Contract      Contract `json:"contract"`
	Position      float64  `json:"position"`
	MarketPrice   float64  `json:"marketPrice"`
	MarketValue   float64  `json:"marketValue"`
	AverageCost   float64  `json:"averageCost"`
	UnrealizedPNL float64  `json:"unrealizedPNL"`
	RealizedPNL   float64  `json:"realizedPNL"`
	Account       string   `json:"accountName"`
}

func (UpdatePortfolio) Type() string { return "updatePortfolio" }

// AccountDownloadEnd terminates an account update request.
type AccountDownloadEnd struct {
	Account string `json:"accountName"`
}

func (AccountDownloadEnd) Type() string { return "accountDownloadEnd" }

// TickPrice delivers a price tick for a market data request.
type TickPrice struct {
	TickerID       int64   `json:"tickerId"`
	Field          int     `json:"field"`
	Price          float64 `json:"price"`
	CanAutoExecute int     `json:"canAutoExecute,omitempty"`
}

func (TickPrice) Type() string { return "tickPrice" }

// TickSize delivers a size tick for a market data request.
type TickSize struct {
	TickerID int64 `json:"tickerId"`
	Field    int   `json:"field"`
	Size     int64 `json:"size"`
}

func (TickSize) Type() string { return "tickSize" }

// ErrorMsg is the upstream's error callback. ID is the orderId/tickerId/
// reqId the error belongs to, or -1 for connection-scoped notices.
type ErrorMsg struct {
	ID      int64  `json:"id"`
	Code    int    `json:"errorCode"`
	Message string `json:"errorMsg"`
}

func (ErrorMsg) Type() string { return "error" }

// Tick converts a price event to the tick record stored in mailboxes.
func (e TickPrice) Tick() Tick {
	return Tick{
		Type:           e.Type(),
		TickerID:       e.TickerID,
		Field:          e.Field,
		Price:          e.Price,
		CanAutoExecute: e.CanAutoExecute,
	}
}

// Tick converts a size event to the tick record stored in mailboxes.
func (e TickSize) Tick() Tick {
	return Tick{
		Type:     e.Type(),
		TickerID: e.TickerID,
		Field:    e.Field,
		Size:     e.Size,
	}
}
