package tws

// Command is one outbound request to an upstream session. Cmd returns the
// upstream's method name; it doubles as the envelope tag on the wire.
type Command interface {
	Cmd() string
}

// ReqIDs asks the upstream to emit a nextValidId event.
type ReqIDs struct {
	NumIDs int `json:"numIds"`
}

func (ReqIDs) Cmd() string { return "reqIds" }

// ReqHistoricalData starts a historical bar download.
type ReqHistoricalData struct {
	TickerID       int64    `json:"tickerId"`
	Contract       Contract `json:"contract"`
	EndDateTime    string   `json:"endDateTime"`
	DurationStr    string   `json:"durationStr"`
	BarSizeSetting string   `json:"barSizeSetting"`
	WhatToShow     string   `json:"whatToShow"`
	UseRTH         int      `json:"useRTH"`
	FormatDate     int      `json:"formatDate"`
}

func (ReqHistoricalData) Cmd() string { return "reqHistoricalData" }

// CancelHistoricalData stops a historical bar download.
type CancelHistoricalData struct {
	TickerID int64 `json:"tickerId"`
}

func (CancelHistoricalData) Cmd() string { return "cancelHistoricalData" }

// ReqMktData starts a market data stream for one instrument.
type ReqMktData struct {
	TickerID        int64    `json:"tickerId"`
	Contract        Contract `json:"contract"`
	GenericTickList string   `json:"genericTickList"`
	Snapshot        bool     `json:"snapshot"`
}

func (ReqMktData) Cmd() string { return "reqMktData" }

// CancelMktData stops a market data stream.
type CancelMktData struct {
	TickerID int64 `json:"tickerId"`
}

func (CancelMktData) Cmd() string { return "cancelMktData" }

// PlaceOrder submits or modifies an order. Submitting an OrderID the
// upstream already knows modifies that order in place.
type PlaceOrder struct {
	OrderID  int64    `json:"orderId"`
	Contract Contract `json:"contract"`
	Order    Order    `json:"order"`
}

func (PlaceOrder) Cmd() string { return "placeOrder" }

// CancelOrder cancels a live order.
type CancelOrder struct {
	OrderID int64 `json:"orderId"`
}

func (CancelOrder) Cmd() string { return "cancelOrder" }

// ReqAllOpenOrders lists open orders across all client ids.
type ReqAllOpenOrders struct{}

func (ReqAllOpenOrders) Cmd() string { return "reqAllOpenOrders" }

// ReqPositions starts a positions listing.
type ReqPositions struct{}

func (ReqPositions) Cmd() string { return "reqPositions" }

// CancelPositions stops a positions listing.
type CancelPositions struct{}

func (CancelPositions) Cmd() string { return "cancelPositions" }

// ReqAccountSummary starts an account summary request for the given tags.
type ReqAccountSummary struct {
	ReqID int64  `json:"reqId"`
	Group string `json:"group"`
	Tags  string `json:"tags"` // comma separated
}

func (ReqAccountSummary) Cmd() string { return "reqAccountSummary" }

// CancelAccountSummary stops an account summary request.
type CancelAccountSummary struct {
	ReqID int64 `json:"reqId"`
}

func (CancelAccountSummary) Cmd() string { return "cancelAccountSummary" }

// ReqAccountUpdates subscribes to the account value and portfolio stream
// for one account. The gateway subscribes, drains one snapshot, and then
// issues CancelAccountUpdates.
type ReqAccountUpdates struct {
	Subscribe bool   `json:"subscribe"`
	AcctCode  string `json:"acctCode"`
}

func (ReqAccountUpdates) Cmd() string { return "reqAccountUpdates" }

// CancelAccountUpdates stops the account update stream for an account.
type CancelAccountUpdates struct {
	AcctCode string `json:"acctCode"`
}

func (CancelAccountUpdates) Cmd() string { return "cancelAccountUpdates" }
