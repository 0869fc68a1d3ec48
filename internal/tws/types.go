package tws

// Contract identifies a tradable instrument.
type Contract struct {
	Symbol          string  `json:"symbol"`
	SecType         string  `json:"secType"`
	Exchange        string  `json:"exchange"`
	PrimaryExchange string  `json:"primaryExchange,omitempty"`
	Currency        string  `json:"currency"`
	LocalSymbol     string  `json:"localSymbol,omitempty"`
	Expiry          string  `json:"expiry,omitempty"`
	Strike          float64 `json:"strike,omitempty"`
	Right           string  `json:"right,omitempty"`
	Multiplier      string  `json:"multiplier,omitempty"`
}

// Order carries the order attributes the gateway exposes.
//
// StopPrice on the HTTP surface maps to AuxPrice here; the upstream uses
// auxPrice as the trigger price for STP and STP LMT types.
type Order struct {
	OrderID         int64   `json:"orderId"`
	ClientID        int     `json:"clientId"`
	Action          string  `json:"action"`
	TotalQuantity   int64   `json:"totalQuantity"`
	OrderType       string  `json:"orderType"`
	LmtPrice        float64 `json:"lmtPrice,omitempty"`
	AuxPrice        float64 `json:"auxPrice,omitempty"`
	TrailingPercent float64 `json:"trailingPercent,omitempty"`
	TrailStopPrice  float64 `json:"trailStopPrice,omitempty"`
	TIF             string  `json:"tif,omitempty"`
	Account         string  `json:"account,omitempty"`
	Transmit        bool    `json:"transmit"`
}

// OrderState is the upstream's margin and commission view of an order.
type OrderState struct {
	Status             string  `json:"status"`
	InitMargin         string  `json:"initMargin,omitempty"`
	MaintMargin        string  `json:"maintMargin,omitempty"`
	EquityWithLoan     string  `json:"equityWithLoan,omitempty"`
	Commission         float64 `json:"commission,omitempty"`
	CommissionCurrency string  `json:"commissionCurrency,omitempty"`
	WarningText        string  `json:"warningText,omitempty"`
}

// Bar is one historical data bar.
type Bar struct {
	Date    string  `json:"date"`
	Open    float64 `json:"open"`
	High    float64 `json:"high"`
	Low     float64 `json:"low"`
	Close   float64 `json:"close"`
	Volume  int64   `json:"volume"`
	Count   int     `json:"count"`
	WAP     float64 `json:"wap"`
	HasGaps bool    `json:"hasGaps"`
}

// Tick is one market data tick, either a price or a size.
type Tick struct {
	Type           string  `json:"type"` // "tickPrice" or "tickSize"
	TickerID       int64   `json:"tickerId"`
	Field          int     `json:"field"`
	Price          float64 `json:"price,omitempty"`
	Size           int64   `json:"size,omitempty"`
	CanAutoExecute int     `json:"canAutoExecute,omitempty"`
}
