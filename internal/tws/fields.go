package tws

import (
	"fmt"
	"strconv"
)

// TimeLayout is the timestamp format the upstream accepts for
// endDateTime and reports in updateAccountTime.
const TimeLayout = "20060102 15:04:05"

// Vocabularies accepted by the upstream API. Requests carrying a value
// outside these sets are rejected before anything reaches the wire.
var (
	orderTypes = map[string]struct{}{
		"LMT": {}, "MTL": {}, "MKT PRT": {}, "QUOTE": {}, "STP": {},
		"STP LMT": {}, "TRAIL LIT": {}, "TRAIL MIT": {}, "TRAIL": {},
		"TRAIL LIMIT": {}, "MKT": {}, "MIT": {}, "MOC": {}, "MOO": {},
		"PEG MKT": {}, "REL": {}, "BOX TOP": {}, "LOC": {}, "LOO": {},
		"LIT": {}, "PEG MID": {}, "VWAP": {}, "GAT": {}, "GTD": {},
		"GTC": {}, "IOC": {}, "OCA": {}, "VOL": {},
	}

	secTypes = map[string]struct{}{
		"STK": {}, "OPT": {}, "FUT": {}, "IND": {},
		"FOP": {}, "CASH": {}, "BAG": {}, "NEWS": {},
	}

	tifs = map[string]struct{}{
		"DAY": {}, "GTC": {}, "IOC": {}, "GTD": {},
	}

	actions = map[string]struct{}{
		"BUY": {}, "SELL": {}, "SSHORT": {},
	}

	summaryTags = map[string]struct{}{
		"AccountType": {}, "NetLiquidation": {}, "TotalCashValue": {},
		"SettledCash": {}, "AccruedCash": {}, "BuyingPower": {},
		"EquityWithLoanValue": {}, "PreviousDayEquityWithLoanValue": {},
		"GrossPositionValue": {}, "RegTEquity": {}, "RegTMargin": {},
		"SMA": {}, "InitMarginReq": {}, "MaintMarginReq": {},
		"AvailableFunds": {}, "ExcessLiquidity": {}, "Cushion": {},
		"FullInitMarginReq": {}, "FullMaintMarginReq": {},
		"FullAvailableFunds": {}, "FullExcessLiquidity": {},
		"LookAheadNextChange": {}, "LookAheadInitMarginReq": {},
		"LookAheadMaintMarginReq": {}, "LookAheadAvailableFunds": {},
		"LookAheadExcessLiquidity": {}, "HighestSeverity": {},
		"DayTradesRemaining": {}, "Leverage": {},
	}
)

func ValidOrderType(s string) bool  { _, ok := orderTypes[s]; return ok }
func ValidSecType(s string) bool    { _, ok := secTypes[s]; return ok }
func ValidTIF(s string) bool        { _, ok := tifs[s]; return ok }
func ValidAction(s string) bool     { _, ok := actions[s]; return ok }
func ValidSummaryTag(s string) bool { _, ok := summaryTags[s]; return ok }

// NewContract builds a US stock contract for the given symbol. Callers
// override individual fields afterwards via ApplyContractFields.
func NewContract(symbol string) Contract {
	return Contract{
		Symbol:          symbol,
		SecType:         "STK",
		Exchange:        "SMART",
		PrimaryExchange: "SMART",
		Currency:        "USD",
		LocalSymbol:     symbol,
	}
}

// ApplyContractFields overlays recognized contract fields from a flat
// name/value bag. Names that do not belong to the contract are left for
// the order pass; both passes walk the same bag.
func ApplyContractFields(c *Contract, fields map[string]string) error {
	for name, value := range fields {
		switch name {
		case "symbol":
			c.Symbol = value
		case "secType":
			c.SecType = value
		case "exchange":
			c.Exchange = value
		case "primaryExchange":
			c.PrimaryExchange = value
		case "currency":
			c.Currency = value
		case "localSymbol":
			c.LocalSymbol = value
		case "expiry":
			c.Expiry = value
		case "strike":
			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return fmt.Errorf("parse strike: %w", err)
			}
			c.Strike = f
		case "right":
			c.Right = value
		case "multiplier":
			c.Multiplier = value
		}
	}
	return nil
}

// ApplyHistoryFields overlays recognized bar query fields from a flat
// name/value bag.
func ApplyHistoryFields(r *ReqHistoricalData, fields map[string]string) error {
	for name, value := range fields {
		switch name {
		case "endDateTime":
			r.EndDateTime = value
		case "durationStr":
			r.DurationStr = value
		case "barSizeSetting":
			r.BarSizeSetting = value
		case "whatToShow":
			r.WhatToShow = value
		case "useRTH":
			n, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("parse useRTH: %w", err)
			}
			r.UseRTH = n
		case "formatDate":
			n, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("parse formatDate: %w", err)
			}
			r.FormatDate = n
		}
	}
	return nil
}

// ApplyOrderFields overlays recognized order fields from a flat
// name/value bag. stopPrice feeds the order's auxPrice, matching what
// the upstream expects for STP and TRAIL types.
func ApplyOrderFields(o *Order, fields map[string]string) error {
	for name, value := range fields {
		switch name {
		case "action":
			o.Action = value
		case "totalQuantity":
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("parse totalQuantity: %w", err)
			}
			o.TotalQuantity = n
		case "orderType":
			o.OrderType = value
		case "lmtPrice":
			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return fmt.Errorf("parse lmtPrice: %w", err)
			}
			o.LmtPrice = f
		case "stopPrice":
			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return fmt.Errorf("parse stopPrice: %w", err)
			}
			o.AuxPrice = f
		case "trailingPercent":
			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return fmt.Errorf("parse trailingPercent: %w", err)
			}
			o.TrailingPercent = f
		case "trailStopPrice":
			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return fmt.Errorf("parse trailStopPrice: %w", err)
			}
			o.TrailStopPrice = f
		case "tif":
			o.TIF = value
		case "account":
			o.Account = value
		case "transmit":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return fmt.Errorf("parse transmit: %w", err)
			}
			o.Transmit = b
		}
	}
	return nil
}
