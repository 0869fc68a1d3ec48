// Package tws defines the typed protocol spoken to the upstream IB Gateway.
//
// The package owns:
//   - the instrument and order value types (Contract, Order, OrderState, ...)
//   - the inbound Event variants the upstream emits (tickPrice, openOrder,
//     nextValidId, error, ...)
//   - the outbound Command variants the gateway sends (reqMktData,
//     placeOrder, cancelPositions, ...)
//   - the JSON envelope codec used by the wire adapter
//   - the explicit field mapping that builds Contracts and Orders from the
//     flat field bags HTTP callers submit
//
// Everything here is plain values; no connection state, no goroutines.
package tws
