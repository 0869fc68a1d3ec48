// Package connection manages the pool of upstream sessions.
//
// The package:
//   - Dials one session per clientId through a pluggable Transport
//     (the default speaks JSON frames over WebSocket)
//   - Delivers inbound events on a typed channel per Connection
//   - Paces outbound commands under the upstream's per-session message cap
//   - Hands out Connections with a take/return discipline: at most one
//     in-flight request per Connection, FIFO over released clientIds
//   - Reconnects lazily; a dead session is redialed on the next checkout
package connection
