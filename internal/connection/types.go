package connection

import (
	"errors"
	"time"
)

// Errors
var (
	ErrNotConnected  = errors.New("not connected")
	ErrPoolTimeout   = errors.New("no client id available before timeout")
	ErrAlreadyClosed = errors.New("already closed")
)

// OrderClientID is the reserved clientId for order-mutating operations and
// the open-orders query. The upstream delivers openOrder/orderStatus events
// only to the submitting client, so pinning orders to one clientId keeps
// their event stream off the read-only connections.
const OrderClientID = 0

// DialConfig configures the websocket transport.
type DialConfig struct {
	Host         string        // upstream host
	Port         int           // upstream port
	DialTimeout  time.Duration // websocket handshake timeout
	WriteTimeout time.Duration // write deadline for sends
}

// DefaultDialConfig returns sensible defaults.
func DefaultDialConfig() DialConfig {
	return DialConfig{
		Host:         "127.0.0.1",
		Port:         4001,
		DialTimeout:  10 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
}

// ConnConfig configures a single Connection.
type ConnConfig struct {
	CommandRate  float64 // outbound commands per second, per session
	CommandBurst int     // limiter burst
	BufferSize   int     // event channel capacity
}

// DefaultConnConfig returns sensible defaults. The upstream allows 50
// messages per second per session; the default rate stays under that.
func DefaultConnConfig() ConnConfig {
	return ConnConfig{
		CommandRate:  45,
		CommandBurst: 10,
		BufferSize:   1024,
	}
}

// PoolConfig configures the client pool.
type PoolConfig struct {
	Size         int           // number of connections, clientIds 0..Size-1
	WaitIters    int           // acquire polling budget
	WaitInterval time.Duration // acquire polling interval
}

// DefaultPoolConfig returns sensible defaults (budget 20 x 500ms = 10s).
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		Size:         8,
		WaitIters:    20,
		WaitInterval: 500 * time.Millisecond,
	}
}

// Snapshot is the pool's state for the clients endpoint.
type Snapshot struct {
	Connected map[int]bool `json:"connected"`
	Available []int        `json:"available"`
}
