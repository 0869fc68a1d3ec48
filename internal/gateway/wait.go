package gateway

import (
	"time"

	"github.com/minhpascal/IBREST/internal/connection"
)

// await polls until done holds, an error lands in one of the errIDs slots,
// the connection drops, or iters rounds elapse. Checks run in that order
// each round so a satisfied request wins over a late error.
//
// Exhausting the budget returns nil: whatever accumulated in the mailbox
// is the answer, and callers surface it as a partial result.
func (g *Gateway) await(conn *connection.Conn, iters int, done func() bool, errIDs ...int64) *Error {
	for i := 0; i < iters; i++ {
		if done() {
			return nil
		}
		for _, id := range errIDs {
			if e, ok := g.registry.ErrorFor(id); ok {
				return errUpstream(id, e.Code, e.Msg)
			}
		}
		if !conn.IsConnected() {
			return errNotConnected()
		}
		time.Sleep(g.cfg.PollInterval)
	}
	return nil
}
