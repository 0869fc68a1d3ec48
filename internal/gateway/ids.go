package gateway

import (
	"sync"
	"sync/atomic"
)

// Identifiers owns the process-wide id counters and the managed-accounts
// list reported by the upstream.
type Identifiers struct {
	nextOrderID  atomic.Int64
	nextTickerID atomic.Int64

	mu       sync.Mutex
	accounts []string
}

func NewIdentifiers() *Identifiers {
	return &Identifiers{}
}

// NextTickerID returns a fresh tickerId. Ids start at 1 and never repeat
// within a process lifetime.
func (i *Identifiers) NextTickerID() int64 {
	return i.nextTickerID.Add(1)
}

// SeedOrderID raises the order counter to max(current, id). Every
// nextValidId event from the upstream lands here.
func (i *Identifiers) SeedOrderID(id int64) {
	for {
		cur := i.nextOrderID.Load()
		if id <= cur {
			return
		}
		if i.nextOrderID.CompareAndSwap(cur, id) {
			return
		}
	}
}

// NextOrderID consumes the current order id and advances the counter.
func (i *Identifiers) NextOrderID() int64 {
	return i.nextOrderID.Add(1) - 1
}

// PeekOrderID returns the next order id without consuming it.
func (i *Identifiers) PeekOrderID() int64 {
	return i.nextOrderID.Load()
}

// SetManagedAccounts replaces the account list.
func (i *Identifiers) SetManagedAccounts(accounts []string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.accounts = accounts
}

// ManagedAccounts returns a copy of the account list.
func (i *Identifiers) ManagedAccounts() []string {
	i.mu.Lock()
	defer i.mu.Unlock()
	out := make([]string, len(i.accounts))
	copy(out, i.accounts)
	return out
}
