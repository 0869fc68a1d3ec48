// Package gateway exposes the upstream's asynchronous socket API as
// synchronous request/response calls.
//
// Every request follows the same shape: check a connection out of the
// pool, allocate a correlation id, install a fresh mailbox in the
// registry, write the command, poll until the request's completion
// predicate holds or the budget runs out, issue the matching teardown
// where the upstream requires one, and return a deep-copied snapshot.
// Budgets exhaust into partial results rather than errors; the caller
// sees the missing completion flag and decides.
package gateway
