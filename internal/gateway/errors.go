package gateway

// Error is the HTTP-visible failure shape. ID carries the request-scoped
// identifier the failure belongs to, or a sentinel: -1 connection not
// established, -2 no clientId available in time. Code is null for pool
// exhaustion, 502 for connection failures, and the upstream's own code for
// upstream-reported errors.
type Error struct {
	Msg  string `json:"errorMsg"`
	Code *int   `json:"errorCode"`
	ID   int64  `json:"id"`
}

func (e *Error) Error() string {
	return e.Msg
}

// Sentinel ids.
const (
	IDNotConnected  = -1
	IDPoolExhausted = -2
)

func errPoolTimeout() *Error {
	return &Error{
		Msg:  "Client ID not available in time. Try request later",
		Code: nil,
		ID:   IDPoolExhausted,
	}
}

func errNotConnected() *Error {
	code := 502
	return &Error{
		Msg:  "Couldn't connect to IB Gateway. Confirm it is running and reachable",
		Code: &code,
		ID:   IDNotConnected,
	}
}

// errUpstream carries an upstream-reported error verbatim.
func errUpstream(id int64, code int, msg string) *Error {
	return &Error{Msg: msg, Code: &code, ID: id}
}

// NewValidationError rejects a request before anything reaches the
// upstream. The HTTP layer uses it for malformed query parameters.
func NewValidationError(msg string) *Error {
	code := 400
	return &Error{Msg: msg, Code: &code, ID: -1}
}
