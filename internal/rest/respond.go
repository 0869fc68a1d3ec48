package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/minhpascal/IBREST/internal/gateway"
)

func respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// respondErr maps failures onto the wire. Pool exhaustion is 429 so
// callers know to retry, every other gateway error is 400, and anything
// the gateway did not classify is 500.
func (s *Server) respondErr(w http.ResponseWriter, r *http.Request, err error) {
	var gerr *gateway.Error
	if errors.As(err, &gerr) {
		status := http.StatusBadRequest
		if gerr.ID == gateway.IDPoolExhausted {
			status = http.StatusTooManyRequests
		}
		respond(w, status, gerr)
		return
	}
	s.logger.Error("handler failed", "path", r.URL.Path, "error", err)
	code := http.StatusInternalServerError
	respond(w, http.StatusInternalServerError, &gateway.Error{Msg: err.Error(), Code: &code, ID: -1})
}
