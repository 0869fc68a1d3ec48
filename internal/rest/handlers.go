package rest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/minhpascal/IBREST/internal/gateway"
	"github.com/minhpascal/IBREST/internal/tws"
)

// flatten keeps the first value of each parameter. Repeated fields have
// no meaning for contract or order construction.
func flatten(values url.Values) map[string]string {
	fields := make(map[string]string, len(values))
	for name, vals := range values {
		if len(vals) > 0 {
			fields[name] = vals[0]
		}
	}
	return fields
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap := s.svc.Clients()
	connected := 0
	for _, up := range snap.Connected {
		if up {
			connected++
		}
	}

	health := struct {
		Status     string         `json:"status"`
		Uptime     string         `json:"uptime"`
		Components map[string]any `json:"components"`
	}{
		Status:     "healthy",
		Uptime:     time.Since(s.start).Round(time.Second).String(),
		Components: make(map[string]any),
	}
	health.Components["pool"] = map[string]any{
		"size":      len(snap.Connected),
		"connected": connected,
		"available": len(snap.Available),
	}
	health.Components["accounts"] = len(s.svc.Accounts())
	switch {
	case connected == 0:
		health.Status = "unhealthy"
	case connected < len(snap.Connected):
		health.Status = "degraded"
	}

	w.Header().Set("Content-Type", "application/json")
	if health.Status == "unhealthy" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(health)
}

func (s *Server) handleMarket(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.Market(r.Context(), chi.URLParam(r, "symbol"))
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	respond(w, http.StatusOK, res)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	fields := flatten(r.URL.Query())
	if strings.TrimSpace(fields["symbol"]) == "" {
		s.respondErr(w, r, gateway.NewValidationError("symbol is required"))
		return
	}
	res, err := s.svc.History(r.Context(), fields["symbol"], fields)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	respond(w, http.StatusOK, res)
}

func (s *Server) handleOpenOrders(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.OpenOrders(r.Context())
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	respond(w, http.StatusOK, res)
}

// handlePlaceOrder covers both new orders and modifications: a bag that
// carries an orderId updates the order already working upstream.
func (s *Server) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	fields, verr := orderFields(r)
	if verr != nil {
		s.respondErr(w, r, verr)
		return
	}
	if verr := validateOrderFields(fields); verr != nil {
		s.respondErr(w, r, verr)
		return
	}

	if raw, ok := fields["orderId"]; ok {
		orderID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			s.respondErr(w, r, gateway.NewValidationError("orderId must be an integer"))
			return
		}
		res, err := s.svc.ModifyOrder(r.Context(), orderID, fields["symbol"], fields)
		if err != nil {
			s.respondErr(w, r, err)
			return
		}
		respond(w, http.StatusOK, res)
		return
	}

	res, err := s.svc.PlaceOrder(r.Context(), fields["symbol"], fields)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	respond(w, http.StatusOK, res)
}

// orderFields merges query parameters with the request body. The body may
// be form-encoded or a flat JSON object of scalars; body fields win over
// query fields of the same name.
func orderFields(r *http.Request) (map[string]string, *gateway.Error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		fields := flatten(r.URL.Query())
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return nil, gateway.NewValidationError("malformed JSON body")
		}
		for name, v := range body {
			switch val := v.(type) {
			case string:
				fields[name] = val
			case bool:
				fields[name] = strconv.FormatBool(val)
			case float64:
				fields[name] = strconv.FormatFloat(val, 'f', -1, 64)
			case nil:
			default:
				return nil, gateway.NewValidationError(fmt.Sprintf("field %s must be a scalar", name))
			}
		}
		return fields, nil
	}
	if err := r.ParseForm(); err != nil {
		return nil, gateway.NewValidationError("malformed request body")
	}
	return flatten(r.Form), nil
}

// validateOrderFields enforces the required order arguments before any
// clientId is tied up.
func validateOrderFields(fields map[string]string) *gateway.Error {
	if strings.TrimSpace(fields["symbol"]) == "" {
		return gateway.NewValidationError("symbol is required")
	}
	ot := fields["orderType"]
	if ot == "" {
		return gateway.NewValidationError("orderType is required")
	}
	if !tws.ValidOrderType(ot) {
		return gateway.NewValidationError(fmt.Sprintf("unsupported orderType %q", ot))
	}
	action := fields["action"]
	if action == "" {
		return gateway.NewValidationError("action is required")
	}
	if !tws.ValidAction(action) {
		return gateway.NewValidationError("action must be BUY, SELL or SSHORT")
	}
	qty, err := strconv.Atoi(fields["totalQuantity"])
	if err != nil || qty <= 0 {
		return gateway.NewValidationError("totalQuantity must be a positive integer")
	}
	if v, ok := fields["tif"]; ok && !tws.ValidTIF(v) {
		return gateway.NewValidationError(fmt.Sprintf("unsupported tif %q", v))
	}
	if v, ok := fields["secType"]; ok && !tws.ValidSecType(v) {
		return gateway.NewValidationError(fmt.Sprintf("unsupported secType %q", v))
	}
	return nil
}

func (s *Server) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("orderId")
	if raw == "" {
		s.respondErr(w, r, gateway.NewValidationError("orderId is required"))
		return
	}
	orderID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		s.respondErr(w, r, gateway.NewValidationError("orderId must be an integer"))
		return
	}
	res, err := s.svc.CancelOrder(r.Context(), orderID)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	respond(w, http.StatusOK, res)
}

func (s *Server) handlePositions(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.Positions(r.Context())
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	respond(w, http.StatusOK, res)
}

// handleAccountSummary accepts repeated tag parameters, a CSV tags
// parameter, or both. The union is deduplicated before it goes upstream.
func (s *Server) handleAccountSummary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	raw := append([]string{}, q["tag"]...)
	if csv := q.Get("tags"); csv != "" {
		raw = append(raw, strings.Split(csv, ",")...)
	}

	seen := make(map[string]struct{}, len(raw))
	tags := make([]string, 0, len(raw))
	for _, t := range raw {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		if !tws.ValidSummaryTag(t) {
			s.respondErr(w, r, gateway.NewValidationError(fmt.Sprintf("unknown summary tag %q", t)))
			return
		}
		seen[t] = struct{}{}
		tags = append(tags, t)
	}
	if len(tags) == 0 {
		s.respondErr(w, r, gateway.NewValidationError("provide one or more tag parameters, or a CSV tags parameter"))
		return
	}

	res, err := s.svc.AccountSummary(r.Context(), tags)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	respond(w, http.StatusOK, res)
}

func (s *Server) handleAccountUpdate(w http.ResponseWriter, r *http.Request) {
	acct := strings.TrimSpace(r.URL.Query().Get("acctCode"))
	if acct == "" {
		s.respondErr(w, r, gateway.NewValidationError("acctCode is required"))
		return
	}
	res, err := s.svc.AccountUpdate(r.Context(), acct)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	respond(w, http.StatusOK, res)
}

func (s *Server) handleClients(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, s.svc.Clients())
}
