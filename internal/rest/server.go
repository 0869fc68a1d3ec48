package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/minhpascal/IBREST/internal/connection"
	"github.com/minhpascal/IBREST/internal/gateway"
	"github.com/minhpascal/IBREST/internal/metrics"
)

// Service is the gateway surface the HTTP layer depends on.
type Service interface {
	Market(ctx context.Context, symbol string) (*gateway.MarketResult, error)
	History(ctx context.Context, symbol string, fields map[string]string) (*gateway.HistoryResult, error)
	OpenOrders(ctx context.Context) (*gateway.OrderListResult, error)
	PlaceOrder(ctx context.Context, symbol string, fields map[string]string) (*gateway.OrderResult, error)
	ModifyOrder(ctx context.Context, orderID int64, symbol string, fields map[string]string) (*gateway.OrderResult, error)
	CancelOrder(ctx context.Context, orderID int64) (*gateway.OrderResult, error)
	Positions(ctx context.Context) (*gateway.PositionsResult, error)
	AccountSummary(ctx context.Context, tags []string) (map[string]any, error)
	AccountUpdate(ctx context.Context, acctCode string) (*gateway.UpdateResult, error)
	Clients() connection.Snapshot
	Accounts() []string
}

// Server routes HTTP requests to the gateway.
type Server struct {
	svc     Service
	metrics *metrics.Metrics
	logger  *slog.Logger
	start   time.Time
}

func NewServer(svc Service, m *metrics.Metrics, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{svc: svc, metrics: m, logger: logger, start: time.Now()}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.logRequests)

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Get("/market/{symbol}", s.handleMarket)
	r.Get("/history", s.handleHistory)
	r.Get("/order", s.handleOpenOrders)
	r.Post("/order", s.handlePlaceOrder)
	r.Delete("/order", s.handleCancelOrder)
	r.Get("/account/positions", s.handlePositions)
	r.Get("/account/summary", s.handleAccountSummary)
	r.Get("/account/update", s.handleAccountUpdate)
	r.Get("/clients", s.handleClients)

	return r
}
