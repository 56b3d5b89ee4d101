package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"ggshop/orders-service/internal/order"
	"ggshop/orders-service/internal/storage"
)

// Config carries the admin gate settings and the instance identity
// reported by the debug endpoint.
type Config struct {
	AdminToken  string
	RequireAuth bool
	InstanceID  string
}

type Server struct {
	orderSvc *order.Service
	store    *storage.Store
	cfg      Config
	logger   *slog.Logger
	mux      *http.ServeMux
}

func NewServer(orderSvc *order.Service, store *storage.Store, cfg Config, logger *slog.Logger) *Server {
	s := &Server{
		orderSvc: orderSvc,
		store:    store,
		cfg:      cfg,
		logger:   logger,
		mux:      http.NewServeMux(),
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /api/health", s.health)
	s.mux.HandleFunc("GET /api/debug", s.debug)
	s.mux.HandleFunc("POST /api/order", s.createOrder)
	s.mux.HandleFunc("GET /api/orders", s.requireAdmin(s.listOrders))
	s.mux.HandleFunc("PATCH /api/orders/{orderID}", s.requireAdmin(s.updateOrderStatus))
	s.mux.HandleFunc("DELETE /api/orders/{orderID}", s.requireAdmin(s.deleteOrder))
	s.mux.HandleFunc("POST /api/orders/bulk-delete", s.requireAdmin(s.bulkDelete))
}

// HandleFunc lets the app attach extra routes (websocket feed, static
// assets) onto the same mux.
func (s *Server) HandleFunc(pattern string, handler http.HandlerFunc) {
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) Handle(pattern string, handler http.Handler) {
	s.mux.Handle(pattern, handler)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Authorized reports whether the request may perform admin operations.
// The token travels in the x-admin-token header or the token query
// parameter; exact match required.
func (s *Server) Authorized(r *http.Request) bool {
	if !s.cfg.RequireAuth {
		return true
	}
	token := r.Header.Get("x-admin-token")
	if token == "" {
		token = r.URL.Query().Get("token")
	}
	return token != "" && token == s.cfg.AdminToken
}

func (s *Server) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.Authorized(r) {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next(w, r)
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":            true,
		"time":          time.Now().UTC().Format(time.RFC3339),
		"tokenRequired": s.cfg.RequireAuth,
	})
}

func (s *Server) debug(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats(r.Context())
	if err != nil {
		s.logger.Error("store stats", "err", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":             true,
		"ordersFile":     stats.Path,
		"fileSizeBytes":  stats.SizeBytes,
		"ordersCount":    stats.Orders,
		"serverInstance": s.cfg.InstanceID,
	})
}

func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) {
	var req order.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	o, err := s.orderSvc.Create(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, "create order", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "orderId": o.OrderID})
}

func (s *Server) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := s.orderSvc.List(r.Context())
	if err != nil {
		s.writeServiceError(w, "list orders", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "orders": orders})
}

func (s *Server) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if err := s.orderSvc.UpdateStatus(r.Context(), r.PathValue("orderID"), req.Status); err != nil {
		s.writeServiceError(w, "update order status", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) deleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := s.orderSvc.Delete(r.Context(), r.PathValue("orderID")); err != nil {
		s.writeServiceError(w, "delete order", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "deleted": 1})
}

func (s *Server) bulkDelete(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrderIDs []string `json:"orderIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	deleted, err := s.orderSvc.BulkDelete(r.Context(), req.OrderIDs)
	if err != nil {
		s.writeServiceError(w, "bulk delete orders", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "deleted": deleted})
}

// writeServiceError maps service errors onto the response taxonomy.
// Anything unexpected stays in the logs; callers get a generic 500.
func (s *Server) writeServiceError(w http.ResponseWriter, op string, err error) {
	var verr *order.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, order.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, "Order not found")
	default:
		s.logger.Error(op, "err", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"ok": false, "error": msg})
}
