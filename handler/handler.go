package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"ecommerce-api/service"
)

// Pinger is anything /healthz checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Options struct {
	Log       zerolog.Logger
	UploadDir string
	Checks    map[string]Pinger
}

// Handler is the HTTP layer that talks to service.Service
type Handler struct {
	svc       service.ServiceInterface
	log       zerolog.Logger
	uploadDir string
	checks    map[string]Pinger
}

// NewHandler returns a Handler instance
func NewHandler(s service.ServiceInterface, opts Options) *Handler {
	dir := opts.UploadDir
	if dir == "" {
		dir = "uploads"
	}
	return &Handler{svc: s, log: opts.Log, uploadDir: dir, checks: opts.Checks}
}

// RegisterRoutes registers all routes on the provided router
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/", h.Root).Methods("GET")
	r.HandleFunc("/healthz", h.Health).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()

	// Users
	api.HandleFunc("/user/new", h.NewUser).Methods("POST")
	api.HandleFunc("/user/all", h.ListUsers).Methods("GET")
	api.HandleFunc("/user/{id}", h.GetUser).Methods("GET")
	api.HandleFunc("/user/{id}", h.DeleteUser).Methods("DELETE")

	// Products. Static paths go before /product/{id}.
	api.HandleFunc("/product/new", h.NewProduct).Methods("POST")
	api.HandleFunc("/product/latest", h.LatestProducts).Methods("GET")
	api.HandleFunc("/product/categories", h.Categories).Methods("GET")
	api.HandleFunc("/product/admin-products", h.AdminProducts).Methods("GET")
	api.HandleFunc("/product/all", h.SearchProducts).Methods("GET")
	api.HandleFunc("/product/{id}", h.GetProduct).Methods("GET")
	api.HandleFunc("/product/{id}", h.UpdateProduct).Methods("PUT")
	api.HandleFunc("/product/{id}", h.DeleteProduct).Methods("DELETE")

	// Orders
	api.HandleFunc("/order/new", h.NewOrder).Methods("POST")
	api.HandleFunc("/order/my", h.MyOrders).Methods("GET")
	api.HandleFunc("/order/all", h.AllOrders).Methods("GET")
	api.HandleFunc("/order/{id}", h.GetOrder).Methods("GET")
	api.HandleFunc("/order/{id}", h.ProcessOrder).Methods("PUT")
	api.HandleFunc("/order/{id}", h.DeleteOrder).Methods("DELETE")

	// Payment
	api.HandleFunc("/payment/coupon/new", h.NewCoupon).Methods("POST")
	api.HandleFunc("/payment/discount", h.ApplyDiscount).Methods("GET")
	api.HandleFunc("/payment/coupon/all", h.ListCoupons).Methods("GET")
	api.HandleFunc("/payment/coupon/{id}", h.DeleteCoupon).Methods("DELETE")

	// Dashboard
	api.HandleFunc("/dashboard/stats", h.Stats).Methods("GET")

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeErr(w, http.StatusNotFound, "route not found")
	})
}

// --- helpers ---
func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]interface{}{"success": false, "message": msg})
}

// writeOK merges fields into a success envelope.
func writeOK(w http.ResponseWriter, code int, fields map[string]interface{}) {
	body := map[string]interface{}{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	writeJSON(w, code, body)
}

// statusOf maps a service error kind to its HTTP status.
func statusOf(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// fail writes a service error. Upstream causes are logged, never sent.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	code := statusOf(err)
	msg := "internal server error"
	var se *service.Error
	if errors.As(err, &se) {
		msg = se.Msg
	}
	if code == http.StatusInternalServerError {
		hlog.FromRequest(r).Error().Err(err).Msg("request failed")
	}
	writeErr(w, code, msg)
}

func decode(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// --- Handler ---

// Root handles GET /
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	writeOK(w, http.StatusOK, map[string]interface{}{"message": "API Working with /api/v1"})
}

// Health handles GET /healthz
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := map[string]string{}
	healthy := true
	for name, p := range h.checks {
		if err := p.Ping(ctx); err != nil {
			hlog.FromRequest(r).Warn().Err(err).Str("check", name).Msg("health check failed")
			status[name] = "down"
			healthy = false
			continue
		}
		status[name] = "up"
	}
	code := http.StatusOK
	if !healthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]interface{}{"success": healthy, "checks": status})
}
