package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"ecommerce-api/service"
)

// NewOrder handles POST /api/v1/order/new
func (h *Handler) NewOrder(w http.ResponseWriter, r *http.Request) {
	var req service.OrderInput
	if err := decode(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	o, err := h.svc.PlaceOrder(r.Context(), req)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, map[string]interface{}{"message": "order placed successfully", "order": o})
}

// MyOrders handles GET /api/v1/order/my?id=<user>
func (h *Handler) MyOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.MyOrders(r.Context(), r.URL.Query().Get("id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]interface{}{"orders": orders})
}

// AllOrders handles GET /api/v1/order/all
func (h *Handler) AllOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.AllOrders(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]interface{}{"orders": orders})
}

// GetOrder handles GET /api/v1/order/{id}
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.svc.GetOrder(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]interface{}{"order": o})
}

// ProcessOrder handles PUT /api/v1/order/{id}
func (h *Handler) ProcessOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.svc.ProcessOrder(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]interface{}{"message": "order processed successfully", "order": o})
}

// DeleteOrder handles DELETE /api/v1/order/{id}
func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteOrder(r.Context(), mux.Vars(r)["id"]); err != nil {
		fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]interface{}{"message": "order deleted successfully"})
}
