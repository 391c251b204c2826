package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"ecommerce-api/service"
)

// NewCoupon handles POST /api/v1/payment/coupon/new
// body: { "coupon": "SAVE10", "amount": 10 }
func (h *Handler) NewCoupon(w http.ResponseWriter, r *http.Request) {
	var req service.CouponInput
	if err := decode(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	c, err := h.svc.NewCoupon(r.Context(), req)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, map[string]interface{}{"message": "coupon " + c.Code + " created successfully", "coupon": c})
}

// ApplyDiscount handles GET /api/v1/payment/discount?coupon=
func (h *Handler) ApplyDiscount(w http.ResponseWriter, r *http.Request) {
	amount, err := h.svc.ApplyDiscount(r.Context(), r.URL.Query().Get("coupon"))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]interface{}{"discount": amount})
}

// ListCoupons handles GET /api/v1/payment/coupon/all
func (h *Handler) ListCoupons(w http.ResponseWriter, r *http.Request) {
	cs, err := h.svc.ListCoupons(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]interface{}{"coupons": cs})
}

// DeleteCoupon handles DELETE /api/v1/payment/coupon/{id}
func (h *Handler) DeleteCoupon(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteCoupon(r.Context(), mux.Vars(r)["id"]); err != nil {
		fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]interface{}{"message": "coupon deleted successfully"})
}
