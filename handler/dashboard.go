package handler

import "net/http"

// Stats handles GET /api/v1/dashboard/stats
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Stats(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]interface{}{"stats": st})
}
