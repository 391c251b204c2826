package handler

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"ecommerce-api/service"
)

type newUserReq struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Photo  string `json:"photo"`
	Gender string `json:"gender"`
	DOB    string `json:"dob"`
}

// parseDOB accepts a plain date or a full RFC 3339 timestamp.
func parseDOB(s string) (time.Time, bool) {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// NewUser handles POST /api/v1/user/new
func (h *Handler) NewUser(w http.ResponseWriter, r *http.Request) {
	var req newUserReq
	if err := decode(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	in := service.UserInput{
		ID:     req.ID,
		Name:   req.Name,
		Email:  req.Email,
		Photo:  req.Photo,
		Gender: req.Gender,
	}
	if req.DOB != "" {
		dob, ok := parseDOB(req.DOB)
		if !ok {
			writeErr(w, http.StatusBadRequest, "invalid dob")
			return
		}
		in.DOB = dob
	}

	u, created, err := h.svc.CreateUser(r.Context(), in)
	if err != nil {
		fail(w, r, err)
		return
	}
	if !created {
		writeOK(w, http.StatusOK, map[string]interface{}{"message": "Welcome back, " + u.Name})
		return
	}
	writeOK(w, http.StatusCreated, map[string]interface{}{"message": "Welcome, " + u.Name})
}

// ListUsers handles GET /api/v1/user/all
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	us, err := h.svc.ListUsers(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]interface{}{"users": us})
}

// GetUser handles GET /api/v1/user/{id}
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.GetUser(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]interface{}{"user": u})
}

// DeleteUser handles DELETE /api/v1/user/{id}
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteUser(r.Context(), mux.Vars(r)["id"]); err != nil {
		fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]interface{}{"message": "user deleted successfully"})
}
