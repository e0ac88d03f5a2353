package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/users/login", h.login)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		deny(w, http.StatusBadRequest, err.Error())
		return
	}

	session, err := h.service.Login(r.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, ErrEmailNotFound):
		deny(w, http.StatusBadRequest, "User e-mail not found")
		return
	case errors.Is(err, ErrBadPassword):
		deny(w, http.StatusBadRequest, "Incorrect password.")
		return
	case err != nil:
		deny(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"user":    session.Email,
		"token":   session.Token,
		"success": true,
	})
}
