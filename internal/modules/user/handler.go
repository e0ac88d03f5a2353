package user

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/georgemunganga/eshop-backend/internal/platform/store"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts flat /users routes so the auth module can add
// /users/login on the same router.
func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/users", h.listUsers)
	router.Post("/users", h.createUser)
	router.Post("/users/register", h.registerUser)
	router.Get("/users/get/count", h.countUsers)
	router.Get("/users/{id}", h.getUser)
	router.Delete("/users/{id}", h.deleteUser)
}

func (h *Handler) registerUser(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, h.service.Register)
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, h.service.Create)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request, create func(context.Context, CreateRequest) (*User, error)) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := create(r.Context(), req)
	switch {
	case err == nil:
		respond(w, http.StatusCreated, user)
	case errors.Is(err, store.ErrDuplicate):
		fail(w, http.StatusConflict, "A user with this e-mail already exists.")
	case errors.Is(err, ErrEmailRequired), errors.Is(err, ErrPasswordRequired):
		fail(w, http.StatusBadRequest, err.Error())
	default:
		fail(w, http.StatusInternalServerError, "The user could not be created")
	}
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		fail(w, http.StatusInternalServerError, "The users list could not be retrieved")
		return
	}
	if users == nil {
		users = []*User{}
	}
	respond(w, http.StatusOK, users)
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !store.IsValidID(id) {
		fail(w, http.StatusBadRequest, "Invalid id.")
		return
	}

	user, err := h.service.GetUser(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		fail(w, http.StatusNotFound, "User with given ID not found.")
		return
	}
	if err != nil {
		fail(w, http.StatusInternalServerError, err.Error())
		return
	}
	respond(w, http.StatusOK, user)
}

func (h *Handler) countUsers(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.CountUsers(r.Context())
	if err != nil {
		fail(w, http.StatusInternalServerError, err.Error())
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{"userCount": n, "success": true})
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !store.IsValidID(id) {
		fail(w, http.StatusBadRequest, "Invalid id.")
		return
	}

	err := h.service.DeleteUser(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		fail(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		fail(w, http.StatusInternalServerError, err.Error())
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{"success": true, "message": "The user has been deleted"})
}

func fail(w http.ResponseWriter, status int, message string) {
	respond(w, status, map[string]interface{}{"success": false, "message": message})
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
