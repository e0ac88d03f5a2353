package order

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Handler exposes order HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Get("/", h.listOrders)               // GET    /orders
		r.Post("/", h.placeOrder)              // POST   /orders
		r.Get("/get/count", h.countOrders)     // GET    /orders/get/count
		r.Get("/get/totalsales", h.totalSales) // GET    /orders/get/totalsales
		r.Get("/{id}", h.getOrder)             // GET    /orders/{id}
		r.Put("/{id}", h.updateStatus)         // PUT    /orders/{id} {"status": "..."}
		r.Delete("/{id}", h.deleteOrder)       // DELETE /orders/{id}
	})
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.ListOrders(r.Context())
	if err != nil {
		fail(w, http.StatusInternalServerError, err.Error())
		return
	}
	respond(w, http.StatusOK, orders)
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req PlaceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, err.Error())
		return
	}
	o, err := h.service.PlaceOrder(r.Context(), req)
	if err != nil {
		serviceError(w, err, "")
		return
	}
	respond(w, http.StatusCreated, o)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.service.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		serviceError(w, err, "No order with the given ID was found.")
		return
	}
	respond(w, http.StatusOK, o)
}

func (h *Handler) countOrders(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.CountOrders(r.Context())
	if err != nil {
		fail(w, http.StatusInternalServerError, err.Error())
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{"orderCount": n, "success": true})
}

func (h *Handler) totalSales(w http.ResponseWriter, r *http.Request) {
	total, err := h.service.TotalSales(r.Context())
	if err != nil {
		fail(w, http.StatusInternalServerError, err.Error())
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{"totalSales": total, "success": true})
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, err.Error())
		return
	}
	o, err := h.service.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		serviceError(w, err, "The order with the given ID was not found.")
		return
	}
	respond(w, http.StatusOK, o)
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.DeleteOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		serviceError(w, err, "The order with the given ID was not found.")
		return
	}
	body := map[string]interface{}{"success": true, "message": "The order has been deleted."}
	if len(res.FailedItems) > 0 {
		body["failedItems"] = res.FailedItems
	}
	respond(w, http.StatusOK, body)
}

// serviceError maps the error taxonomy onto status codes.
func serviceError(w http.ResponseWriter, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, ErrInvalidID):
		fail(w, http.StatusBadRequest, "Invalid id.")
	case errors.Is(err, ErrValidation):
		fail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		fail(w, http.StatusNotFound, notFoundMsg)
	default:
		fail(w, http.StatusInternalServerError, err.Error())
	}
}

func fail(w http.ResponseWriter, status int, message string) {
	respond(w, status, map[string]interface{}{"success": false, "message": message})
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
