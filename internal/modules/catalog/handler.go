package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/georgemunganga/eshop-backend/internal/platform/store"
)

const (
	maxUploadBytes  = 32 << 20
	maxGalleryFiles = 10
)

// Handler exposes catalog HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/categories", func(r chi.Router) {
		r.Get("/", h.listCategories)
		r.Post("/", h.createCategory)
		r.Get("/{id}", h.getCategory)
		r.Put("/{id}", h.updateCategory)
		r.Delete("/{id}", h.deleteCategory)
	})
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.listProducts)                     // GET    /products?categories=a,b
		r.Post("/", h.createProduct)                   // POST   /products (multipart, "image")
		r.Get("/get/count", h.countProducts)           // GET    /products/get/count
		r.Get("/get/featured", h.listFeatured)         // GET    /products/get/featured
		r.Get("/get/featured/{count}", h.listFeatured) // GET    /products/get/featured/{count}
		r.Put("/gallery-images/{id}", h.updateGallery) // PUT    /products/gallery-images/{id} (multipart, "images")
		r.Get("/{id}", h.getProduct)
		r.Put("/{id}", h.updateProduct)
		r.Delete("/{id}", h.deleteProduct)
	})
}

// ServeUploads serves stored product images at GET /uploads/{filename}.
func ServeUploads(r chi.Router, dir string) {
	r.Get("/uploads/{filename}", func(w http.ResponseWriter, req *http.Request) {
		name := filepath.Base(chi.URLParam(req, "filename"))
		http.ServeFile(w, req, filepath.Join(dir, name))
	})
}

// ── categories ───────────────────────────────────────────────────────────────

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.service.ListCategories(r.Context())
	if err != nil {
		fail(w, http.StatusInternalServerError, err.Error())
		return
	}
	if cats == nil {
		cats = []*Category{}
	}
	respond(w, http.StatusOK, cats)
}

func (h *Handler) getCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	c, err := h.service.GetCategory(r.Context(), id)
	if err != nil {
		storeError(w, err, "The category with the given ID was not found")
		return
	}
	respond(w, http.StatusOK, c)
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, err.Error())
		return
	}
	c, err := h.service.CreateCategory(r.Context(), req)
	if err != nil {
		storeError(w, err, "")
		return
	}
	respond(w, http.StatusCreated, c)
}

func (h *Handler) updateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, err.Error())
		return
	}
	c, err := h.service.UpdateCategory(r.Context(), id, req)
	if err != nil {
		storeError(w, err, "The category with the given ID was not found")
		return
	}
	respond(w, http.StatusOK, c)
}

func (h *Handler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteCategory(r.Context(), id); err != nil {
		storeError(w, err, "Category not found.")
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{"success": true, "message": "The category has been deleted."})
}

// ── products ─────────────────────────────────────────────────────────────────

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	var categoryIDs []string
	if q := r.URL.Query().Get("categories"); q != "" {
		for _, id := range strings.Split(q, ",") {
			if id = strings.TrimSpace(id); id != "" {
				categoryIDs = append(categoryIDs, id)
			}
		}
	}
	products, err := h.service.ListProducts(r.Context(), categoryIDs)
	if err != nil {
		fail(w, http.StatusInternalServerError, err.Error())
		return
	}
	respond(w, http.StatusOK, products)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		storeError(w, err, "Could not find the product with the given id.")
		return
	}
	respond(w, http.StatusOK, p)
}

func (h *Handler) countProducts(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.CountProducts(r.Context())
	if err != nil {
		fail(w, http.StatusInternalServerError, err.Error())
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{"productCount": n, "success": true})
}

func (h *Handler) listFeatured(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if c := chi.URLParam(r, "count"); c != "" {
		n, err := strconv.Atoi(c)
		if err != nil || n < 0 {
			fail(w, http.StatusBadRequest, "Invalid count.")
			return
		}
		limit = n
	}
	products, err := h.service.ListFeatured(r.Context(), limit)
	if err != nil {
		fail(w, http.StatusInternalServerError, err.Error())
		return
	}
	if products == nil {
		products = []*Product{}
	}
	respond(w, http.StatusOK, products)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		fail(w, http.StatusBadRequest, err.Error())
		return
	}
	req, err := productFromForm(r.MultipartForm)
	if err != nil {
		fail(w, http.StatusBadRequest, err.Error())
		return
	}

	var image *Upload
	if files := r.MultipartForm.File["image"]; len(files) > 0 {
		f, err := files[0].Open()
		if err != nil {
			fail(w, http.StatusBadRequest, err.Error())
			return
		}
		defer f.Close()
		image = &Upload{Name: files[0].Filename, ContentType: files[0].Header.Get("Content-Type"), Body: f}
	}

	p, err := h.service.CreateProduct(r.Context(), req, image, uploadsBaseURL(r))
	if err != nil {
		storeError(w, err, "")
		return
	}
	respond(w, http.StatusCreated, p)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := h.service.UpdateProduct(r.Context(), id, req)
	if err != nil {
		storeError(w, err, "The product could not be updated")
		return
	}
	respond(w, http.StatusOK, p)
}

func (h *Handler) updateGallery(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		fail(w, http.StatusBadRequest, err.Error())
		return
	}
	files := r.MultipartForm.File["images"]
	if len(files) > maxGalleryFiles {
		fail(w, http.StatusBadRequest, fmt.Sprintf("At most %d images can be sent.", maxGalleryFiles))
		return
	}
	uploads := make([]Upload, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			fail(w, http.StatusBadRequest, err.Error())
			return
		}
		defer f.Close()
		uploads = append(uploads, Upload{Name: fh.Filename, ContentType: fh.Header.Get("Content-Type"), Body: f})
	}
	p, err := h.service.UpdateGallery(r.Context(), id, uploads, uploadsBaseURL(r))
	if err != nil {
		storeError(w, err, "The product could not be updated")
		return
	}
	respond(w, http.StatusOK, p)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteProduct(r.Context(), id); err != nil {
		storeError(w, err, "Product not found.")
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{"success": true, "message": "The product has been deleted."})
}

// ── helpers ──────────────────────────────────────────────────────────────────

func productFromForm(form *multipart.Form) (ProductRequest, error) {
	get := func(key string) string {
		if v := form.Value[key]; len(v) > 0 {
			return strings.TrimSpace(v[0])
		}
		return ""
	}
	req := ProductRequest{
		Name:            get("name"),
		Description:     get("description"),
		RichDescription: get("richDescription"),
		Brand:           get("brand"),
		Category:        get("category"),
	}
	var err error
	if v := get("price"); v != "" {
		if req.Price, err = strconv.ParseFloat(v, 64); err != nil {
			return req, fmt.Errorf("invalid price: %w", err)
		}
	}
	if v := get("countInStock"); v != "" {
		if req.CountInStock, err = strconv.Atoi(v); err != nil {
			return req, fmt.Errorf("invalid countInStock: %w", err)
		}
	}
	if v := get("rating"); v != "" {
		if req.Rating, err = strconv.ParseFloat(v, 64); err != nil {
			return req, fmt.Errorf("invalid rating: %w", err)
		}
	}
	if v := get("numReviews"); v != "" {
		if req.NumReviews, err = strconv.Atoi(v); err != nil {
			return req, fmt.Errorf("invalid numReviews: %w", err)
		}
	}
	if v := get("isFeatured"); v != "" {
		if req.IsFeatured, err = strconv.ParseBool(v); err != nil {
			return req, fmt.Errorf("invalid isFeatured: %w", err)
		}
	}
	return req, nil
}

func uploadsBaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/uploads/", scheme, r.Host)
}

func pathID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if !store.IsValidID(id) {
		fail(w, http.StatusBadRequest, "Invalid id.")
		return "", false
	}
	return id, true
}

// storeError maps service errors to a status; notFoundMsg replaces the
// generic message on 404.
func storeError(w http.ResponseWriter, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		if notFoundMsg == "" {
			notFoundMsg = err.Error()
		}
		fail(w, http.StatusNotFound, notFoundMsg)
	case errors.Is(err, ErrInvalidCategory):
		fail(w, http.StatusBadRequest, "Invalid category.")
	case errors.Is(err, ErrImageRequired):
		fail(w, http.StatusBadRequest, "No image file has been sent")
	case errors.Is(err, ErrInvalidImageType), errors.Is(err, ErrNameRequired):
		fail(w, http.StatusBadRequest, err.Error())
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
