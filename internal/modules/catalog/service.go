package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/georgemunganga/eshop-backend/internal/platform/store"
)

var (
	ErrInvalidCategory = errors.New("invalid category")
	ErrImageRequired   = errors.New("no image file has been sent")
	ErrNameRequired    = errors.New("name is required")
)

// Upload is one file received from a multipart form.
type Upload struct {
	Name        string
	ContentType string
	Body        io.Reader
}

// Service defines catalog business logic.
type Service interface {
	ListCategories(ctx context.Context) ([]*Category, error)
	GetCategory(ctx context.Context, id string) (*Category, error)
	CreateCategory(ctx context.Context, req CategoryRequest) (*Category, error)
	UpdateCategory(ctx context.Context, id string, req CategoryRequest) (*Category, error)
	DeleteCategory(ctx context.Context, id string) error

	ListProducts(ctx context.Context, categoryIDs []string) ([]*ProductDetail, error)
	GetProduct(ctx context.Context, id string) (*ProductDetail, error)
	CountProducts(ctx context.Context) (int64, error)
	ListFeatured(ctx context.Context, limit int) ([]*Product, error)
	// CreateProduct stores image and saves the product with image set to imageBaseURL + stored name.
	CreateProduct(ctx context.Context, req ProductRequest, image *Upload, imageBaseURL string) (*Product, error)
	UpdateProduct(ctx context.Context, id string, req ProductRequest) (*Product, error)
	UpdateGallery(ctx context.Context, id string, images []Upload, imageBaseURL string) (*Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

type service struct {
	repo   Repository
	images ImageStore
}

func NewService(repo Repository, images ImageStore) Service {
	return &service{repo: repo, images: images}
}

// ── categories ───────────────────────────────────────────────────────────────

func (s *service) ListCategories(ctx context.Context) ([]*Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *service) GetCategory(ctx context.Context, id string) (*Category, error) {
	return s.repo.GetCategory(ctx, id)
}

func (s *service) CreateCategory(ctx context.Context, req CategoryRequest) (*Category, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrNameRequired
	}
	c := &Category{Name: strings.TrimSpace(req.Name), Icon: req.Icon, Color: req.Color}
	if err := s.repo.CreateCategory(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) UpdateCategory(ctx context.Context, id string, req CategoryRequest) (*Category, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrNameRequired
	}
	c := &Category{ID: id, Name: strings.TrimSpace(req.Name), Icon: req.Icon, Color: req.Color}
	if err := s.repo.UpdateCategory(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) DeleteCategory(ctx context.Context, id string) error {
	return s.repo.DeleteCategory(ctx, id)
}

// ── products ─────────────────────────────────────────────────────────────────

func (s *service) ListProducts(ctx context.Context, categoryIDs []string) ([]*ProductDetail, error) {
	products, err := s.repo.ListProducts(ctx, categoryIDs)
	if err != nil {
		return nil, err
	}
	return s.withCategories(ctx, products)
}

func (s *service) GetProduct(ctx context.Context, id string) (*ProductDetail, error) {
	p, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	details, err := s.withCategories(ctx, []*Product{p})
	if err != nil {
		return nil, err
	}
	return details[0], nil
}

func (s *service) CountProducts(ctx context.Context) (int64, error) {
	return s.repo.CountProducts(ctx)
}

func (s *service) ListFeatured(ctx context.Context, limit int) ([]*Product, error) {
	return s.repo.ListFeatured(ctx, limit)
}

func (s *service) CreateProduct(ctx context.Context, req ProductRequest, image *Upload, imageBaseURL string) (*Product, error) {
	if err := s.checkCategory(ctx, req.Category); err != nil {
		return nil, err
	}
	if image == nil {
		return nil, ErrImageRequired
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrNameRequired
	}
	name, err := s.images.Save(image.Name, image.ContentType, image.Body)
	if err != nil {
		return nil, err
	}

	p := productFromRequest(req)
	p.Image = imageBaseURL + name
	p.Images = []string{}
	if err := s.repo.CreateProduct(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) UpdateProduct(ctx context.Context, id string, req ProductRequest) (*Product, error) {
	if err := s.checkCategory(ctx, req.Category); err != nil {
		return nil, err
	}
	current, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	p := productFromRequest(req)
	p.ID = current.ID
	p.Images = current.Images
	p.DateCreated = current.DateCreated
	if p.Image == "" {
		p.Image = current.Image
	}
	if err := s.repo.UpdateProduct(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) UpdateGallery(ctx context.Context, id string, images []Upload, imageBaseURL string) (*Product, error) {
	if _, err := s.repo.GetProduct(ctx, id); err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(images))
	for _, img := range images {
		name, err := s.images.Save(img.Name, img.ContentType, img.Body)
		if err != nil {
			return nil, err
		}
		paths = append(paths, imageBaseURL+name)
	}
	return s.repo.SetGallery(ctx, id, paths)
}

func (s *service) DeleteProduct(ctx context.Context, id string) error {
	return s.repo.DeleteProduct(ctx, id)
}

// ── helpers ──────────────────────────────────────────────────────────────────

func (s *service) checkCategory(ctx context.Context, id string) error {
	if !store.IsValidID(id) {
		return ErrInvalidCategory
	}
	if _, err := s.repo.GetCategory(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidCategory
		}
		return fmt.Errorf("lookup category: %w", err)
	}
	return nil
}

// withCategories expands each product's category with a single batch lookup.
func (s *service) withCategories(ctx context.Context, products []*Product) ([]*ProductDetail, error) {
	ids := make([]string, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.Category)
	}
	cats, err := s.repo.GetCategoriesByIDs(ctx, store.Unique(ids))
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*Category, len(cats))
	for _, c := range cats {
		byID[c.ID] = c
	}
	out := make([]*ProductDetail, 0, len(products))
	for _, p := range products {
		out = append(out, &ProductDetail{Product: p, Category: byID[p.Category]})
	}
	return out, nil
}

func productFromRequest(req ProductRequest) *Product {
	return &Product{
		Name:            strings.TrimSpace(req.Name),
		Description:     req.Description,
		RichDescription: req.RichDescription,
		Image:           req.Image,
		Brand:           req.Brand,
		Price:           req.Price,
		Category:        req.Category,
		CountInStock:    req.CountInStock,
		Rating:          req.Rating,
		NumReviews:      req.NumReviews,
		IsFeatured:      req.IsFeatured,
	}
}
