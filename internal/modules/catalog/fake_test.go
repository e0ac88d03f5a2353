package catalog

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/georgemunganga/eshop-backend/internal/platform/store"
)

type memRepo struct {
	mu         sync.Mutex
	categories map[string]*Category
	products   map[string]*Product
}

func newMemRepo() *memRepo {
	return &memRepo{categories: map[string]*Category{}, products: map[string]*Product{}}
}

func (m *memRepo) CreateCategory(_ context.Context, c *Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = store.NewID()
	cp := *c
	m.categories[c.ID] = &cp
	return nil
}

func (m *memRepo) GetCategory(_ context.Context, id string) (*Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.categories[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memRepo) ListCategories(_ context.Context) ([]*Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Category
	for _, c := range m.categories {
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memRepo) GetCategoriesByIDs(_ context.Context, ids []string) ([]*Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Category
	for _, id := range ids {
		if c, ok := m.categories[id]; ok {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memRepo) UpdateCategory(_ context.Context, c *Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.categories[c.ID]; !ok {
		return store.ErrNotFound
	}
	cp := *c
	m.categories[c.ID] = &cp
	return nil
}

func (m *memRepo) DeleteCategory(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.categories[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.categories, id)
	return nil
}

func (m *memRepo) CreateProduct(_ context.Context, p *Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = store.NewID()
	p.DateCreated = time.Now().UTC()
	cp := *p
	m.products[p.ID] = &cp
	return nil
}

func (m *memRepo) GetProduct(_ context.Context, id string) (*Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memRepo) ListProducts(_ context.Context, categoryIDs []string) ([]*Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := map[string]bool{}
	for _, id := range categoryIDs {
		want[id] = true
	}
	var out []*Product
	for _, p := range m.products {
		if len(want) > 0 && !want[p.Category] {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memRepo) ListFeatured(_ context.Context, limit int) ([]*Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Product
	for _, p := range m.products {
		if p.IsFeatured {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memRepo) GetProductsByIDs(_ context.Context, ids []string) ([]*Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Product
	for _, id := range ids {
		if p, ok := m.products[id]; ok {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memRepo) UpdateProduct(_ context.Context, p *Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[p.ID]; !ok {
		return store.ErrNotFound
	}
	cp := *p
	m.products[p.ID] = &cp
	return nil
}

func (m *memRepo) SetGallery(_ context.Context, id string, images []string) (*Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	p.Images = images
	cp := *p
	return &cp, nil
}

func (m *memRepo) DeleteProduct(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *memRepo) CountProducts(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.products)), nil
}
