package catalog

import "time"

// Category groups products for browsing.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Icon  string `json:"icon,omitempty"`
	Color string `json:"color,omitempty"`
}

// Product is a catalog entry. Price is the authoritative unit price used
// when an order is placed.
type Product struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	RichDescription string    `json:"richDescription"`
	Image           string    `json:"image"`
	Images          []string  `json:"images"`
	Brand           string    `json:"brand"`
	Price           float64   `json:"price"`
	Category        string    `json:"category"`
	CountInStock    int       `json:"countInStock"`
	Rating          float64   `json:"rating"`
	NumReviews      int       `json:"numReviews"`
	IsFeatured      bool      `json:"isFeatured"`
	DateCreated     time.Time `json:"dateCreated"`
}

// ProductDetail is a product with its category reference expanded.
type ProductDetail struct {
	*Product
	Category *Category `json:"category"`
}

// CategoryRequest is the payload for creating or updating a category.
type CategoryRequest struct {
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

// ProductRequest is the payload for creating or updating a product.
type ProductRequest struct {
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	RichDescription string  `json:"richDescription"`
	Image           string  `json:"image"`
	Brand           string  `json:"brand"`
	Price           float64 `json:"price"`
	Category        string  `json:"category"`
	CountInStock    int     `json:"countInStock"`
	Rating          float64 `json:"rating"`
	NumReviews      int     `json:"numReviews"`
	IsFeatured      bool    `json:"isFeatured"`
}
