package order

import "time"

// DefaultStatus is assigned to orders created without an explicit status.
const DefaultStatus = "Pending"

// LineItem is one (product, quantity) pair owned by an order. Line items are
// never mutated; they are created at checkout and removed with their order.
type LineItem struct {
	ID       string `json:"id"`
	Product  string `json:"product"`
	Quantity int    `json:"quantity"`
}

// Order is a placed order. OrderItems keeps the submission order of the
// cart and TotalPrice is the snapshot computed at creation.
type Order struct {
	ID               string    `json:"id"`
	OrderItems       []string  `json:"orderItems"`
	ShippingAddress1 string    `json:"shippingAddress1"`
	ShippingAddress2 string    `json:"shippingAddress2"`
	City             string    `json:"city"`
	Zip              string    `json:"zip"`
	Country          string    `json:"country"`
	Phone            string    `json:"phone"`
	Status           string    `json:"status"`
	TotalPrice       float64   `json:"totalPrice"`
	User             string    `json:"user"`
	DateOrdered      time.Time `json:"dateOrdered"`
}

// LineRequest is one cart entry. Any price sent by the client is ignored.
type LineRequest struct {
	Product  string `json:"product"`
	Quantity int    `json:"quantity"`
}

// PlaceOrderRequest is the payload for creating a new order.
type PlaceOrderRequest struct {
	OrderItems       []LineRequest `json:"orderItems"`
	ShippingAddress1 string        `json:"shippingAddress1"`
	ShippingAddress2 string        `json:"shippingAddress2"`
	City             string        `json:"city"`
	Zip              string        `json:"zip"`
	Country          string        `json:"country"`
	Phone            string        `json:"phone"`
	Status           string        `json:"status"`
	User             string        `json:"user"`
	DateOrdered      *time.Time    `json:"dateOrdered,omitempty"`
}

// UpdateStatusRequest is the payload for changing an order's status.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}
