package user

import "context"

// Service defines the interface for user-related business logic.
type Service interface {
	// Register creates a public account; the admin flag in req is ignored.
	Register(ctx context.Context, req CreateRequest) (*User, error)
	// Create is the administrative create and honours req.IsAdmin.
	Create(ctx context.Context, req CreateRequest) (*User, error)
	GetUser(ctx context.Context, id string) (*User, error)
	ListUsers(ctx context.Context) ([]*User, error)
	CountUsers(ctx context.Context) (int64, error)
	DeleteUser(ctx context.Context, id string) error
}
