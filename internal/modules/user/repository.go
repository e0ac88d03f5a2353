package user

import "context"

// Repository persists users. Lookups of a missing user return store.ErrNotFound
// and a second account with the same email returns store.ErrDuplicate.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	// GetByIDs returns the users that exist among ids, in no particular order.
	GetByIDs(ctx context.Context, ids []string) ([]*User, error)
	List(ctx context.Context) ([]*User, error)
	Count(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id string) error
}
