package user

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/georgemunganga/eshop-backend/internal/platform/store"
)

type postgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a new PostgreSQL user repository.
func NewPostgresRepository(db *sql.DB) Repository {
	return &postgresRepository{db: db}
}

const userColumns = `id, name, email, password_hash, street, apartment, city, zip, country, phone, is_admin`

func (r *postgresRepository) Create(ctx context.Context, u *User) error {
	id := store.NewID()
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.ExecContext(ctx, query, id, u.Name, u.Email, u.PasswordHash,
		u.Street, u.Apartment, u.City, u.Zip, u.Country, u.Phone, u.IsAdmin)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return store.ErrDuplicate
		}
		return err
	}
	u.ID = id
	return nil
}

func scanUser(scan func(...interface{}) error) (*User, error) {
	u := &User{}
	err := scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.Street,
		&u.Apartment,
		&u.City,
		&u.Zip,
		&u.Country,
		&u.Phone,
		&u.IsAdmin,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id string) (*User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *postgresRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *postgresRepository) getOne(ctx context.Context, query string, arg string) (*User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, query, arg).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return u, err
}

func (r *postgresRepository) GetByIDs(ctx context.Context, ids []string) ([]*User, error) {
	if len(ids) == 0 {
		return []*User{}, nil
	}
	return r.query(ctx, `SELECT `+userColumns+` FROM users WHERE id = ANY($1)`, pq.Array(ids))
}

func (r *postgresRepository) List(ctx context.Context) ([]*User, error) {
	return r.query(ctx, `SELECT `+userColumns+` FROM users ORDER BY name`)
}

func (r *postgresRepository) query(ctx context.Context, query string, args ...interface{}) ([]*User, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []*User{}
	for rows.Next() {
		u, err := scanUser(rows.Scan)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *postgresRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

func (r *postgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
