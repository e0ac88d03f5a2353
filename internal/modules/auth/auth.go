package auth

import (
	"context"
	"errors"

	"github.com/dgrijalva/jwt-go"
)

var (
	ErrEmailNotFound = errors.New("user e-mail not found")
	ErrBadPassword   = errors.New("incorrect password")
	ErrInvalidToken  = errors.New("token not valid")
)

// Claims is the payload carried by an issued credential.
type Claims struct {
	UserID  string `json:"userId"`
	IsAdmin bool   `json:"isAdmin"`
	jwt.StandardClaims
}

// Session is returned by a successful login.
type Session struct {
	Email string
	Token string
}

// Service defines the interface for authentication-related business logic.
type Service interface {
	Login(ctx context.Context, email, password string) (*Session, error)
	Issue(userID string, isAdmin bool) (string, error)
	Parse(token string) (*Claims, error)
}
