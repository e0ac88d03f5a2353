// Package store holds the identifier format and error values shared by every
// repository implementation, whichever backend is configured.
package store

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrNotFound is returned when a requested document doesn't exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique field is already taken.
	ErrDuplicate = errors.New("already exists")
)

// NewID returns a fresh document identifier (24 hex characters).
func NewID() string { return primitive.NewObjectID().Hex() }

// IsValidID reports whether id has the document identifier format.
// Handlers check this before any lookup so malformed ids never reach a backend.
func IsValidID(id string) bool { return primitive.IsValidObjectID(id) }

// ObjectIDs converts hex ids for use in $in filters, dropping malformed ones.
func ObjectIDs(ids []string) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue
		}
		out = append(out, oid)
	}
	return out
}

// Unique returns ids with duplicates and empty values removed, preserving first-seen order.
func Unique(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
