package user

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/georgemunganga/eshop-backend/internal/platform/store"
)

type mongoRepo struct {
	users *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) Repository {
	return &mongoRepo{users: db.Collection("users")}
}

type userDoc struct {
	ID           primitive.ObjectID `bson:"_id"`
	Name         string             `bson:"name"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"passwordHash"`
	Street       string             `bson:"street"`
	Apartment    string             `bson:"apartment"`
	City         string             `bson:"city"`
	Zip          string             `bson:"zip"`
	Country      string             `bson:"country"`
	Phone        string             `bson:"phone"`
	IsAdmin      bool               `bson:"isAdmin"`
}

func (r *mongoRepo) Create(ctx context.Context, u *User) error {
	doc := userDoc{
		ID:           primitive.NewObjectID(),
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Street:       u.Street,
		Apartment:    u.Apartment,
		City:         u.City,
		Zip:          u.Zip,
		Country:      u.Country,
		Phone:        u.Phone,
		IsAdmin:      u.IsAdmin,
	}
	if _, err := r.users.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return store.ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}
	u.ID = doc.ID.Hex()
	return nil
}

func (r *mongoRepo) GetByID(ctx context.Context, id string) (*User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, store.ErrNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *mongoRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *mongoRepo) findOne(ctx context.Context, filter bson.M) (*User, error) {
	var doc userDoc
	if err := r.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return doc.toUser(), nil
}

func (r *mongoRepo) GetByIDs(ctx context.Context, ids []string) ([]*User, error) {
	oids := store.ObjectIDs(ids)
	if len(oids) == 0 {
		return []*User{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": oids}})
}

func (r *mongoRepo) List(ctx context.Context) ([]*User, error) {
	return r.find(ctx, bson.M{})
}

func (r *mongoRepo) find(ctx context.Context, filter bson.M) ([]*User, error) {
	cur, err := r.users.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	out := make([]*User, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toUser())
	}
	return out, nil
}

func (r *mongoRepo) Count(ctx context.Context) (int64, error) {
	return r.users.CountDocuments(ctx, bson.M{})
}

func (r *mongoRepo) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return store.ErrNotFound
	}
	res, err := r.users.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (d *userDoc) toUser() *User {
	return &User{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Street:       d.Street,
		Apartment:    d.Apartment,
		City:         d.City,
		Zip:          d.Zip,
		Country:      d.Country,
		Phone:        d.Phone,
		IsAdmin:      d.IsAdmin,
	}
}
