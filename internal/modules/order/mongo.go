package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/georgemunganga/eshop-backend/internal/platform/store"
)

type mongoRepo struct {
	lineItems *mongo.Collection
	orders    *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) Repository {
	return &mongoRepo{
		lineItems: db.Collection("orderitems"),
		orders:    db.Collection("orders"),
	}
}

type lineItemDoc struct {
	ID       primitive.ObjectID `bson:"_id"`
	Product  primitive.ObjectID `bson:"product"`
	Quantity int                `bson:"quantity"`
}

type orderDoc struct {
	ID               primitive.ObjectID   `bson:"_id"`
	OrderItems       []primitive.ObjectID `bson:"orderItems"`
	ShippingAddress1 string               `bson:"shippingAddress1"`
	ShippingAddress2 string               `bson:"shippingAddress2"`
	City             string               `bson:"city"`
	Zip              string               `bson:"zip"`
	Country          string               `bson:"country"`
	Phone            string               `bson:"phone"`
	Status           string               `bson:"status"`
	TotalPrice       float64              `bson:"totalPrice"`
	User             primitive.ObjectID   `bson:"user"`
	DateOrdered      time.Time            `bson:"dateOrdered"`
}

// ── line items ───────────────────────────────────────────────────────────────

func (r *mongoRepo) CreateLineItem(ctx context.Context, li *LineItem) error {
	product, err := primitive.ObjectIDFromHex(li.Product)
	if err != nil {
		return fmt.Errorf("product %q: %w", li.Product, err)
	}
	doc := lineItemDoc{ID: primitive.NewObjectID(), Product: product, Quantity: li.Quantity}
	if _, err := r.lineItems.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert line item: %w", err)
	}
	li.ID = doc.ID.Hex()
	return nil
}

func (r *mongoRepo) GetLineItemsByIDs(ctx context.Context, ids []string) ([]*LineItem, error) {
	oids := store.ObjectIDs(ids)
	if len(oids) == 0 {
		return []*LineItem{}, nil
	}
	cur, err := r.lineItems.Find(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return nil, fmt.Errorf("find line items: %w", err)
	}
	var docs []lineItemDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode line items: %w", err)
	}
	out := make([]*LineItem, 0, len(docs))
	for _, d := range docs {
		out = append(out, &LineItem{ID: d.ID.Hex(), Product: d.Product.Hex(), Quantity: d.Quantity})
	}
	return out, nil
}

func (r *mongoRepo) DeleteLineItem(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return store.ErrNotFound
	}
	res, err := r.lineItems.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ── orders ───────────────────────────────────────────────────────────────────

func (r *mongoRepo) CreateOrder(ctx context.Context, o *Order) error {
	doc, err := toOrderDoc(o)
	if err != nil {
		return err
	}
	doc.ID = primitive.NewObjectID()
	if _, err := r.orders.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	o.ID = doc.ID.Hex()
	return nil
}

func (r *mongoRepo) GetOrder(ctx context.Context, id string) (*Order, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, store.ErrNotFound
	}
	var doc orderDoc
	if err := r.orders.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, notFound(err)
	}
	return doc.toOrder(), nil
}

func (r *mongoRepo) ListOrders(ctx context.Context) ([]*Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "dateOrdered", Value: -1}})
	cur, err := r.orders.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find orders: %w", err)
	}
	var docs []orderDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	out := make([]*Order, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toOrder())
	}
	return out, nil
}

func (r *mongoRepo) UpdateStatus(ctx context.Context, id, status string) (*Order, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, store.ErrNotFound
	}
	var doc orderDoc
	err = r.orders.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"status": status}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return nil, notFound(err)
	}
	return doc.toOrder(), nil
}

func (r *mongoRepo) DeleteOrder(ctx context.Context, id string) (*Order, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, store.ErrNotFound
	}
	var doc orderDoc
	if err := r.orders.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, notFound(err)
	}
	return doc.toOrder(), nil
}

func (r *mongoRepo) CountOrders(ctx context.Context) (int64, error) {
	return r.orders.CountDocuments(ctx, bson.M{})
}

func (r *mongoRepo) TotalSales(ctx context.Context) (float64, error) {
	cur, err := r.orders.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "totalSales", Value: bson.D{{Key: "$sum", Value: "$totalPrice"}}},
		}}},
	})
	if err != nil {
		return 0, fmt.Errorf("aggregate total sales: %w", err)
	}
	var rows []struct {
		TotalSales float64 `bson:"totalSales"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return 0, fmt.Errorf("decode total sales: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].TotalSales, nil
}

// ── helpers ──────────────────────────────────────────────────────────────────

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return store.ErrNotFound
	}
	return err
}

func toOrderDoc(o *Order) (orderDoc, error) {
	user, err := primitive.ObjectIDFromHex(o.User)
	if err != nil {
		return orderDoc{}, fmt.Errorf("user %q: %w", o.User, err)
	}
	items := make([]primitive.ObjectID, 0, len(o.OrderItems))
	for _, id := range o.OrderItems {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return orderDoc{}, fmt.Errorf("line item %q: %w", id, err)
		}
		items = append(items, oid)
	}
	return orderDoc{
		OrderItems:       items,
		ShippingAddress1: o.ShippingAddress1,
		ShippingAddress2: o.ShippingAddress2,
		City:             o.City,
		Zip:              o.Zip,
		Country:          o.Country,
		Phone:            o.Phone,
		Status:           o.Status,
		TotalPrice:       o.TotalPrice,
		User:             user,
		DateOrdered:      o.DateOrdered,
	}, nil
}

func (d *orderDoc) toOrder() *Order {
	items := make([]string, 0, len(d.OrderItems))
	for _, oid := range d.OrderItems {
		items = append(items, oid.Hex())
	}
	return &Order{
		ID:               d.ID.Hex(),
		OrderItems:       items,
		ShippingAddress1: d.ShippingAddress1,
		ShippingAddress2: d.ShippingAddress2,
		City:             d.City,
		Zip:              d.Zip,
		Country:          d.Country,
		Phone:            d.Phone,
		Status:           d.Status,
		TotalPrice:       d.TotalPrice,
		User:             d.User.Hex(),
		DateOrdered:      d.DateOrdered.UTC(),
	}
}
