package catalog

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
	categories *mongo.Collection
	products   *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) Repository {
	return &mongoRepo{
		categories: db.Collection("categories"),
		products:   db.Collection("products"),
	}
}

type categoryDoc struct {
	ID    primitive.ObjectID `bson:"_id"`
	Name  string             `bson:"name"`
	Icon  string             `bson:"icon"`
	Color string             `bson:"color"`
}

type productDoc struct {
	ID              primitive.ObjectID `bson:"_id"`
	Name            string             `bson:"name"`
	Description     string             `bson:"description"`
	RichDescription string             `bson:"richDescription"`
	Image           string             `bson:"image"`
	Images          []string           `bson:"images"`
	Brand           string             `bson:"brand"`
	Price           float64            `bson:"price"`
	Category        primitive.ObjectID `bson:"category"`
	CountInStock    int                `bson:"countInStock"`
	Rating          float64            `bson:"rating"`
	NumReviews      int                `bson:"numReviews"`
	IsFeatured      bool               `bson:"isFeatured"`
	DateCreated     time.Time          `bson:"dateCreated"`
}

// ── categories ───────────────────────────────────────────────────────────────

func (r *mongoRepo) CreateCategory(ctx context.Context, c *Category) error {
	doc := categoryDoc{ID: primitive.NewObjectID(), Name: c.Name, Icon: c.Icon, Color: c.Color}
	if _, err := r.categories.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	c.ID = doc.ID.Hex()
	return nil
}

func (r *mongoRepo) GetCategory(ctx context.Context, id string) (*Category, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, store.ErrNotFound
	}
	var doc categoryDoc
	if err := r.categories.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, notFound(err)
	}
	return doc.toCategory(), nil
}

func (r *mongoRepo) ListCategories(ctx context.Context) ([]*Category, error) {
	return r.findCategories(ctx, bson.M{})
}

func (r *mongoRepo) GetCategoriesByIDs(ctx context.Context, ids []string) ([]*Category, error) {
	oids := store.ObjectIDs(ids)
	if len(oids) == 0 {
		return nil, nil
	}
	return r.findCategories(ctx, bson.M{"_id": bson.M{"$in": oids}})
}

func (r *mongoRepo) findCategories(ctx context.Context, filter bson.M) ([]*Category, error) {
	cur, err := r.categories.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	var docs []categoryDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*Category, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toCategory())
	}
	return out, nil
}

func (r *mongoRepo) UpdateCategory(ctx context.Context, c *Category) error {
	oid, err := primitive.ObjectIDFromHex(c.ID)
	if err != nil {
		return store.ErrNotFound
	}
	res, err := r.categories.UpdateByID(ctx, oid, bson.M{"$set": bson.M{
		"name": c.Name, "icon": c.Icon, "color": c.Color,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *mongoRepo) DeleteCategory(ctx context.Context, id string) error {
	return deleteByID(ctx, r.categories, id)
}

// ── products ─────────────────────────────────────────────────────────────────

func (r *mongoRepo) CreateProduct(ctx context.Context, p *Product) error {
	doc, err := toProductDoc(p)
	if err != nil {
		return err
	}
	doc.ID = primitive.NewObjectID()
	if doc.DateCreated.IsZero() {
		doc.DateCreated = time.Now().UTC()
	}
	if _, err := r.products.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	p.ID = doc.ID.Hex()
	p.DateCreated = doc.DateCreated
	return nil
}

func (r *mongoRepo) GetProduct(ctx context.Context, id string) (*Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, store.ErrNotFound
	}
	var doc productDoc
	if err := r.products.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, notFound(err)
	}
	return doc.toProduct(), nil
}

// newestFirst matches the postgres listing order.
func newestFirst() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "dateCreated", Value: -1}})
}

func (r *mongoRepo) ListProducts(ctx context.Context, categoryIDs []string) ([]*Product, error) {
	filter := bson.M{}
	if len(categoryIDs) > 0 {
		filter["category"] = bson.M{"$in": store.ObjectIDs(categoryIDs)}
	}
	return r.findProducts(ctx, filter, newestFirst())
}

func (r *mongoRepo) ListFeatured(ctx context.Context, limit int) ([]*Product, error) {
	opts := newestFirst()
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return r.findProducts(ctx, bson.M{"isFeatured": true}, opts)
}

func (r *mongoRepo) GetProductsByIDs(ctx context.Context, ids []string) ([]*Product, error) {
	oids := store.ObjectIDs(ids)
	if len(oids) == 0 {
		return nil, nil
	}
	return r.findProducts(ctx, bson.M{"_id": bson.M{"$in": oids}}, options.Find())
}

func (r *mongoRepo) findProducts(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*Product, error) {
	cur, err := r.products.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var docs []productDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*Product, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toProduct())
	}
	return out, nil
}

func (r *mongoRepo) UpdateProduct(ctx context.Context, p *Product) error {
	doc, err := toProductDoc(p)
	if err != nil {
		return err
	}
	oid, err := primitive.ObjectIDFromHex(p.ID)
	if err != nil {
		return store.ErrNotFound
	}
	res, err := r.products.UpdateByID(ctx, oid, bson.M{"$set": bson.M{
		"name":            doc.Name,
		"description":     doc.Description,
		"richDescription": doc.RichDescription,
		"image":           doc.Image,
		"brand":           doc.Brand,
		"price":           doc.Price,
		"category":        doc.Category,
		"countInStock":    doc.CountInStock,
		"rating":          doc.Rating,
		"numReviews":      doc.NumReviews,
		"isFeatured":      doc.IsFeatured,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *mongoRepo) SetGallery(ctx context.Context, id string, images []string) (*Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, store.ErrNotFound
	}
	var doc productDoc
	err = r.products.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"images": images}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return nil, notFound(err)
	}
	return doc.toProduct(), nil
}

func (r *mongoRepo) DeleteProduct(ctx context.Context, id string) error {
	return deleteByID(ctx, r.products, id)
}

func (r *mongoRepo) CountProducts(ctx context.Context) (int64, error) {
	return r.products.CountDocuments(ctx, bson.D{})
}

// ── helpers ──────────────────────────────────────────────────────────────────

func deleteByID(ctx context.Context, coll *mongo.Collection, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return store.ErrNotFound
	}
	res, err := coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return store.ErrNotFound
	}
	return err
}

func toProductDoc(p *Product) (productDoc, error) {
	cat, err := primitive.ObjectIDFromHex(p.Category)
	if err != nil {
		return productDoc{}, fmt.Errorf("category %q: %w", p.Category, err)
	}
	images := p.Images
	if images == nil {
		images = []string{}
	}
	return productDoc{
		Name:            p.Name,
		Description:     p.Description,
		RichDescription: p.RichDescription,
		Image:           p.Image,
		Images:          images,
		Brand:           p.Brand,
		Price:           p.Price,
		Category:        cat,
		CountInStock:    p.CountInStock,
		Rating:          p.Rating,
		NumReviews:      p.NumReviews,
		IsFeatured:      p.IsFeatured,
		DateCreated:     p.DateCreated,
	}, nil
}

func (d *categoryDoc) toCategory() *Category {
	return &Category{ID: d.ID.Hex(), Name: d.Name, Icon: d.Icon, Color: d.Color}
}

func (d *productDoc) toProduct() *Product {
	images := d.Images
	if images == nil {
		images = []string{}
	}
	return &Product{
		ID:              d.ID.Hex(),
		Name:            d.Name,
		Description:     d.Description,
		RichDescription: d.RichDescription,
		Image:           d.Image,
		Images:          images,
		Brand:           d.Brand,
		Price:           d.Price,
		Category:        d.Category.Hex(),
		CountInStock:    d.CountInStock,
		Rating:          d.Rating,
		NumReviews:      d.NumReviews,
		IsFeatured:      d.IsFeatured,
		DateCreated:     d.DateCreated,
	}
}
